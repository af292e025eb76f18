// Package open hands files to the program the desktop associates with them, or to a named one.
package open

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/storyplay/storyplay/constant"
)

// Run opens path with the default handler and waits for it to exit.
func Run(path string) error {
	return RunWith(path, "")
}

// RunWith opens path with app, or with the default handler when app is empty, and waits for it to exit.
func RunWith(path, app string) error {
	cmd, ok := command(path, app)
	if !ok {
		return fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}

	// editors need the terminal
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func command(path, app string) (*exec.Cmd, bool) {
	if app != "" {
		if runtime.GOOS == constant.Darwin {
			if _, err := exec.LookPath(app); err != nil {
				return exec.Command("open", "-a", app, path), true
			}
		}
		return exec.Command(app, path), true
	}

	switch runtime.GOOS {
	case constant.Windows:
		rundll := filepath.Join(os.Getenv("SYSTEMROOT"), "System32", "rundll32.exe")
		return exec.Command(rundll, "url.dll,FileProtocolHandler", path), true
	case constant.Darwin:
		return exec.Command("open", path), true
	case constant.Linux:
		return exec.Command("xdg-open", path), true
	case constant.Android:
		return exec.Command("termux-open", path), true
	default:
		return nil, false
	}
}
