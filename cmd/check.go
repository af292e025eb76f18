package cmd

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/viper"
	"github.com/storyplay/storyplay/constant"
	"github.com/storyplay/storyplay/icon"
	"github.com/storyplay/storyplay/key"
	"github.com/storyplay/storyplay/log"
	"github.com/storyplay/storyplay/player"
	"github.com/storyplay/storyplay/style"
)

// audioBackend returns the configured backend. Without mpv the narrative still plays, silently.
func audioBackend(noAudio bool) player.AudioBackend {
	name := viper.GetString(key.PlayerAudio)
	if noAudio {
		name = constant.AudioSilent
	}

	backend, err := player.NewAudioBackend(name)
	switch {
	case err == nil:
		return backend
	case errors.Is(err, exec.ErrNotFound):
		printMissingDependency("mpv")
	default:
		log.Warnf("audio backend %s: %v", name, err)
		fmt.Printf("%s %v, playing without sound\n", icon.Get(icon.Warn), err)
	}
	return player.NewSilent()
}

func printMissingDependency(dep string) {
	var installCmd string
	switch runtime.GOOS {
	case constant.Darwin:
		installCmd = "brew install " + dep
	case constant.Linux:
		installCmd = "sudo apt install " + dep
	case constant.Windows:
		installCmd = "scoop install " + dep
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.WarningColor).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(style.WarningColor).Render(fmt.Sprintf("%s Missing dependency", icon.Get(icon.Warn)))
	body := style.New().Foreground(style.Text).Render(fmt.Sprintf("'%s' was not found in your PATH, audio will be skipped.", dep))

	suggestion := ""
	if installCmd != "" {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(style.AccentColor).Bold(true).Render(installCmd))
	}

	fmt.Println(box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			body,
			suggestion,
		),
	))
}
