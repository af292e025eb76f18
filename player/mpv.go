package player

import (
	"context"
	"crypto/rand"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
	"github.com/storyplay/storyplay/filesystem"
	"github.com/storyplay/storyplay/log"
	"github.com/storyplay/storyplay/where"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 100 * time.Millisecond
	durationWait      = 2 * time.Second
	quitWait          = 3 * time.Second
	staleSocketAge    = time.Minute
	socketPattern     = "mpv-*.sock"
)

// MPV prepares every audio file in its own idle, paused, video-less mpv process.
type MPV struct {
	binary string
}

// NewMPV locates the mpv executable.
func NewMPV() (*MPV, error) {
	binary, err := exec.LookPath("mpv")
	if err != nil {
		return nil, fmt.Errorf("mpv not found: %w", err)
	}
	return &MPV{binary: binary}, nil
}

// mpvHandle is one running mpv process holding one file.
type mpvHandle struct {
	path       string
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{}
	events     *eventListener
	duration   chan float64
	mu         sync.Mutex
	release    sync.Once
}

func (h *mpvHandle) Path() string {
	return h.path
}

// mpvArgs builds the command line for a paused decoder holding target.
func mpvArgs(socketPath, target string) []string {
	return []string{
		"--no-terminal",
		"--really-quiet",
		"--no-video",
		"--idle=yes",
		"--pause=yes",
		"--keep-open=yes",
		fmt.Sprintf("--input-ipc-server=%s", socketPath),
		"--",
		target,
	}
}

// PrepareAudio implements AudioBackend.
func (m *MPV) PrepareAudio(ctx context.Context, path string) (AudioHandle, int64, error) {
	target, err := sanitizeMediaTarget(path)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid media target: %w", err)
	}

	ok, err := filesystem.NonEmpty(target)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return nil, 0, fmt.Errorf("%w: %s", ErrMediaUnavailable, target)
	}

	socketPath, err := newSocketPath()
	if err != nil {
		return nil, 0, err
	}

	h := &mpvHandle{
		path:       path,
		socketPath: socketPath,
		exited:     make(chan struct{}),
		duration:   make(chan float64, 1),
	}

	h.cmd = exec.Command(m.binary, mpvArgs(h.socketPath, target)...)
	h.cmd.SysProcAttr = sysProcAttr()
	h.cmd.Stdout = nil
	h.cmd.Stderr = nil
	h.cmd.Stdin = nil

	if err := h.cmd.Start(); err != nil {
		return nil, 0, fmt.Errorf("start mpv: %w", err)
	}

	// reap the process to prevent zombies
	go func() {
		_ = h.cmd.Wait()
		close(h.exited)
	}()

	if err := h.waitForSocket(ctx); err != nil {
		h.kill()
		return nil, 0, fmt.Errorf("mpv socket not ready: %w", err)
	}

	h.events, err = listen(h.socketPath, h.onEvent, "duration", "eof-reached")
	if err != nil {
		h.kill()
		return nil, 0, err
	}

	var durationMs int64
	select {
	case seconds := <-h.duration:
		durationMs = int64(seconds * 1000)
	case <-h.exited:
		h.kill()
		return nil, 0, fmt.Errorf("mpv exited while loading %s", filepath.Base(path))
	case <-ctx.Done():
		h.kill()
		return nil, 0, ctx.Err()
	case <-time.After(durationWait):
		log.Debugf("mpv reported no duration for %s", path)
	}

	return h, durationMs, nil
}

func (h *mpvHandle) onEvent(name string, data interface{}) {
	switch name {
	case "duration":
		if seconds, ok := data.(float64); ok && seconds > 0 {
			select {
			case h.duration <- seconds:
			default:
			}
		}
	case "eof-reached":
		if reached, _ := data.(bool); reached {
			log.Debugf("mpv reached the end of %s", h.path)
		}
	}
}

// waitForSocket polls until the mpv IPC socket is accepting connections.
func (h *mpvHandle) waitForSocket(ctx context.Context) error {
	for i := 0; i < socketWaitRetries; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-h.exited:
			return fmt.Errorf("mpv exited before socket was ready")
		case <-time.After(socketWaitDelay):
		}

		conn, err := net.Dial("unix", h.socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", h.socketPath, socketWaitRetries)
}

func (h *mpvHandle) kill() {
	if h.events != nil {
		h.events.Stop()
	}
	select {
	case <-h.exited:
	default:
		_ = killProcess(h.cmd)
	}
	_ = os.Remove(h.socketPath)
}

func asMPV(h AudioHandle) (*mpvHandle, error) {
	handle, ok := h.(*mpvHandle)
	if !ok {
		return nil, fmt.Errorf("handle %T does not belong to mpv", h)
	}
	return handle, nil
}

// StartAudio implements AudioBackend.
func (m *MPV) StartAudio(h AudioHandle) error {
	handle, err := asMPV(h)
	if err != nil {
		return err
	}
	_, err = handle.sendCommand("set_property", "pause", false)
	return err
}

// SeekAudio implements AudioBackend.
func (m *MPV) SeekAudio(h AudioHandle, offsetMs int64) error {
	handle, err := asMPV(h)
	if err != nil {
		return err
	}
	_, err = handle.sendCommand("seek", float64(offsetMs)/1000, "absolute")
	return err
}

// PauseAudio implements AudioBackend.
func (m *MPV) PauseAudio(h AudioHandle) error {
	handle, err := asMPV(h)
	if err != nil {
		return err
	}
	_, err = handle.sendCommand("set_property", "pause", true)
	return err
}

// ReleaseAudio implements AudioBackend. It asks mpv to quit and kills it if it does not.
func (m *MPV) ReleaseAudio(h AudioHandle) error {
	handle, err := asMPV(h)
	if err != nil {
		return err
	}

	handle.release.Do(func() {
		handle.events.Stop()
		_, _ = handle.sendCommand("quit")

		select {
		case <-handle.exited:
		case <-time.After(quitWait):
			_ = killProcess(handle.cmd)
		}

		_ = os.Remove(handle.socketPath)
	})
	return nil
}

// newSocketPath names a fresh IPC socket under where.Temp.
func newSocketPath() (string, error) {
	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("generate socket name: %w", err)
	}
	name := strings.Replace(socketPattern, "*", fmt.Sprintf("%x", randomBytes), 1)
	return filepath.Join(where.Temp(), name), nil
}

// SweepSockets removes sockets left behind by mpv processes that died without cleaning up,
// such as after a crash. Sockets that still accept connections belong to a running player and stay.
func SweepSockets() {
	fs := filesystem.API()
	matches, err := afero.Glob(fs, filepath.Join(where.Temp(), socketPattern))
	if err != nil {
		return
	}

	for _, path := range matches {
		info, err := fs.Stat(path)
		if err != nil || time.Since(info.ModTime()) < staleSocketAge {
			continue
		}

		if conn, err := net.DialTimeout("unix", path, socketWaitDelay); err == nil {
			_ = conn.Close()
			continue
		}

		if err := fs.Remove(path); err == nil {
			log.Infof("removed stale mpv socket %s", path)
		}
	}
}

// sanitizeMediaTarget validates that a path is safe to pass to mpv.
// Only local files are accepted.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty path")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in path")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		if !strings.EqualFold(u.Scheme, "file") {
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
		l = u.Path
	}

	return filepath.Clean(l), nil
}
