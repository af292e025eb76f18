package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/storyplay/storyplay/color"
	"github.com/storyplay/storyplay/style"
)

type keymap struct {
	state state

	quit, forceQuit, suspend,
	playPause,
	seekBack, seekForward,
	prevFrame, nextFrame,
	restart,
	showHelp key.Binding
}

func (k *keymap) setState(newState state) {
	k.state = newState
}

func newKeymap() *keymap {
	return &keymap{
		quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+c", "quit"),
		),
		suspend: key.NewBinding(
			key.WithKeys("ctrl+z"),
			key.WithHelp("ctrl+z", "suspend"),
		),
		playPause: key.NewBinding(
			key.WithKeys(" ", "space"),
			key.WithHelp(style.Fg(color.Orange)("space"), style.Fg(color.Orange)("play/pause")),
		),
		seekBack: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "-5s"),
		),
		seekForward: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "+5s"),
		),
		prevFrame: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "previous frame"),
		),
		nextFrame: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next frame"),
		),
		restart: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("home", "restart"),
		),
		showHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k *keymap) help() ([]key.Binding, []key.Binding) {
	h := func(bindings ...key.Binding) []key.Binding {
		return bindings
	}

	switch k.state {
	case playerState:
		return h(k.playPause, k.seekBack, k.seekForward, k.showHelp, k.quit),
			h(k.playPause, k.seekBack, k.seekForward, k.prevFrame, k.nextFrame, k.restart, k.suspend, k.quit)
	case errorState:
		return h(k.quit), h(k.quit, k.forceQuit)
	default:
		return h(), h()
	}
}

func (k *keymap) ShortHelp() []key.Binding {
	short, _ := k.help()
	return short
}

func (k *keymap) FullHelp() [][]key.Binding {
	_, full := k.help()
	return [][]key.Binding{full}
}
