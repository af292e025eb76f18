package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/storyplay/storyplay/engine"
	"github.com/storyplay/storyplay/internal/ui"
	"github.com/storyplay/storyplay/style"
	"github.com/storyplay/storyplay/util"
)

// bubble is the player screen. Engine calls made from Update return quickly: the engine never waits
// for the UI, since its surface and callbacks only hand data over.
type bubble struct {
	state  state
	keymap *keymap

	engine  *engine.Engine
	surface *surface
	events  chan tea.Msg
	done    chan struct{}

	title string

	position int64
	duration int64
	frameID  string
	playing  engine.State

	progressC progress.Model
	helpC     help.Model
	notifier  *ui.Model
	lastError error

	width, height int
}

func newBubble(title string, surface *surface) *bubble {
	b := &bubble{
		keymap:   newKeymap(),
		surface:  surface,
		events:   make(chan tea.Msg, 64),
		done:     make(chan struct{}),
		title:    title,
		notifier: &ui.Model{},
	}
	b.setState(playerState)

	b.helpC = help.New()
	b.progressC = progress.New(
		progress.WithGradient(string(style.Lavender), string(style.AccentColor)),
		progress.WithoutPercentage(),
	)

	if w, h, err := util.TerminalSize(); err == nil {
		b.resize(w, h)
	}
	return b
}

func (b *bubble) Init() tea.Cmd {
	return b.waitForEvent()
}

func (b *bubble) setState(s state) {
	b.state = s
	b.keymap.setState(s)
}

func (b *bubble) raiseError(err error) {
	b.lastError = err
	b.setState(errorState)
}

func (b *bubble) resize(width, height int) {
	x, y := paddingStyle.GetFrameSize()

	b.width = width - x
	b.height = height - y
	b.progressC.Width = b.width
	b.helpC.Width = b.width
}

// syncState reads what the view shows from the engine.
func (b *bubble) syncState() {
	b.position = b.engine.Position()
	b.duration = b.engine.Duration()
	b.frameID = b.engine.CurrentFrameID()
	b.playing = b.engine.State()
}

// quit stops listening for engine events before the program ends.
func (b *bubble) quit() tea.Cmd {
	select {
	case <-b.done:
	default:
		close(b.done)
	}
	return tea.Quit
}

var paddingStyle = lipgloss.NewStyle().Padding(1, 2)
