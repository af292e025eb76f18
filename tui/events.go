package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/storyplay/storyplay/engine"
	"github.com/storyplay/storyplay/timeline"
)

type (
	positionMsg        int64
	endedMsg           struct{}
	surfaceMsg         struct{}
	manifestChangedMsg struct{}
)

type droppedMsg struct {
	segment timeline.Segment
	err     error
}

type reloadedMsg struct {
	err error
}

// offer queues msg unless the UI is behind. Used for position updates, which the next one supersedes.
func (b *bubble) offer(msg tea.Msg) {
	select {
	case b.events <- msg:
	default:
	}
}

// deliver queues msg, waiting for room until the UI has exited.
func (b *bubble) deliver(msg tea.Msg) {
	select {
	case b.events <- msg:
	case <-b.done:
	}
}

// engineOptions forwards engine callbacks to the UI. They run on the engine's dispatcher goroutine.
func (b *bubble) engineOptions() []engine.Option {
	return []engine.Option{
		engine.WithOnPositionChanged(func(ms int64) {
			b.offer(positionMsg(ms))
		}),
		engine.WithOnEnded(func() {
			b.deliver(endedMsg{})
		}),
		engine.WithOnMediaDropped(func(seg timeline.Segment, err error) {
			b.deliver(droppedMsg{segment: seg, err: err})
		}),
	}
}

// waitForEvent is re-armed after every event it returns.
func (b *bubble) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.events:
			return msg
		case <-b.surface.changed:
			return surfaceMsg{}
		case <-b.done:
			return nil
		}
	}
}

func (b *bubble) reload() tea.Cmd {
	return func() tea.Msg {
		return reloadedMsg{err: b.engine.Reload(context.Background())}
	}
}
