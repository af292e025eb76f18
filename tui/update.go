package tui

import (
	"fmt"
	"path/filepath"

	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/storyplay/storyplay/constant"
	"github.com/storyplay/storyplay/engine"
	"github.com/storyplay/storyplay/icon"
	"github.com/storyplay/storyplay/internal/ui"
	"github.com/storyplay/storyplay/log"
)

func (b *bubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if uiCmd := b.notifier.Update(msg); uiCmd != nil {
		cmds = append(cmds, uiCmd)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		cmds = append(cmds, b.updateKey(msg))
	case tea.ResumeMsg:
		b.syncState()
		cmds = append(cmds, ui.Notify(icon.Get(icon.Pause)+" suspended, press space to resume"))
	case positionMsg:
		b.syncState()
		cmds = append(cmds, b.waitForEvent())
	case endedMsg:
		b.syncState()
		cmds = append(cmds, ui.Notify(icon.Get(icon.Ended)+" the end"), b.waitForEvent())
	case droppedMsg:
		log.Warnf("dropped %s: %v", msg.segment, msg.err)
		text := fmt.Sprintf("%s skipped %s %s", icon.Get(icon.Warn), msg.segment.Type, filepath.Base(msg.segment.Path))
		cmds = append(cmds, ui.Notify(text), b.waitForEvent())
	case surfaceMsg:
		cmds = append(cmds, b.waitForEvent())
	case manifestChangedMsg:
		cmds = append(cmds, b.reload(), b.waitForEvent())
	case reloadedMsg:
		if msg.err != nil {
			cmds = append(cmds, ui.Notify(fmt.Sprintf("%s reload failed: %v", icon.Get(icon.Fail), msg.err)))
			break
		}
		b.syncState()
		cmds = append(cmds, ui.Notify(icon.Get(icon.Success)+" reloaded"))
	case progress.FrameMsg:
		model, cmd := b.progressC.Update(msg)
		b.progressC = model.(progress.Model)
		cmds = append(cmds, cmd)
	case error:
		b.raiseError(msg)
	}

	return b, tea.Batch(cmds...)
}

func (b *bubble) updateKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case bubblesKey.Matches(msg, b.keymap.forceQuit, b.keymap.quit):
		return b.quit()
	case b.state == errorState:
		return nil
	case bubblesKey.Matches(msg, b.keymap.showHelp):
		b.helpC.ShowAll = !b.helpC.ShowAll
		return nil
	}

	var err error
	switch {
	case bubblesKey.Matches(msg, b.keymap.playPause):
		err = b.engine.Toggle()
	case bubblesKey.Matches(msg, b.keymap.seekBack):
		err = b.engine.SeekBy(-constant.SeekStepMs)
	case bubblesKey.Matches(msg, b.keymap.seekForward):
		err = b.engine.SeekBy(constant.SeekStepMs)
	case bubblesKey.Matches(msg, b.keymap.prevFrame):
		err = b.engine.SeekToFrameBoundary(engine.Backward)
	case bubblesKey.Matches(msg, b.keymap.nextFrame):
		err = b.engine.SeekToFrameBoundary(engine.Forward)
	case bubblesKey.Matches(msg, b.keymap.restart):
		err = b.engine.SeekTo(0)
	case bubblesKey.Matches(msg, b.keymap.suspend):
		if err = b.engine.Suspend(); err == nil {
			b.syncState()
			return tea.Suspend
		}
	default:
		return nil
	}

	if err != nil {
		b.raiseError(err)
		return nil
	}
	b.syncState()
	return nil
}
