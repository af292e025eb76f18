// Package tui plays a narrative in the terminal.
package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/mo"
	"github.com/spf13/viper"
	"github.com/storyplay/storyplay/engine"
	"github.com/storyplay/storyplay/history"
	"github.com/storyplay/storyplay/key"
	"github.com/storyplay/storyplay/log"
	"github.com/storyplay/storyplay/narrative"
	"github.com/storyplay/storyplay/player"
	"github.com/storyplay/storyplay/util"
)

// watchDebounce collapses the burst of writes an editor makes when saving a manifest.
const watchDebounce = 250 * time.Millisecond

// Options configure a playback run.
type Options struct {
	Store       narrative.Store
	NarrativeID string
	Title       string

	// StartFrameID is ignored when Resume is set.
	StartFrameID string
	Resume       mo.Option[engine.Snapshot]

	Audio     player.AudioBackend
	Durations engine.DurationCache

	// WatchPath is a manifest to reload the narrative from whenever it changes.
	WatchPath string
	Autoplay  bool
}

// imageSize fits images into the terminal, leaving room for the text and controls.
func imageSize() player.Size {
	w, h, err := util.TerminalSize()
	if err != nil {
		return player.Size{Width: 80, Height: 40}
	}
	x, y := paddingStyle.GetFrameSize()
	return player.Size{
		Width:  util.Max(w-x, 16),
		Height: util.Max(h-y-10, 8) * 2,
	}
}

// Run plays a narrative until the user quits and saves where they stopped.
func Run(ctx context.Context, options *Options) error {
	if options.Store == nil || options.Audio == nil {
		return errors.New("tui: a store and an audio backend are required")
	}

	surface := newSurface()
	b := newBubble(options.Title, surface)

	cfg := engine.ConfigFromViper()
	cfg.ImageSize = imageSize()

	opts := b.engineOptions()
	if options.Durations != nil {
		opts = append(opts, engine.WithDurations(options.Durations))
	}
	b.engine = engine.New(engine.Host{
		Store:   options.Store,
		Audio:   options.Audio,
		Images:  player.NewLocalDecoder(),
		Surface: surface,
	}, cfg, opts...)
	defer func() {
		if err := b.engine.Close(); err != nil {
			log.Warn(err)
		}
	}()

	var err error
	if snap, ok := options.Resume.Get(); ok {
		err = b.engine.Restore(ctx, snap)
	} else {
		err = b.engine.Load(ctx, options.NarrativeID, options.StartFrameID)
	}
	if err != nil {
		return err
	}

	if options.Autoplay {
		if err := b.engine.Play(); err != nil {
			return err
		}
	}
	b.syncState()

	watchCtx, stopWatching := context.WithCancel(ctx)
	defer stopWatching()
	if options.WatchPath != "" {
		go func() {
			err := narrative.Watch(watchCtx, options.WatchPath, watchDebounce, func() {
				b.deliver(manifestChangedMsg{})
			})
			if err != nil {
				log.Warnf("watch %s: %v", options.WatchPath, err)
			}
		}()
	}

	_, err = tea.NewProgram(b, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	b.quit()

	if viper.GetBool(key.HistorySaveOnExit) {
		if snap, snapErr := b.engine.Snapshot(); snapErr == nil {
			if saveErr := history.Save(snap, options.Title, b.engine.Duration()); saveErr != nil {
				log.Warnf("save history: %v", saveErr)
			}
		}
	}

	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
