package engine

import (
	"context"
	"fmt"

	"github.com/storyplay/storyplay/pool"
	"github.com/storyplay/storyplay/timeline"
	"github.com/storyplay/storyplay/util"
)

func (e *Engine) lookupDuration(path string) int64 {
	if e.durations == nil {
		return 0
	}
	return e.durations.Lookup(path)
}

func (e *Engine) build(ctx context.Context, narrativeID string) (*timeline.Timeline, error) {
	frames, err := e.host.Store.FrameSequence(ctx, narrativeID)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", narrativeID, err)
	}
	return timeline.Build(frames, timeline.Options{
		MinFrameMs: e.cfg.MinFrameMs,
		Durations:  e.lookupDuration,
	})
}

// install replaces the current session. Runs on the loop goroutine.
func (e *Engine) install(narrativeID, startFrameID string, tl *timeline.Timeline, startMs int64) *session {
	if e.session != nil {
		e.retire()
	}

	s := e.newSession(narrativeID, startFrameID, tl)
	e.session = s
	s.pos = startMs
	s.jumped = true
	s.refresh(true)
	e.emitPosition(s.pos)
	return s
}

// Load builds the timeline of a narrative and presents startFrameID, or the first frame when it
// is empty. Playback stays paused. A *timeline.BuildError leaves the engine idle with nothing shown.
func (e *Engine) Load(ctx context.Context, narrativeID, startFrameID string) error {
	tl, buildErr := e.build(ctx, narrativeID)

	var loadErr error
	err := e.do(func() {
		if buildErr != nil {
			if e.session != nil {
				e.retire()
			}
			loadErr = buildErr
			return
		}

		start := tl.StartMs()
		if startFrameID != "" {
			ms, ok := tl.FrameStartOf(startFrameID)
			if !ok {
				loadErr = fmt.Errorf("%w %q in %s", ErrUnknownFrame, startFrameID, narrativeID)
				return
			}
			start = ms
		}

		e.install(narrativeID, startFrameID, tl, start)
	})
	if err != nil {
		return err
	}
	return loadErr
}

// Reload rebuilds the timeline of the loaded narrative, keeping the position and play state.
// Hosts call it when the narrative changed on disk.
func (e *Engine) Reload(ctx context.Context) error {
	var (
		snap    Snapshot
		playing bool
		loaded  bool
	)
	if err := e.do(func() {
		if s := e.session; s != nil {
			snap, playing, loaded = s.snapshot(), s.state == Playing, true
		}
	}); err != nil {
		return err
	}
	if !loaded {
		return ErrNotLoaded
	}

	tl, buildErr := e.build(ctx, snap.NarrativeID)

	var loadErr error
	err := e.do(func() {
		if buildErr != nil {
			if e.session != nil {
				e.retire()
			}
			loadErr = buildErr
			return
		}

		pos := util.Clamp(snap.PositionMs, tl.StartMs(), tl.TotalMs())
		s := e.install(snap.NarrativeID, snap.StartFrameID, tl, pos)
		if playing {
			s.play()
		}
	})
	if err != nil {
		return err
	}
	return loadErr
}

// Restore loads a snapshot and seeks to its position, paused.
func (e *Engine) Restore(ctx context.Context, snap Snapshot) error {
	if err := e.Load(ctx, snap.NarrativeID, snap.StartFrameID); err != nil {
		return err
	}
	return e.SeekTo(snap.PositionMs)
}

// withSession runs fn on the loop goroutine against the loaded session.
func (e *Engine) withSession(fn func(s *session)) error {
	var loaded bool
	err := e.do(func() {
		if e.session == nil {
			return
		}
		loaded = true
		fn(e.session)
	})
	if err != nil {
		return err
	}
	if !loaded {
		return ErrNotLoaded
	}
	return nil
}

// Play starts or resumes playback. At the end of the narrative it starts over.
func (e *Engine) Play() error {
	return e.withSession((*session).play)
}

// Pause pauses playback. Decoders stay loaded.
func (e *Engine) Pause() error {
	return e.withSession((*session).pause)
}

// Toggle switches between playing and paused.
func (e *Engine) Toggle() error {
	return e.withSession(func(s *session) {
		if s.state == Playing {
			s.pause()
		} else {
			s.play()
		}
	})
}

// SeekTo moves to ms, clamped to the narrative. Seeking to the end pauses.
func (e *Engine) SeekTo(ms int64) error {
	return e.withSession(func(s *session) {
		s.seekTo(ms)
	})
}

// SeekBy moves relative to the current position.
func (e *Engine) SeekBy(deltaMs int64) error {
	return e.withSession(func(s *session) {
		s.seekTo(s.pos + deltaMs)
	})
}

// SeekToFrameBoundary moves to the closest frame start strictly before or after the position.
// Without one it moves to the start or the end.
func (e *Engine) SeekToFrameBoundary(dir Direction) error {
	return e.withSession(func(s *session) {
		s.seekTo(s.boundary(dir))
	})
}

// Suspend pauses and releases every decoder, keeping the position. Play resumes.
func (e *Engine) Suspend() error {
	return e.withSession((*session).suspend)
}

// CurrentFrameID returns the frame shown at the position.
func (e *Engine) CurrentFrameID() string {
	var id string
	_ = e.withSession(func(s *session) {
		id = s.currentFrameID()
	})
	return id
}

// Position returns the play position in milliseconds.
func (e *Engine) Position() int64 {
	var pos int64
	_ = e.withSession(func(s *session) {
		pos = s.pos
	})
	return pos
}

// Duration returns where the narrative ends.
func (e *Engine) Duration() int64 {
	var total int64
	_ = e.withSession(func(s *session) {
		total = s.tl.TotalMs()
	})
	return total
}

// State returns the playback state.
func (e *Engine) State() State {
	state := Idle
	_ = e.withSession(func(s *session) {
		state = s.state
	})
	return state
}

// Timeline returns the loaded timeline, or nil.
func (e *Engine) Timeline() *timeline.Timeline {
	var tl *timeline.Timeline
	_ = e.withSession(func(s *session) {
		tl = s.tl
	})
	return tl
}

// Slots returns the audio slots.
func (e *Engine) Slots() []pool.SlotState {
	var slots []pool.SlotState
	_ = e.withSession(func(s *session) {
		slots = s.pool.Slots()
	})
	return slots
}

// Snapshot returns what Restore needs to rebuild the session.
func (e *Engine) Snapshot() (Snapshot, error) {
	var snap Snapshot
	err := e.withSession(func(s *session) {
		snap = s.snapshot()
	})
	return snap, err
}
