package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/storyplay/storyplay/filesystem"
	"github.com/storyplay/storyplay/log"
	"github.com/storyplay/storyplay/narrative"
	"github.com/storyplay/storyplay/player"
	"github.com/storyplay/storyplay/pool"
	"github.com/storyplay/storyplay/presenter"
	"github.com/storyplay/storyplay/timeline"
	"github.com/storyplay/storyplay/util"
	"github.com/storyplay/storyplay/window"
)

// session is one loaded narrative. It is only touched by the loop goroutine.
type session struct {
	e   *Engine
	id  string
	log *logrus.Entry

	narrativeID  string
	startFrameID string

	tl   *timeline.Timeline
	win  *window.Window
	pool *pool.Pool
	pres *presenter.Presenter

	state  State
	pos    int64
	ticker Ticker

	seeking bool
	// dirty is set when an asynchronous completion landed.
	dirty bool
	// jumped marks a discontinuity the presenter must not crossfade over.
	jumped bool
	// pendingSeek makes the next audio start seek decoders to the position.
	pendingSeek bool
	// gatePending is set while audio waits for a slot to finish preparing.
	gatePending bool

	resolved map[timeline.Key]int64
}

func (e *Engine) newSession(narrativeID, startFrameID string, tl *timeline.Timeline) *session {
	id := uuid.NewString()
	s := &session{
		e:            e,
		id:           id,
		log:          log.WithSession(id).WithField("narrative", narrativeID),
		narrativeID:  narrativeID,
		startFrameID: startFrameID,
		tl:           tl,
		win:          window.New(e.cfg.PreloadHorizonMs),
		state:        Paused,
		pos:          tl.StartMs(),
		resolved:     make(map[timeline.Key]int64),
	}

	post := func(fn func()) bool {
		return e.post(func() {
			fn()
			s.dirty = true
		})
	}

	s.pool = pool.New(pool.Options{
		Slots:      e.cfg.AudioSlots,
		Backend:    e.host.Audio,
		Post:       post,
		Retries:    e.cfg.PrepareRetries,
		RetryDelay: e.cfg.PrepareRetryDelay,
		OnResolved: s.onResolved,
		OnDropped:  s.drop,
		Log:        s.log,
	})
	s.pres = presenter.New(presenter.Options{
		Decoder:      e.host.Images,
		Surface:      e.host.Surface,
		Size:         e.cfg.ImageSize,
		Post:         post,
		Workers:      e.cfg.DecodeWorkers,
		UpgradeDelay: e.cfg.UpgradeDelay,
		OnDropped:    s.drop,
		Log:          s.log,
	})

	s.log.Infof("session started: %s over %s",
		util.Quantify(tl.Len(), "segment", "segments"),
		util.FormatMillis(tl.TotalMs()-tl.StartMs()),
	)
	return s
}

// teardown stops audio and cancels decodes. Workers may still be returning; see wait.
func (s *session) teardown() {
	s.stopTicker()
	s.pres.Teardown()
	s.pres.Close()
	s.pool.Close()
	s.state = Idle
	s.log.Info("session stopped")
}

func (s *session) wait() {
	s.pool.Wait()
	s.pres.Wait()
}

func (s *session) stopTicker() {
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
}

func (s *session) onResolved(seg timeline.Segment, durationMs int64) {
	s.resolved[seg.Key()] = seg.StartMs + durationMs
	if s.e.durations != nil {
		s.e.durations.Record(seg.Path, durationMs)
	}
}

// endOf prefers the decoder-reported end of a segment.
func (s *session) endOf(seg timeline.Segment) int64 {
	if end, ok := s.resolved[seg.Key()]; ok {
		return end
	}
	return seg.EndMs
}

// drop removes a segment for the rest of the session.
func (s *session) drop(seg timeline.Segment, err error) {
	if s.win.Dropped(seg) {
		return
	}
	s.win.Drop(seg)
	if seg.Type == narrative.Audio {
		s.pool.Release(seg)
	}
	s.log.Warnf("media dropped: %s: %v", seg, err)
	s.e.emitDropped(seg, err)
}

func available(seg timeline.Segment) bool {
	ok, err := filesystem.NonEmpty(seg.Path)
	return err == nil && ok
}

// refresh runs the window and drives the pool and presenter. Unless forced, it does nothing when
// the window reports no change, so steady playback costs almost nothing per tick.
func (s *session) refresh(force bool) {
	force = force || s.dirty || s.jumped || s.gatePending
	s.dirty = false

	res := s.win.Refresh(s.tl, s.pos, s.endOf)
	for _, seg := range res.Entered {
		if !available(seg) {
			s.drop(seg, fmt.Errorf("%w: %s", player.ErrMediaUnavailable, seg.Path))
		}
	}

	if !res.Changed && !force {
		return
	}

	kept := func(seg timeline.Segment, _ int) bool {
		return !s.win.Dropped(seg)
	}
	active := lo.Filter(res.Active, kept)
	upcoming := lo.Filter(res.Upcoming, kept)

	for _, seg := range res.Expired {
		if seg.Type == narrative.Audio {
			s.pool.Release(seg)
		}
	}
	s.pool.Evict(s.pos)

	// rejected segments are offered again on every refresh while they stay in the window
	for _, seg := range append(append([]timeline.Segment(nil), active...), upcoming...) {
		if seg.Type != narrative.Audio || s.pool.IsBound(seg) {
			continue
		}
		if _, err := s.pool.Admit(seg); err != nil {
			if errors.Is(err, pool.ErrExhausted) {
				s.log.Debugf("no slot for %s", seg)
			} else {
				s.log.Warnf("admit %s: %v", seg, err)
			}
		}
	}

	s.gate()

	s.pres.Update(presenter.Frame{
		Active:   active,
		Upcoming: upcoming,
		AudioActive: lo.ContainsBy(active, func(seg timeline.Segment) bool {
			return seg.Type == narrative.Audio
		}),
		KeepPrevious: s.win.DroppedActive(s.pos, narrative.Image),
		Jumped:       s.jumped,
	})
	s.jumped = false
}

// gate starts audio only once every slot that should be audible is prepared.
func (s *session) gate() {
	if s.state != Playing {
		s.gatePending = false
		return
	}

	if s.pool.AllReadyForInstant(s.pos) {
		s.pool.StartOrSeekAll(s.pos, s.pendingSeek)
		s.pendingSeek = false
		s.gatePending = false
		return
	}

	if !s.gatePending {
		s.log.Debugf("holding audio at %s until every slot is prepared", util.FormatMillis(s.pos))
	}
	s.pool.Hold()
	s.gatePending = true
}

// advance is one clock tick.
func (s *session) advance() {
	if s.state != Playing || s.seeking {
		return
	}

	total := s.tl.TotalMs()
	s.pos += util.Min(s.e.cfg.TickMs, total-s.pos)
	s.refresh(false)
	s.e.emitPosition(s.pos)

	if s.pos >= total {
		s.pause()
		s.log.Info("reached the end")
		s.e.emitEnded()
	}
}

func (s *session) play() {
	if s.pos >= s.tl.TotalMs() {
		s.restartAt(s.tl.StartMs())
	}
	if s.state == Playing {
		return
	}

	s.state = Playing
	s.ticker = s.e.host.Clock.NewTicker(time.Duration(s.e.cfg.TickMs) * time.Millisecond)
	s.refresh(true)
}

func (s *session) pause() {
	if s.state != Playing {
		return
	}

	s.state = Paused
	s.stopTicker()
	s.pool.PauseAll()
	s.gatePending = false
}

func (s *session) restartAt(ms int64) {
	if ms < s.pos {
		s.win.Rewind()
	}
	s.pos = ms
	s.pres.CancelPending()
	s.jumped = true
	s.pendingSeek = true
}

func (s *session) seekTo(target int64) {
	s.seeking = true
	defer func() {
		s.seeking = false
	}()

	target = util.Clamp(target, s.tl.StartMs(), s.tl.TotalMs())
	s.restartAt(target)

	// seeking to the end pauses without counting as reaching it
	if target >= s.tl.TotalMs() {
		s.pause()
	}

	s.refresh(true)
	s.e.emitPosition(s.pos)
}

func (s *session) boundary(dir Direction) int64 {
	switch dir {
	case Backward:
		if ms, ok := s.tl.BoundaryBefore(s.pos); ok {
			return ms
		}
		return s.tl.StartMs()
	default:
		if ms, ok := s.tl.BoundaryAfter(s.pos); ok {
			return ms
		}
		return s.tl.TotalMs()
	}
}

// suspend pauses and gives every decoder back. The timeline and position survive.
func (s *session) suspend() {
	s.pause()
	s.pool.ReleaseAll()
	s.pres.CancelPending()
	s.jumped = true
	s.pendingSeek = true
}

func (s *session) snapshot() Snapshot {
	return Snapshot{
		NarrativeID:  s.narrativeID,
		StartFrameID: s.startFrameID,
		PositionMs:   s.pos,
	}
}

func (s *session) currentFrameID() string {
	frame, ok := s.tl.FrameAt(s.pos)
	if !ok {
		return ""
	}
	return frame.FrameID
}
