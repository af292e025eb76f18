// Package pool keeps a fixed number of audio decoders primed for the segments about to play.
//
// Every method runs on the goroutine that owns the playback session. Decoder preparation runs on
// worker goroutines whose results come back through Options.Post.
package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/samber/mo"
	"github.com/sirupsen/logrus"
	"github.com/storyplay/storyplay/log"
	"github.com/storyplay/storyplay/narrative"
	"github.com/storyplay/storyplay/player"
	"github.com/storyplay/storyplay/timeline"
)

// ErrExhausted is returned by Admit when every slot is bound. It is a scheduling
// degradation rather than a failure: the segment is offered again as slots free up.
var ErrExhausted = errors.New("no free audio slot")

// Options configure a Pool.
type Options struct {
	// Slots is the fixed number of decoders.
	Slots int

	Backend player.AudioBackend

	// Post runs fn on the owner goroutine. It returns false once the owner has stopped.
	Post func(fn func()) bool

	// Retries is how many times preparation is attempted before the segment is dropped.
	Retries    int
	RetryDelay time.Duration

	// OnResolved reports the decoder's duration for a segment.
	OnResolved func(seg timeline.Segment, durationMs int64)

	// OnDropped reports a segment whose decoder could not be prepared.
	OnDropped func(seg timeline.Segment, err error)

	Log *logrus.Entry
}

// SlotHandle is the index of a slot.
type SlotHandle int

type slot struct {
	segment       mo.Option[timeline.Segment]
	handle        player.AudioHandle
	prepared      bool
	playing       bool
	startedOnce   bool
	held          bool
	rewound       bool
	resolvedEndMs int64

	// generation changes whenever the slot is rebound, so late preparation results can be recognised.
	generation uint64
	cancel     context.CancelFunc
}

func (s *slot) endMs() int64 {
	if s.resolvedEndMs > 0 {
		return s.resolvedEndMs
	}
	return s.segment.MustGet().EndMs
}

// SlotState is a read-only view of one slot.
type SlotState struct {
	Index         int
	Segment       mo.Option[timeline.Segment]
	Prepared      bool
	Playing       bool
	StartedOnce   bool
	ResolvedEndMs int64
}

// Pool is a fixed array of audio slots; the index of a slot is its identity.
type Pool struct {
	opts  Options
	slots []slot

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New allocates every slot up front.
func New(opts Options) *Pool {
	if opts.Slots <= 0 {
		opts.Slots = 1
	}
	if opts.Retries <= 0 {
		opts.Retries = 1
	}
	if opts.Post == nil {
		opts.Post = func(fn func()) bool {
			fn()
			return true
		}
	}
	if opts.Log == nil {
		opts.Log = log.WithSession("")
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		opts:   opts,
		slots:  make([]slot, opts.Slots),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Capacity returns the number of slots.
func (p *Pool) Capacity() int {
	return len(p.slots)
}

// Bound returns how many slots hold a segment.
func (p *Pool) Bound() int {
	n := 0
	for i := range p.slots {
		if p.slots[i].segment.IsPresent() {
			n++
		}
	}
	return n
}

func (p *Pool) find(seg timeline.Segment) (int, bool) {
	for i := range p.slots {
		if bound, ok := p.slots[i].segment.Get(); ok && bound.Key() == seg.Key() {
			return i, true
		}
	}
	return 0, false
}

// IsBound reports whether seg holds a slot.
func (p *Pool) IsBound(seg timeline.Segment) bool {
	_, ok := p.find(seg)
	return ok
}

// Admit binds seg to a free slot and starts preparing its decoder.
// A segment that is already bound keeps its slot.
func (p *Pool) Admit(seg timeline.Segment) (SlotHandle, error) {
	if seg.Type != narrative.Audio {
		return 0, fmt.Errorf("cannot admit %s segment", seg.Type)
	}
	if i, ok := p.find(seg); ok {
		return SlotHandle(i), nil
	}

	for i := range p.slots {
		s := &p.slots[i]
		if s.segment.IsPresent() {
			continue
		}

		ctx, cancel := context.WithCancel(p.ctx)
		s.generation++
		s.segment = mo.Some(seg)
		s.cancel = cancel

		p.wg.Add(1)
		go p.prepare(ctx, i, s.generation, seg)

		p.opts.Log.WithField("slot", i).Debugf("admitted %s", seg)
		return SlotHandle(i), nil
	}

	return 0, ErrExhausted
}

// prepare runs on a worker goroutine.
func (p *Pool) prepare(ctx context.Context, index int, generation uint64, seg timeline.Segment) {
	defer p.wg.Done()

	var (
		handle     player.AudioHandle
		durationMs int64
		err        error
	)

	for attempt := 1; attempt <= p.opts.Retries; attempt++ {
		handle, durationMs, err = p.opts.Backend.PrepareAudio(ctx, seg.Path)
		if err == nil || errors.Is(err, player.ErrMediaUnavailable) || ctx.Err() != nil {
			break
		}

		p.opts.Log.Warnf("prepare %s (attempt %d/%d): %v", seg.Path, attempt, p.opts.Retries, err)
		if attempt == p.opts.Retries {
			break
		}

		select {
		case <-ctx.Done():
		case <-time.After(p.opts.RetryDelay):
		}
	}

	if ctx.Err() != nil {
		p.releaseHandle(handle)
		return
	}

	posted := p.opts.Post(func() {
		p.onPrepared(index, generation, seg, handle, durationMs, err)
	})
	if !posted {
		p.releaseHandle(handle)
	}
}

func (p *Pool) releaseHandle(h player.AudioHandle) {
	if h == nil {
		return
	}
	if err := p.opts.Backend.ReleaseAudio(h); err != nil {
		p.opts.Log.Warnf("release %s: %v", h.Path(), err)
	}
}

func (p *Pool) onPrepared(index int, generation uint64, seg timeline.Segment, h player.AudioHandle, durationMs int64, err error) {
	s := &p.slots[index]
	if s.generation != generation || !s.segment.IsPresent() {
		p.releaseHandle(h)
		return
	}

	if err != nil {
		p.reset(index)
		p.opts.Log.WithField("slot", index).Warnf("dropping %s: %v", seg, err)
		if p.opts.OnDropped != nil {
			p.opts.OnDropped(seg, err)
		}
		return
	}

	s.handle = h
	s.prepared = true
	if durationMs > 0 {
		s.resolvedEndMs = seg.StartMs + durationMs
		if p.opts.OnResolved != nil {
			p.opts.OnResolved(seg, durationMs)
		}
	}
	p.opts.Log.WithField("slot", index).Debugf("prepared %s", seg)
}

// reset frees a slot, cancelling any preparation in flight.
func (p *Pool) reset(index int) {
	p.releaseHandle(p.detach(index))
}

// detach frees a slot and hands its decoder to the caller.
func (p *Pool) detach(index int) player.AudioHandle {
	s := &p.slots[index]
	if s.cancel != nil {
		s.cancel()
	}
	h := s.handle

	*s = slot{generation: s.generation + 1}
	return h
}

// releaseLater releases h on a worker. Wait covers it.
func (p *Pool) releaseLater(h player.AudioHandle) {
	if h == nil {
		return
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.releaseHandle(h)
	}()
}

// Release frees the slot bound to seg, if any.
func (p *Pool) Release(seg timeline.Segment) {
	if i, ok := p.find(seg); ok {
		p.reset(i)
	}
}

// ReleaseAll frees every slot.
func (p *Pool) ReleaseAll() {
	for i := range p.slots {
		if p.slots[i].segment.IsPresent() {
			p.reset(i)
		}
	}
}

// PauseAll pauses every playing slot, keeping decoders loaded.
func (p *Pool) PauseAll() {
	for i := range p.slots {
		p.pause(i)
	}
}

func (p *Pool) pause(index int) bool {
	s := &p.slots[index]
	if !s.playing {
		return false
	}
	if err := p.opts.Backend.PauseAudio(s.handle); err != nil {
		p.opts.Log.Warnf("pause %s: %v", s.handle.Path(), err)
	}
	s.playing = false
	return true
}

// Evict frees every slot whose segment ended at or before posMs and returns those segments.
// The decoders are paused at once and released in the background, since shutting one down
// can take a while.
func (p *Pool) Evict(posMs int64) []timeline.Segment {
	var evicted []timeline.Segment
	for i := range p.slots {
		s := &p.slots[i]
		seg, ok := s.segment.Get()
		if !ok || s.endMs() > posMs {
			continue
		}
		evicted = append(evicted, seg)
		p.pause(i)
		p.releaseLater(p.detach(i))
	}
	return evicted
}

// ResolvedEnd returns the decoder-reported end of a bound segment.
func (p *Pool) ResolvedEnd(seg timeline.Segment) (int64, bool) {
	i, ok := p.find(seg)
	if !ok || p.slots[i].resolvedEndMs == 0 {
		return 0, false
	}
	return p.slots[i].resolvedEndMs, true
}

// AllReadyForInstant reports whether every slot whose segment has started by t is prepared.
// Audio must not start while this is false.
func (p *Pool) AllReadyForInstant(t int64) bool {
	for i := range p.slots {
		s := &p.slots[i]
		seg, ok := s.segment.Get()
		if ok && seg.StartMs <= t && !s.prepared {
			return false
		}
	}
	return true
}

// Hold pauses playing slots while the gate is closed. Held slots are seeked when they resume,
// since the clock kept moving.
func (p *Pool) Hold() {
	for i := range p.slots {
		if p.pause(i) {
			p.slots[i].held = true
		}
	}
}

// StartOrSeekAll plays every prepared slot whose segment contains t and pauses the rest.
// Slots are seeked to t on an explicit seek, when they start late for the first time,
// when they resume from a hold, and when a seek moved back before a start they had played past.
func (p *Pool) StartOrSeekAll(t int64, seek bool) {
	for i := range p.slots {
		s := &p.slots[i]
		seg, ok := s.segment.Get()
		if !ok || !s.prepared {
			continue
		}

		if seg.StartMs > t || t >= s.endMs() {
			p.pause(i)
			if seek && s.startedOnce && seg.StartMs > t {
				s.rewound = true
			}
			continue
		}

		if seek || s.held || s.rewound || (!s.startedOnce && t > seg.StartMs) {
			if err := p.opts.Backend.SeekAudio(s.handle, t-seg.StartMs); err != nil {
				p.opts.Log.Warnf("seek %s: %v", seg.Path, err)
			}
		}

		if !s.playing {
			if err := p.opts.Backend.StartAudio(s.handle); err != nil {
				p.opts.Log.Warnf("start %s: %v", seg.Path, err)
				continue
			}
			s.playing = true
			s.startedOnce = true
		}
		s.held = false
		s.rewound = false
	}
}

// Slots returns a snapshot of every slot.
func (p *Pool) Slots() []SlotState {
	states := make([]SlotState, len(p.slots))
	for i := range p.slots {
		s := &p.slots[i]
		states[i] = SlotState{
			Index:         i,
			Segment:       s.segment,
			Prepared:      s.prepared,
			Playing:       s.playing,
			StartedOnce:   s.startedOnce,
			ResolvedEndMs: s.resolvedEndMs,
		}
	}
	return states
}

// Close frees every slot and stops accepting preparation results.
// Call Wait afterwards, from a goroutine that does not serve Post.
func (p *Pool) Close() {
	p.cancel()
	p.ReleaseAll()
}

// Wait blocks until every preparation worker has returned.
func (p *Pool) Wait() {
	p.wg.Wait()
}
