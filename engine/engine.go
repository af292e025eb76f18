// Package engine plays a narrative in real time.
//
// An Engine owns one goroutine that performs every state change: public calls, clock ticks and the
// completions of asynchronous audio preparation and image decodes are all funnelled onto it, so
// session state needs no locks. Host callbacks run on a separate dispatcher goroutine, which lets
// them call back into the engine.
package engine

import (
	"sync"
	"time"

	"github.com/storyplay/storyplay/narrative"
	"github.com/storyplay/storyplay/player"
	"github.com/storyplay/storyplay/presenter"
	"github.com/storyplay/storyplay/timeline"
)

// Host bundles the collaborators an engine drives.
type Host struct {
	Store   narrative.Store
	Audio   player.AudioBackend
	Images  player.ImageDecoder
	Surface presenter.Surface
	Clock   Clock
}

// Option configures an Engine.
type Option func(*Engine)

// WithOnEnded is called once each time playback reaches the end of the narrative.
func WithOnEnded(fn func()) Option {
	return func(e *Engine) {
		e.onEnded = fn
	}
}

// WithOnPositionChanged is called after ticks and seeks. Updates may be skipped when the host falls behind.
func WithOnPositionChanged(fn func(ms int64)) Option {
	return func(e *Engine) {
		e.onPosition = fn
	}
}

// WithOnMediaDropped is called when a segment is dropped for the rest of the session.
func WithOnMediaDropped(fn func(seg timeline.Segment, err error)) Option {
	return func(e *Engine) {
		e.onDropped = fn
	}
}

// WithDurations supplies remembered audio durations to the timeline builder and
// records the ones decoders report.
func WithDurations(cache DurationCache) Option {
	return func(e *Engine) {
		e.durations = cache
	}
}

// Engine is safe for concurrent use.
type Engine struct {
	host Host
	cfg  Config

	onEnded    func()
	onPosition func(ms int64)
	onDropped  func(seg timeline.Segment, err error)
	durations  DurationCache

	ops       chan func()
	closing   chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	events     chan func()
	endedMu    sync.Mutex
	endedCount int
	endedWake  chan struct{}
	eventsDone chan struct{}

	// owned by the loop goroutine
	session *session
	retired []*session
}

// New starts an idle engine.
func New(host Host, cfg Config, opts ...Option) *Engine {
	if host.Clock == nil {
		host.Clock = SystemClock{}
	}

	e := &Engine{
		host:       host,
		cfg:        cfg.normalize(),
		ops:        make(chan func(), 64),
		closing:    make(chan struct{}),
		done:       make(chan struct{}),
		events:     make(chan func(), 64),
		endedWake:  make(chan struct{}, 1),
		eventsDone: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}

	go e.dispatch()
	go e.loop()
	return e
}

func (e *Engine) loop() {
	defer close(e.done)

	for {
		var tick <-chan time.Time
		if s := e.session; s != nil && s.ticker != nil {
			tick = s.ticker.C()
		}

		select {
		case fn := <-e.ops:
			fn()
		case <-tick:
			e.session.advance()
		case <-e.closing:
			e.shutdown()
			return
		}

		if s := e.session; s != nil && s.dirty {
			s.refresh(false)
		}
	}
}

// shutdown tears the session down and keeps serving posted completions until every worker returned,
// so no prepared decoder is leaked.
func (e *Engine) shutdown() {
	if e.session != nil {
		e.retire()
	}

	waited := make(chan struct{})
	retired := e.retired
	go func() {
		for _, s := range retired {
			s.wait()
		}
		close(waited)
	}()

	for {
		select {
		case fn := <-e.ops:
			fn()
		case <-waited:
			for {
				select {
				case fn := <-e.ops:
					fn()
				default:
					close(e.events)
					return
				}
			}
		}
	}
}

// retire stops the current session and keeps it around until its workers are waited for.
func (e *Engine) retire() {
	e.session.teardown()
	e.retired = append(e.retired, e.session)
	e.session = nil
}

// do runs fn on the loop goroutine and waits for it. Calls still queued when Close begins
// are skipped, so nothing is installed behind the teardown.
func (e *Engine) do(fn func()) error {
	var (
		finished = make(chan struct{})
		skipped  bool
	)
	op := func() {
		defer close(finished)
		select {
		case <-e.closing:
			skipped = true
			return
		default:
		}
		fn()
	}

	select {
	case <-e.closing:
		return ErrClosed
	default:
	}

	select {
	case e.ops <- op:
	case <-e.closing:
		return ErrClosed
	}

	select {
	case <-finished:
	case <-e.done:
		select {
		case <-finished:
		default:
			return ErrClosed
		}
	}
	if skipped {
		return ErrClosed
	}
	return nil
}

// post queues fn from a worker goroutine. It returns false once the engine is closing.
func (e *Engine) post(fn func()) bool {
	select {
	case e.ops <- fn:
		return true
	case <-e.closing:
		return false
	}
}

// Close stops playback, releases every decoder and waits for background work.
// It must not be called from an engine callback.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		close(e.closing)
	})
	<-e.done
	<-e.eventsDone
	return nil
}
