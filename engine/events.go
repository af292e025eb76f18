package engine

import (
	"github.com/storyplay/storyplay/log"
	"github.com/storyplay/storyplay/timeline"
)

// dispatch delivers host callbacks off the loop goroutine.
func (e *Engine) dispatch() {
	defer close(e.eventsDone)

	for {
		select {
		case fn, ok := <-e.events:
			if !ok {
				e.deliverEnded()
				return
			}
			fn()
		case <-e.endedWake:
			e.deliverEnded()
		}
	}
}

func (e *Engine) deliverEnded() {
	e.endedMu.Lock()
	n := e.endedCount
	e.endedCount = 0
	e.endedMu.Unlock()

	for i := 0; i < n; i++ {
		if e.onEnded != nil {
			e.onEnded()
		}
	}
}

// emit queues a callback without blocking the loop; it is skipped when the host falls behind.
func (e *Engine) emit(fn func()) {
	select {
	case e.events <- fn:
	default:
		log.Debugf("host callback skipped, dispatcher is behind")
	}
}

func (e *Engine) emitPosition(ms int64) {
	if e.onPosition == nil {
		return
	}
	e.emit(func() { e.onPosition(ms) })
}

func (e *Engine) emitDropped(seg timeline.Segment, err error) {
	if e.onDropped == nil {
		return
	}
	e.emit(func() { e.onDropped(seg, err) })
}

// emitEnded never drops: ends are counted and the dispatcher is woken.
func (e *Engine) emitEnded() {
	e.endedMu.Lock()
	e.endedCount++
	e.endedMu.Unlock()

	select {
	case e.endedWake <- struct{}{}:
	default:
	}
}
