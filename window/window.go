// Package window tracks which timeline segments are expired, active or about to start.
package window

import (
	"strings"

	"github.com/storyplay/storyplay/narrative"
	"github.com/storyplay/storyplay/timeline"
	"golang.org/x/exp/slices"
)

// Result is the outcome of one refresh.
type Result struct {
	// Expired segments left the window during this refresh.
	Expired []timeline.Segment
	// Entered segments joined the window during this refresh.
	Entered []timeline.Segment
	// Active segments contain the position.
	Active []timeline.Segment
	// Upcoming segments start within the horizon.
	Upcoming []timeline.Segment

	// Changed is false when nothing entered, left, or started. Callers skip expensive work then.
	Changed bool
}

type entry struct {
	segment timeline.Segment
	index   int
	active  bool
}

// Window is owned by a single goroutine and is not safe for concurrent use.
type Window struct {
	horizonMs int64
	resume    int
	live      map[timeline.Key]*entry
	dropped   map[timeline.Key]timeline.Segment
}

// New creates a window that looks horizonMs ahead of the position.
func New(horizonMs int64) *Window {
	return &Window{
		horizonMs: horizonMs,
		live:      make(map[timeline.Key]*entry),
		dropped:   make(map[timeline.Key]timeline.Segment),
	}
}

// HorizonMs returns the look-ahead.
func (w *Window) HorizonMs() int64 {
	return w.horizonMs
}

// ResumeIndex is the timeline index the next forward scan starts from.
func (w *Window) ResumeIndex() int {
	return w.resume
}

// Rewind restarts scanning from the first segment. Used after backward seeks,
// since segments sorted by start offer no way to find earlier ones that are still running.
func (w *Window) Rewind() {
	w.resume = 0
}

// Reset forgets everything, including dropped segments.
func (w *Window) Reset() {
	w.resume = 0
	w.live = make(map[timeline.Key]*entry)
	w.dropped = make(map[timeline.Key]timeline.Segment)
}

// Drop removes a segment for the rest of the session.
func (w *Window) Drop(s timeline.Segment) {
	w.dropped[s.Key()] = s
	delete(w.live, s.Key())
}

// Dropped reports whether the segment was dropped.
func (w *Window) Dropped(s timeline.Segment) bool {
	_, ok := w.dropped[s.Key()]
	return ok
}

// DroppedActive reports whether a dropped segment of the given type would be showing at posMs.
func (w *Window) DroppedActive(posMs int64, t narrative.MediaType) bool {
	for _, s := range w.dropped {
		if s.Type == t && s.Contains(posMs) {
			return true
		}
	}
	return false
}

// Refresh classifies segments relative to posMs. end resolves a segment's true end and may be nil.
func (w *Window) Refresh(tl *timeline.Timeline, posMs int64, end func(timeline.Segment) int64) Result {
	if end == nil {
		end = func(s timeline.Segment) int64 { return s.EndMs }
	}

	var result Result
	horizon := posMs + w.horizonMs

	for ; w.resume < tl.Len(); w.resume++ {
		s := tl.At(w.resume)
		if s.StartMs >= horizon {
			break
		}
		if _, ok := w.live[s.Key()]; ok || w.Dropped(s) {
			continue
		}
		s.EndMs = end(s)
		if s.EndMs <= posMs {
			continue
		}
		w.live[s.Key()] = &entry{segment: s, index: w.resume}
		result.Entered = append(result.Entered, s)
	}

	entries := make([]*entry, 0, len(w.live))
	for k, e := range w.live {
		e.segment.EndMs = end(e.segment)
		if e.segment.EndMs <= posMs || e.segment.StartMs >= horizon {
			delete(w.live, k)
			result.Expired = append(result.Expired, e.segment)
			continue
		}
		entries = append(entries, e)
	}

	slices.SortFunc(entries, func(a, b *entry) int {
		return a.index - b.index
	})
	slices.SortFunc(result.Expired, func(a, b timeline.Segment) int {
		switch {
		case a.StartMs != b.StartMs:
			return int(a.StartMs - b.StartMs)
		case a.Type != b.Type:
			return int(a.Type) - int(b.Type)
		default:
			return strings.Compare(a.Path, b.Path)
		}
	})

	moved := false
	for _, e := range entries {
		active := e.segment.StartMs <= posMs
		if active != e.active {
			moved = true
			e.active = active
		}
		if active {
			result.Active = append(result.Active, e.segment)
		} else {
			result.Upcoming = append(result.Upcoming, e.segment)
		}
	}

	result.Changed = moved || len(result.Entered) > 0 || len(result.Expired) > 0
	return result
}
