package timeline

import (
	"sort"

	"github.com/samber/lo"
)

// Timeline is the immutable result of Build. Accessors return copies.
type Timeline struct {
	segments []Segment
	frames   []FrameStart
	startMs  int64
	totalMs  int64
}

// Len returns the number of segments.
func (t *Timeline) Len() int {
	return len(t.segments)
}

// At returns the i-th segment in start order.
func (t *Timeline) At(i int) Segment {
	return t.segments[i]
}

// Segments returns every segment sorted by start, then media priority.
func (t *Timeline) Segments() []Segment {
	return append([]Segment(nil), t.segments...)
}

// Frames returns the frame index in sequence order.
func (t *Timeline) Frames() []FrameStart {
	return append([]FrameStart(nil), t.frames...)
}

// StartMs is the entry offset the timeline was built with.
func (t *Timeline) StartMs() int64 {
	return t.startMs
}

// TotalMs is the end of the last frame.
func (t *Timeline) TotalMs() int64 {
	return t.totalMs
}

// Empty reports whether no frame contributed any media.
func (t *Timeline) Empty() bool {
	return len(t.frames) == 0
}

// FrameAt returns the frame shown at ms. Positions past the end map to the last frame.
func (t *Timeline) FrameAt(ms int64) (FrameStart, bool) {
	i := sort.Search(len(t.frames), func(i int) bool {
		return t.frames[i].StartMs > ms
	})
	if i == 0 {
		return FrameStart{}, false
	}
	return t.frames[i-1], true
}

// FrameStartOf returns the start of the frame with the given id.
func (t *Timeline) FrameStartOf(frameID string) (int64, bool) {
	frame, ok := lo.Find(t.frames, func(f FrameStart) bool {
		return f.FrameID == frameID
	})
	return frame.StartMs, ok
}

// BoundaryBefore returns the closest frame start strictly before ms.
func (t *Timeline) BoundaryBefore(ms int64) (int64, bool) {
	i := sort.Search(len(t.frames), func(i int) bool {
		return t.frames[i].StartMs >= ms
	})
	if i == 0 {
		return 0, false
	}
	return t.frames[i-1].StartMs, true
}

// BoundaryAfter returns the closest frame start strictly after ms.
func (t *Timeline) BoundaryAfter(ms int64) (int64, bool) {
	i := sort.Search(len(t.frames), func(i int) bool {
		return t.frames[i].StartMs > ms
	})
	if i == len(t.frames) {
		return 0, false
	}
	return t.frames[i].StartMs, true
}

// ActiveAt returns the segments containing ms.
func (t *Timeline) ActiveAt(ms int64) []Segment {
	return lo.Filter(t.segments, func(s Segment, _ int) bool {
		return s.Contains(ms)
	})
}
