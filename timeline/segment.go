// Package timeline flattens a frame sequence into time-placed media segments.
package timeline

import (
	"fmt"

	"github.com/storyplay/storyplay/narrative"
	"github.com/storyplay/storyplay/util"
)

// Segment is one contiguous placement of a media item on the timeline.
type Segment struct {
	Type    narrative.MediaType
	Path    string
	StartMs int64
	EndMs   int64

	// SourceFrameID is the frame the item was introduced in.
	SourceFrameID string
	ItemID        string

	// Estimated marks audio whose end is a guess until the decoder reports a duration.
	Estimated bool
}

// Key identifies a segment. Two segments with the same path and start are the same segment.
type Key struct {
	Path    string
	StartMs int64
}

func (s Segment) Key() Key {
	return Key{Path: s.Path, StartMs: s.StartMs}
}

// Contains reports whether ms falls inside [StartMs, EndMs).
func (s Segment) Contains(ms int64) bool {
	return s.StartMs <= ms && ms < s.EndMs
}

func (s Segment) String() string {
	return fmt.Sprintf("%s %s [%s, %s)", s.Type, util.FileStem(s.Path), util.FormatMillis(s.StartMs), util.FormatMillis(s.EndMs))
}

// FrameStart records where a frame begins and ends.
type FrameStart struct {
	FrameID string
	StartMs int64
	EndMs   int64
}
