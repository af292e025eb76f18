package timeline

import (
	"github.com/storyplay/storyplay/constant"
	"github.com/storyplay/storyplay/narrative"
	"github.com/storyplay/storyplay/util"
	"golang.org/x/exp/slices"
)

// Options tune Build.
type Options struct {
	// EntryOffsetMs is where the first frame starts.
	EntryOffsetMs int64

	// MinFrameMs is the shortest a frame may last. Zero means constant.MinFrameMs.
	MinFrameMs int64

	// Durations supplies natural durations for items that carry none. It returns 0 when unknown.
	Durations func(path string) int64
}

// run is a spanning item and the contiguous frames that continue it.
type run struct {
	segment   int
	root      narrative.MediaItem
	natural   int64
	lastFrame int
}

type builder struct {
	opts Options

	segments []Segment
	frames   []FrameStart
	cursor   int64

	// continued holds every item id some later item continues from.
	continued map[string]bool
	// owner maps item ids to the run they belong to.
	owner map[string]*run
	seen  map[string]bool
}

// Build flattens frames into a Timeline. It has no side effects.
func Build(frames []narrative.Frame, opts Options) (*Timeline, error) {
	if opts.MinFrameMs <= 0 {
		opts.MinFrameMs = constant.MinFrameMs
	}
	if opts.Durations == nil {
		opts.Durations = func(string) int64 { return 0 }
	}

	b := &builder{
		opts:      opts,
		cursor:    opts.EntryOffsetMs,
		continued: make(map[string]bool),
		owner:     make(map[string]*run),
		seen:      make(map[string]bool),
	}

	for _, frame := range frames {
		for _, item := range frame.Media {
			if from, ok := item.ContinuesFrom.Get(); ok {
				b.continued[from] = true
			}
		}
	}

	for _, frame := range frames {
		if err := b.addFrame(frame); err != nil {
			return nil, err
		}
	}

	slices.SortStableFunc(b.segments, func(a, b Segment) int {
		if a.StartMs != b.StartMs {
			if a.StartMs < b.StartMs {
				return -1
			}
			return 1
		}
		return a.Type.Priority() - b.Type.Priority()
	})

	return &Timeline{
		segments: b.segments,
		frames:   b.frames,
		startMs:  opts.EntryOffsetMs,
		totalMs:  b.cursor,
	}, nil
}

func eligible(item narrative.MediaItem) bool {
	return item.Path != "" || item.IsContinuation()
}

func (b *builder) natural(item narrative.MediaItem) int64 {
	if item.DurationMs > 0 {
		return item.DurationMs
	}
	if item.Type == narrative.Audio && item.Path != "" {
		return b.opts.Durations(item.Path)
	}
	return 0
}

func (b *builder) addFrame(frame narrative.Frame) error {
	items := make([]narrative.MediaItem, 0, len(frame.Media))
	for _, item := range frame.Media {
		if !eligible(item) {
			continue
		}
		if item.ID != "" {
			if b.seen[item.ID] {
				return &BuildError{FrameID: frame.ID, ItemID: item.ID, Reason: reasonDuplicate}
			}
			b.seen[item.ID] = true
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil
	}

	index := len(b.frames)
	start := b.cursor
	duration := util.Max(frame.DurationHintMs, b.opts.MinFrameMs)

	// segments whose end is the end of this frame
	var tillFrameEnd []int
	// runs that close in this frame
	var closing []*run

	for _, item := range items {
		if from, ok := item.ContinuesFrom.Get(); ok {
			r, known := b.owner[from]
			switch {
			case !known:
				return &BuildError{FrameID: frame.ID, ItemID: item.ID, Reason: reasonDangling}
			case !r.root.SpanFrames:
				return &BuildError{FrameID: frame.ID, ItemID: item.ID, Reason: reasonNotSpanning}
			case r.lastFrame != index-1:
				return &BuildError{FrameID: frame.ID, ItemID: item.ID, Reason: reasonBrokenSpan}
			}

			r.lastFrame = index
			b.owner[item.ID] = r
			if !b.continued[item.ID] {
				closing = append(closing, r)
			}
			continue
		}

		if !item.Type.Valid() {
			return &BuildError{FrameID: frame.ID, ItemID: item.ID, Reason: reasonUnknownType}
		}

		natural := b.natural(item)
		seg := Segment{
			Type:          item.Type,
			Path:          item.Path,
			StartMs:       start,
			SourceFrameID: frame.ID,
			ItemID:        item.ID,
		}
		b.segments = append(b.segments, seg)
		pos := len(b.segments) - 1

		if item.SpanFrames {
			r := &run{segment: pos, root: item, natural: natural, lastFrame: index}
			b.owner[item.ID] = r
			if !b.continued[item.ID] {
				closing = append(closing, r)
			}
			continue
		}

		b.owner[item.ID] = &run{segment: pos, root: item, natural: natural, lastFrame: index}
		duration = util.Max(duration, natural)
		if item.Type == narrative.Audio && natural > 0 {
			b.segments[pos].EndMs = start + natural
		} else {
			if item.Type == narrative.Audio {
				b.segments[pos].Estimated = true
			}
			tillFrameEnd = append(tillFrameEnd, pos)
		}
	}

	for _, r := range closing {
		runStart := b.segments[r.segment].StartMs
		duration = util.Max(duration, runStart+r.natural-start)
	}

	end := start + duration
	for _, pos := range tillFrameEnd {
		b.segments[pos].EndMs = end
	}
	for _, r := range closing {
		seg := &b.segments[r.segment]
		if seg.Type == narrative.Audio && r.natural > 0 {
			seg.EndMs = seg.StartMs + r.natural
		} else {
			seg.EndMs = end
			seg.Estimated = seg.Type == narrative.Audio
		}
	}

	b.frames = append(b.frames, FrameStart{FrameID: frame.ID, StartMs: start, EndMs: end})
	b.cursor = end
	return nil
}
