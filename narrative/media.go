// Package narrative models the frame data a playback session consumes and reads it from manifest files.
package narrative

import (
	"fmt"
	"strings"

	"github.com/samber/mo"
)

// MediaType tags what a media item holds. The zero value is invalid.
type MediaType int

const (
	Image MediaType = iota + 1
	Audio
	Text
)

// Priority orders media of one instant: images first, then audio, then text.
func (t MediaType) Priority() int {
	return int(t)
}

// Valid reports whether t is one of the known media types.
func (t MediaType) Valid() bool {
	return t >= Image && t <= Text
}

func (t MediaType) String() string {
	switch t {
	case Image:
		return "image"
	case Audio:
		return "audio"
	case Text:
		return "text"
	default:
		return "unknown"
	}
}

// ParseMediaType converts a manifest type name.
func ParseMediaType(s string) (MediaType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "image", "picture", "photo":
		return Image, nil
	case "audio", "sound":
		return Audio, nil
	case "text":
		return Text, nil
	default:
		return 0, fmt.Errorf("unknown media type %q", s)
	}
}

// MediaItem is one piece of content attached to a frame.
type MediaItem struct {
	ID   string
	Type MediaType
	Path string

	// SpanFrames marks content inherited by following frames until overridden.
	SpanFrames bool

	// ContinuesFrom links a follow-up item to the item it continues in the previous frame.
	ContinuesFrom mo.Option[string]

	// DurationMs is the natural duration when known; 0 means unknown.
	DurationMs int64
}

// IsContinuation reports whether the item only extends a span started earlier.
func (m MediaItem) IsContinuation() bool {
	return m.ContinuesFrom.IsPresent()
}

// Frame is one step of a narrative.
type Frame struct {
	ID             string
	Media          []MediaItem
	DurationHintMs int64
}

// Narrative is the top-level storytelling unit.
type Narrative struct {
	ID     string
	Title  string
	Frames []Frame
}

// Summary describes a narrative without its frames.
type Summary struct {
	ID     string
	Title  string
	Path   string
	Frames int
}

func (s Summary) String() string {
	if s.Title == "" || s.Title == s.ID {
		return s.ID
	}
	return fmt.Sprintf("%s (%s)", s.Title, s.ID)
}
