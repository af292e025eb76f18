package engine

import "errors"

var (
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("engine closed")

	// ErrNotLoaded is returned by playback operations before a successful Load.
	ErrNotLoaded = errors.New("no narrative loaded")

	// ErrUnknownFrame is returned when a start frame is not part of the narrative.
	ErrUnknownFrame = errors.New("unknown frame")
)

// State is the playback state.
type State int

const (
	Idle State = iota
	Paused
	Playing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Paused:
		return "paused"
	case Playing:
		return "playing"
	default:
		return "unknown"
	}
}

// Direction selects a neighbouring frame boundary.
type Direction int

const (
	Backward Direction = iota
	Forward
)

// Snapshot is everything needed to rebuild a session, for example after the host window is recreated.
type Snapshot struct {
	NarrativeID  string `json:"narrative_id"`
	StartFrameID string `json:"start_frame_id,omitempty"`
	PositionMs   int64  `json:"position_ms"`
}

// DurationCache remembers decoder-reported audio durations across sessions.
type DurationCache interface {
	Lookup(path string) int64
	Record(path string, durationMs int64)
}
