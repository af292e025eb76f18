// Package player is the platform media layer: audio decoders the engine drives and an image decoder
// for the presenter. The primary audio backend controls mpv through its JSON-IPC interface.
package player

import (
	"context"
	"errors"
	"fmt"

	"github.com/storyplay/storyplay/constant"
)

// ErrMediaUnavailable is returned when a media file is missing or empty.
var ErrMediaUnavailable = errors.New("media unavailable")

// AudioHandle is one prepared audio decoder.
type AudioHandle interface {
	// Path is the file the decoder was prepared from.
	Path() string
}

// AudioBackend prepares and drives audio decoders.
// Every method except PrepareAudio must return quickly.
type AudioBackend interface {
	// PrepareAudio loads path into a paused decoder and reports its duration in
	// milliseconds, or 0 when the decoder cannot tell.
	PrepareAudio(ctx context.Context, path string) (AudioHandle, int64, error)

	// StartAudio starts or resumes playback.
	StartAudio(h AudioHandle) error

	// SeekAudio moves playback to offsetMs from the beginning of the file.
	SeekAudio(h AudioHandle, offsetMs int64) error

	// PauseAudio pauses playback, keeping the decoder loaded.
	PauseAudio(h AudioHandle) error

	// ReleaseAudio frees the decoder. The handle must not be used afterwards.
	ReleaseAudio(h AudioHandle) error
}

// NewAudioBackend returns the backend registered under name.
func NewAudioBackend(name string) (AudioBackend, error) {
	switch name {
	case constant.AudioMPV:
		mpv, err := NewMPV()
		if err != nil {
			return nil, err
		}
		return mpv, nil
	case constant.AudioSilent:
		return NewSilent(), nil
	default:
		return nil, fmt.Errorf("unknown audio backend %q", name)
	}
}
