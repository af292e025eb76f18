package player

import (
	"context"
	"fmt"
	"sync"

	"github.com/storyplay/storyplay/filesystem"
)

// Silent is an audio backend that validates files and plays nothing.
// Durations are unknown, so audio segments keep their estimated ends.
type Silent struct {
	mu      sync.Mutex
	playing map[*silentHandle]bool
}

type silentHandle struct {
	path     string
	offsetMs int64
}

func (h *silentHandle) Path() string {
	return h.path
}

// NewSilent creates a silent backend.
func NewSilent() *Silent {
	return &Silent{playing: make(map[*silentHandle]bool)}
}

// PrepareAudio implements AudioBackend.
func (s *Silent) PrepareAudio(ctx context.Context, path string) (AudioHandle, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	ok, err := filesystem.NonEmpty(path)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return nil, 0, fmt.Errorf("%w: %s", ErrMediaUnavailable, path)
	}

	h := &silentHandle{path: path}
	s.mu.Lock()
	s.playing[h] = false
	s.mu.Unlock()
	return h, 0, nil
}

func (s *Silent) set(h AudioHandle, apply func(*silentHandle)) error {
	handle, ok := h.(*silentHandle)
	if !ok {
		return fmt.Errorf("handle %T does not belong to the silent backend", h)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.playing[handle]; !ok {
		return fmt.Errorf("handle for %s was released", handle.path)
	}
	apply(handle)
	return nil
}

// StartAudio implements AudioBackend.
func (s *Silent) StartAudio(h AudioHandle) error {
	return s.set(h, func(handle *silentHandle) { s.playing[handle] = true })
}

// SeekAudio implements AudioBackend.
func (s *Silent) SeekAudio(h AudioHandle, offsetMs int64) error {
	return s.set(h, func(handle *silentHandle) { handle.offsetMs = offsetMs })
}

// PauseAudio implements AudioBackend.
func (s *Silent) PauseAudio(h AudioHandle) error {
	return s.set(h, func(handle *silentHandle) { s.playing[handle] = false })
}

// ReleaseAudio implements AudioBackend.
func (s *Silent) ReleaseAudio(h AudioHandle) error {
	return s.set(h, func(handle *silentHandle) { delete(s.playing, handle) })
}

// Playing returns how many handles are currently started.
func (s *Silent) Playing() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, playing := range s.playing {
		if playing {
			n++
		}
	}
	return n
}

// Open returns how many handles have not been released.
func (s *Silent) Open() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.playing)
}
