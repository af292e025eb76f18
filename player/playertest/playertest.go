// Package playertest provides scriptable media backends for tests.
package playertest

import (
	"context"
	"errors"
	"image"
	"sync"

	"github.com/storyplay/storyplay/player"
)

// ErrScripted is the failure returned by scripted prepare and decode errors.
var ErrScripted = errors.New("scripted failure")

// Script controls how one path behaves.
type Script struct {
	// DurationMs is reported by PrepareAudio.
	DurationMs int64
	// Failures is how many calls fail before one succeeds. Negative fails forever.
	Failures int
	// Err replaces ErrScripted as the failure.
	Err error
	// Gate blocks the call until it is closed or the context ends.
	Gate chan struct{}
	// ReleaseGate blocks ReleaseAudio until it is closed.
	ReleaseGate chan struct{}
}

type handle struct {
	path string
	id   int
}

func (h *handle) Path() string {
	return h.path
}

// Seek records one SeekAudio call.
type Seek struct {
	Path     string
	OffsetMs int64
}

// Audio is a fake player.AudioBackend.
type Audio struct {
	mu       sync.Mutex
	scripts  map[string]*Script
	calls    map[string]int
	open     map[*handle]bool
	playing  map[string]bool
	seeks    []Seek
	released []string
	nextID   int
}

// NewAudio creates an Audio with no scripts; unscripted paths prepare instantly with unknown duration.
func NewAudio() *Audio {
	return &Audio{
		scripts: make(map[string]*Script),
		calls:   make(map[string]int),
		open:    make(map[*handle]bool),
		playing: make(map[string]bool),
	}
}

// Script sets the behaviour of path.
func (a *Audio) Script(path string, s Script) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.scripts[path] = &s
}

func wait(ctx context.Context, gate chan struct{}) error {
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Audio) script(path string) (Script, int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls[path]++
	s := a.scripts[path]
	if s == nil {
		return Script{}, a.calls[path]
	}
	return *s, a.calls[path]
}

// PrepareAudio implements player.AudioBackend.
func (a *Audio) PrepareAudio(ctx context.Context, path string) (player.AudioHandle, int64, error) {
	s, call := a.script(path)
	if err := wait(ctx, s.Gate); err != nil {
		return nil, 0, err
	}
	if s.Failures < 0 || call <= s.Failures {
		if s.Err != nil {
			return nil, 0, s.Err
		}
		return nil, 0, ErrScripted
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextID++
	h := &handle{path: path, id: a.nextID}
	a.open[h] = true
	return h, s.DurationMs, nil
}

func (a *Audio) check(h player.AudioHandle) (*handle, error) {
	fake, ok := h.(*handle)
	if !ok || !a.open[fake] {
		return nil, errors.New("unknown or released handle")
	}
	return fake, nil
}

// StartAudio implements player.AudioBackend.
func (a *Audio) StartAudio(h player.AudioHandle) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	fake, err := a.check(h)
	if err != nil {
		return err
	}
	a.playing[fake.path] = true
	return nil
}

// SeekAudio implements player.AudioBackend.
func (a *Audio) SeekAudio(h player.AudioHandle, offsetMs int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	fake, err := a.check(h)
	if err != nil {
		return err
	}
	a.seeks = append(a.seeks, Seek{Path: fake.path, OffsetMs: offsetMs})
	return nil
}

// PauseAudio implements player.AudioBackend.
func (a *Audio) PauseAudio(h player.AudioHandle) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	fake, err := a.check(h)
	if err != nil {
		return err
	}
	a.playing[fake.path] = false
	return nil
}

// ReleaseAudio implements player.AudioBackend.
func (a *Audio) ReleaseAudio(h player.AudioHandle) error {
	a.mu.Lock()
	var gate chan struct{}
	if s := a.scripts[h.Path()]; s != nil {
		gate = s.ReleaseGate
	}
	a.mu.Unlock()
	if gate != nil {
		<-gate
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	fake, err := a.check(h)
	if err != nil {
		return err
	}
	delete(a.open, fake)
	a.playing[fake.path] = false
	a.released = append(a.released, fake.path)
	return nil
}

// Calls returns how many times path was prepared.
func (a *Audio) Calls(path string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls[path]
}

// Playing reports whether path is currently started.
func (a *Audio) Playing(path string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.playing[path]
}

// PlayingCount returns how many paths are started.
func (a *Audio) PlayingCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, p := range a.playing {
		if p {
			n++
		}
	}
	return n
}

// Seeks returns every SeekAudio call so far.
func (a *Audio) Seeks() []Seek {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Seek(nil), a.seeks...)
}

// Released returns the paths of released handles in order.
func (a *Audio) Released() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.released...)
}

// Open returns how many handles are prepared and not released.
func (a *Audio) Open() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.open)
}

// Decode records one DecodeImage call.
type Decode struct {
	Path string
	Mode player.Mode
}

// Images is a fake player.ImageDecoder producing blank bitmaps of the target size.
type Images struct {
	mu      sync.Mutex
	scripts map[string]*Script
	calls   map[string]int
	decodes []Decode
}

// NewImages creates an Images decoder; unscripted paths decode instantly.
func NewImages() *Images {
	return &Images{
		scripts: make(map[string]*Script),
		calls:   make(map[string]int),
	}
}

// Script sets the behaviour of path.
func (d *Images) Script(path string, s Script) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scripts[path] = &s
}

// DecodeImage implements player.ImageDecoder.
func (d *Images) DecodeImage(ctx context.Context, path string, target player.Size, mode player.Mode) (*player.Bitmap, error) {
	d.mu.Lock()
	d.calls[path]++
	call := d.calls[path]
	d.decodes = append(d.decodes, Decode{Path: path, Mode: mode})
	var s Script
	if scripted := d.scripts[path]; scripted != nil {
		s = *scripted
	}
	d.mu.Unlock()

	if err := wait(ctx, s.Gate); err != nil {
		return nil, err
	}
	if s.Failures < 0 || call <= s.Failures {
		if s.Err != nil {
			return nil, s.Err
		}
		return nil, ErrScripted
	}

	w, h := max(1, target.Width), max(1, target.Height)
	return &player.Bitmap{
		Path:   path,
		Mode:   mode,
		Format: "fake",
		Image:  image.NewGray(image.Rect(0, 0, w, h)),
		Source: player.Size{Width: w, Height: h},
	}, nil
}

// Decodes returns every DecodeImage call so far.
func (d *Images) Decodes() []Decode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Decode(nil), d.decodes...)
}
