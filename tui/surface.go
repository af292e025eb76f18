package tui

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/storyplay/storyplay/player"
)

// upperHalf carries two vertically stacked pixels: the foreground paints the top one.
const upperHalf = "▀"

// surface receives presenter output on the engine goroutine. It never blocks: the view reads the
// latest state whenever it redraws.
type surface struct {
	mu      sync.Mutex
	current surfaceFrame
	changed chan struct{}
}

type surfaceFrame struct {
	bitmap    *player.Bitmap
	rendered  string
	crossfade bool
	icon      bool

	text         string
	textHasImage bool
}

func newSurface() *surface {
	return &surface{changed: make(chan struct{}, 1)}
}

func (s *surface) update(fn func(f *surfaceFrame)) {
	s.mu.Lock()
	fn(&s.current)
	s.mu.Unlock()

	select {
	case s.changed <- struct{}{}:
	default:
	}
}

func (s *surface) ShowImage(bitmap *player.Bitmap, crossfade bool) {
	rendered := renderImage(bitmap.Image)
	s.update(func(f *surfaceFrame) {
		f.bitmap, f.rendered, f.crossfade, f.icon = bitmap, rendered, crossfade, false
	})
}

func (s *surface) ShowAudioIcon() {
	s.update(func(f *surfaceFrame) {
		f.bitmap, f.rendered, f.crossfade, f.icon = nil, "", false, true
	})
}

func (s *surface) ClearImage() {
	s.update(func(f *surfaceFrame) {
		f.bitmap, f.rendered, f.crossfade, f.icon = nil, "", false, false
	})
}

func (s *surface) ShowText(text string, hasImage bool) {
	s.update(func(f *surfaceFrame) {
		f.text, f.textHasImage = strings.TrimSpace(text), hasImage
	})
}

func (s *surface) ClearText() {
	s.update(func(f *surfaceFrame) {
		f.text, f.textHasImage = "", false
	})
}

func (s *surface) frame() surfaceFrame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func hex(c color.Color) lipgloss.Color {
	r, g, b, _ := c.RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8))
}

// renderImage draws img with one terminal cell per two pixel rows.
func renderImage(img image.Image) string {
	bounds := img.Bounds()

	var sb strings.Builder
	for y := bounds.Min.Y; y < bounds.Max.Y; y += 2 {
		if y > bounds.Min.Y {
			sb.WriteByte('\n')
		}
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			cell := lipgloss.NewStyle().Foreground(hex(img.At(x, y)))
			if y+1 < bounds.Max.Y {
				cell = cell.Background(hex(img.At(x, y+1)))
			}
			sb.WriteString(cell.Render(upperHalf))
		}
	}
	return sb.String()
}
