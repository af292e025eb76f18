package player

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"

	"github.com/storyplay/storyplay/filesystem"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Mode selects how an image is scaled into its target size.
type Mode int

const (
	// Fit scales the image to fit inside the target, keeping its aspect ratio.
	Fit Mode = iota
	// Crop scales the image to cover the target and cuts the overflow.
	Crop
	// Downscale is a fast, low quality Fit into half the target.
	Downscale
)

func (m Mode) String() string {
	switch m {
	case Fit:
		return "fit"
	case Crop:
		return "crop"
	case Downscale:
		return "downscale"
	default:
		return "unknown"
	}
}

// Size is a target size in pixels. A zero size keeps the source dimensions.
type Size struct {
	Width  int
	Height int
}

func (s Size) Zero() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Bitmap is a decoded image ready to be shown.
type Bitmap struct {
	Path   string
	Mode   Mode
	Format string
	Image  image.Image

	// Source is the size of the undecoded file.
	Source Size
}

// Bounds returns the decoded size.
func (b *Bitmap) Bounds() Size {
	r := b.Image.Bounds()
	return Size{Width: r.Dx(), Height: r.Dy()}
}

func (b *Bitmap) String() string {
	s := b.Bounds()
	return fmt.Sprintf("%s %dx%d %s", filepath.Base(b.Path), s.Width, s.Height, b.Mode)
}

// ImageDecoder turns image files into bitmaps.
type ImageDecoder interface {
	DecodeImage(ctx context.Context, path string, target Size, mode Mode) (*Bitmap, error)
}

// LocalDecoder decodes jpeg, png, gif, webp and bmp files read through the filesystem layer.
type LocalDecoder struct{}

// NewLocalDecoder creates a LocalDecoder.
func NewLocalDecoder() *LocalDecoder {
	return &LocalDecoder{}
}

// DecodeImage implements ImageDecoder.
func (d *LocalDecoder) DecodeImage(ctx context.Context, path string, target Size, mode Mode) (*Bitmap, error) {
	ok, err := filesystem.NonEmpty(path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMediaUnavailable, path)
	}

	data, err := filesystem.API().ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bounds := src.Bounds()
	return &Bitmap{
		Path:   path,
		Mode:   mode,
		Format: format,
		Image:  scale(src, target, mode),
		Source: Size{Width: bounds.Dx(), Height: bounds.Dy()},
	}, nil
}

func scale(src image.Image, target Size, mode Mode) image.Image {
	if target.Zero() {
		return src
	}

	b := src.Bounds()
	sw, sh := b.Dx(), b.Dy()
	if sw == 0 || sh == 0 {
		return src
	}

	var interpolator draw.Interpolator = draw.CatmullRom
	if mode == Downscale {
		interpolator = draw.NearestNeighbor
		target = Size{Width: max(1, target.Width/2), Height: max(1, target.Height/2)}
	}

	if mode == Crop {
		// cover the target, then take the centered window
		ratio := max(float64(target.Width)/float64(sw), float64(target.Height)/float64(sh))
		cw := int(float64(target.Width) / ratio)
		ch := int(float64(target.Height) / ratio)
		x := b.Min.X + (sw-cw)/2
		y := b.Min.Y + (sh-ch)/2

		dst := image.NewRGBA(image.Rect(0, 0, target.Width, target.Height))
		interpolator.Scale(dst, dst.Bounds(), src, image.Rect(x, y, x+cw, y+ch), draw.Src, nil)
		return dst
	}

	ratio := min(float64(target.Width)/float64(sw), float64(target.Height)/float64(sh))
	w := max(1, int(float64(sw)*ratio))
	h := max(1, int(float64(sh)*ratio))

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	interpolator.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
