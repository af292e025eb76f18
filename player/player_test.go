package player

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/storyplay/storyplay/constant"
	"github.com/storyplay/storyplay/filesystem"
)

func writePNG(path string, w, h int) {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	So(png.Encode(&buf, img), ShouldBeNil)
	So(filesystem.API().WriteFile(path, buf.Bytes(), 0o644), ShouldBeNil)
}

func TestLocalDecoder(t *testing.T) {
	Convey("Given images on an in-memory filesystem", t, func() {
		filesystem.SetMemMapFs()
		Reset(filesystem.SetOsFs)

		writePNG("/img/wide.png", 200, 100)
		So(filesystem.API().WriteFile("/img/empty.png", nil, 0o644), ShouldBeNil)
		So(filesystem.API().WriteFile("/img/garbage.png", []byte("not an image"), 0o644), ShouldBeNil)

		decoder := NewLocalDecoder()
		ctx := context.Background()

		Convey("Fit should keep the aspect ratio inside the target", func() {
			bmp, err := decoder.DecodeImage(ctx, "/img/wide.png", Size{Width: 100, Height: 100}, Fit)
			So(err, ShouldBeNil)
			So(bmp.Bounds(), ShouldResemble, Size{Width: 100, Height: 50})
			So(bmp.Source, ShouldResemble, Size{Width: 200, Height: 100})
			So(bmp.Format, ShouldEqual, "png")
		})

		Convey("Crop should fill the target exactly", func() {
			bmp, err := decoder.DecodeImage(ctx, "/img/wide.png", Size{Width: 100, Height: 100}, Crop)
			So(err, ShouldBeNil)
			So(bmp.Bounds(), ShouldResemble, Size{Width: 100, Height: 100})
		})

		Convey("Downscale should fit into half the target", func() {
			bmp, err := decoder.DecodeImage(ctx, "/img/wide.png", Size{Width: 100, Height: 100}, Downscale)
			So(err, ShouldBeNil)
			So(bmp.Bounds(), ShouldResemble, Size{Width: 50, Height: 25})
			So(bmp.Mode, ShouldEqual, Downscale)
		})

		Convey("A zero target should keep the source size", func() {
			bmp, err := decoder.DecodeImage(ctx, "/img/wide.png", Size{}, Fit)
			So(err, ShouldBeNil)
			So(bmp.Bounds(), ShouldResemble, Size{Width: 200, Height: 100})
		})

		Convey("Missing and empty files should be unavailable", func() {
			_, err := decoder.DecodeImage(ctx, "/img/missing.png", Size{}, Fit)
			So(errors.Is(err, ErrMediaUnavailable), ShouldBeTrue)

			_, err = decoder.DecodeImage(ctx, "/img/empty.png", Size{}, Fit)
			So(errors.Is(err, ErrMediaUnavailable), ShouldBeTrue)
		})

		Convey("Undecodable files should fail without being unavailable", func() {
			_, err := decoder.DecodeImage(ctx, "/img/garbage.png", Size{}, Fit)
			So(err, ShouldNotBeNil)
			So(errors.Is(err, ErrMediaUnavailable), ShouldBeFalse)
		})

		Convey("A cancelled context should abort the decode", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			_, err := decoder.DecodeImage(cancelled, "/img/wide.png", Size{}, Fit)
			So(err, ShouldEqual, context.Canceled)
		})
	})
}

func TestSilent(t *testing.T) {
	Convey("Given the silent backend", t, func() {
		filesystem.SetMemMapFs()
		Reset(filesystem.SetOsFs)
		So(filesystem.API().WriteFile("/audio/a.ogg", []byte("ogg"), 0o644), ShouldBeNil)

		backend, err := NewAudioBackend(constant.AudioSilent)
		So(err, ShouldBeNil)
		silent := backend.(*Silent)

		Convey("Prepared handles should follow start, pause and release", func() {
			h, duration, err := silent.PrepareAudio(context.Background(), "/audio/a.ogg")
			So(err, ShouldBeNil)
			So(duration, ShouldEqual, int64(0))
			So(h.Path(), ShouldEqual, "/audio/a.ogg")

			So(silent.StartAudio(h), ShouldBeNil)
			So(silent.Playing(), ShouldEqual, 1)
			So(silent.SeekAudio(h, 1500), ShouldBeNil)
			So(silent.PauseAudio(h), ShouldBeNil)
			So(silent.Playing(), ShouldEqual, 0)

			So(silent.ReleaseAudio(h), ShouldBeNil)
			So(silent.Open(), ShouldEqual, 0)
			So(silent.StartAudio(h), ShouldNotBeNil)
		})

		Convey("Missing files should be unavailable", func() {
			_, _, err := silent.PrepareAudio(context.Background(), "/audio/missing.ogg")
			So(errors.Is(err, ErrMediaUnavailable), ShouldBeTrue)
		})
	})

	Convey("Unknown backend names should fail", t, func() {
		_, err := NewAudioBackend("vlc")
		So(err, ShouldNotBeNil)
	})
}
