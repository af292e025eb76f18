package tui

import (
	"context"
	"errors"
	"image"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/storyplay/storyplay/engine"
	"github.com/storyplay/storyplay/filesystem"
	"github.com/storyplay/storyplay/narrative"
	"github.com/storyplay/storyplay/player"
	"github.com/storyplay/storyplay/player/playertest"
	"github.com/storyplay/storyplay/timeline"
)

const manifest = `
title: The Harbor
frames:
  - id: dawn
    media:
      - type: image
        path: a.png
  - id: boats
    media:
      - type: image
        path: b.png
      - type: text
        path: boats.txt
`

func keyPress(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "home":
		return tea.KeyMsg{Type: tea.KeyHome}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// drain discards pending redraws and position updates.
func drain(b *bubble) {
	for {
		select {
		case <-b.surface.changed:
		case <-b.events:
		default:
			return
		}
	}
}

func TestRenderImage(t *testing.T) {
	Convey("Given a 3x3 image", t, func() {
		img := image.NewGray(image.Rect(0, 0, 3, 3))

		Convey("It should use one cell per two pixel rows", func() {
			rendered := renderImage(img)
			So(strings.Count(rendered, "\n"), ShouldEqual, 1)
			So(strings.Count(rendered, upperHalf), ShouldEqual, 6)
		})
	})
}

func TestSurface(t *testing.T) {
	Convey("Given a surface", t, func() {
		s := newSurface()
		bitmap := &player.Bitmap{Path: "/n/a.png", Image: image.NewGray(image.Rect(0, 0, 2, 2))}

		Convey("Showing an image should record it and signal a redraw", func() {
			s.ShowImage(bitmap, true)
			f := s.frame()
			So(f.bitmap, ShouldEqual, bitmap)
			So(f.crossfade, ShouldBeTrue)
			So(f.rendered, ShouldNotBeEmpty)
			So(len(s.changed), ShouldEqual, 1)

			Convey("and the audio icon should replace it", func() {
				s.ShowAudioIcon()
				f := s.frame()
				So(f.bitmap, ShouldBeNil)
				So(f.icon, ShouldBeTrue)
				So(len(s.changed), ShouldEqual, 1)
			})
		})

		Convey("Text should be kept until cleared", func() {
			s.ShowText("  hello\n", false)
			So(s.frame().text, ShouldEqual, "hello")
			s.ClearText()
			So(s.frame().text, ShouldBeEmpty)
		})
	})
}

func TestPlayer(t *testing.T) {
	Convey("Given a player screen over a loaded narrative", t, func() {
		filesystem.SetMemMapFs()
		fs := filesystem.API()
		for path, data := range map[string]string{
			"/lib/harbor.yaml": manifest,
			"/lib/a.png":       "png",
			"/lib/b.png":       "png",
			"/lib/boats.txt":   "Boats leave the harbor.",
		} {
			So(fs.WriteFile(path, []byte(data), 0o644), ShouldBeNil)
		}

		s := newSurface()
		b := newBubble("The Harbor", s)
		b.resize(120, 60)
		cfg := engine.DefaultConfig()
		cfg.ImageSize = player.Size{Width: 8, Height: 4}
		b.engine = engine.New(engine.Host{
			Store:   narrative.NewFileStore("/lib"),
			Audio:   playertest.NewAudio(),
			Images:  playertest.NewImages(),
			Surface: s,
		}, cfg, b.engineOptions()...)
		Reset(func() {
			b.quit()
			So(b.engine.Close(), ShouldBeNil)
			filesystem.SetOsFs()
		})

		So(b.engine.Load(context.Background(), "harbor", ""), ShouldBeNil)
		b.syncState()

		Convey("The first image should be on screen", func() {
			view := b.View()
			So(view, ShouldContainSubstring, upperHalf)
			So(view, ShouldContainSubstring, "a.png")
			So(view, ShouldContainSubstring, "dawn")
			So(b.duration, ShouldEqual, int64(5000))
		})

		Convey("] should move to the next frame and show its text", func() {
			b.Update(keyPress("]"))
			So(b.position, ShouldEqual, int64(2500))
			So(b.frameID, ShouldEqual, "boats")
			So(b.View(), ShouldContainSubstring, "Boats leave the harbor.")

			Convey("and ← should seek back to the start", func() {
				b.Update(keyPress("left"))
				So(b.position, ShouldEqual, int64(0))
				So(b.frameID, ShouldEqual, "dawn")
			})
		})

		Convey("Space should toggle playback", func() {
			b.Update(keyPress(" "))
			So(b.playing, ShouldEqual, engine.Playing)
			b.Update(keyPress(" "))
			So(b.playing, ShouldEqual, engine.Paused)
		})

		Convey("? should toggle the full help", func() {
			b.Update(keyPress("?"))
			So(b.helpC.ShowAll, ShouldBeTrue)
		})

		Convey("Engine events should reach the update loop", func() {
			drain(b)
			b.deliver(endedMsg{})
			msg := b.waitForEvent()()
			So(msg, ShouldHaveSameTypeAs, endedMsg{})

			b.Update(droppedMsg{
				segment: timeline.Segment{Type: narrative.Audio, Path: "/lib/missing.ogg"},
				err:     errors.New("gone"),
			})
			So(b.notifier.Notification(), ShouldContainSubstring, filepath.Base("/lib/missing.ogg"))
		})

		Convey("Errors should switch to the error view", func() {
			b.Update(errors.New("decoder crashed"))
			So(b.state, ShouldEqual, errorState)
			So(b.View(), ShouldContainSubstring, "decoder crashed")
		})

		Convey("q should stop listening and quit", func() {
			_, cmd := b.Update(keyPress("q"))
			So(cmd, ShouldNotBeNil)
			_, open := <-b.done
			So(open, ShouldBeFalse)
		})
	})
}
