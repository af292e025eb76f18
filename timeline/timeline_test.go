package timeline

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/storyplay/storyplay/narrative"
)

func image(id, path string) narrative.MediaItem {
	return narrative.MediaItem{ID: id, Type: narrative.Image, Path: path}
}

func text(id, path string) narrative.MediaItem {
	return narrative.MediaItem{ID: id, Type: narrative.Text, Path: path}
}

func audio(id, path string, ms int64) narrative.MediaItem {
	return narrative.MediaItem{ID: id, Type: narrative.Audio, Path: path, DurationMs: ms}
}

func spanning(item narrative.MediaItem) narrative.MediaItem {
	item.SpanFrames = true
	return item
}

func continues(id, from string) narrative.MediaItem {
	return narrative.MediaItem{ID: id, SpanFrames: true, ContinuesFrom: mo.Some(from)}
}

func frame(id string, media ...narrative.MediaItem) narrative.Frame {
	return narrative.Frame{ID: id, Media: media}
}

func TestBuild(t *testing.T) {
	opts := Options{MinFrameMs: 2500}

	Convey("Given an image frame followed by a frame continuing spanning audio", t, func() {
		tl, err := Build([]narrative.Frame{
			frame("A", image("a", "a.jpg"), spanning(audio("x", "x.m4a", 4000))),
			frame("B", continues("x2", "x")),
		}, opts)
		So(err, ShouldBeNil)

		Convey("The timeline should hold one image and one audio segment", func() {
			segments := tl.Segments()
			So(segments, ShouldHaveLength, 2)
			So(segments[0].Type, ShouldEqual, narrative.Image)
			So(segments[0].StartMs, ShouldEqual, int64(0))
			So(segments[0].EndMs, ShouldEqual, int64(2500))
			So(segments[1].Type, ShouldEqual, narrative.Audio)
			So(segments[1].StartMs, ShouldEqual, int64(0))
			So(segments[1].EndMs, ShouldEqual, int64(4000))
			So(segments[1].Estimated, ShouldBeFalse)
		})

		Convey("Both frames should be indexed", func() {
			So(tl.Frames(), ShouldResemble, []FrameStart{
				{FrameID: "A", StartMs: 0, EndMs: 2500},
				{FrameID: "B", StartMs: 2500, EndMs: 5000},
			})
			So(tl.TotalMs(), ShouldEqual, int64(5000))
		})

		Convey("At 3000 the image should be expired and the audio active", func() {
			active := tl.ActiveAt(3000)
			So(active, ShouldHaveLength, 1)
			So(active[0].Path, ShouldEqual, "x.m4a")
		})
	})

	Convey("Given three frames sharing one spanning audio item", t, func() {
		tl, err := Build([]narrative.Frame{
			frame("F1", image("i1", "1.png"), spanning(audio("s", "s.ogg", 0))),
			frame("F2", image("i2", "2.png"), continues("s2", "s")),
			frame("F3", image("i3", "3.png"), continues("s3", "s2")),
		}, opts)
		So(err, ShouldBeNil)

		Convey("They should coalesce into one segment covering all three", func() {
			audios := 0
			for _, seg := range tl.Segments() {
				if seg.Type != narrative.Audio {
					continue
				}
				audios++
				So(seg.StartMs, ShouldEqual, int64(0))
				So(seg.EndMs, ShouldEqual, int64(7500))
				So(seg.Estimated, ShouldBeTrue)
				So(seg.SourceFrameID, ShouldEqual, "F1")
			}
			So(audios, ShouldEqual, 1)
		})
	})

	Convey("Given a spanning audio item longer than the frames it covers", t, func() {
		tl, err := Build([]narrative.Frame{
			frame("F1", spanning(audio("s", "s.ogg", 9000))),
			frame("F2", continues("s2", "s")),
		}, opts)
		So(err, ShouldBeNil)

		Convey("The closing frame should stretch to the end of the audio", func() {
			So(tl.TotalMs(), ShouldEqual, int64(9000))
			So(tl.Frames()[1], ShouldResemble, FrameStart{FrameID: "F2", StartMs: 2500, EndMs: 9000})
		})
	})

	Convey("Given frame durations from several sources", t, func() {
		hinted := frame("hint", image("h", "h.png"))
		hinted.DurationHintMs = 4000

		tl, err := Build([]narrative.Frame{
			hinted,
			frame("long", image("l", "l.png"), audio("n", "n.ogg", 6000)),
			frame("lookup", audio("d", "d.ogg", 0)),
			frame("unknown", audio("u", "u.ogg", 0)),
		}, Options{
			MinFrameMs: 2500,
			Durations: func(path string) int64 {
				if path == "d.ogg" {
					return 3000
				}
				return 0
			},
		})
		So(err, ShouldBeNil)

		Convey("Each frame should last the longest of hint, minimum and natural durations", func() {
			So(tl.Frames(), ShouldResemble, []FrameStart{
				{FrameID: "hint", StartMs: 0, EndMs: 4000},
				{FrameID: "long", StartMs: 4000, EndMs: 10000},
				{FrameID: "lookup", StartMs: 10000, EndMs: 13000},
				{FrameID: "unknown", StartMs: 13000, EndMs: 15500},
			})
		})

		Convey("Audio of unknown length should end with its frame and be estimated", func() {
			last := tl.At(tl.Len() - 1)
			So(last.Path, ShouldEqual, "u.ogg")
			So(last.EndMs, ShouldEqual, int64(15500))
			So(last.Estimated, ShouldBeTrue)
		})
	})

	Convey("Given frames without eligible media", t, func() {
		tl, err := Build([]narrative.Frame{
			frame("empty"),
			frame("pathless", narrative.MediaItem{ID: "p", Type: narrative.Image}),
			frame("real", text("t", "t.txt")),
		}, Options{MinFrameMs: 2500, EntryOffsetMs: 1000})
		So(err, ShouldBeNil)

		Convey("They should be skipped without advancing time", func() {
			So(tl.Frames(), ShouldResemble, []FrameStart{{FrameID: "real", StartMs: 1000, EndMs: 3500}})
			So(tl.StartMs(), ShouldEqual, int64(1000))
			So(tl.TotalMs(), ShouldEqual, int64(3500))
		})
	})

	Convey("Given items of one instant in reverse priority", t, func() {
		tl, err := Build([]narrative.Frame{
			frame("F", text("t", "t.txt"), audio("a", "a.ogg", 1000), image("i", "i.png")),
		}, opts)
		So(err, ShouldBeNil)

		Convey("Images should sort before audio before text", func() {
			segments := tl.Segments()
			So(segments[0].Type, ShouldEqual, narrative.Image)
			So(segments[1].Type, ShouldEqual, narrative.Audio)
			So(segments[2].Type, ShouldEqual, narrative.Text)
		})
	})

	Convey("Given malformed frame graphs", t, func() {
		cases := []struct {
			name   string
			frames []narrative.Frame
			item   string
			reason string
		}{
			{
				name:   "dangling continuation",
				frames: []narrative.Frame{frame("A", continues("c", "ghost"))},
				item:   "c",
				reason: reasonDangling,
			},
			{
				name: "continuation skipping a frame",
				frames: []narrative.Frame{
					frame("A", spanning(audio("s", "s.ogg", 0))),
					frame("B", image("b", "b.png")),
					frame("C", continues("c", "s")),
				},
				item:   "c",
				reason: reasonBrokenSpan,
			},
			{
				name: "continuation of a non-spanning item",
				frames: []narrative.Frame{
					frame("A", audio("s", "s.ogg", 0)),
					frame("B", continues("c", "s")),
				},
				item:   "c",
				reason: reasonNotSpanning,
			},
			{
				name:   "duplicate ids",
				frames: []narrative.Frame{frame("A", image("x", "1.png")), frame("B", image("x", "2.png"))},
				item:   "x",
				reason: reasonDuplicate,
			},
			{
				name:   "unknown type",
				frames: []narrative.Frame{frame("A", narrative.MediaItem{ID: "v", Path: "v.mp4"})},
				item:   "v",
				reason: reasonUnknownType,
			},
		}

		for _, tc := range cases {
			Convey("A "+tc.name+" should fail with a BuildError", func() {
				tl, err := Build(tc.frames, opts)
				So(tl, ShouldBeNil)

				var buildErr *BuildError
				So(errors.As(err, &buildErr), ShouldBeTrue)
				So(buildErr.ItemID, ShouldEqual, tc.item)
				So(buildErr.Reason, ShouldEqual, tc.reason)
			})
		}
	})
}

func TestTimelineLookups(t *testing.T) {
	Convey("Given a three frame timeline", t, func() {
		tl, err := Build([]narrative.Frame{
			frame("one", image("1", "1.png")),
			frame("two", image("2", "2.png")),
			frame("three", image("3", "3.png")),
		}, Options{MinFrameMs: 1000})
		So(err, ShouldBeNil)

		Convey("FrameAt should return the frame shown at a position", func() {
			f, ok := tl.FrameAt(1500)
			So(ok, ShouldBeTrue)
			So(f.FrameID, ShouldEqual, "two")

			f, ok = tl.FrameAt(3000)
			So(ok, ShouldBeTrue)
			So(f.FrameID, ShouldEqual, "three")

			_, ok = tl.FrameAt(-1)
			So(ok, ShouldBeFalse)
		})

		Convey("FrameStartOf should find frames by id", func() {
			start, ok := tl.FrameStartOf("three")
			So(ok, ShouldBeTrue)
			So(start, ShouldEqual, int64(2000))

			_, ok = tl.FrameStartOf("four")
			So(ok, ShouldBeFalse)
		})

		Convey("Boundaries should be strictly before or after", func() {
			before, ok := tl.BoundaryBefore(1000)
			So(ok, ShouldBeTrue)
			So(before, ShouldEqual, int64(0))

			_, ok = tl.BoundaryBefore(0)
			So(ok, ShouldBeFalse)

			after, ok := tl.BoundaryAfter(1000)
			So(ok, ShouldBeTrue)
			So(after, ShouldEqual, int64(2000))

			_, ok = tl.BoundaryAfter(2500)
			So(ok, ShouldBeFalse)
		})

		Convey("Accessors should return copies", func() {
			segments := tl.Segments()
			segments[0].Path = "changed"
			So(tl.At(0).Path, ShouldEqual, "1.png")
		})
	})
}

func TestMonotonicity(t *testing.T) {
	Convey("Given randomly generated narratives", t, func() {
		rng := rand.New(rand.NewSource(7))

		for n := 0; n < 50; n++ {
			var frames []narrative.Frame
			open := ""
			for f := 0; f < 1+rng.Intn(12); f++ {
				id := fmt.Sprintf("n%d-f%d", n, f)
				var media []narrative.MediaItem
				if open != "" && rng.Intn(2) == 0 {
					cont := id + "-cont"
					media = append(media, continues(cont, open))
					open = cont
				} else {
					open = ""
				}
				if rng.Intn(3) > 0 {
					media = append(media, image(id+"-img", id+".png"))
				}
				if rng.Intn(3) == 0 {
					item := audio(id+"-aud", id+".ogg", int64(rng.Intn(8000)))
					if open == "" && rng.Intn(2) == 0 {
						item = spanning(item)
						open = item.ID
					}
					media = append(media, item)
				}
				frames = append(frames, frame(id, media...))
			}

			tl, err := Build(frames, Options{MinFrameMs: 2500})
			So(err, ShouldBeNil)

			segments := tl.Segments()
			for i := 1; i < len(segments); i++ {
				So(segments[i].StartMs, ShouldBeGreaterThanOrEqualTo, segments[i-1].StartMs)
			}
			for _, seg := range segments {
				So(seg.EndMs, ShouldBeGreaterThan, seg.StartMs)
			}
			index := tl.Frames()
			for i := 1; i < len(index); i++ {
				So(index[i].StartMs, ShouldBeGreaterThan, index[i-1].StartMs)
			}
		}
	})
}
