package window

import (
	"testing"

	"github.com/samber/lo"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/storyplay/storyplay/narrative"
	"github.com/storyplay/storyplay/timeline"
)

// threeAudio builds audio segments a [0,2000), b [100,5000) and c [5000,6000).
func threeAudio() *timeline.Timeline {
	tl, err := timeline.Build([]narrative.Frame{
		{ID: "F1", Media: []narrative.MediaItem{
			{ID: "a", Type: narrative.Audio, Path: "a.ogg", SpanFrames: true, DurationMs: 2000},
		}},
		{ID: "F2", Media: []narrative.MediaItem{
			{ID: "a2", SpanFrames: true, ContinuesFrom: mo.Some("a")},
			{ID: "b", Type: narrative.Audio, Path: "b.ogg", DurationMs: 4900},
		}},
		{ID: "F3", Media: []narrative.MediaItem{
			{ID: "c", Type: narrative.Audio, Path: "c.ogg", DurationMs: 1000},
		}},
	}, timeline.Options{MinFrameMs: 100})
	So(err, ShouldBeNil)
	return tl
}

func paths(segments []timeline.Segment) []string {
	return lo.Map(segments, func(s timeline.Segment, _ int) string {
		return s.Path
	})
}

func TestRefresh(t *testing.T) {
	Convey("Given three audio segments and a one second horizon", t, func() {
		tl := threeAudio()
		w := New(1000)

		Convey("At 0 only the segments starting within the horizon should enter", func() {
			r := w.Refresh(tl, 0, nil)
			So(r.Changed, ShouldBeTrue)
			So(paths(r.Entered), ShouldResemble, []string{"a.ogg", "b.ogg"})
			So(paths(r.Active), ShouldResemble, []string{"a.ogg"})
			So(paths(r.Upcoming), ShouldResemble, []string{"b.ogg"})
			So(w.ResumeIndex(), ShouldEqual, 2)

			Convey("Refreshing at the same instant should report no change", func() {
				r := w.Refresh(tl, 0, nil)
				So(r.Changed, ShouldBeFalse)
				So(paths(r.Active), ShouldResemble, []string{"a.ogg"})
			})

			Convey("An upcoming segment becoming active should be a change", func() {
				r := w.Refresh(tl, 100, nil)
				So(r.Changed, ShouldBeTrue)
				So(r.Entered, ShouldBeEmpty)
				So(paths(r.Active), ShouldResemble, []string{"a.ogg", "b.ogg"})

				So(w.Refresh(tl, 200, nil).Changed, ShouldBeFalse)
			})

			Convey("Segments should expire once the position reaches their end", func() {
				r := w.Refresh(tl, 2000, nil)
				So(r.Changed, ShouldBeTrue)
				So(paths(r.Expired), ShouldResemble, []string{"a.ogg"})
				So(paths(r.Active), ShouldResemble, []string{"b.ogg"})
			})

			Convey("The next segment should enter one horizon ahead", func() {
				r := w.Refresh(tl, 4500, nil)
				So(paths(r.Entered), ShouldResemble, []string{"c.ogg"})
				So(paths(r.Upcoming), ShouldResemble, []string{"c.ogg"})
			})
		})

		Convey("After playing past everything", func() {
			w.Refresh(tl, 0, nil)
			r := w.Refresh(tl, 5500, nil)
			So(paths(r.Active), ShouldResemble, []string{"c.ogg"})

			Convey("A backward seek without rewind should find nothing earlier", func() {
				r := w.Refresh(tl, 0, nil)
				So(r.Entered, ShouldBeEmpty)
				So(paths(r.Expired), ShouldResemble, []string{"c.ogg"})
			})

			Convey("A rewind should rescan from the start and expire future segments", func() {
				w.Rewind()
				r := w.Refresh(tl, 0, nil)
				So(paths(r.Entered), ShouldResemble, []string{"a.ogg", "b.ogg"})
				So(paths(r.Expired), ShouldResemble, []string{"c.ogg"})
				So(paths(r.Active), ShouldResemble, []string{"a.ogg"})
			})

			Convey("Seeking to the same instant twice should give the same classification", func() {
				w.Rewind()
				first := w.Refresh(tl, 1500, nil)
				w.Rewind()
				second := w.Refresh(tl, 1500, nil)
				So(paths(second.Active), ShouldResemble, paths(first.Active))
				So(paths(second.Upcoming), ShouldResemble, paths(first.Upcoming))
				So(second.Changed, ShouldBeFalse)
			})
		})
	})
}

func TestDropAndResolve(t *testing.T) {
	Convey("Given a window over three audio segments", t, func() {
		tl := threeAudio()
		w := New(1000)
		w.Refresh(tl, 0, nil)

		Convey("A dropped segment should never re-enter", func() {
			a := tl.At(0)
			w.Drop(a)
			So(w.Dropped(a), ShouldBeTrue)
			So(w.DroppedActive(500, narrative.Audio), ShouldBeTrue)
			So(w.DroppedActive(500, narrative.Image), ShouldBeFalse)

			w.Rewind()
			r := w.Refresh(tl, 0, nil)
			So(paths(r.Active), ShouldBeEmpty)
			So(paths(r.Upcoming), ShouldResemble, []string{"b.ogg"})

			Convey("Reset should forget drops", func() {
				w.Reset()
				So(w.Dropped(a), ShouldBeFalse)
				r := w.Refresh(tl, 0, nil)
				So(paths(r.Active), ShouldResemble, []string{"a.ogg"})
			})
		})

		Convey("A resolved end should keep a segment alive longer", func() {
			longer := func(s timeline.Segment) int64 {
				if s.Path == "a.ogg" {
					return 3000
				}
				return s.EndMs
			}
			r := w.Refresh(tl, 2500, longer)
			So(paths(r.Active), ShouldResemble, []string{"a.ogg", "b.ogg"})
			So(r.Active[0].EndMs, ShouldEqual, int64(3000))
		})
	})
}

func TestExpiredOrder(t *testing.T) {
	Convey("Given an image and an audio item that end together", t, func() {
		tl, err := timeline.Build([]narrative.Frame{
			{ID: "F1", Media: []narrative.MediaItem{
				{ID: "s", Type: narrative.Audio, Path: "s.ogg", DurationMs: 2500},
				{ID: "i", Type: narrative.Image, Path: "i.png"},
			}},
			{ID: "F2", Media: []narrative.MediaItem{
				{ID: "j", Type: narrative.Image, Path: "j.png"},
			}},
		}, timeline.Options{MinFrameMs: 2500})
		So(err, ShouldBeNil)

		w := New(1000)
		w.Refresh(tl, 0, nil)

		Convey("They should expire in timeline order", func() {
			for i := 0; i < 10; i++ {
				w.Reset()
				w.Refresh(tl, 0, nil)
				r := w.Refresh(tl, 2500, nil)
				So(paths(r.Expired), ShouldResemble, []string{"i.png", "s.ogg"})
				So(paths(r.Active), ShouldResemble, []string{"j.png"})
			}
		})
	})
}
