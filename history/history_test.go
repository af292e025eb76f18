package history

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/storyplay/storyplay/engine"
	"github.com/storyplay/storyplay/filesystem"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestHistory(t *testing.T) {
	Convey("Given a snapshot", t, func() {
		snap := engine.Snapshot{NarrativeID: "harbor", StartFrameID: "B", PositionMs: 3000}

		Convey("When saving it", func() {
			err := Save(snap, "The Harbor", 5000)
			So(err, ShouldBeNil)

			Convey("It should be found by narrative id", func() {
				found, err := Lookup("harbor")
				So(err, ShouldBeNil)
				saved, ok := found.Get()
				So(ok, ShouldBeTrue)
				So(saved.Snapshot, ShouldResemble, snap)
				So(saved.Title, ShouldEqual, "The Harbor")
				So(saved.Finished(), ShouldBeFalse)
				So(saved.String(), ShouldContainSubstring, "The Harbor")
			})

			Convey("A later save should replace it", func() {
				snap.PositionMs = 5000
				So(Save(snap, "The Harbor", 5000), ShouldBeNil)

				all, err := Get()
				So(err, ShouldBeNil)
				So(all["harbor"].PositionMs, ShouldEqual, int64(5000))
				So(all["harbor"].Finished(), ShouldBeTrue)
			})

			Convey("Removing it should forget it", func() {
				So(Remove("harbor"), ShouldBeNil)
				found, err := Lookup("harbor")
				So(err, ShouldBeNil)
				So(found.IsAbsent(), ShouldBeTrue)
			})
		})
	})
}
