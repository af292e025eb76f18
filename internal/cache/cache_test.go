package cache

import (
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/storyplay/storyplay/engine"
	"github.com/storyplay/storyplay/filesystem"
	"github.com/storyplay/storyplay/where"
)

var _ engine.DurationCache = (*Durations)(nil)

func TestDurations(t *testing.T) {
	Convey("Given a durations cache on an in-memory filesystem", t, func() {
		filesystem.SetMemMapFs()
		Reset(filesystem.SetOsFs)

		So(filesystem.API().WriteFile("/media/theme.ogg", []byte("ogg"), 0o644), ShouldBeNil)
		durations := NewDurations("/cache/durations.json")

		Convey("Unknown files should report 0", func() {
			So(durations.Lookup("/media/theme.ogg"), ShouldEqual, int64(0))
			So(durations.Lookup("/media/missing.ogg"), ShouldEqual, int64(0))
		})

		Convey("Recorded durations should be found again", func() {
			durations.Record("/media/theme.ogg", 4200)
			So(durations.Lookup("/media/theme.ogg"), ShouldEqual, int64(4200))
			So(durations.Len(), ShouldEqual, 1)

			Convey("by a cache reading the same file", func() {
				reopened := NewDurations("/cache/durations.json")
				So(reopened.Lookup("/media/theme.ogg"), ShouldEqual, int64(4200))
			})

			Convey("but not once the file changed", func() {
				So(filesystem.API().WriteFile("/media/theme.ogg", []byte("a longer ogg"), 0o644), ShouldBeNil)
				So(durations.Lookup("/media/theme.ogg"), ShouldEqual, int64(0))
			})
		})

		Convey("Non-positive durations should not be recorded", func() {
			durations.Record("/media/theme.ogg", 0)
			So(durations.Len(), ShouldEqual, 0)
		})
	})
}

func TestCollectGarbage(t *testing.T) {
	Convey("Given an old and a fresh file in the cache directory", t, func() {
		filesystem.SetMemMapFs()
		Reset(filesystem.SetOsFs)

		stale := filepath.Join(where.Cache(), "stale.json")
		fresh := filepath.Join(where.Cache(), "fresh.json")
		So(filesystem.API().WriteFile(stale, []byte("{}"), 0o644), ShouldBeNil)
		So(filesystem.API().WriteFile(fresh, []byte("{}"), 0o644), ShouldBeNil)

		old := time.Now().Add(-2 * Lifetime)
		So(filesystem.API().Chtimes(stale, old, old), ShouldBeNil)

		Convey("When garbage is collected", func() {
			CollectGarbage()

			Convey("Then only the old file should be removed", func() {
				exists, err := filesystem.API().Exists(stale)
				So(err, ShouldBeNil)
				So(exists, ShouldBeFalse)

				exists, err = filesystem.API().Exists(fresh)
				So(err, ShouldBeNil)
				So(exists, ShouldBeTrue)
			})
		})
	})
}
