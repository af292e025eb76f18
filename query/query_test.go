package query

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/storyplay/storyplay/filesystem"
	"github.com/storyplay/storyplay/key"
)

func TestQuery(t *testing.T) {
	Convey("Given a pick history", t, func() {
		filesystem.SetMemMapFs()
		viper.Set(key.LibraryRankPicks, true)
		Reset(func() {
			filesystem.SetOsFs()
			viper.Set(key.LibraryRankPicks, nil)
		})

		So(Remember("harbor", 1), ShouldBeNil)
		So(Remember("Lighthouse", 5), ShouldBeNil)
		So(Remember("harbor-night", 2), ShouldBeNil)

		Convey("Rank should put the most picked first", func() {
			ranked := Rank([]string{"harbor", "storm", "lighthouse", "harbor-night"})
			So(ranked, ShouldResemble, []string{"lighthouse", "harbor-night", "harbor", "storm"})
		})

		Convey("Rank should keep the order when ranking is off", func() {
			viper.Set(key.LibraryRankPicks, false)
			ids := []string{"storm", "harbor", "lighthouse"}
			So(Rank(ids), ShouldResemble, ids)
		})

		Convey("Repeated picks should add up", func() {
			So(Remember("harbor", 10), ShouldBeNil)
			So(Suggest("har"), ShouldResemble, []string{"harbor", "harbor-night"})
		})

		Convey("Suggest should match fuzzily", func() {
			So(Suggest("lhs"), ShouldResemble, []string{"lighthouse"})
			So(Suggest("zzz"), ShouldBeEmpty)
		})

		Convey("It sanitizes input", func() {
			So(sanitize("  HARBOR  "), ShouldEqual, "harbor")
		})
	})
}
