package cmd

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/storyplay/storyplay/config"
	"github.com/storyplay/storyplay/key"
)

func TestParseValue(t *testing.T) {
	Convey("Given the registered settings", t, func() {
		Convey("Integers should be parsed and negative ones refused", func() {
			v, err := parseValue(config.Default[key.PlaybackAudioSlots], " 4 ")
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 4)

			_, err = parseValue(config.Default[key.PlaybackAudioSlots], "-1")
			So(err, ShouldNotBeNil)
			_, err = parseValue(config.Default[key.PlaybackTickMs], "soon")
			So(err, ShouldNotBeNil)
		})

		Convey("Booleans should be parsed", func() {
			v, err := parseValue(config.Default[key.HistorySaveOnExit], "false")
			So(err, ShouldBeNil)
			So(v, ShouldEqual, false)

			_, err = parseValue(config.Default[key.HistorySaveOnExit], "maybe")
			So(err, ShouldNotBeNil)
		})

		Convey("Named options should be checked", func() {
			v, err := parseValue(config.Default[key.PlayerAudio], "silent")
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "silent")

			_, err = parseValue(config.Default[key.PlayerAudio], "vlc")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "mpv, silent")

			So(choices(key.LogsLevel), ShouldContain, "debug")
		})

		Convey("Free strings should be kept as given", func() {
			v, err := parseValue(config.Default[key.LibraryPath], "/srv/stories")
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "/srv/stories")
		})

		Convey("Unknown keys should suggest the closest one", func() {
			So(errUnknownKey("playback.tick").Error(), ShouldContainSubstring, key.PlaybackTickMs)
		})
	})
}
