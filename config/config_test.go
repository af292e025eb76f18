package config

import (
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/storyplay/storyplay/filesystem"
	"github.com/storyplay/storyplay/key"
	"github.com/storyplay/storyplay/where"
)

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		filesystem.SetMemMapFs()
		viper.Reset()
		Reset(func() {
			viper.Reset()
			filesystem.SetOsFs()
		})

		Convey("Should initialize without a config file", func() {
			So(Setup(), ShouldBeNil)
		})

		Convey("Should populate every registered default", func() {
			So(Setup(), ShouldBeNil)
			for name, field := range Default {
				So(viper.Get(name), ShouldEqual, field.Value)
			}
			So(viper.GetInt(key.PlaybackAudioSlots), ShouldEqual, 6)
			So(viper.GetString(key.PlayerAudio), ShouldEqual, "mpv")
		})

		Convey("Should read overrides from the toml file", func() {
			path := filepath.Join(where.Config(), "storyplay.toml")
			err := filesystem.API().WriteFile(path, []byte("[playback]\naudio_slots = 3\n[player]\naudio = \"silent\"\n"), 0o644)
			So(err, ShouldBeNil)

			So(Setup(), ShouldBeNil)
			So(viper.GetInt(key.PlaybackAudioSlots), ShouldEqual, 3)
			So(viper.GetString(key.PlayerAudio), ShouldEqual, "silent")
			So(viper.GetInt(key.PlaybackTickMs), ShouldEqual, 100)
		})

		Convey("Should prefer environment variables", func() {
			t.Setenv("STORYPLAY_PLAYBACK_MIN_FRAME_MS", "4000")
			So(Setup(), ShouldBeNil)
			So(viper.GetInt(key.PlaybackMinFrameMs), ShouldEqual, 4000)
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			So(EnvKeyReplacer.Replace("playback.preload_horizon_ms"), ShouldEqual, "playback_preload_horizon_ms")
		})
	})
}

func TestField(t *testing.T) {
	Convey("Given a registered field", t, func() {
		field := Default[key.PlaybackAudioSlots]

		Convey("Env should carry the application prefix", func() {
			So(field.Env(), ShouldEqual, "STORYPLAY_PLAYBACK_AUDIO_SLOTS")
		})

		Convey("Type name should follow the default value", func() {
			So(field.typeName(), ShouldEqual, "int")
			logs := Default[key.LogsWrite]
			So(logs.typeName(), ShouldEqual, "bool")
		})
	})
}
