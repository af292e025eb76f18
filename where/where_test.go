package where

import (
	"path/filepath"
	"testing"

	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/storyplay/storyplay/filesystem"
	"github.com/storyplay/storyplay/key"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestPaths(t *testing.T) {
	Convey("Path functions", t, func() {
		Convey("Config()", func() {
			path := Config()
			So(path, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("Logs() lives under Config()", func() {
			path := Logs()
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
			So(filepath.Dir(path), ShouldEqual, Config())
		})

		Convey("Library()", func() {
			Convey("defaults to a directory under Config()", func() {
				viper.Set(key.LibraryPath, "")
				So(Library(), ShouldEqual, filepath.Join(Config(), "library"))
			})

			Convey("honours library.path", func() {
				viper.Set(key.LibraryPath, "/stories")
				defer viper.Set(key.LibraryPath, "")
				So(Library(), ShouldEqual, "/stories")
				So(lo.Must(filesystem.API().IsDir("/stories")), ShouldBeTrue)
			})
		})

		Convey("Durations() is a file in Cache()", func() {
			So(filepath.Dir(Durations()), ShouldEqual, Cache())
		})
	})
}
