package open

import (
	"runtime"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/storyplay/storyplay/constant"
)

func TestCommand(t *testing.T) {
	Convey("Given a manifest path", t, func() {
		path := "/lib/harbor.yaml"

		Convey("When an app is named on Linux", func() {
			if runtime.GOOS != constant.Linux {
				SkipSo("only meaningful on linux")
				return
			}
			cmd, ok := command(path, "vi")

			Convey("Then it should be run directly with the path", func() {
				So(ok, ShouldBeTrue)
				So(cmd.Args, ShouldResemble, []string{"vi", path})
			})
		})

		Convey("When no app is named on Linux", func() {
			if runtime.GOOS != constant.Linux {
				SkipSo("only meaningful on linux")
				return
			}
			cmd, ok := command(path, "")

			Convey("Then xdg-open should handle it", func() {
				So(ok, ShouldBeTrue)
				So(cmd.Args, ShouldResemble, []string{"xdg-open", path})
			})
		})
	})
}
