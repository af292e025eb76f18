package player

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/storyplay/storyplay/filesystem"
	"github.com/storyplay/storyplay/where"
)

func TestMPVArgs(t *testing.T) {
	Convey("mpv arguments", t, func() {
		args := mpvArgs("/tmp/s.sock", "/audio/a.ogg")

		Convey("Should start paused without video and keep the file loaded", func() {
			So(args, ShouldContain, "--pause=yes")
			So(args, ShouldContain, "--no-video")
			So(args, ShouldContain, "--keep-open=yes")
			So(args, ShouldContain, "--input-ipc-server=/tmp/s.sock")
		})

		Convey("Should end the option list before the target", func() {
			So(args[len(args)-2], ShouldEqual, "--")
			So(args[len(args)-1], ShouldEqual, "/audio/a.ogg")
		})
	})
}

func TestSanitizeMediaTarget(t *testing.T) {
	Convey("Media targets", t, func() {
		Convey("Local paths should be cleaned", func() {
			target, err := sanitizeMediaTarget(" /audio/../audio/a.ogg ")
			So(err, ShouldBeNil)
			So(target, ShouldEqual, "/audio/a.ogg")
		})

		Convey("File URLs should become paths", func() {
			target, err := sanitizeMediaTarget("file:///audio/a.ogg")
			So(err, ShouldBeNil)
			So(target, ShouldEqual, "/audio/a.ogg")
		})

		Convey("Remote URLs, control characters and empty paths should be rejected", func() {
			for _, bad := range []string{"https://example.com/a.ogg", "/a\n.ogg", "  "} {
				_, err := sanitizeMediaTarget(bad)
				So(err, ShouldNotBeNil)
			}
		})
	})
}

func TestEventListener(t *testing.T) {
	Convey("Given an event listener", t, func() {
		got := map[string]interface{}{}
		el := &eventListener{callback: func(name string, data interface{}) {
			got[name] = data
		}}

		Convey("Property changes should be forwarded by name", func() {
			el.processEvent([]byte(`{"event":"property-change","id":1,"name":"duration","data":12.5}` + "\n"))
			So(got["duration"], ShouldEqual, 12.5)
		})

		Convey("Other events should be forwarded by type", func() {
			el.processEvent([]byte(`{"event":"end-file","reason":"eof"}`))
			So(got, ShouldContainKey, "end-file")
		})

		Convey("Command replies and garbage should be ignored", func() {
			el.processEvent([]byte(`{"error":"success","data":null}`))
			el.processEvent([]byte(`{not json`))
			So(got, ShouldBeEmpty)
		})
	})

	Convey("Responses", t, func() {
		data, err := decodeResponse([]byte(`{"error":"success","data":3.5}`))
		So(err, ShouldBeNil)
		So(data, ShouldEqual, 3.5)

		_, err = decodeResponse([]byte(`{"error":"property unavailable"}`))
		So(err, ShouldNotBeNil)
	})
}

func TestSockets(t *testing.T) {
	Convey("Given the temp directory on an in-memory filesystem", t, func() {
		filesystem.SetMemMapFs()
		Reset(filesystem.SetOsFs)

		Convey("New sockets should live in the temp directory", func() {
			path, err := newSocketPath()
			So(err, ShouldBeNil)
			So(filepath.Dir(path), ShouldEqual, where.Temp())

			matched, err := filepath.Match(socketPattern, filepath.Base(path))
			So(err, ShouldBeNil)
			So(matched, ShouldBeTrue)

			other, err := newSocketPath()
			So(err, ShouldBeNil)
			So(other, ShouldNotEqual, path)
		})

		Convey("Sweeping should remove only old sockets nobody listens on", func() {
			var (
				stale = filepath.Join(where.Temp(), "mpv-dead.sock")
				fresh = filepath.Join(where.Temp(), "mpv-new.sock")
				other = filepath.Join(where.Temp(), "notes.txt")
				old   = time.Now().Add(-2 * staleSocketAge)
			)
			for _, path := range []string{stale, fresh, other} {
				So(filesystem.API().WriteFile(path, nil, 0o600), ShouldBeNil)
			}
			So(filesystem.API().Chtimes(stale, old, old), ShouldBeNil)
			So(filesystem.API().Chtimes(other, old, old), ShouldBeNil)

			SweepSockets()

			remaining, err := filesystem.API().ReadDir(where.Temp())
			So(err, ShouldBeNil)
			var names []string
			for _, info := range remaining {
				names = append(names, info.Name())
			}
			So(strings.Join(names, ","), ShouldEqual, "mpv-new.sock,notes.txt")
		})
	})
}
