package ui

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNotifications(t *testing.T) {
	Convey("Given a notification model", t, func() {
		var m Model

		Convey("Nothing should be added to the view", func() {
			So(m.View("a\nb"), ShouldEqual, "a\nb")
		})

		Convey("A notification should be shown on the last line", func() {
			cmd := m.Update(Notify("media dropped")())
			So(cmd, ShouldNotBeNil)
			So(m.Notification(), ShouldEqual, "media dropped")
			So(m.View("a\nb"), ShouldStartWith, "a\nb  ")
			So(m.View("a\nb"), ShouldContainSubstring, "media dropped")

			Convey("and cleared by its own clear message", func() {
				m.Update(ClearNotificationMsg{generation: 1})
				So(m.Notification(), ShouldBeEmpty)
			})

			Convey("but not by the clear of an older one", func() {
				m.Update(Notify("second")())
				m.Update(ClearNotificationMsg{generation: 1})
				So(m.Notification(), ShouldEqual, "second")
			})
		})
	})
}
