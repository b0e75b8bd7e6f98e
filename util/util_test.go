package util

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSanitizeFilename(t *testing.T) {
	Convey("SanitizeFilename", t, func() {
		Convey("Should replace invalid chars", func() {
			So(SanitizeFilename("file:name?.txt"), ShouldEqual, "file_name_.txt")
		})
		Convey("Should collapse underscores", func() {
			So(SanitizeFilename("course__42"), ShouldEqual, "course_42")
		})
		Convey("Should trim separators", func() {
			So(SanitizeFilename("-course-id-"), ShouldEqual, "course-id")
		})
	})
}

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "video", "videos"), ShouldEqual, "1 video")
		So(Quantify(3, "video", "videos"), ShouldEqual, "3 videos")
	})
}

func TestClock(t *testing.T) {
	Convey("Clock", t, func() {
		So(Clock(0), ShouldEqual, "0:00")
		So(Clock(75.9), ShouldEqual, "1:15")
		So(Clock(3725), ShouldEqual, "1:02:05")

		Convey("Should clamp invalid positions", func() {
			So(Clock(-4), ShouldEqual, "0:00")
			So(Clock(math.NaN()), ShouldEqual, "0:00")
			So(Clock(math.Inf(1)), ShouldEqual, "0:00")
		})
	})
}

func TestMaxMin(t *testing.T) {
	Convey("Max/Min", t, func() {
		So(Max(1, 5, 2), ShouldEqual, 5)
		So(Min(1, 5, 2), ShouldEqual, 1)
		So(Max[int](), ShouldEqual, 0)
	})
}
