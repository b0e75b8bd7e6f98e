package media

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRef(t *testing.T) {
	Convey("Given refs of every shape", t, func() {
		single := SingleVideo("v1")
		trailer := TrailerVideo("t1")
		episode := Episode("e3", 2)
		lesson := Lesson("l12", 0, 1)

		Convey("They should expose only the indices of their shape", func() {
			So(single.SeriesIndex().IsAbsent(), ShouldBeTrue)
			So(single.LessonPosition().IsAbsent(), ShouldBeTrue)
			So(trailer.Type(), ShouldEqual, Trailer)

			So(episode.SeriesIndex().MustGet(), ShouldEqual, 2)
			So(episode.LessonPosition().IsAbsent(), ShouldBeTrue)

			So(lesson.LessonPosition().MustGet(), ShouldResemble, Position{Chapter: 0, Lesson: 1})
			So(lesson.SeriesIndex().IsAbsent(), ShouldBeTrue)
		})

		Convey("They should validate", func() {
			for _, ref := range []Ref{single, trailer, episode, lesson} {
				So(ref.Validate(), ShouldBeNil)
			}
		})

		Convey("Progress equality should be by video id", func() {
			So(lesson.SameVideo(SingleVideo("l12")), ShouldBeTrue)
			So(lesson.SameVideo(Lesson("l13", 0, 1)), ShouldBeFalse)
		})

		Convey("Slot equality should be by descriptor", func() {
			So(lesson.SameSlot(Lesson("other", 0, 1)), ShouldBeTrue)
			So(lesson.SameSlot(Lesson("l12", 0, 2)), ShouldBeFalse)
			So(episode.SameSlot(Episode("e3", 2)), ShouldBeTrue)
			So(single.SameSlot(trailer), ShouldBeFalse)
		})
	})

	Convey("Given invalid refs", t, func() {
		Convey("The zero ref should be rejected", func() {
			var zero Ref
			So(zero.IsZero(), ShouldBeTrue)
			So(errors.Is(zero.Validate(), ErrInvalidRef), ShouldBeTrue)
		})

		Convey("Negative indices should be rejected", func() {
			So(errors.Is(Episode("e", -1).Validate(), ErrInvalidRef), ShouldBeTrue)
			So(errors.Is(Lesson("l", 0, -1).Validate(), ErrInvalidRef), ShouldBeTrue)
		})

		Convey("Blank ids should be rejected", func() {
			So(SingleVideo("  ").Validate(), ShouldNotBeNil)
		})
	})
}

func TestParseContentType(t *testing.T) {
	Convey("ParseContentType", t, func() {
		ct, err := ParseContentType(" Playlist ")
		So(err, ShouldBeNil)
		So(ct, ShouldEqual, Playlist)

		_, err = ParseContentType("movie")
		So(errors.Is(err, ErrInvalidRef), ShouldBeTrue)
	})
}

func TestString(t *testing.T) {
	Convey("String should be one-based for people", t, func() {
		So(Lesson("intro", 0, 1).String(), ShouldEqual, "intro[chapter 1, lesson 2]")
		So(Episode("pilot", 0).String(), ShouldEqual, "pilot[episode 1]")
		So(SingleVideo("solo").String(), ShouldEqual, "solo")
	})
}
