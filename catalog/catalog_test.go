package catalog

import (
	"errors"
	"testing"

	"github.com/reelmark-cli/reelmark/filesystem"
	"github.com/reelmark-cli/reelmark/media"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

const playlistDoc = `{
	"id": "go-101",
	"title": "Go 101",
	"type": "playlist",
	"completed_videos": ["l11"],
	"video_progress": {"l12": {"timestamp": 42, "timeSlap": "00:42"}},
	"trailer": {"id": "trailer", "url": "https://cdn.example.com/trailer.m3u8"},
	"chapters": [
		{"title": "Basics", "lessons": [{"id": "l11"}, {"id": "l12", "url": "https://cdn.example.com/l12.m3u8"}]},
		{"title": "Types", "lessons": [{"id": "l21", "is_done": true}, {"id": "l22"}]}
	]
}`

func TestParse(t *testing.T) {
	Convey("Given a playlist document", t, func() {
		course, err := Parse([]byte(playlistDoc))
		So(err, ShouldBeNil)

		Convey("It should list lessons in play order without the trailer", func() {
			refs := course.Refs()
			So(refs, ShouldHaveLength, 4)
			So(refs[0], ShouldResemble, media.Lesson("l11", 0, 0))
			So(refs[3], ShouldResemble, media.Lesson("l22", 1, 1))
			So(course.Trailer().MustGet().Type(), ShouldEqual, media.Trailer)
		})

		Convey("It should find videos by id", func() {
			So(course.Find("l21").MustGet(), ShouldResemble, media.Lesson("l21", 1, 0))
			So(course.Find("trailer").IsPresent(), ShouldBeTrue)
			So(course.Find("missing").IsAbsent(), ShouldBeTrue)
			So(course.Video("l12").MustGet().URL, ShouldEqual, "https://cdn.example.com/l12.m3u8")
		})

		Convey("It should navigate across chapters", func() {
			So(course.Next(media.Lesson("l12", 0, 1)).MustGet().ID(), ShouldEqual, "l21")
			So(course.Prev(media.Lesson("l21", 1, 0)).MustGet().ID(), ShouldEqual, "l12")
			So(course.Prev(course.First().MustGet()).IsAbsent(), ShouldBeTrue)
			So(course.Next(media.Lesson("l22", 1, 1)).IsAbsent(), ShouldBeTrue)
		})

		Convey("It should expose saved positions", func() {
			snapshot := course.Snapshot("l12").MustGet()
			So(snapshot.TimestampSeconds, ShouldEqual, 42)
			So(snapshot.DisplayTime, ShouldEqual, "00:42")
			So(course.Snapshot("l11").IsAbsent(), ShouldBeTrue)
		})

		Convey("Its aggregator should merge the list and the flags", func() {
			agg := course.Completion()
			So(agg.IsVideoDone("l11"), ShouldBeTrue)
			So(agg.IsVideoDone("l21"), ShouldBeTrue)
			So(agg.IsVideoDone("l12"), ShouldBeFalse)
			So(agg.IsVideoDone("trailer"), ShouldBeFalse)
			So(agg.IsCourseDone(), ShouldBeFalse)
		})
	})

	Convey("Given minimal documents", t, func() {
		Convey("Missing optional fields should default", func() {
			course, err := Parse([]byte(`{"id": "c", "type": "series"}`))
			So(err, ShouldBeNil)
			So(course.Refs(), ShouldBeEmpty)
			So(course.First().IsAbsent(), ShouldBeTrue)
			So(course.Completion().IsCourseDone(), ShouldBeFalse)
			So(course.Title(), ShouldEqual, "c")
		})

		Convey("A single course should yield one ref", func() {
			course, err := Parse([]byte(`{"id": "c", "type": "single", "video": {"id": "v"}}`))
			So(err, ShouldBeNil)
			So(course.Refs(), ShouldResemble, []media.Ref{media.SingleVideo("v")})
		})

		Convey("Duplicate and blank ids should be skipped", func() {
			course, err := Parse([]byte(`{"id": "c", "type": "series", "series": [{"id": "e"}, {"id": ""}, {"id": "e"}]}`))
			So(err, ShouldBeNil)
			So(course.Refs(), ShouldHaveLength, 1)
		})
	})

	Convey("Given broken documents", t, func() {
		_, err := Parse([]byte(`{"type": "series"}`))
		So(errors.Is(err, ErrEmptyID), ShouldBeTrue)

		_, err = Parse([]byte(`{"id": "c", "type": "movie"}`))
		So(errors.Is(err, media.ErrInvalidRef), ShouldBeTrue)

		_, err = Parse([]byte(`{"id": "c", "type": "trailer"}`))
		So(err, ShouldNotBeNil)

		_, err = Parse([]byte(`{`))
		So(err, ShouldNotBeNil)
	})
}

func TestLoad(t *testing.T) {
	Convey("Given a document on disk", t, func() {
		So(filesystem.API().WriteFile("/catalog/go-101.json", []byte(playlistDoc), 0o644), ShouldBeNil)

		course, err := Load("/catalog/go-101.json")
		So(err, ShouldBeNil)
		So(course.ID(), ShouldEqual, "go-101")
		So(course.Type(), ShouldEqual, media.Playlist)

		_, err = Load("/catalog/missing.json")
		So(err, ShouldNotBeNil)
	})
}
