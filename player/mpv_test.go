package player

import (
	"bufio"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMPV(t *testing.T) {
	Convey("Given an mpv player that has not been started", t, func() {
		mpv := NewMPV()

		Convey("It should not report running", func() {
			So(mpv.IsRunning(), ShouldBeFalse)
			So(mpv.Socket(), ShouldBeEmpty)
		})

		Convey("Close should be a no-op", func() {
			So(mpv.Close(), ShouldBeNil)
		})

		Convey("Its arguments should end with the target after a separator", func() {
			mpv.socketPath = "/tmp/reelmark-test.sock"
			args := mpv.args("/videos/intro.mp4", "Intro")

			So(args, ShouldContain, "--input-ipc-server=/tmp/reelmark-test.sock")
			So(args, ShouldContain, "--force-media-title=Intro")
			So(args, ShouldNotContain, "--pause")
			So(args[len(args)-2:], ShouldResemble, []string{"--", "/videos/intro.mp4"})
		})

		Convey("StartPaused should add the pause flag", func() {
			mpv.StartPaused = true
			So(mpv.args("/videos/intro.mp4", "Intro"), ShouldContain, "--pause")
		})
	})
}

func TestSanitizeMediaTarget(t *testing.T) {
	Convey("Given media targets", t, func() {
		Convey("Local paths should be cleaned", func() {
			target, err := sanitizeMediaTarget(" /videos/../videos/a.mp4 ")
			So(err, ShouldBeNil)
			So(target, ShouldEqual, "/videos/a.mp4")
		})

		Convey("http and https should be accepted", func() {
			_, err := sanitizeMediaTarget("https://cdn.example.com/a.m3u8")
			So(err, ShouldBeNil)
		})

		Convey("Other schemes should be rejected", func() {
			_, err := sanitizeMediaTarget("ftp://example.com/a.mp4")
			So(err, ShouldNotBeNil)
		})

		Convey("Flag-like and empty targets should be rejected", func() {
			_, err := sanitizeMediaTarget("--script=evil.lua")
			So(err, ShouldNotBeNil)

			_, err = sanitizeMediaTarget("   ")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestSanitizeTitle(t *testing.T) {
	Convey("sanitizeTitle should flatten control characters", t, func() {
		So(sanitizeTitle(" Chapter 1\n\tLesson\x002 "), ShouldEqual, "Chapter 1  Lesson2")
	})
}

func TestReadReply(t *testing.T) {
	Convey("Given a reply stream", t, func() {
		Convey("Event lines ahead of the reply should be skipped", func() {
			r := bufio.NewReader(strings.NewReader(
				`{"event":"file-loaded"}` + "\n" + `{"data":12.5,"error":"success"}` + "\n",
			))
			data, err := readReply(r)
			So(err, ShouldBeNil)
			So(data, ShouldEqual, 12.5)
		})

		Convey("mpv errors should be returned", func() {
			r := bufio.NewReader(strings.NewReader(`{"error":"property unavailable"}` + "\n"))
			_, err := readReply(r)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "property unavailable")
		})

		Convey("A closed stream should fail", func() {
			_, err := readReply(bufio.NewReader(strings.NewReader("")))
			So(err, ShouldNotBeNil)
		})
	})
}
