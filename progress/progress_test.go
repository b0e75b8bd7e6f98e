package progress

import (
	"math"
	"testing"

	"github.com/reelmark-cli/reelmark/media"
	"github.com/reelmark-cli/reelmark/player"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPercent(t *testing.T) {
	Convey("Percent", t, func() {
		Convey("Should floor the ratio", func() {
			So(Percent(74.99, 100), ShouldEqual, 74)
			So(Percent(1, 3), ShouldEqual, 33)
		})

		Convey("Should be zero without a duration", func() {
			So(Percent(10, 0), ShouldEqual, 0)
			So(Percent(10, math.NaN()), ShouldEqual, 0)
		})

		Convey("Should clamp past the end", func() {
			So(Percent(130, 100), ShouldEqual, 100)
		})

		Convey("Should be non-decreasing for increasing time and idempotent", func() {
			prev := 0
			for ct := 0.0; ct <= 600; ct += 7.3 {
				p := Percent(ct, 600)
				So(p, ShouldBeGreaterThanOrEqualTo, prev)
				So(Percent(ct, 600), ShouldEqual, p)
				prev = p
			}
		})
	})
}

func TestValid(t *testing.T) {
	Convey("Valid", t, func() {
		So(Valid(player.Sample{CurrentTime: 0, Duration: 0}), ShouldBeTrue)
		So(Valid(player.Sample{CurrentTime: 5, Duration: 100}), ShouldBeTrue)

		So(Valid(player.Sample{CurrentTime: -1, Duration: 100}), ShouldBeFalse)
		So(Valid(player.Sample{CurrentTime: 5, Duration: 0}), ShouldBeFalse)
		So(Valid(player.Sample{CurrentTime: math.NaN(), Duration: 100}), ShouldBeFalse)
		So(Valid(player.Sample{CurrentTime: 5, Duration: math.Inf(1)}), ShouldBeFalse)
	})
}

func TestTracker(t *testing.T) {
	Convey("Given a tracker with a mounted video", t, func() {
		tracker := NewTracker()
		ref := media.Lesson("l1", 0, 0)
		tracker.Mount(ref)

		var completed []media.Ref
		tracker.SetCompletionHandler(func(r media.Ref) { completed = append(completed, r) })

		at := func(percent float64) Result {
			result, ok := tracker.Accept(ref, player.Sample{CurrentTime: percent, Duration: 100})
			So(ok, ShouldBeTrue)
			return result
		}

		Convey("Completion should fire once when crossing back and forth", func() {
			var fired int
			for _, p := range []float64{70, 80, 60, 85} {
				if at(p).JustCompleted {
					fired++
				}
			}

			So(fired, ShouldEqual, 1)
			So(completed, ShouldHaveLength, 1)
			So(completed[0].ID(), ShouldEqual, "l1")
		})

		Convey("Done should stay true after scrubbing back", func() {
			at(90)
			result := at(10)

			So(result.Done, ShouldBeTrue)
			So(result.JustCompleted, ShouldBeFalse)
			So(tracker.IsDone("l1"), ShouldBeTrue)
		})

		Convey("The record should keep the last position and derive its percent", func() {
			at(20)
			at(42.7)

			record, ok := tracker.Record("l1")
			So(ok, ShouldBeTrue)
			So(record.Timestamp, ShouldEqual, 42.7)
			So(record.Percent(), ShouldEqual, 42)
			So(record.Percent(), ShouldEqual, record.Percent())
		})

		Convey("Malformed samples should change nothing", func() {
			at(30)
			for _, s := range []player.Sample{
				{CurrentTime: -3, Duration: 100},
				{CurrentTime: 90, Duration: 0},
				{CurrentTime: math.NaN(), Duration: 100},
			} {
				_, ok := tracker.Accept(ref, s)
				So(ok, ShouldBeFalse)
			}

			record, _ := tracker.Record("l1")
			So(record.Timestamp, ShouldEqual, 30)
			So(completed, ShouldBeEmpty)
		})

		Convey("Zero-percent samples should be stored without completing", func() {
			result, ok := tracker.Accept(ref, player.Sample{CurrentTime: 0, Duration: 0})
			So(ok, ShouldBeTrue)
			So(result.Percent, ShouldEqual, 0)
			So(result.JustCompleted, ShouldBeFalse)

			_, stored := tracker.Record("l1")
			So(stored, ShouldBeTrue)
		})

		Convey("Samples for another video should be dropped", func() {
			_, ok := tracker.Accept(media.Lesson("l2", 0, 1), player.Sample{CurrentTime: 90, Duration: 100})
			So(ok, ShouldBeFalse)

			_, stored := tracker.Record("l2")
			So(stored, ShouldBeFalse)
		})

		Convey("Mounting again should re-arm the notification", func() {
			at(80)
			tracker.Mount(media.Lesson("l2", 0, 1))
			tracker.Mount(ref)
			So(at(81).JustCompleted, ShouldBeTrue)
			So(completed, ShouldHaveLength, 2)
		})

		Convey("Nothing should be accepted once unmounted", func() {
			tracker.Unmount()
			_, ok := tracker.Accept(ref, player.Sample{CurrentTime: 10, Duration: 100})
			So(ok, ShouldBeFalse)
		})
	})
}
