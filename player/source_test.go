package player

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestTimeSource(t *testing.T) {
	Convey("Given a time source with a sample handler", t, func() {
		ts := NewTimeSource()
		var samples []Sample
		ts.SetSampleHandler(func(s Sample) { samples = append(samples, s) })

		Convey("Updates after the duration is known should be emitted at once", func() {
			ts.OnDurationChange(600)
			ts.OnTimeUpdate(1)
			ts.OnTimeUpdate(2)

			So(samples, ShouldResemble, []Sample{{1, 600}, {2, 600}})
		})

		Convey("Updates before the duration should be held and replayed in order", func() {
			ts.OnTimeUpdate(0.5)
			ts.OnTimeUpdate(1.5)
			So(samples, ShouldBeEmpty)

			ts.OnDurationChange(120)
			So(samples, ShouldResemble, []Sample{{0.5, 120}, {1.5, 120}})

			ts.OnTimeUpdate(2.5)
			So(samples, ShouldHaveLength, 3)
		})

		Convey("Held updates should be bounded with the oldest dropped", func() {
			for i := 0; i < PendingLimit+8; i++ {
				ts.OnTimeUpdate(float64(i))
			}
			ts.OnDurationChange(1000)

			So(samples, ShouldHaveLength, PendingLimit)
			So(samples[0].CurrentTime, ShouldEqual, 8)
			So(samples[PendingLimit-1].CurrentTime, ShouldEqual, PendingLimit+7)
		})

		Convey("An invalid duration should make it unknown again", func() {
			ts.OnDurationChange(300)
			ts.OnDurationChange(math.NaN())
			ts.OnTimeUpdate(4)

			_, known := ts.Duration()
			So(known, ShouldBeFalse)
			So(samples, ShouldBeEmpty)
		})

		Convey("Reset should drop held updates", func() {
			ts.OnTimeUpdate(9)
			ts.Reset()
			ts.OnDurationChange(60)
			So(samples, ShouldBeEmpty)
		})

		Convey("Rebinding the handler should replace the previous one", func() {
			var other []Sample
			ts.SetSampleHandler(func(s Sample) { other = append(other, s) })
			ts.OnDurationChange(10)
			ts.OnTimeUpdate(1)

			So(samples, ShouldBeEmpty)
			So(other, ShouldHaveLength, 1)
		})
	})

	Convey("Given mpv events", t, func() {
		ts := NewTimeSource()
		var samples []Sample
		ready := 0
		ts.SetSampleHandler(func(s Sample) { samples = append(samples, s) })
		ts.SetReadyHandler(func() { ready++ })

		Convey("They should drive the callbacks", func() {
			So(ts.HandleEvent("start-file", nil), ShouldBeTrue)
			So(ts.HandleEvent("time-pos", 0.0), ShouldBeTrue)
			So(ts.HandleEvent("file-loaded", map[string]any{"event": "file-loaded"}), ShouldBeTrue)
			So(ts.HandleEvent("duration", 240.0), ShouldBeTrue)
			So(ts.HandleEvent("time-pos", 12.0), ShouldBeTrue)

			So(ready, ShouldEqual, 1)
			So(samples, ShouldResemble, []Sample{{0, 240}, {12, 240}})
		})

		Convey("A null property value should not emit", func() {
			ts.HandleEvent("duration", 240.0)
			ts.HandleEvent("time-pos", nil)
			So(samples, ShouldBeEmpty)

			ts.HandleEvent("duration", nil)
			_, known := ts.Duration()
			So(known, ShouldBeFalse)
		})

		Convey("Unrelated events should not be consumed", func() {
			So(ts.HandleEvent("pause", true), ShouldBeFalse)
			So(ts.HandleEvent("end-file", nil), ShouldBeFalse)
		})
	})
}
