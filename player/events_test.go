package player

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

type received struct {
	name string
	data any
}

func TestEventListenerConsume(t *testing.T) {
	Convey("Given a listener collecting events", t, func() {
		var got []received
		el := NewEventListener("/tmp/unused.sock", func(name string, data any) {
			got = append(got, received{name, data})
		})

		Convey("Property changes should be forwarded by property name", func() {
			rest := el.consume([]byte(`{"event":"property-change","id":1,"name":"time-pos","data":3.5}` + "\n"))
			So(rest, ShouldBeEmpty)
			So(got, ShouldHaveLength, 1)
			So(got[0].name, ShouldEqual, "time-pos")
			So(got[0].data, ShouldEqual, 3.5)
		})

		Convey("Other events should be forwarded by event name", func() {
			el.consume([]byte(`{"event":"file-loaded"}` + "\n"))
			So(got, ShouldHaveLength, 1)
			So(got[0].name, ShouldEqual, "file-loaded")
		})

		Convey("Command replies and garbage should be ignored", func() {
			el.consume([]byte(`{"data":null,"error":"success","request_id":0}` + "\n" + "not json\n"))
			So(got, ShouldBeEmpty)
		})

		Convey("A partial line should be kept until it is terminated", func() {
			rest := el.consume([]byte(`{"event":"property-change","name":"duration",`))
			So(got, ShouldBeEmpty)

			rest = el.consume(append(rest, []byte(`"data":600}`+"\n")...))
			So(rest, ShouldBeEmpty)
			So(got, ShouldHaveLength, 1)
			So(got[0].name, ShouldEqual, "duration")
			So(got[0].data, ShouldEqual, 600.0)
		})
	})
}

func TestEventListenerStart(t *testing.T) {
	Convey("Starting against a missing socket should fail", t, func() {
		el := NewEventListener("/nonexistent/reelmark.sock", nil)
		So(el.Start(), ShouldNotBeNil)

		Convey("Stop should then be a no-op", func() {
			el.Stop()
		})
	})
}
