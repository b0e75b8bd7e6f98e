package history

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/reelmark-cli/reelmark/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

var runs int

func init() {
	filesystem.SetMemMapFs()
}

func TestLocal(t *testing.T) {
	Convey("Given a local store", t, func() {
		ctx := context.Background()
		runs++
		store := NewLocal(fmt.Sprintf("/reelmark/history-%d.json", runs))
		clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		store.now = func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		}

		flush := Flush{ProfileID: "p1", CourseID: "c1", VideoID: "v1", Timestamp: 30, Duration: 100}

		Convey("When a position is persisted", func() {
			So(store.Persist(ctx, flush), ShouldBeNil)

			Convey("Then it should be returned by Get", func() {
				entry, err := store.Get(ctx, "p1", "c1", "v1")
				So(err, ShouldBeNil)
				So(entry.Timestamp, ShouldEqual, 30)
				So(entry.WatchedPercentage, ShouldEqual, 30)
			})

			Convey("Then a later rewind should move the position but keep the percentage", func() {
				flush.Timestamp = 10
				So(store.Persist(ctx, flush), ShouldBeNil)

				entry, _ := store.Get(ctx, "p1", "c1", "v1")
				So(entry.Timestamp, ShouldEqual, 10)
				So(entry.WatchedPercentage, ShouldEqual, 30)
			})

			Convey("Then replaying it should be harmless", func() {
				So(store.Persist(ctx, flush), ShouldBeNil)

				entries, err := store.List(ctx)
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 1)
			})

			Convey("Then List should put the newest first", func() {
				So(store.Persist(ctx, Flush{ProfileID: "p1", CourseID: "c1", VideoID: "v2", Timestamp: 5, Duration: 50}), ShouldBeNil)

				entries, err := store.List(ctx)
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 2)
				So(entries[0].VideoID, ShouldEqual, "v2")
			})

			Convey("Then Remove should delete it", func() {
				entry, _ := store.Get(ctx, "p1", "c1", "v1")
				So(store.Remove(ctx, entry), ShouldBeNil)

				_, err := store.Get(ctx, "p1", "c1", "v1")
				So(errors.Is(err, ErrNoRecord), ShouldBeTrue)
			})
		})

		Convey("A cancelled context should not write", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			So(store.Persist(cancelled, flush), ShouldNotBeNil)

			_, err := store.Get(ctx, "p1", "c1", "v1")
			So(err, ShouldEqual, ErrNoRecord)
		})
	})
}

func TestOpen(t *testing.T) {
	Convey("Open should reject unknown backends", t, func() {
		_, err := Open("redis")
		So(err, ShouldNotBeNil)
	})

	Convey("Open should return the file store", t, func() {
		store, err := Open(BackendFile)
		So(err, ShouldBeNil)
		So(store, ShouldHaveSameTypeAs, &Local{})
		So(store.Close(), ShouldBeNil)
	})
}
