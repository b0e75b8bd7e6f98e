package filesystem

import (
	"os"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestApi(t *testing.T) {
	Convey("Filesystem API", t, func() {
		Convey("Should default to OsFs", func() {
			SetOsFs()
			So(API().Name(), ShouldEqual, "OsFs")
		})

		Convey("Should switch to MemMapFs", func() {
			SetMemMapFs()
			So(API().Name(), ShouldEqual, "MemMapFS")
		})
	})
}

func TestGacheFs(t *testing.T) {
	Convey("Given the in-memory backend", t, func() {
		SetMemMapFs()
		fs := GacheFs{}

		Convey("MkdirAll and OpenFile should go through the active backend", func() {
			So(fs.MkdirAll("/data/history", os.ModePerm), ShouldBeNil)

			f, err := fs.OpenFile("/data/history/h.json", os.O_CREATE|os.O_RDWR, 0o644)
			So(err, ShouldBeNil)
			_, err = f.Write([]byte("{}"))
			So(err, ShouldBeNil)
			So(f.Close(), ShouldBeNil)

			exists, err := API().Exists("/data/history/h.json")
			So(err, ShouldBeNil)
			So(exists, ShouldBeTrue)
		})
	})
}

func TestReadJSON(t *testing.T) {
	Convey("Given a JSON document on the in-memory backend", t, func() {
		SetMemMapFs()
		So(API().WriteFile("/doc.json", []byte(`{"name":"intro"}`), 0o644), ShouldBeNil)

		Convey("It should decode into the target", func() {
			var doc struct {
				Name string `json:"name"`
			}
			So(ReadJSON("/doc.json", &doc), ShouldBeNil)
			So(doc.Name, ShouldEqual, "intro")
		})

		Convey("A missing file should be reported", func() {
			var doc map[string]any
			So(ReadJSON("/missing.json", &doc), ShouldNotBeNil)
		})

		Convey("Malformed JSON should be reported with the path", func() {
			So(API().WriteFile("/bad.json", []byte(`{`), 0o644), ShouldBeNil)
			var doc map[string]any
			err := ReadJSON("/bad.json", &doc)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "/bad.json")
		})
	})
}
