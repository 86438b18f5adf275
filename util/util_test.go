package util

import (
	"math"
	"testing"

	"github.com/hlsplay/hlsplay/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "entry", "entries"), ShouldEqual, "1 entry")
		So(Quantify(3, "entry", "entries"), ShouldEqual, "3 entries")
	})
}

func TestCapitalize(t *testing.T) {
	Convey("Capitalize", t, func() {
		So(Capitalize("history file"), ShouldEqual, "History file")
		So(Capitalize(""), ShouldEqual, "")
	})
}

func TestFormatClock(t *testing.T) {
	Convey("FormatClock", t, func() {
		So(FormatClock(0), ShouldEqual, "0:00")
		So(FormatClock(42.9), ShouldEqual, "0:42")
		So(FormatClock(120), ShouldEqual, "2:00")
		So(FormatClock(3725), ShouldEqual, "1:02:05")

		Convey("Invalid values render as zero", func() {
			So(FormatClock(-3), ShouldEqual, "0:00")
			So(FormatClock(math.NaN()), ShouldEqual, "0:00")
			So(FormatClock(math.Inf(1)), ShouldEqual, "0:00")
		})
	})
}

func TestDelete(t *testing.T) {
	Convey("Delete", t, func() {
		filesystem.SetMemMapFs()
		fs := filesystem.API()

		So(fs.MkdirAll("/tmp/a/b", 0o755), ShouldBeNil)
		So(fs.WriteFile("/tmp/a/b/file", []byte("x"), 0o644), ShouldBeNil)

		Convey("Should remove files", func() {
			So(Delete("/tmp/a/b/file"), ShouldBeNil)
			exists, _ := fs.Exists("/tmp/a/b/file")
			So(exists, ShouldBeFalse)
		})

		Convey("Should remove directory trees", func() {
			So(Delete("/tmp/a"), ShouldBeNil)
			exists, _ := fs.Exists("/tmp/a")
			So(exists, ShouldBeFalse)
		})

		Convey("Should fail for missing paths", func() {
			So(Delete("/nope"), ShouldNotBeNil)
		})
	})
}
