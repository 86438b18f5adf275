package where

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hlsplay/hlsplay/filesystem"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestPaths(t *testing.T) {
	Convey("Path functions", t, func() {
		for _, target := range []struct {
			name string
			dir  func() string
		}{
			{"Config", Config},
			{"Cache", Cache},
			{"Logs", Logs},
			{"Temp", Temp},
		} {
			Convey(target.name+"() should exist as a directory", func() {
				path := target.dir()
				So(path, ShouldNotBeEmpty)
				So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
			})
		}

		Convey("History() should live in the config directory", func() {
			So(filepath.Dir(History()), ShouldEqual, Config())
		})

		Convey("Config() should honor the override variable", func() {
			custom := filepath.Join(os.TempDir(), "hlsplay-where-test")
			t.Setenv(EnvConfigPath, custom)
			So(Config(), ShouldEqual, custom)
			So(lo.Must(filesystem.API().IsDir(custom)), ShouldBeTrue)
		})
	})
}
