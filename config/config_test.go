package config

import (
	"testing"

	"github.com/hlsplay/hlsplay/filesystem"
	"github.com/hlsplay/hlsplay/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		Convey("Should initialize without a config file", func() {
			So(Setup(), ShouldBeNil)
		})

		Convey("Should populate every registered default", func() {
			_ = Setup()
			for name := range Default {
				So(viper.IsSet(name), ShouldBeTrue)
			}
			So(viper.GetInt(key.PlayerVolume), ShouldEqual, 100)
			So(viper.GetString(key.PlayerMPV), ShouldEqual, "mpv")
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			So(EnvKeyReplacer.Replace("player.seek_step"), ShouldEqual, "player_seek_step")
		})
	})
}

func TestField(t *testing.T) {
	Convey("Given a registered field", t, func() {
		field := Default[key.PlayerSeekStep]

		Convey("Env should carry the application prefix", func() {
			So(field.Env(), ShouldEqual, "HLSPLAY_PLAYER_SEEK_STEP")
		})

		Convey("Type name should follow the default value", func() {
			So(field.typeName(), ShouldEqual, "int")
			mpvArgs := Default[key.PlayerMPVArgs]
			So(mpvArgs.typeName(), ShouldEqual, "[]string")
		})

		Convey("Pretty should mention the key", func() {
			So(field.Pretty(), ShouldContainSubstring, key.PlayerSeekStep)
		})
	})
}
