package cmd

import (
	"testing"

	"github.com/hlsplay/hlsplay/config"
	"github.com/hlsplay/hlsplay/key"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseValue(t *testing.T) {
	Convey("Given registered fields", t, func() {
		Convey("Then integers are parsed", func() {
			value, err := parseValue(config.Default[key.PlayerSeekStep], []string{"10"})
			So(err, ShouldBeNil)
			So(value, ShouldEqual, 10)
		})

		Convey("Then invalid integers are rejected", func() {
			_, err := parseValue(config.Default[key.PlayerSeekStep], []string{"ten"})
			So(err, ShouldNotBeNil)
		})

		Convey("Then booleans are parsed", func() {
			value, err := parseValue(config.Default[key.PlayerMuted], []string{"true"})
			So(err, ShouldBeNil)
			So(value, ShouldEqual, true)
		})

		Convey("Then lists keep every value", func() {
			value, err := parseValue(config.Default[key.PlayerMPVArgs], []string{"--ao=pulse", "--cache=yes"})
			So(err, ShouldBeNil)
			So(value, ShouldResemble, []string{"--ao=pulse", "--cache=yes"})
		})

		Convey("Then strings take the first value", func() {
			value, err := parseValue(config.Default[key.PlayerMPV], []string{"/usr/bin/mpv"})
			So(err, ShouldBeNil)
			So(value, ShouldEqual, "/usr/bin/mpv")
		})

		Convey("Then a missing value is an error", func() {
			_, err := parseValue(config.Default[key.PlayerMPV], nil)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestErrUnknownKey(t *testing.T) {
	Convey("Given a misspelled key", t, func() {
		err := errUnknownKey("player.sek_step")

		Convey("Then the closest key is suggested", func() {
			So(err.Error(), ShouldContainSubstring, key.PlayerSeekStep)
		})
	})
}
