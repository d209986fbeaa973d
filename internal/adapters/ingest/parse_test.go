package ingest

import (
	"testing"
	"time"

	"github.com/okian/callrecon/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseDate(t *testing.T) {
	Convey("Given call dates in the supported layouts", t, func() {
		want := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
		for _, s := range []string{"2024-01-31", "31.01.2024", "31/01/2024", "2024-01-31 10:15:00", " 2024-01-31T23:59:59 "} {
			got, err := ParseDate(s)
			So(err, ShouldBeNil)
			So(got.Equal(want), ShouldBeTrue)
		}
	})

	Convey("Given an unparsable date", t, func() {
		for _, s := range []string{"", "yesterday", "2024-13-01", "31-01-2024"} {
			_, err := ParseDate(s)
			So(err, ShouldNotBeNil)
		}
	})
}

func TestParseSeconds(t *testing.T) {
	Convey("Given time spans in the supported forms", t, func() {
		cases := map[string]int{
			"95":               95,
			"0":                0,
			"01:35":            95,
			"00:01:35":         95,
			"10:00:02":         36002,
			"10:00:02.999":     36002,
			"0 days 00:02:01":  121,
			"1 days 00:00:05":  86405,
			"1 day 00:00:05":   86405,
			" 00:00:07 ":       7,
			"125:00:00":        450000,
		}
		for in, want := range cases {
			got, err := ParseSeconds(in)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, want)
		}
	})

	Convey("Given malformed time spans", t, func() {
		for _, s := range []string{"", "abc", "-5", "00:61:00", "00:00:60", "1:2:3:4", "10:00:02.", "10:00:02.5x", "x days 00:00:01"} {
			_, err := ParseSeconds(s)
			So(err, ShouldNotBeNil)
		}
	})

	Convey("Given spans too large to be a call", t, func() {
		for _, s := range []string{
			"200000000000000 days 00:00:00",
			"367 days 00:00:00",
			"366 days 00:00:01",
			"99999999999999999",
			"9999999:00:00",
			"5000000000:00",
		} {
			_, err := ParseSeconds(s)
			So(err, ShouldNotBeNil)
		}

		got, err := ParseSeconds("366 days 00:00:00")
		So(err, ShouldBeNil)
		So(got, ShouldEqual, MaxSpanSeconds)
	})
}

func TestParseTimeOfDayAndDuration(t *testing.T) {
	Convey("Given a time of day", t, func() {
		So(ParseTimeOfDay("23:59:59"), ShouldEqual, 86399)
		So(ParseTimeOfDay("24:00:00"), ShouldEqual, model.Unknown)
		So(ParseTimeOfDay("garbage"), ShouldEqual, model.Unknown)
	})

	Convey("Given a duration", t, func() {
		So(ParseDuration("25:00:00"), ShouldEqual, 90000)
		So(ParseDuration("n/a"), ShouldEqual, model.Unknown)
		So(ParseDuration("200000000000000 days 00:00:00"), ShouldEqual, model.Unknown)
	})
}
