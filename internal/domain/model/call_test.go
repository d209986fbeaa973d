package model_test

import (
	"testing"
	"time"

	model "github.com/okian/callrecon/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestCallRecordKey(t *testing.T) {
	convey.Convey("Given a call record", t, func() {
		rec := model.CallRecord{
			Date:      time.Date(2024, 1, 1, 13, 45, 0, 0, time.UTC),
			TimeOfDay: 36000,
			Number:    "79990000001",
			Duration:  120,
		}

		convey.Convey("When building its key", func() {
			key := rec.Key()

			convey.Convey("Then the time part of the date is dropped", func() {
				convey.So(key.Date, convey.ShouldEqual, "2024-01-01")
				convey.So(key.Number, convey.ShouldEqual, "79990000001")
			})
		})

		convey.Convey("When comparing keys", func() {
			k1 := model.Key{Date: "2024-01-01", Number: "2"}
			k2 := model.Key{Date: "2024-01-02", Number: "1"}
			k3 := model.Key{Date: "2024-01-01", Number: "3"}

			convey.Convey("Then date wins over number", func() {
				convey.So(k1.Less(k2), convey.ShouldBeTrue)
				convey.So(k2.Less(k1), convey.ShouldBeFalse)
				convey.So(k1.Less(k3), convey.ShouldBeTrue)
				convey.So(k1.Less(k1), convey.ShouldBeFalse)
			})
		})
	})
}

func TestOnlyTag(t *testing.T) {
	convey.Convey("Given both sources", t, func() {
		convey.So(model.OnlyTag(model.SourceA), convey.ShouldEqual, model.TagSourceAOnly)
		convey.So(model.OnlyTag(model.SourceB), convey.ShouldEqual, model.TagSourceBOnly)
	})
}

func TestResultRecordCount(t *testing.T) {
	convey.Convey("Given a result with every class populated", t, func() {
		res := model.Result{
			Matched:       make([]model.MatchedPair, 2),
			CrossResidual: make([]model.CrossResiduePair, 1),
			SoleA:         make([]model.Residue, 3),
			SoleB:         make([]model.Residue, 1),
		}

		convey.Convey("Then pairs count twice and residues once", func() {
			convey.So(res.RecordCount(), convey.ShouldEqual, 10)
		})
	})
}

func TestClock(t *testing.T) {
	convey.Convey("Given second counts", t, func() {
		convey.So(model.Clock(0), convey.ShouldEqual, "00:00:00")
		convey.So(model.Clock(36002), convey.ShouldEqual, "10:00:02")
		convey.So(model.Clock(86399), convey.ShouldEqual, "23:59:59")
		convey.So(model.Clock(90061), convey.ShouldEqual, "25:01:01")

		convey.Convey("Then unknown renders empty", func() {
			convey.So(model.Clock(model.Unknown), convey.ShouldEqual, "")
		})
	})
}
