package testcalls

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/okian/callrecon/internal/adapters/ingest"
	"github.com/okian/callrecon/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGenerate(t *testing.T) {
	Convey("Given the default configuration", t, func() {
		cfg := DefaultConfig()
		ds := Generate(cfg)

		Convey("Then the same seed gives the same dataset", func() {
			So(Generate(cfg), ShouldResemble, ds)
		})

		Convey("And another seed gives another dataset", func() {
			cfg.Seed = 2
			So(Generate(cfg), ShouldNotResemble, ds)
		})

		Convey("And source A holds every call plus duplicates", func() {
			So(len(ds.A), ShouldBeGreaterThanOrEqualTo, cfg.Calls)
		})

		Convey("And Seq is the file position", func() {
			for i, r := range ds.A {
				So(r.Seq, ShouldEqual, i)
			}
			for i, r := range ds.B {
				So(r.Seq, ShouldEqual, i)
			}
		})

		Convey("And every value is in range", func() {
			for _, r := range append(append([]model.CallRecord{}, ds.A...), ds.B...) {
				So(r.TimeOfDay, ShouldBeBetweenOrEqual, model.Unknown, model.SecondsPerDay-1)
				So(r.Duration, ShouldBeGreaterThanOrEqualTo, 0)
				So(r.Number, ShouldStartWith, numberPrefix)
				So(r.Date.Before(cfg.Start), ShouldBeFalse)
				So(r.Date.Before(cfg.Start.AddDate(0, 0, cfg.Days)), ShouldBeTrue)
			}
		})
	})

	Convey("Given a clean configuration", t, func() {
		cfg := DefaultConfig()
		cfg.Calls = 50
		cfg.DriftRate, cfg.DropRate, cfg.ExtraRate, cfg.DuplicateRate, cfg.MalformedRate = 0, 0, 0, 0, 0
		ds := Generate(cfg)

		Convey("Then B mirrors A within the jitter", func() {
			So(ds.B, ShouldHaveLength, len(ds.A))
			So(ds.A, ShouldHaveLength, 50)
		})
	})

	Convey("Given a degenerate configuration", t, func() {
		ds := Generate(Config{Calls: 3, Jitter: -1})

		Convey("Then it is clamped to something usable", func() {
			So(ds.A, ShouldHaveLength, 3)
			So(ds.B, ShouldHaveLength, 3)
			for i := range ds.A {
				So(ds.A[i].Number, ShouldEqual, numberPrefix+"0000001")
			}
		})
	})
}

func TestWriteCSV(t *testing.T) {
	Convey("Given a generated source written in the export layout", t, func() {
		cfg := DefaultConfig()
		cfg.Calls = 200
		cfg.MalformedRate = 0.05
		ds := Generate(cfg)

		var buf bytes.Buffer
		So(WriteCSV(&buf, ds.A, ';'), ShouldBeNil)

		Convey("Then the header repeats to_char", func() {
			first := strings.SplitN(buf.String(), "\n", 2)[0]
			So(first, ShouldEqual, "to_char;to_char;phoneb;to_char;?column?")
		})

		Convey("And reading it back gives the distinct records", func() {
			recs, stats, err := ingest.NewReader().Read(context.Background(), &buf)
			So(err, ShouldBeNil)
			So(stats.Rows, ShouldEqual, len(ds.A))
			So(stats.Rejected, ShouldEqual, 0)
			So(stats.Accepted+stats.Duplicates, ShouldEqual, len(ds.A))

			malformed := 0
			for _, r := range ds.A {
				if r.TimeOfDay == model.Unknown {
					malformed++
				}
			}
			So(stats.Malformed, ShouldBeLessThanOrEqualTo, malformed)
			for _, r := range recs {
				So(r.Number, ShouldStartWith, numberPrefix)
			}
		})
	})

	Convey("Given a single record", t, func() {
		var buf bytes.Buffer
		rec := model.CallRecord{
			Date:      DefaultConfig().Start,
			TimeOfDay: 36002,
			Number:    "79990000001",
			Duration:  121,
		}
		So(WriteCSV(&buf, []model.CallRecord{rec}, ','), ShouldBeNil)
		So(buf.String(), ShouldEqual, "to_char,to_char,phoneb,to_char,?column?\n2024-01-01,10:00:02,79990000001,00:02:01,3\n")
	})
}

func TestWriteFiles(t *testing.T) {
	Convey("Given a target directory", t, func() {
		dir := t.TempDir()
		cfg := DefaultConfig()
		cfg.Calls = 20
		pathA, pathB, err := WriteFiles(dir+"/nested", Generate(cfg), ';')

		So(err, ShouldBeNil)
		So(pathA, ShouldEndWith, FileA)
		So(pathB, ShouldEndWith, FileB)

		recs, _, err := ingest.NewReader(ingest.WithSource(model.SourceB)).ReadFile(context.Background(), pathB)
		So(err, ShouldBeNil)
		So(recs, ShouldNotBeEmpty)
	})
}
