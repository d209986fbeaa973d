package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/okian/callrecon/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		ctx := context.Background()

		Convey("When creating a deduper with default options", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("Then it should start empty", func() {
				So(d, ShouldNotBeNil)
				So(d.Size(), ShouldEqual, 0)
			})
		})

		Convey("When recording row fingerprints", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("And the row is new", func() {
				seen := d.SeenAndRecord(ctx, "2024-01-01|36000|79990000001|120")

				Convey("Then it should return false and record it", func() {
					So(seen, ShouldBeFalse)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the same row appears again", func() {
				d.SeenAndRecord(ctx, "2024-01-01|36000|79990000001|120")
				seen := d.SeenAndRecord(ctx, "2024-01-01|36000|79990000001|120")

				Convey("Then it should be reported as a duplicate", func() {
					So(seen, ShouldBeTrue)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And rows differ in a single field", func() {
				So(d.SeenAndRecord(ctx, "2024-01-01|36000|79990000001|120"), ShouldBeFalse)
				So(d.SeenAndRecord(ctx, "2024-01-01|36000|79990000001|121"), ShouldBeFalse)

				Convey("Then both should be kept", func() {
					So(d.Size(), ShouldEqual, 2)
				})
			})
		})

		Convey("When using bounded mode", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
			for _, fp := range []string{"row-1", "row-2", "row-3"} {
				So(d.SeenAndRecord(ctx, fp), ShouldBeFalse)
			}

			Convey("And one more fingerprint arrives", func() {
				So(d.SeenAndRecord(ctx, "row-4"), ShouldBeFalse)

				Convey("Then the oldest one is forgotten", func() {
					So(d.Size(), ShouldEqual, 3)
					So(d.SeenAndRecord(ctx, "row-3"), ShouldBeTrue)
					So(d.SeenAndRecord(ctx, "row-4"), ShouldBeTrue)
					So(d.SeenAndRecord(ctx, "row-1"), ShouldBeFalse)
					So(d.Size(), ShouldEqual, 3)
				})
			})
		})

		Convey("When using unbounded mode", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
			const n = 1000
			for i := 0; i < n; i++ {
				So(d.SeenAndRecord(ctx, fmt.Sprintf("row-%d", i)), ShouldBeFalse)
			}

			Convey("Then nothing is evicted", func() {
				So(d.Size(), ShouldEqual, int64(n))
				So(d.SeenAndRecord(ctx, "row-0"), ShouldBeTrue)
			})
		})
	})
}

func TestDedupeConcurrency(t *testing.T) {
	Convey("Given a deduper with concurrent access", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(1000))
		const numGoroutines = 10
		const rowsPerGoroutine = 100

		Convey("When multiple goroutines record rows concurrently", func() {
			var wg sync.WaitGroup
			for i := 0; i < numGoroutines; i++ {
				wg.Add(1)
				go func(id int) {
					defer wg.Done()
					for j := 0; j < rowsPerGoroutine; j++ {
						d.SeenAndRecord(context.Background(), fmt.Sprintf("row-%d-%d", id, j))
					}
				}(i)
			}
			wg.Wait()

			Convey("Then all rows should be recorded", func() {
				So(d.Size(), ShouldEqual, int64(numGoroutines*rowsPerGoroutine))
			})
		})
	})
}
