package reconcile

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func entries(times ...int) []entry {
	out := make([]entry, len(times))
	for i, t := range times {
		out[i] = entry{rec: call("2024-01-01", t, "1", 10), pos: i}
	}
	return out
}

func TestCollapse(t *testing.T) {
	Convey("Given more A leftovers than B leftovers", t, func() {
		pairs, restA, restB := collapse(entries(300, 100, 200), entries(50, 40))

		Convey("Then the pairs follow A time order and use each record once", func() {
			So(pairs, ShouldHaveLength, 2)
			So(pairs[0].APos, ShouldEqual, 1)
			So(pairs[0].BPos, ShouldEqual, 1)
			So(pairs[1].APos, ShouldEqual, 2)
			So(pairs[1].BPos, ShouldEqual, 0)
			So(restA, ShouldHaveLength, 1)
			So(restA[0].pos, ShouldEqual, 0)
			So(restB, ShouldBeEmpty)
		})
	})

	Convey("Given more B leftovers than A leftovers", t, func() {
		pairs, restA, restB := collapse(entries(10), entries(30, 20, 10))

		So(pairs, ShouldHaveLength, 1)
		So(pairs[0].BPos, ShouldEqual, 2)
		So(restA, ShouldBeEmpty)
		So(restB, ShouldHaveLength, 2)
	})

	Convey("Given leftovers on one side only", t, func() {
		pairs, restA, restB := collapse(entries(10, 20), nil)

		So(pairs, ShouldBeEmpty)
		So(restA, ShouldHaveLength, 2)
		So(restB, ShouldBeEmpty)
	})
}

func TestClassifySoleKey(t *testing.T) {
	Convey("Given a group present on one side", t, func() {
		g := &group{a: entries(10, 20)}
		p := classify(g, 3, false)

		So(p.matched, ShouldBeEmpty)
		So(p.onlyA, ShouldHaveLength, 2)
		So(p.onlyA[0].keyShared, ShouldBeFalse)
	})
}
