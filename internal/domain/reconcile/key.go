package reconcile

import (
	"sort"

	"github.com/okian/callrecon/internal/domain/model"
)

// entry is a record together with its position in its source sequence.
// Positions are the tie-breaker of last resort for every ordering below.
type entry struct {
	rec model.CallRecord
	pos int
}

// group holds the records of one key on both sides, in input order.
type group struct {
	key model.Key
	a   []entry
	b   []entry
}

// index groups both sources by key. Groups are returned ordered by key.
func index(a, b []model.CallRecord) []*group {
	byKey := make(map[model.Key]*group)
	lookup := func(k model.Key) *group {
		g, ok := byKey[k]
		if !ok {
			g = &group{key: k}
			byKey[k] = g
		}
		return g
	}
	for i, rec := range a {
		g := lookup(rec.Key())
		g.a = append(g.a, entry{rec: rec, pos: i})
	}
	for i, rec := range b {
		g := lookup(rec.Key())
		g.b = append(g.b, entry{rec: rec, pos: i})
	}

	groups := make([]*group, 0, len(byKey))
	for _, g := range byKey {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].key.Less(groups[j].key) })
	return groups
}

// within reports whether x and y are both known and at most delta apart.
func within(x, y, delta int) bool {
	if x < 0 || y < 0 {
		return false
	}
	d := x - y
	if d < 0 {
		d = -d
	}
	return d <= delta
}

// Tolerated reports whether a and b satisfy both tolerance bounds.
func Tolerated(a, b model.CallRecord, delta int) bool {
	return within(a.TimeOfDay, b.TimeOfDay, delta) && within(a.Duration, b.Duration, delta)
}

// pairLess orders pairs by (date, A time, B time, number, A pos, B pos).
func pairLess(x, y CandidatePair) bool {
	kx, ky := x.A.Key(), y.A.Key()
	if kx.Date != ky.Date {
		return kx.Date < ky.Date
	}
	if x.A.TimeOfDay != y.A.TimeOfDay {
		return x.A.TimeOfDay < y.A.TimeOfDay
	}
	if x.B.TimeOfDay != y.B.TimeOfDay {
		return x.B.TimeOfDay < y.B.TimeOfDay
	}
	if kx.Number != ky.Number {
		return kx.Number < ky.Number
	}
	if x.APos != y.APos {
		return x.APos < y.APos
	}
	return x.BPos < y.BPos
}

// entryLess orders one-sided records by (date, number, time, pos).
func entryLess(x, y entry) bool {
	kx, ky := x.rec.Key(), y.rec.Key()
	if kx != ky {
		return kx.Less(ky)
	}
	if x.rec.TimeOfDay != y.rec.TimeOfDay {
		return x.rec.TimeOfDay < y.rec.TimeOfDay
	}
	return x.pos < y.pos
}
