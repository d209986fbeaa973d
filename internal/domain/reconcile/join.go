package reconcile

import (
	"sort"

	"github.com/okian/callrecon/internal/domain/model"
)

// CandidatePair is two records sharing a key. APos and BPos are the
// positions of the records in their source sequences and identify them.
type CandidatePair struct {
	A    model.CallRecord
	B    model.CallRecord
	APos int
	BPos int
}

// Join returns every cross-source pair sharing a (date, number) key: a key
// with m records in a and n in b yields m*n candidates. No tolerance is
// applied. Candidates are ordered by (date, A time, B time) with input
// order breaking ties.
func Join(a, b []model.CallRecord) []CandidatePair {
	var out []CandidatePair
	for _, g := range index(a, b) {
		out = append(out, cross(g.a, g.b)...)
	}
	sort.SliceStable(out, func(i, j int) bool { return pairLess(out[i], out[j]) })
	return out
}

// cross builds the cartesian product of one key's records in pair order.
func cross(as, bs []entry) []CandidatePair {
	if len(as) == 0 || len(bs) == 0 {
		return nil
	}
	out := make([]CandidatePair, 0, len(as)*len(bs))
	for _, a := range as {
		for _, b := range bs {
			out = append(out, CandidatePair{A: a.rec, B: b.rec, APos: a.pos, BPos: b.pos})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return pairLess(out[i], out[j]) })
	return out
}
