// Package reconcile matches two call logs recorded independently for the same
// calls and classifies every record as matched, out of delta, or present on
// one side only.
//
// Records are joined on (call date, receiving number). Within a key, pairs
// whose time of day and duration both differ by at most delta seconds are
// matched 1:1; the leftovers are reported once each, either as out-of-delta
// pairs or on their own side. Reconcile is a pure function of its inputs.
package reconcile

import (
	"fmt"
	"sort"

	"github.com/okian/callrecon/internal/domain/model"

	"golang.org/x/sync/errgroup"
)

// Reconcile classifies every record of a and b into exactly one bucket of
// the returned result. delta must not be negative.
func Reconcile(a, b []model.CallRecord, delta int, opts ...Option) (model.Result, error) {
	if delta < 0 {
		return model.Result{}, fmt.Errorf("%w: %d", ErrInvalidDelta, delta)
	}
	s := newSettings(opts)

	groups := index(a, b)
	parts := make([]partial, len(groups))

	if s.parallelism < 2 || len(groups) < 2 {
		for i, g := range groups {
			parts[i] = classify(g, delta, s.firstCome)
		}
	} else {
		var eg errgroup.Group
		eg.SetLimit(s.parallelism)
		for i, g := range groups {
			eg.Go(func() error {
				parts[i] = classify(g, delta, s.firstCome)
				return nil
			})
		}
		_ = eg.Wait() // classify never fails
	}

	return assemble(parts, delta), nil
}

// assemble merges per-key partials into a result with a fixed ordering.
func assemble(parts []partial, delta int) model.Result {
	var matched, crossed []CandidatePair
	var onlyA, onlyB []residue
	for _, p := range parts {
		matched = append(matched, p.matched...)
		crossed = append(crossed, p.cross...)
		onlyA = append(onlyA, p.onlyA...)
		onlyB = append(onlyB, p.onlyB...)
	}

	sort.Slice(matched, func(i, j int) bool { return pairLess(matched[i], matched[j]) })
	sort.Slice(crossed, func(i, j int) bool { return pairLess(crossed[i], crossed[j]) })
	sort.Slice(onlyA, func(i, j int) bool { return entryLess(onlyA[i].entry, onlyA[j].entry) })
	sort.Slice(onlyB, func(i, j int) bool { return entryLess(onlyB[i].entry, onlyB[j].entry) })

	res := model.Result{
		Delta:         delta,
		Matched:       make([]model.MatchedPair, len(matched)),
		CrossResidual: make([]model.CrossResiduePair, len(crossed)),
		SoleA:         toResidues(onlyA, model.SourceA),
		SoleB:         toResidues(onlyB, model.SourceB),
	}
	for i, c := range matched {
		res.Matched[i] = model.MatchedPair{A: c.A, B: c.B, Tag: model.TagMatched}
	}
	for i, c := range crossed {
		res.CrossResidual[i] = model.CrossResiduePair{A: c.A, B: c.B, Tag: model.TagOutOfDelta}
	}
	return res
}
