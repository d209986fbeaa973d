package reconcile

import "github.com/okian/callrecon/internal/domain/model"

// partial is the classification of a single key group.
type partial struct {
	matched []CandidatePair
	cross   []CandidatePair
	onlyA   []residue
	onlyB   []residue
}

// residue is a one-sided record plus its position for ordering.
type residue struct {
	entry
	keyShared bool
}

// classify runs match and residual classification for one key group.
func classify(g *group, delta int, firstCome bool) partial {
	var p partial

	// Sole-source: the key does not occur on the other side at all.
	if len(g.a) == 0 || len(g.b) == 0 {
		p.onlyA = residues(g.a, false)
		p.onlyB = residues(g.b, false)
		return p
	}

	if firstCome {
		p.matched = MatchFirstCome(cross(g.a, g.b), delta)
	} else {
		p.matched = Match(cross(g.a, g.b), delta)
	}

	usedA := make(map[int]bool, len(p.matched))
	usedB := make(map[int]bool, len(p.matched))
	for _, c := range p.matched {
		usedA[c.APos] = true
		usedB[c.BPos] = true
	}

	var leftA, leftB []entry
	for _, e := range g.a {
		if !usedA[e.pos] {
			leftA = append(leftA, e)
		}
	}
	for _, e := range g.b {
		if !usedB[e.pos] {
			leftB = append(leftB, e)
		}
	}

	var restA, restB []entry
	p.cross, restA, restB = collapse(leftA, leftB)
	p.onlyA = residues(restA, true)
	p.onlyB = residues(restB, true)
	return p
}

// collapse pairs the leftovers of a shared key without repeating a record.
//
// The raw cross join of p and q leftovers has p*q rows. Walking it in pair
// order, a row is kept as a cross-residue pair only while both of its records
// are unreported; in every later row an already reported side counts as
// nulled. What remains unreported afterwards is returned per side, so the key
// produces min(p, q) pairs and |p-q| one-sided rows.
func collapse(as, bs []entry) (pairs []CandidatePair, restA, restB []entry) {
	seenA := make(map[int]bool, len(as))
	seenB := make(map[int]bool, len(bs))
	for _, c := range cross(as, bs) {
		if seenA[c.APos] || seenB[c.BPos] {
			continue
		}
		seenA[c.APos] = true
		seenB[c.BPos] = true
		pairs = append(pairs, c)
	}
	for _, e := range as {
		if !seenA[e.pos] {
			restA = append(restA, e)
		}
	}
	for _, e := range bs {
		if !seenB[e.pos] {
			restB = append(restB, e)
		}
	}
	return pairs, restA, restB
}

func residues(es []entry, keyShared bool) []residue {
	if len(es) == 0 {
		return nil
	}
	out := make([]residue, len(es))
	for i, e := range es {
		out[i] = residue{entry: e, keyShared: keyShared}
	}
	return out
}

// toResidues strips ordering data and tags the records of source s.
func toResidues(rs []residue, s model.Source) []model.Residue {
	out := make([]model.Residue, len(rs))
	for i, r := range rs {
		out[i] = model.Residue{
			Source:    s,
			Record:    r.rec,
			Tag:       model.OnlyTag(s),
			KeyShared: r.keyShared,
		}
	}
	return out
}
