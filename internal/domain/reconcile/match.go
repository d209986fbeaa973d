package reconcile

import "sort"

// matching tracks which candidate currently pairs each record.
type matching struct {
	cands []CandidatePair
	adj   map[int][]int // A pos -> indexes of tolerated candidates, in candidate order
	mateA map[int]int   // A pos -> candidate index
	mateB map[int]int   // B pos -> candidate index
}

// Match selects a 1:1 subset of candidates whose time of day and duration
// both differ by at most delta. cands must be in Join order.
//
// Candidates are taken first-come in that order and both records are then
// consumed. Records the first pass left unpaired get one more chance through
// an augmenting path over their tolerated candidates, so that a key never
// ends up with fewer pairs than a re-pairing would give. The returned pairs
// keep candidate order.
func Match(cands []CandidatePair, delta int) []CandidatePair {
	return match(cands, delta, true)
}

// MatchFirstCome is Match without the augmenting pass: the first tolerated
// candidate of two free records always wins.
func MatchFirstCome(cands []CandidatePair, delta int) []CandidatePair {
	return match(cands, delta, false)
}

func match(cands []CandidatePair, delta int, repair bool) []CandidatePair {
	m := &matching{
		cands: cands,
		adj:   make(map[int][]int),
		mateA: make(map[int]int),
		mateB: make(map[int]int),
	}

	var order []int
	for i, c := range cands {
		if !Tolerated(c.A, c.B, delta) {
			continue
		}
		if _, ok := m.adj[c.APos]; !ok {
			order = append(order, c.APos)
		}
		m.adj[c.APos] = append(m.adj[c.APos], i)

		_, aTaken := m.mateA[c.APos]
		_, bTaken := m.mateB[c.BPos]
		if !aTaken && !bTaken {
			m.mateA[c.APos] = i
			m.mateB[c.BPos] = i
		}
	}

	if repair {
		for _, apos := range order {
			if _, ok := m.mateA[apos]; ok {
				continue
			}
			m.augment(apos, make(map[int]bool))
		}
	}

	idx := make([]int, 0, len(m.mateA))
	for _, i := range m.mateA {
		idx = append(idx, i)
	}
	sort.Ints(idx)

	out := make([]CandidatePair, len(idx))
	for k, i := range idx {
		out[k] = cands[i]
	}
	return out
}

// augment looks for a chain of re-pairings that frees a partner for apos.
func (m *matching) augment(apos int, seen map[int]bool) bool {
	for _, i := range m.adj[apos] {
		bpos := m.cands[i].BPos
		if seen[bpos] {
			continue
		}
		seen[bpos] = true

		j, taken := m.mateB[bpos]
		if !taken || m.augment(m.cands[j].APos, seen) {
			m.mateA[apos] = i
			m.mateB[bpos] = i
			return true
		}
	}
	return false
}
