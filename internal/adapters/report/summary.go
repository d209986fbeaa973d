// Package report renders reconciliation results for people: a console
// summary and a workbook with one sheet per outcome.
package report

import (
	"math"

	"github.com/okian/callrecon/internal/domain/model"
)

// Names are the display names of the two sources.
type Names struct {
	A string
	B string
}

// DefaultNames returns the names used when none are configured.
func DefaultNames() Names {
	return Names{A: "kms", B: "oper"}
}

// Summary holds the headline counts of a run. Shares are percentages
// rounded to one decimal.
type Summary struct {
	Delta    int `json:"delta"`
	RecordsA int `json:"records_a"`
	RecordsB int `json:"records_b"`

	Matched       int     `json:"matched"`
	MatchedShareA float64 `json:"matched_share_a"`
	MatchedShareB float64 `json:"matched_share_b"`

	OutOfDelta int `json:"out_of_delta"`

	// Records whose key is absent from the other source.
	SoleA      int     `json:"sole_a"`
	SoleB      int     `json:"sole_b"`
	SoleShareA float64 `json:"sole_share_a"`
	SoleShareB float64 `json:"sole_share_b"`

	// Records whose key exists on the other side but had no partner left.
	LeftoverA int `json:"leftover_a"`
	LeftoverB int `json:"leftover_b"`
}

// Summarize counts res. lenA and lenB are the sizes of the reconciled inputs.
func Summarize(res model.Result, lenA, lenB int) Summary {
	s := Summary{
		Delta:      res.Delta,
		RecordsA:   lenA,
		RecordsB:   lenB,
		Matched:    len(res.Matched),
		OutOfDelta: len(res.CrossResidual),
	}
	s.SoleA, s.LeftoverA = split(res.SoleA)
	s.SoleB, s.LeftoverB = split(res.SoleB)

	s.MatchedShareA = percent(s.Matched, lenA)
	s.MatchedShareB = percent(s.Matched, lenB)
	s.SoleShareA = percent(s.SoleA, lenA)
	s.SoleShareB = percent(s.SoleB, lenB)
	return s
}

func split(rs []model.Residue) (sole, leftover int) {
	for _, r := range rs {
		if r.KeyShared {
			leftover++
		} else {
			sole++
		}
	}
	return sole, leftover
}

func percent(n, of int) float64 {
	if of == 0 {
		return 0
	}
	return math.Round(float64(n)/float64(of)*1000) / 10
}
