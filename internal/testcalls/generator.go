package testcalls

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/okian/callrecon/internal/domain/model"
)

const (
	maxDuration  = 1800 // seconds
	maxDrift     = 120  // seconds added on top of Jitter for drifted copies
	numberPrefix = "7999"
)

// Dataset is a generated pair of call logs in file order.
type Dataset struct {
	A []model.CallRecord
	B []model.CallRecord
}

// Generate builds a dataset from cfg.
func Generate(cfg Config) Dataset {
	if cfg.Days < 1 {
		cfg.Days = 1
	}
	if cfg.Numbers < 1 {
		cfg.Numbers = 1
	}
	if cfg.Jitter < 0 {
		cfg.Jitter = 0
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	numbers := make([]string, cfg.Numbers)
	for i := range numbers {
		numbers[i] = fmt.Sprintf("%s%07d", numberPrefix, i+1)
	}
	call := func() model.CallRecord {
		return model.CallRecord{
			Date:      cfg.Start.AddDate(0, 0, rng.IntN(cfg.Days)),
			TimeOfDay: rng.IntN(model.SecondsPerDay),
			Number:    numbers[rng.IntN(len(numbers))],
			Duration:  rng.IntN(maxDuration + 1),
		}
	}

	var ds Dataset
	for i := 0; i < cfg.Calls; i++ {
		a := call()
		ds.A = append(ds.A, a)
		if chance(rng, cfg.DropRate) {
			continue
		}

		b := a
		if chance(rng, cfg.DriftRate) {
			b.TimeOfDay = clamp(a.TimeOfDay+sign(rng)*(cfg.Jitter+1+rng.IntN(maxDrift)), 0, model.SecondsPerDay-1)
			b.Duration = clamp(a.Duration+sign(rng)*(cfg.Jitter+1+rng.IntN(maxDrift)), 0, maxDuration+cfg.Jitter+maxDrift)
		} else {
			b.TimeOfDay = clamp(a.TimeOfDay+jitter(rng, cfg.Jitter), 0, model.SecondsPerDay-1)
			b.Duration = clamp(a.Duration+jitter(rng, cfg.Jitter), 0, maxDuration+cfg.Jitter)
		}
		ds.B = append(ds.B, b)
	}
	for i := 0; i < int(float64(cfg.Calls)*cfg.ExtraRate); i++ {
		ds.B = append(ds.B, call())
	}

	ds.A = finish(rng, ds.A, cfg)
	ds.B = finish(rng, ds.B, cfg)
	return ds
}

// finish sorts a source the way exports are sorted, then corrupts and
// duplicates rows and assigns Seq.
func finish(rng *rand.Rand, recs []model.CallRecord, cfg Config) []model.CallRecord {
	sort.SliceStable(recs, func(i, j int) bool {
		if !recs[i].Date.Equal(recs[j].Date) {
			return recs[i].Date.Before(recs[j].Date)
		}
		return recs[i].TimeOfDay < recs[j].TimeOfDay
	})

	for i := range recs {
		if chance(rng, cfg.MalformedRate) {
			recs[i].TimeOfDay = model.Unknown
		}
	}

	n := len(recs)
	for i := 0; i < int(float64(n)*cfg.DuplicateRate); i++ {
		at := rng.IntN(n)
		recs = append(recs, model.CallRecord{})
		copy(recs[at+1:], recs[at:])
	}

	for i := range recs {
		recs[i].Seq = i
	}
	return recs
}

func chance(rng *rand.Rand, p float64) bool {
	return p > 0 && rng.Float64() < p
}

func jitter(rng *rand.Rand, limit int) int {
	if limit == 0 {
		return 0
	}
	return rng.IntN(2*limit+1) - limit
}

func sign(rng *rand.Rand) int {
	if rng.IntN(2) == 0 {
		return -1
	}
	return 1
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
