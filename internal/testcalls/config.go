// Package testcalls generates synthetic pairs of call logs.
//
// Source A is produced first; source B copies most of its calls with a small
// clock drift, drifts some beyond any sensible tolerance, drops others and
// adds calls of its own. Output is reproducible for a given seed.
package testcalls

import "time"

// Config holds configuration for a generated dataset.
type Config struct {
	Calls   int       // calls in source A before duplicates
	Seed    uint64    // random seed; equal seeds give equal datasets
	Start   time.Time // first call date
	Days    int       // calls spread over this many days
	Numbers int       // size of the receiving number pool

	Jitter        int     // max drift, in seconds, of a faithful copy in B
	DriftRate     float64 // share of copies drifted beyond Jitter+1 seconds
	DropRate      float64 // share of A calls missing from B
	ExtraRate     float64 // extra B-only calls, as a share of Calls
	DuplicateRate float64 // exact duplicate rows, as a share of each source
	MalformedRate float64 // rows whose time of day is unknown
}

// DefaultConfig returns a small dataset with a bit of everything.
func DefaultConfig() Config {
	return Config{
		Calls:         1000,
		Seed:          1,
		Start:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Days:          7,
		Numbers:       200,
		Jitter:        2,
		DriftRate:     0.05,
		DropRate:      0.05,
		ExtraRate:     0.05,
		DuplicateRate: 0.01,
		MalformedRate: 0.005,
	}
}
