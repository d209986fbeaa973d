// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"time"
)

// Unknown marks a time-of-day or duration that ingestion could not parse.
// It never satisfies the tolerance predicate.
const Unknown = -1

// SecondsPerDay bounds TimeOfDay: valid values are [0, SecondsPerDay).
const SecondsPerDay = 86400

// dateLayout is the canonical rendering of a call date inside a Key.
const dateLayout = "2006-01-02"

// Source identifies which log a record came from.
type Source string

// Known sources.
const (
	SourceA Source = "a" // internal billing/metering system
	SourceB Source = "b" // carrier detail report
)

// Tag is the classification rendered next to every reported row.
type Tag string

// Classification tags.
const (
	TagMatched     Tag = "matched"
	TagOutOfDelta  Tag = "out_of_delta"
	TagSourceAOnly Tag = "source_a_only"
	TagSourceBOnly Tag = "source_b_only"
)

// OnlyTag returns the one-sided tag for records of source s.
func OnlyTag(s Source) Tag {
	if s == SourceB {
		return TagSourceBOnly
	}
	return TagSourceAOnly
}

// CallRecord is one normalised call row from either source.
type CallRecord struct {
	Date      time.Time // calendar date of the call; time part is ignored
	TimeOfDay int       // seconds since midnight, or Unknown
	Number    string    // receiving number, compared verbatim
	Duration  int       // seconds, or Unknown
	Seq       int       // position in the source sequence, used for stable tie-breaks
}

// Key returns the weak join key of the record.
func (r CallRecord) Key() Key {
	return Key{Date: r.Date.Format(dateLayout), Number: r.Number}
}

// Key is the (call date, receiving number) pair used to join both sources.
type Key struct {
	Date   string
	Number string
}

// Less orders keys by date, then number.
func (k Key) Less(o Key) bool {
	if k.Date != o.Date {
		return k.Date < o.Date
	}
	return k.Number < o.Number
}

// MatchedPair is a pair of records within tolerance.
type MatchedPair struct {
	A   CallRecord
	B   CallRecord
	Tag Tag
}

// CrossResiduePair is a pair of leftovers sharing a key but outside tolerance.
type CrossResiduePair struct {
	A   CallRecord
	B   CallRecord
	Tag Tag
}

// Residue is a record reported on one side only.
type Residue struct {
	Source Source
	Record CallRecord
	Tag    Tag
	// KeyShared is true when the key exists in the other source and the record
	// was left over by the cardinality collapse; false for a pure key absence.
	KeyShared bool
}

// Result is the outcome of one reconciliation.
type Result struct {
	Delta         int
	Matched       []MatchedPair
	CrossResidual []CrossResiduePair
	SoleA         []Residue
	SoleB         []Residue
}

// RecordCount returns how many input records the result accounts for.
func (r Result) RecordCount() int {
	return 2*len(r.Matched) + 2*len(r.CrossResidual) + len(r.SoleA) + len(r.SoleB)
}

// Clock renders seconds as HH:MM:SS. Unknown and negative values render empty.
func Clock(sec int) string {
	if sec < 0 {
		return ""
	}
	return fmt.Sprintf("%02d:%02d:%02d", sec/3600, sec%3600/60, sec%60)
}
