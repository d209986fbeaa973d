// Package types contains the JSON views served by the HTTP API.
package types

import (
	"time"

	"github.com/okian/callrecon/internal/adapters/ingest"
	"github.com/okian/callrecon/internal/adapters/report"
	"github.com/okian/callrecon/internal/adapters/repository"
	"github.com/okian/callrecon/internal/domain/model"
)

const dateLayout = "2006-01-02"

// StatsView is the ingestion summary of one uploaded file.
type StatsView struct {
	Rows       int `json:"rows"`
	Accepted   int `json:"accepted"`
	Duplicates int `json:"duplicates"`
	Rejected   int `json:"rejected"`
	Malformed  int `json:"malformed"`
}

// RunView describes a run without its row-level outcome.
type RunView struct {
	ID         string          `json:"id"`
	Status     string          `json:"status"`
	Delta      int             `json:"delta"`
	FileA      string          `json:"file_a"`
	FileB      string          `json:"file_b"`
	CreatedAt  time.Time       `json:"created_at"`
	StartedAt  *time.Time      `json:"started_at,omitempty"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
	StatsA     *StatsView      `json:"stats_a,omitempty"`
	StatsB     *StatsView      `json:"stats_b,omitempty"`
	Summary    *report.Summary `json:"summary,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// PairView is a matched or out-of-delta pair.
type PairView struct {
	CallDate  string `json:"call_date"`
	Number    string `json:"receiving_number"`
	TimeA     string `json:"call_time_a"`
	DurationA *int   `json:"duration_a"`
	TimeB     string `json:"call_time_b"`
	DurationB *int   `json:"duration_b"`
	Tag       string `json:"tag"`
}

// ResidueView is a record reported on one side only.
type ResidueView struct {
	CallDate  string `json:"call_date"`
	Time      string `json:"call_time"`
	Number    string `json:"receiving_number"`
	Duration  *int   `json:"duration"`
	Tag       string `json:"tag"`
	KeyShared bool   `json:"key_shared"`
}

// ResultView is the full row-level outcome of a finished run.
type ResultView struct {
	Delta      int           `json:"delta"`
	Matched    []PairView    `json:"matched"`
	OutOfDelta []PairView    `json:"out_of_delta"`
	SoleA      []ResidueView `json:"source_a_only"`
	SoleB      []ResidueView `json:"source_b_only"`
}

// NewStatsView converts ingestion stats.
func NewStatsView(s ingest.Stats) StatsView {
	return StatsView{
		Rows:       s.Rows,
		Accepted:   s.Accepted,
		Duplicates: s.Duplicates,
		Rejected:   s.Rejected,
		Malformed:  s.Malformed,
	}
}

// NewRunView converts a stored run. Stats and summary are only set once
// the run succeeded.
func NewRunView(r repository.Run) RunView {
	v := RunView{
		ID:        r.ID,
		Status:    string(r.Status),
		Delta:     r.Delta,
		FileA:     r.FileA,
		FileB:     r.FileB,
		CreatedAt: r.CreatedAt,
		Error:     r.Error,
	}
	v.StartedAt = optionalTime(r.StartedAt)
	v.FinishedAt = optionalTime(r.FinishedAt)
	if r.Status == repository.StatusSucceeded {
		a, b := NewStatsView(r.StatsA), NewStatsView(r.StatsB)
		s := r.Summary
		v.StatsA, v.StatsB, v.Summary = &a, &b, &s
	}
	return v
}

// NewRunViews converts a list of runs, preserving order.
func NewRunViews(runs []repository.Run) []RunView {
	out := make([]RunView, 0, len(runs))
	for _, r := range runs {
		out = append(out, NewRunView(r))
	}
	return out
}

// NewResultView converts a reconciliation result. Slices are never nil.
func NewResultView(res model.Result) ResultView {
	v := ResultView{
		Delta:      res.Delta,
		Matched:    make([]PairView, 0, len(res.Matched)),
		OutOfDelta: make([]PairView, 0, len(res.CrossResidual)),
		SoleA:      make([]ResidueView, 0, len(res.SoleA)),
		SoleB:      make([]ResidueView, 0, len(res.SoleB)),
	}
	for _, p := range res.Matched {
		v.Matched = append(v.Matched, newPairView(p.A, p.B, p.Tag))
	}
	for _, p := range res.CrossResidual {
		v.OutOfDelta = append(v.OutOfDelta, newPairView(p.A, p.B, p.Tag))
	}
	for _, r := range res.SoleA {
		v.SoleA = append(v.SoleA, newResidueView(r))
	}
	for _, r := range res.SoleB {
		v.SoleB = append(v.SoleB, newResidueView(r))
	}
	return v
}

func newPairView(a, b model.CallRecord, tag model.Tag) PairView {
	return PairView{
		CallDate:  a.Date.Format(dateLayout),
		Number:    a.Number,
		TimeA:     model.Clock(a.TimeOfDay),
		DurationA: known(a.Duration),
		TimeB:     model.Clock(b.TimeOfDay),
		DurationB: known(b.Duration),
		Tag:       string(tag),
	}
}

func newResidueView(r model.Residue) ResidueView {
	return ResidueView{
		CallDate:  r.Record.Date.Format(dateLayout),
		Time:      model.Clock(r.Record.TimeOfDay),
		Number:    r.Record.Number,
		Duration:  known(r.Record.Duration),
		Tag:       string(r.Tag),
		KeyShared: r.KeyShared,
	}
}

// known maps Unknown to a JSON null.
func known(v int) *int {
	if v == model.Unknown {
		return nil
	}
	return &v
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
