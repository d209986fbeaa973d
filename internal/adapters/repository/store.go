// Package repository keeps reconciliation runs and their results.
package repository

import (
	"context"
	"time"

	"github.com/okian/callrecon/internal/adapters/ingest"
	"github.com/okian/callrecon/internal/adapters/report"
	"github.com/okian/callrecon/internal/domain/model"
)

// Status is the lifecycle state of a run.
type Status string

// Run states. A run moves queued -> running -> succeeded or failed.
const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Finished reports whether the run reached a final state.
func (s Status) Finished() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// Run is one reconciliation request and, once finished, its outcome.
type Run struct {
	ID         string
	Status     Status
	Delta      int
	FileA      string // uploaded file name of source A
	FileB      string
	CreatedAt  time.Time
	StartedAt  time.Time
	FinishedAt time.Time

	StatsA  ingest.Stats
	StatsB  ingest.Stats
	Result  model.Result
	Summary report.Summary
	Error   string
}

// Store provides read/write access to runs.
type Store interface {
	// Create adds a new run. Returns ErrDuplicateID if the id is taken.
	Create(ctx context.Context, run Run) error

	// Update applies fn to the stored run under the store lock.
	// Returns ErrNotFound if the run is unknown.
	Update(ctx context.Context, id string, fn func(*Run)) (Run, error)

	// Get returns a run by id or ErrNotFound.
	Get(ctx context.Context, id string) (Run, error)

	// List returns up to limit runs, newest first, without their results.
	// A limit of zero lists every run.
	List(ctx context.Context, limit int) ([]Run, error)

	// Count returns the number of stored runs.
	Count(ctx context.Context) int
}
