package service

import "errors"

// Sentinel kinds for service errors.
var (
	// ErrNotStarted is returned when jobs are submitted before Start or after Stop.
	ErrNotStarted = errors.New("service not started")

	// ErrBackpressure is returned when the job queue is full.
	ErrBackpressure = errors.New("job queue is full")

	// ErrNoResult is returned when a report is requested for a run that has
	// not succeeded.
	ErrNoResult = errors.New("run has no result")
)
