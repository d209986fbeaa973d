package reconcile

import "errors"

// Sentinel kinds for reconciliation errors.
var (
	// ErrInvalidDelta is returned when the tolerance is negative.
	ErrInvalidDelta = errors.New("invalid tolerance delta")
)
