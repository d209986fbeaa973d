package ingest

import "errors"

// Sentinel kinds for ingestion errors.
var (
	// ErrEmptyInput is returned when the input has no header row.
	ErrEmptyInput = errors.New("input has no header row")

	// ErrMissingColumn is returned when a required column cannot be found.
	ErrMissingColumn = errors.New("required column missing")

	// ErrInvalidDelimiter is returned for delimiters encoding/csv cannot use.
	ErrInvalidDelimiter = errors.New("invalid delimiter")
)
