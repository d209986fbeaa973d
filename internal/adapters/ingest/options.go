package ingest

import (
	"github.com/okian/callrecon/internal/domain/dedupe"
	"github.com/okian/callrecon/internal/domain/model"
	"github.com/okian/callrecon/pkg/logger"
)

// Option applies a configuration option to the Reader.
type Option func(*Reader)

// WithDelimiter sets the field delimiter. The default is ';'.
func WithDelimiter(d rune) Option {
	return func(r *Reader) {
		if d != 0 {
			r.delimiter = d
		}
	}
}

// WithColumn accepts extra header names for a field.
func WithColumn(f Field, names ...string) Option {
	return func(r *Reader) {
		r.aliases[f] = append(r.aliases[f], names...)
	}
}

// WithSource labels the records read, for logs and metrics.
func WithSource(s model.Source) Option {
	return func(r *Reader) {
		if s != "" {
			r.source = s
		}
	}
}

// WithDedupeSize bounds the duplicate detector to n fingerprints. Once the
// cap is reached the oldest fingerprint is forgotten, so duplicates further
// apart than n rows pass. Zero or less keeps every fingerprint of the file.
func WithDedupeSize(n int) Option {
	return func(r *Reader) {
		r.dedupeCap = max(n, 0)
		r.newDeduper = func() dedupe.Deduper {
			return dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(n))
		}
	}
}

// WithLogger sets a custom logger for the reader.
func WithLogger(l logger.Logger) Option {
	return func(r *Reader) {
		if l != nil {
			r.logger = l
		}
	}
}
