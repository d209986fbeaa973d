package service

import (
	"time"

	"github.com/okian/callrecon/internal/adapters/report"
	"github.com/okian/callrecon/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize caps the per-file duplicate filter at size fingerprints.
// By default every fingerprint of a file is kept.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithDelta sets the tolerance used when a request does not carry one.
func WithDelta(delta int) Option {
	return func(s *Service) {
		if delta >= 0 {
			s.delta = delta
		}
	}
}

// WithDelimiter sets the field delimiter of uploaded files.
func WithDelimiter(d rune) Option {
	return func(s *Service) {
		s.delimiter = d
	}
}

// WithNames sets the display names of the two sources.
func WithNames(names report.Names) Option {
	return func(s *Service) {
		if names.A != "" && names.B != "" {
			s.names = names
		}
	}
}

// WithParallelism sets how many key groups one reconciliation classifies
// concurrently.
func WithParallelism(n int) Option {
	return func(s *Service) {
		s.parallelism = n
	}
}

// WithFirstCome disables the augmenting repair of the matcher.
func WithFirstCome(enabled bool) Option {
	return func(s *Service) {
		s.firstCome = enabled
	}
}

// WithRetention drops finished runs after d. Zero keeps them forever.
func WithRetention(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.retention = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
