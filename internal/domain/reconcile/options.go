package reconcile

// DefaultDelta is the tolerance, in seconds, used when none is configured.
const DefaultDelta = 3

// Option applies a configuration option to a reconciliation.
type Option func(*settings)

type settings struct {
	parallelism int
	firstCome   bool
}

// WithParallelism spreads key groups over up to n goroutines.
// Values below 2 keep the computation on the calling goroutine.
func WithParallelism(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.parallelism = n
		}
	}
}

// WithFirstCome pairs candidates strictly first-come and skips the
// augmenting repair. A wider delta may then match fewer calls.
func WithFirstCome() Option {
	return func(s *settings) {
		s.firstCome = true
	}
}

func newSettings(opts []Option) settings {
	s := settings{parallelism: 1}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
