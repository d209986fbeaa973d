package dedupe

// Option applies a configuration option to the in-memory deduper.
type Option func(*inMemoryDeduper)

// WithMaxSize caps the number of remembered fingerprints.
// If maxSize > 0 the oldest fingerprint is evicted when the cap is reached;
// otherwise the deduper grows without limit.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = maxSize
	}
}
