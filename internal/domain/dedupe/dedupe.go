// Package dedupe suppresses exact duplicate rows by fingerprint.
package dedupe

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen fingerprints so that each row is accepted once.
type Deduper interface {
	// SeenAndRecord atomically checks if fp was seen and records it if not.
	// Returns true if fp was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, fp string) bool

	// Size is the number of fingerprints currently remembered.
	Size() int64
}

// inMemoryDeduper implements Deduper with a map.
// Bounded mode (maxSize > 0) evicts the oldest fingerprint first.
// Unbounded mode (maxSize <= 0) never evicts.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List // oldest at the front; only used in bounded mode
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
// The default is unbounded, which is what exact-duplicate suppression over a
// whole file needs.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{}

	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]*list.Element)
	if d.maxSize > 0 {
		d.order = list.New()
	}
	return d
}

// SeenAndRecord implements Deduper.
func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, fp string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[fp]; exists {
		return true
	}

	if d.order == nil {
		d.seen[fp] = nil
		d.size.Add(1)
		return false
	}

	if len(d.seen) >= d.maxSize {
		d.evictOldest()
	}
	d.seen[fp] = d.order.PushBack(fp)
	d.size.Add(1)
	return false
}

// evictOldest drops the earliest recorded fingerprint. Caller holds d.mu.
func (d *inMemoryDeduper) evictOldest() {
	front := d.order.Front()
	if front == nil {
		return
	}
	d.order.Remove(front)
	delete(d.seen, front.Value.(string))
	d.size.Add(-1)
}

// Size returns the current number of recorded fingerprints.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
