package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/callrecon/internal/domain/model"
	"github.com/okian/callrecon/pkg/metrics"
)

const defaultSweepInterval = time.Minute

// MemoryStore is an in-memory Store.
//
// Writes go through a mutex; List reads a snapshot of run headers that is
// republished after every write, so listing never waits on a running job.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]*Run

	snapshot atomic.Pointer[[]Run] // newest first, results stripped

	retention     time.Duration
	sweepInterval time.Duration
	now           func() time.Time

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore constructs a store with configuration options. With a
// retention set, a background sweeper runs until ctx ends or Close.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		runs:          make(map[string]*Run),
		sweepInterval: defaultSweepInterval,
		now:           time.Now,
		stopChan:      make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.publish()
	if s.retention > 0 {
		s.startSweeper(ctx)
	}
	return s
}

// Close stops the sweeper.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

// Create implements Store.
func (s *MemoryStore) Create(_ context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[run.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, run.ID)
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.now()
	}
	s.runs[run.ID] = &run
	s.publishLocked()
	return nil
}

// Update implements Store.
func (s *MemoryStore) Update(_ context.Context, id string, fn func(*Run)) (Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[id]
	if !ok {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	fn(run)
	run.ID = id
	s.publishLocked()
	return *run, nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id string) (Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return *run, nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context, limit int) ([]Run, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	snap := *s.snapshot.Load()
	if limit == 0 || limit > len(snap) {
		limit = len(snap)
	}
	out := make([]Run, limit)
	copy(out, snap[:limit])
	return out, nil
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) int {
	return len(*s.snapshot.Load())
}

func (s *MemoryStore) publish() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.publishLocked()
}

// publishLocked rebuilds the list snapshot. Caller holds s.mu.
func (s *MemoryStore) publishLocked() {
	snap := make([]Run, 0, len(s.runs))
	for _, r := range s.runs {
		h := *r
		h.Result = model.Result{Delta: r.Result.Delta}
		snap = append(snap, h)
	}
	sort.Slice(snap, func(i, j int) bool {
		if !snap[i].CreatedAt.Equal(snap[j].CreatedAt) {
			return snap[i].CreatedAt.After(snap[j].CreatedAt)
		}
		return snap[i].ID > snap[j].ID
	})
	s.snapshot.Store(&snap)
	metrics.UpdateStoredRuns(len(snap))
}

func (s *MemoryStore) startSweeper(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}

// Sweep drops finished runs older than the retention and returns how many
// were dropped.
func (s *MemoryStore) Sweep() int {
	if s.retention <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.retention)

	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0
	for id, r := range s.runs {
		if r.Status.Finished() && r.FinishedAt.Before(cutoff) {
			delete(s.runs, id)
			dropped++
		}
	}
	if dropped > 0 {
		s.publishLocked()
	}
	return dropped
}
