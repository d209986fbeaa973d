// Package service runs reconciliations for the CLI and the HTTP API.
//
// Execute reconciles two logs synchronously. Submit stores a queued run and
// hands the uploads to a worker pool; the run is updated in place as it
// moves to running and then succeeded or failed.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/callrecon/internal/adapters/ingest"
	"github.com/okian/callrecon/internal/adapters/mq/queue"
	"github.com/okian/callrecon/internal/adapters/mq/worker"
	"github.com/okian/callrecon/internal/adapters/report"
	"github.com/okian/callrecon/internal/adapters/repository"
	"github.com/okian/callrecon/internal/domain/model"
	"github.com/okian/callrecon/internal/domain/reconcile"
	"github.com/okian/callrecon/pkg/logger"
	"github.com/okian/callrecon/pkg/metrics"
)

const defaultQueueSize = 64

// Outcome is everything one reconciliation produced.
type Outcome struct {
	Result  model.Result
	Summary report.Summary
	StatsA  ingest.Stats
	StatsB  ingest.Stats
}

// Service owns the run store, the job queue and the worker pool.
type Service struct {
	mu sync.RWMutex

	store  *repository.MemoryStore
	queue  *queue.InMemoryQueue
	pool   *worker.Pool
	cancel context.CancelFunc // stops workers and the store sweeper

	workerCount int
	queueSize   int
	dedupeSize  int
	delta       int
	delimiter   rune
	names       report.Names
	parallelism int
	firstCome   bool
	retention   time.Duration

	started bool
	now     func() time.Time
	logger  logger.Logger
}

// New constructs a Service. Execute works right away; Submit needs Start.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   defaultQueueSize,
		delta:       reconcile.DefaultDelta,
		delimiter:   ingest.DefaultDelimiter,
		names:       report.DefaultNames(),
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// Start creates the run store, the queue and the worker pool. Workers
// outlive ctx: they keep running until Stop has drained the queue.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	var storeOpts []repository.Option
	if s.retention > 0 {
		storeOpts = append(storeOpts, repository.WithRetention(s.retention))
	}
	s.store = repository.NewMemoryStore(runCtx, storeOpts...)
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, worker.ProcessorFunc(s.process))
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "reconciliation service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queue_size", s.queueSize),
		logger.Int("default_delta", s.delta),
	)
	return nil
}

// Stop drains queued jobs and shuts the workers down. Runs stay readable.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.started = false

	s.logger.Info(ctx, "stopping reconciliation service...")
	err := s.pool.Shutdown(ctx)
	s.cancel()
	if cerr := s.store.Close(); cerr != nil && err == nil {
		err = cerr
	}
	s.logger.Info(ctx, "reconciliation service stopped")
	return err
}

// Names returns the display names of the sources.
func (s *Service) Names() report.Names {
	return s.names
}

// DefaultDelta returns the tolerance used when a request omits one.
func (s *Service) DefaultDelta() int {
	return s.delta
}

// Execute reads both logs and reconciles them.
func (s *Service) Execute(ctx context.Context, a, b io.Reader, delta int) (Outcome, error) {
	if delta < 0 {
		return Outcome{}, fmt.Errorf("%w: %d", reconcile.ErrInvalidDelta, delta)
	}
	start := s.now()

	out, err := s.execute(ctx, a, b, delta)
	metrics.RecordRunLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordRun(string(repository.StatusFailed))
		metrics.RecordErrorByComponent("service", "run_failed")
		return Outcome{}, err
	}
	metrics.RecordRun(string(repository.StatusSucceeded))
	return out, nil
}

func (s *Service) execute(ctx context.Context, a, b io.Reader, delta int) (Outcome, error) {
	recsA, statsA, err := s.reader(model.SourceA).Read(ctx, a)
	if err != nil {
		return Outcome{}, fmt.Errorf("source %s: %w", s.names.A, err)
	}
	recsB, statsB, err := s.reader(model.SourceB).Read(ctx, b)
	if err != nil {
		return Outcome{}, fmt.Errorf("source %s: %w", s.names.B, err)
	}

	opts := []reconcile.Option{reconcile.WithParallelism(s.parallelism)}
	if s.firstCome {
		opts = append(opts, reconcile.WithFirstCome())
	}
	res, err := reconcile.Reconcile(recsA, recsB, delta, opts...)
	if err != nil {
		return Outcome{}, err
	}
	recordOutcomes(res)

	return Outcome{
		Result:  res,
		Summary: report.Summarize(res, len(recsA), len(recsB)),
		StatsA:  statsA,
		StatsB:  statsB,
	}, nil
}

func (s *Service) reader(src model.Source) *ingest.Reader {
	return ingest.NewReader(
		ingest.WithSource(src),
		ingest.WithDelimiter(s.delimiter),
		ingest.WithDedupeSize(s.dedupeSize),
	)
}

func recordOutcomes(res model.Result) {
	metrics.RecordOutcomes(string(model.TagMatched), len(res.Matched))
	metrics.RecordOutcomes(string(model.TagOutOfDelta), len(res.CrossResidual))
	metrics.RecordOutcomes(string(model.TagSourceAOnly), len(res.SoleA))
	metrics.RecordOutcomes(string(model.TagSourceBOnly), len(res.SoleB))
}

// Submit stores a queued run for the two uploads and enqueues it.
// A full queue fails the run and returns ErrBackpressure.
func (s *Service) Submit(ctx context.Context, a, b queue.Upload, delta int) (repository.Run, error) {
	if delta < 0 {
		return repository.Run{}, fmt.Errorf("%w: %d", reconcile.ErrInvalidDelta, delta)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return repository.Run{}, ErrNotStarted
	}

	run := repository.Run{
		ID:        uuid.NewString(),
		Status:    repository.StatusQueued,
		Delta:     delta,
		FileA:     a.Name,
		FileB:     b.Name,
		CreatedAt: s.now(),
	}
	if err := s.store.Create(ctx, run); err != nil {
		return repository.Run{}, fmt.Errorf("create run: %w", err)
	}

	job := queue.Job{RunID: run.ID, SourceA: a, SourceB: b, Delta: delta}
	if s.queue.Enqueue(ctx, job) {
		s.logger.Debug(ctx, "run queued", logger.String("run_id", run.ID))
		return run, nil
	}

	cause := ErrBackpressure
	if s.queue.IsClosed() {
		cause = queue.ErrClosed
	} else if ctx.Err() != nil {
		cause = ctx.Err()
	}
	s.fail(ctx, run.ID, cause)
	return repository.Run{}, fmt.Errorf("enqueue run %s: %w", run.ID, cause)
}

// process is the worker pool's job handler.
func (s *Service) process(ctx context.Context, job queue.Job) error { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	_, err := s.store.Update(ctx, job.RunID, func(r *repository.Run) {
		r.Status = repository.StatusRunning
		r.StartedAt = s.now()
	})
	if err != nil {
		return fmt.Errorf("start run %s: %w", job.RunID, err)
	}

	out, err := s.Execute(ctx, bytes.NewReader(job.SourceA.Data), bytes.NewReader(job.SourceB.Data), job.Delta)
	if err != nil {
		s.fail(ctx, job.RunID, err)
		return fmt.Errorf("run %s: %w", job.RunID, err)
	}

	_, err = s.store.Update(ctx, job.RunID, func(r *repository.Run) {
		r.Status = repository.StatusSucceeded
		r.FinishedAt = s.now()
		r.StatsA = out.StatsA
		r.StatsB = out.StatsB
		r.Result = out.Result
		r.Summary = out.Summary
	})
	if err != nil {
		return fmt.Errorf("finish run %s: %w", job.RunID, err)
	}

	s.logger.Info(ctx, "run finished",
		logger.String("run_id", job.RunID),
		logger.Int("matched", out.Summary.Matched),
		logger.Int("out_of_delta", out.Summary.OutOfDelta),
		logger.Int("sole_a", out.Summary.SoleA),
		logger.Int("sole_b", out.Summary.SoleB),
	)
	return nil
}

func (s *Service) fail(ctx context.Context, id string, cause error) {
	_, err := s.store.Update(ctx, id, func(r *repository.Run) {
		r.Status = repository.StatusFailed
		r.FinishedAt = s.now()
		r.Error = cause.Error()
	})
	if err != nil {
		s.logger.Warn(ctx, "could not mark run failed",
			logger.String("run_id", id),
			logger.Error(err),
		)
	}
}

// Get returns a run with its result.
func (s *Service) Get(ctx context.Context, id string) (repository.Run, error) {
	store, err := s.runs()
	if err != nil {
		return repository.Run{}, err
	}
	return store.Get(ctx, id)
}

// List returns up to limit runs, newest first, without results.
func (s *Service) List(ctx context.Context, limit int) ([]repository.Run, error) {
	store, err := s.runs()
	if err != nil {
		return nil, err
	}
	return store.List(ctx, limit)
}

// Workbook writes the report workbook of a succeeded run to w.
func (s *Service) Workbook(ctx context.Context, id string, w io.Writer) error {
	run, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if run.Status != repository.StatusSucceeded {
		return fmt.Errorf("%w: run %s is %s", ErrNoResult, id, run.Status)
	}
	return report.WriteWorkbook(w, run.Result, run.Summary, s.names)
}

func (s *Service) runs() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.store == nil {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"delta":       s.delta,
		"sourceA":     s.names.A,
		"sourceB":     s.names.B,
	}

	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
		stats["activeWorkers"] = s.pool.Active()
		stats["storedRuns"] = s.store.Count(ctx)
	}

	return stats
}

// IsBadInput reports whether err was caused by the submitted data rather
// than by the service.
func IsBadInput(err error) bool {
	return errors.Is(err, reconcile.ErrInvalidDelta) ||
		errors.Is(err, ingest.ErrEmptyInput) ||
		errors.Is(err, ingest.ErrMissingColumn) ||
		errors.Is(err, ingest.ErrInvalidDelimiter)
}
