// Package queue admits evaluation jobs and runs them with a bounded number
// of concurrent pipeline executions.
package queue

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/fadilmartias/cv-screening/internal/logger"
	"github.com/fadilmartias/cv-screening/internal/model"
	"github.com/fadilmartias/cv-screening/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultConcurrency = 3

// InterruptedError is recorded on jobs found processing at startup.
const InterruptedError = "interrupted by restart"

var ErrSchedulerClosed = errors.New("scheduler is shut down")

// Runner drives one queued job to a terminal state.
type Runner interface {
	Run(ctx context.Context, jobID uuid.UUID) error
}

type Scheduler struct {
	store   repository.JobStore
	runner  Runner
	limit   int
	logger  *zap.Logger
	metrics *Metrics

	baseCtx context.Context
	cancel  context.CancelFunc

	mu      sync.Mutex
	pending []uuid.UUID
	known   map[uuid.UUID]struct{}
	running map[uuid.UUID]struct{}
	closed  bool
	wg      sync.WaitGroup
}

type Option func(*Scheduler)

func WithConcurrency(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.limit = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger.OrNop(l)
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Scheduler) {
		s.metrics = m
	}
}

func NewScheduler(store repository.JobStore, runner Runner, opts ...Option) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		store:   store,
		runner:  runner,
		limit:   DefaultConcurrency,
		logger:  zap.NewNop(),
		baseCtx: ctx,
		cancel:  cancel,
		known:   make(map[uuid.UUID]struct{}),
		running: make(map[uuid.UUID]struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Start recovers state left by a previous process: queued jobs are admitted
// oldest first and processing jobs are failed.
func (s *Scheduler) Start(ctx context.Context) error {
	stale, err := s.store.ListJobs(ctx, model.JobFilter{Status: model.JobStatusProcessing})
	if err != nil {
		return fmt.Errorf("list processing jobs: %w", err)
	}
	msg := InterruptedError
	interrupted := 0
	for _, job := range stale {
		err := s.store.UpdateJobStatus(ctx, job.ID, model.JobUpdate{Status: model.JobStatusFailed, Error: &msg})
		if errors.Is(err, repository.ErrInvalidTransition) {
			// finished between the listing and the update
			continue
		}
		if err != nil {
			return fmt.Errorf("fail interrupted job %s: %w", job.ID, err)
		}
		interrupted++
		s.metrics.jobFinished(string(model.JobStatusFailed))
		s.logger.Warn("job interrupted by restart", zap.String("job_id", job.ID.String()))
	}

	queued, err := s.store.ListJobs(ctx, model.JobFilter{Status: model.JobStatusQueued})
	if err != nil {
		return fmt.Errorf("list queued jobs: %w", err)
	}
	slices.Reverse(queued)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSchedulerClosed
	}
	for _, job := range queued {
		s.enqueueLocked(job.ID)
	}
	s.admitLocked()

	s.logger.Info("scheduler started",
		zap.Int("concurrency", s.limit),
		zap.Int("recovered_queued", len(queued)),
		zap.Int("interrupted", interrupted),
	)
	return nil
}

// Submit creates a queued job and returns without waiting for it to run.
func (s *Scheduler) Submit(ctx context.Context, title, cvDocumentID, reportDocumentID string) (*model.EvaluationJob, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, ErrSchedulerClosed
	}

	job := &model.EvaluationJob{
		ID:               uuid.New(),
		Title:            title,
		CVDocumentID:     cvDocumentID,
		ReportDocumentID: reportDocumentID,
		Status:           model.JobStatusQueued,
	}
	if err := s.store.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		// Left queued in the store; the next Start picks it up.
		s.logger.Warn("job submitted during shutdown", zap.String("job_id", job.ID.String()))
		return job, nil
	}
	s.enqueueLocked(job.ID)
	s.admitLocked()

	s.logger.Info("job submitted",
		zap.String("job_id", job.ID.String()),
		zap.String("title", title),
	)
	return job, nil
}

func (s *Scheduler) Get(ctx context.Context, id uuid.UUID) (*model.EvaluationJob, error) {
	return s.store.GetJob(ctx, id)
}

// List returns jobs most recent first.
func (s *Scheduler) List(ctx context.Context, filter model.JobFilter) ([]model.EvaluationJob, error) {
	return s.store.ListJobs(ctx, filter)
}

func (s *Scheduler) Count(ctx context.Context, status model.JobStatus) (int64, error) {
	return s.store.CountJobs(ctx, status)
}

// Depth reports the number of waiting and running jobs.
func (s *Scheduler) Depth() (queued, running int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending), len(s.running)
}

// Shutdown stops admission and waits for running pipelines. When ctx ends
// first, running pipelines are cancelled and ctx.Err() is returned. Jobs not
// yet admitted stay queued in the store.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		s.pending = nil
		s.metrics.setDepth(0, len(s.running))
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.wg.Wait()
	}()

	select {
	case <-done:
		s.cancel()
		s.logger.Info("scheduler drained, shutdown complete")
		return nil
	case <-ctx.Done():
		s.cancel()
		s.logger.Warn("shutdown deadline reached, cancelling running jobs")
		return ctx.Err()
	}
}

// enqueueLocked ignores ids already waiting or running.
func (s *Scheduler) enqueueLocked(id uuid.UUID) {
	if _, ok := s.known[id]; ok {
		return
	}
	s.known[id] = struct{}{}
	s.pending = append(s.pending, id)
}

// admitLocked starts pending jobs in FIFO order while slots are free.
func (s *Scheduler) admitLocked() {
	for !s.closed && len(s.running) < s.limit && len(s.pending) > 0 {
		id := s.pending[0]
		s.pending = s.pending[1:]
		s.running[id] = struct{}{}
		s.wg.Add(1)
		go s.execute(id)
	}
	s.metrics.setDepth(len(s.pending), len(s.running))
}

func (s *Scheduler) execute(id uuid.UUID) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.running, id)
		delete(s.known, id)
		s.admitLocked()
		s.mu.Unlock()
	}()

	log := s.logger.With(zap.String("job_id", id.String()))
	err := s.runner.Run(s.baseCtx, id)
	if errors.Is(err, repository.ErrInvalidTransition) || errors.Is(err, repository.ErrJobNotFound) {
		log.Warn("job not runnable, skipped", zap.Error(err))
		return
	}

	job, getErr := s.store.GetJob(context.WithoutCancel(s.baseCtx), id)
	if getErr != nil {
		log.Error("could not read finished job", zap.Error(getErr))
		return
	}
	if job.Status.IsTerminal() {
		s.metrics.jobFinished(string(job.Status))
	}
}
