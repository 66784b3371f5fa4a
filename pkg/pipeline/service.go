// pkg/pipeline/service.go
package pipeline

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/data-cleanse/pkg/config"
	"github.com/David-Botos/data-cleanse/pkg/dataset"
)

// Service accepts pipeline jobs and executes them asynchronously.
// Each job runs on its own goroutine; a semaphore bounds how many run
// at once. Jobs share nothing but the registry.
type Service struct {
	orchestrator *Orchestrator
	registry     *Registry
	logger       *zap.Logger

	semaphore chan struct{}
	wg        sync.WaitGroup

	stopEvict chan struct{}
	stopOnce  sync.Once
}

// ServiceOptions configures job execution limits
type ServiceOptions struct {
	// MaxConcurrentJobs bounds simultaneously running jobs
	MaxConcurrentJobs int
	// Retention is how long terminal jobs stay visible
	Retention time.Duration
	// EvictInterval is how often expired jobs are swept
	EvictInterval time.Duration
}

// DefaultServiceOptions returns the standard execution limits
func DefaultServiceOptions() ServiceOptions {
	return ServiceOptions{
		MaxConcurrentJobs: 4,
		Retention:         time.Hour,
		EvictInterval:     5 * time.Minute,
	}
}

// NewService creates a job service around an orchestrator
func NewService(orchestrator *Orchestrator, opts ServiceOptions, logger *zap.Logger) *Service {
	if opts.MaxConcurrentJobs <= 0 {
		opts.MaxConcurrentJobs = 4
	}
	if opts.Retention <= 0 {
		opts.Retention = time.Hour
	}
	if opts.EvictInterval <= 0 {
		opts.EvictInterval = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Service{
		orchestrator: orchestrator,
		registry:     NewRegistry(logger),
		logger:       logger,
		semaphore:    make(chan struct{}, opts.MaxConcurrentJobs),
		stopEvict:    make(chan struct{}),
	}

	go s.evictLoop(opts.Retention, opts.EvictInterval)
	return s
}

// Submit registers a new job and schedules its execution. The returned
// handle can be polled immediately; the job starts once a slot frees up.
func (s *Service) Submit(ctx context.Context, ds *dataset.Dataset, cfg *config.Pipeline) *Job {
	if cfg == nil {
		cfg = config.Default()
	}

	job := NewJob()
	s.registry.Add(job)
	s.logger.Info("Job submitted",
		zap.String("jobID", job.ID),
		zap.Int("rows", ds.Rows()),
		zap.Int("columns", ds.Width()))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		s.semaphore <- struct{}{}
		defer func() { <-s.semaphore }()

		s.orchestrator.Execute(ctx, job, ds, cfg)
	}()

	return job
}

// Status returns a point-in-time snapshot of a job
func (s *Service) Status(id string) (Snapshot, error) {
	job, err := s.registry.Get(id)
	if err != nil {
		return Snapshot{}, err
	}
	return job.Snapshot(), nil
}

// Result returns a completed job's final dataset
func (s *Service) Result(id string) (*dataset.Dataset, error) {
	job, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}
	return job.Result()
}

// Delete hides a job from further polling. In-flight execution is not
// cancelled; only visibility changes.
func (s *Service) Delete(id string) error {
	return s.registry.Delete(id)
}

// List returns snapshots of all visible jobs
func (s *Service) List() []Snapshot {
	return s.registry.List()
}

// Wait blocks until all submitted jobs have finished executing
func (s *Service) Wait() {
	s.wg.Wait()
}

// Close stops the eviction loop after waiting for in-flight jobs
func (s *Service) Close() {
	s.wg.Wait()
	s.stopOnce.Do(func() { close(s.stopEvict) })
}

func (s *Service) evictLoop(retention, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.registry.Evict(retention)
		case <-s.stopEvict:
			return
		}
	}
}
