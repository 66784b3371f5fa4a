// pkg/pipeline/registry.go
package pipeline

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrJobNotFound is returned when a handle resolves to no visible job
var ErrJobNotFound = errors.New("job not found")

// Registry maps job handles to jobs. The registry lock only guards the
// map; each job synchronizes its own state, so polling one job never
// serializes against another job's execution.
type Registry struct {
	mu      sync.RWMutex
	jobs    map[string]*Job
	deleted map[string]time.Time
	logger  *zap.Logger
}

// NewRegistry creates an empty registry
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		jobs:    make(map[string]*Job),
		deleted: make(map[string]time.Time),
		logger:  logger,
	}
}

// Add registers a job under its handle
func (r *Registry) Add(job *Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = job
}

// Get returns the job for a handle. Deleted jobs are invisible even
// while their execution finishes.
func (r *Registry) Get(id string) (*Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, gone := r.deleted[id]; gone {
		return nil, ErrJobNotFound
	}
	job, ok := r.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	return job, nil
}

// List returns snapshots of all visible jobs
func (r *Registry) List() []Snapshot {
	r.mu.RLock()
	jobs := make([]*Job, 0, len(r.jobs))
	for id, job := range r.jobs {
		if _, gone := r.deleted[id]; gone {
			continue
		}
		jobs = append(jobs, job)
	}
	r.mu.RUnlock()

	snapshots := make([]Snapshot, 0, len(jobs))
	for _, job := range jobs {
		snapshots = append(snapshots, job.Snapshot())
	}
	return snapshots
}

// Delete hides a job from readers. Deletion affects visibility only;
// an in-flight execution runs to completion.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.jobs[id]; !ok {
		return ErrJobNotFound
	}
	if _, gone := r.deleted[id]; gone {
		return ErrJobNotFound
	}
	r.deleted[id] = time.Now()

	if r.logger != nil {
		r.logger.Info("Job deleted", zap.String("jobID", id))
	}
	return nil
}

// Evict removes terminal jobs older than the retention period, and
// reclaims storage for deleted jobs once their execution has finished
func (r *Registry) Evict(retention time.Duration) int {
	cutoff := time.Now().Add(-retention)

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, job := range r.jobs {
		snap := job.Snapshot()
		_, gone := r.deleted[id]
		expired := snap.State.Terminal() && !snap.FinishedAt.IsZero() && snap.FinishedAt.Before(cutoff)

		if expired || (gone && snap.State.Terminal()) {
			delete(r.jobs, id)
			delete(r.deleted, id)
			evicted++
		}
	}

	if evicted > 0 && r.logger != nil {
		r.logger.Info("Evicted jobs", zap.Int("count", evicted))
	}
	return evicted
}
