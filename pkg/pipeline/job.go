// pkg/pipeline/job.go
package pipeline

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/David-Botos/data-cleanse/pkg/dataset"
	"github.com/David-Botos/data-cleanse/pkg/quality"
)

// State is a job's lifecycle state. Transitions run strictly
// queued -> running -> {completed | failed}; terminal states never change.
type State string

const (
	StateQueued    State = "queued"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Terminal reports whether the state admits no further transitions
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Job is one asynchronous execution of the pipeline over one dataset and
// one config. The orchestrator driving a job is its only writer; any
// number of readers may take point-in-time snapshots concurrently.
type Job struct {
	ID        string
	CreatedAt time.Time

	mu           sync.RWMutex
	state        State
	currentStage string
	reports      []StageReport
	errSummary   string
	failedStage  string
	final        *dataset.Dataset
	quality      *quality.Comparison
	startedAt    time.Time
	finishedAt   time.Time
}

// NewJob creates a queued job with a fresh handle
func NewJob() *Job {
	return &Job{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
		state:     StateQueued,
	}
}

// State returns the job's current state
func (j *Job) State() State {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.state
}

// Snapshot is a point-in-time view of a job for status polling
type Snapshot struct {
	ID           string
	State        State
	CurrentStage string
	Reports      []StageReport
	Error        string
	FailedStage  string
	Quality      *quality.Comparison
	CreatedAt    time.Time
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Snapshot returns a consistent copy of the job's observable state
func (j *Job) Snapshot() Snapshot {
	j.mu.RLock()
	defer j.mu.RUnlock()

	reports := make([]StageReport, len(j.reports))
	copy(reports, j.reports)

	return Snapshot{
		ID:           j.ID,
		State:        j.state,
		CurrentStage: j.currentStage,
		Reports:      reports,
		Error:        j.errSummary,
		FailedStage:  j.failedStage,
		Quality:      j.quality,
		CreatedAt:    j.CreatedAt,
		StartedAt:    j.startedAt,
		FinishedAt:   j.finishedAt,
	}
}

// Result returns the final dataset. It is only available once the job
// has completed; a failed job never exposes a partial dataset.
func (j *Job) Result() (*dataset.Dataset, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	switch j.state {
	case StateCompleted:
		return j.final, nil
	case StateFailed:
		return nil, fmt.Errorf("job %s failed: %s", j.ID, j.errSummary)
	default:
		return nil, fmt.Errorf("job %s is still %s", j.ID, j.state)
	}
}

// markRunning transitions queued -> running
func (j *Job) markRunning() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.state != StateQueued {
		return fmt.Errorf("cannot start job in state %s", j.state)
	}
	j.state = StateRunning
	j.startedAt = time.Now()
	return nil
}

// setStage records the stage currently executing
func (j *Job) setStage(stage string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.currentStage = stage
}

// appendReport adds a stage report to the audit trail
func (j *Job) appendReport(report StageReport) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.reports = append(j.reports, report)
}

// complete transitions running -> completed and publishes the results
func (j *Job) complete(final *dataset.Dataset, cmp *quality.Comparison) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.state.Terminal() {
		return
	}
	j.state = StateCompleted
	j.currentStage = ""
	j.final = final
	j.quality = cmp
	j.finishedAt = time.Now()
}

// fail transitions to failed with a human-readable summary. Reports
// accumulated before the failure stay available for diagnosis.
func (j *Job) fail(stage string, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.state.Terminal() {
		return
	}
	j.state = StateFailed
	j.currentStage = ""
	j.failedStage = stage
	j.errSummary = fmt.Sprintf("processing failed at stage %s: %v", stage, err)
	if stage == "" {
		j.errSummary = fmt.Sprintf("processing failed before any stage ran: %v", err)
	}
	j.finishedAt = time.Now()
}
