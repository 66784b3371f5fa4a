// pkg/pipeline/pipeline_test.go
package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/David-Botos/data-cleanse/pkg/config"
	"github.com/David-Botos/data-cleanse/pkg/dataset"
	"github.com/David-Botos/data-cleanse/pkg/missing"
	"github.com/David-Botos/data-cleanse/pkg/sensitive"
)

func sampleDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.FromColumns([]*dataset.Column{
		dataset.NewColumn("User Name", []interface{}{"张伟明", "李小红", "王强"}),
		dataset.NewColumn("Phone", []interface{}{"13812345678", "13998765432", "15612341234"}),
		dataset.NewColumn("Age", []interface{}{"25", nil, "40"}),
	})
	require.NoError(t, err)
	return ds
}

func runJob(t *testing.T, ds *dataset.Dataset, cfg *config.Pipeline) *Job {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}
	job := NewJob()
	NewOrchestrator(nil, nil, zap.NewNop()).Execute(context.Background(), job, ds, cfg)
	return job
}

func TestJobCompletesThroughAllStages(t *testing.T) {
	job := runJob(t, sampleDataset(t), nil)

	require.Equal(t, StateCompleted, job.State())

	snap := job.Snapshot()
	var stages []string
	for _, r := range snap.Reports {
		stages = append(stages, r.Stage)
		assert.Equal(t, StageSucceeded, r.Status, r.Stage)
	}
	assert.Equal(t, []string{
		StageValidation, StageProfiling, StageStandardization,
		StageMissing, StageSensitivity, StageMasking, StageQuality,
	}, stages)
	assert.Empty(t, snap.CurrentStage)
	assert.False(t, snap.FinishedAt.IsZero())
	require.NotNil(t, snap.Quality)
}

func TestJobOutputIsCleaned(t *testing.T) {
	job := runJob(t, sampleDataset(t), nil)
	require.Equal(t, StateCompleted, job.State())

	out, err := job.Result()
	require.NoError(t, err)

	// Names are snake_case, rows are preserved in order
	assert.Equal(t, []string{"user_name", "phone", "age"}, out.ColumnNames())
	assert.Equal(t, 3, out.Rows())

	// The mean fill landed, rounded to two decimals
	assert.Equal(t, 32.5, out.Column("age").Values[1])

	// Phone numbers were classified by pattern and partially masked
	assert.Equal(t, "138****5678", out.Column("phone").Values[0])

	// Chinese names keep the family name only
	assert.Equal(t, "张**", out.Column("user_name").Values[0])
}

func TestQualityComparisonImproves(t *testing.T) {
	job := runJob(t, sampleDataset(t), nil)
	snap := job.Snapshot()

	require.NotNil(t, snap.Quality)
	assert.GreaterOrEqual(t, snap.Quality.Delta, 0.0)
	assert.Greater(t, snap.Quality.After.Completeness, snap.Quality.Before.Completeness)
}

func TestEmptyDatasetFailsValidation(t *testing.T) {
	ds, err := dataset.FromColumns(nil)
	require.NoError(t, err)

	job := runJob(t, ds, nil)

	require.Equal(t, StateFailed, job.State())
	snap := job.Snapshot()
	assert.Equal(t, StageValidation, snap.FailedStage)
	require.Len(t, snap.Reports, 1)
	assert.Equal(t, StageFailed, snap.Reports[0].Status)

	_, err = job.Result()
	require.Error(t, err)
}

func TestRowLimitFailsValidation(t *testing.T) {
	cfg := config.Default()
	cfg.Validation.MaxRows = 2

	job := runJob(t, sampleDataset(t), cfg)

	require.Equal(t, StateFailed, job.State())
	assert.Equal(t, StageValidation, job.Snapshot().FailedStage)
}

func TestInvalidStrategyFailsBeforeResolverRuns(t *testing.T) {
	cfg := config.Default()
	cfg.Missing.ColumnStrategies = map[string]missing.Strategy{
		"user_name": missing.StrategyMedian,
	}

	job := runJob(t, sampleDataset(t), cfg)

	require.Equal(t, StateFailed, job.State())
	snap := job.Snapshot()
	assert.Equal(t, StageMissing, snap.FailedStage)
	assert.Contains(t, snap.Error, "configuration error")

	// Earlier stage reports survive the failure; the resolver stage
	// itself never produced one
	var stages []string
	for _, r := range snap.Reports {
		stages = append(stages, r.Stage)
	}
	assert.Equal(t, []string{StageValidation, StageProfiling, StageStandardization}, stages)
}

func TestFailedJobExposesNoPartialDataset(t *testing.T) {
	cfg := config.Default()
	cfg.Missing.ColumnStrategies = map[string]missing.Strategy{
		"age": missing.StrategyMode,
	}

	job := runJob(t, sampleDataset(t), cfg)

	require.Equal(t, StateFailed, job.State())
	out, err := job.Result()
	assert.Nil(t, out)
	assert.Error(t, err)
}

func TestTerminalStateNeverChanges(t *testing.T) {
	job := NewJob()
	require.NoError(t, job.markRunning())
	job.fail(StageMasking, errors.New("boom"))

	require.Equal(t, StateFailed, job.State())
	failedAt := job.Snapshot().FinishedAt

	job.complete(sampleDataset(t), nil)
	job.fail(StageQuality, errors.New("later"))

	snap := job.Snapshot()
	assert.Equal(t, StateFailed, snap.State)
	assert.Equal(t, StageMasking, snap.FailedStage)
	assert.Equal(t, failedAt, snap.FinishedAt)
}

func TestMarkRunningRequiresQueued(t *testing.T) {
	job := NewJob()
	require.NoError(t, job.markRunning())
	assert.Error(t, job.markRunning())
}

func TestRowCountChangeIsIntegrityError(t *testing.T) {
	job := NewJob()
	require.NoError(t, job.markRunning())

	run := &execution{
		job:     job,
		cfg:     config.Default(),
		logger:  zap.NewNop(),
		current: sampleDataset(t),
	}

	err := run.runStage("shrinking", func(report *StageReport) error {
		shrunk, buildErr := dataset.FromColumns([]*dataset.Column{
			dataset.NewColumn("a", []interface{}{"only one row"}),
		})
		require.NoError(t, buildErr)
		run.current = shrunk
		return nil
	})

	var integrity *DataIntegrityError
	require.ErrorAs(t, err, &integrity)
	assert.Equal(t, 3, integrity.Expected)
	assert.Equal(t, 1, integrity.Actual)
	assert.Equal(t, "shrinking", run.failedStage)
}

func TestErrorTaxonomy(t *testing.T) {
	inner := errors.New("inner")

	cfgErr := &ConfigurationError{Reason: "bad strategy", Err: inner}
	assert.Contains(t, cfgErr.Error(), "configuration error")
	assert.ErrorIs(t, cfgErr, inner)

	stageErr := &StageProcessingError{Stage: StageMasking, Err: inner}
	assert.Contains(t, stageErr.Error(), StageMasking)
	assert.ErrorIs(t, stageErr, inner)

	collabErr := &sensitive.CollaboratorError{Op: "classify", Err: inner}
	assert.ErrorIs(t, collabErr, inner)
}

// flakyExternal fails a fixed number of times before succeeding
type flakyExternal struct {
	mu       sync.Mutex
	failures int
	calls    int
}

func (f *flakyExternal) Classify(_ context.Context, _ string, _ []string) (sensitive.Type, float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return sensitive.TypeNone, 0, errors.New("unavailable")
	}
	return sensitive.TypePhone, 0.9, nil
}

func TestExternalOutageDoesNotFailJob(t *testing.T) {
	// A column inside the inconclusive band forces the external phase
	ds, err := dataset.FromColumns([]*dataset.Column{
		dataset.NewColumn("mixed", []interface{}{
			"13812345678", "not a phone", "13998765432", "plain text",
		}),
	})
	require.NoError(t, err)

	external := &flakyExternal{failures: 10}
	job := NewJob()
	NewOrchestrator(external, nil, zap.NewNop()).Execute(context.Background(), job, ds, config.Default())

	assert.Equal(t, StateCompleted, job.State())
}

// recordingSink captures audit snapshots
type recordingSink struct {
	mu        sync.Mutex
	snapshots []Snapshot
}

func (r *recordingSink) RecordJob(_ context.Context, snap Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, snap)
	return nil
}

func TestAuditSinkReceivesFailedJobs(t *testing.T) {
	sink := &recordingSink{}
	ds, err := dataset.FromColumns(nil)
	require.NoError(t, err)

	job := NewJob()
	NewOrchestrator(nil, sink, zap.NewNop()).Execute(context.Background(), job, ds, config.Default())

	require.Len(t, sink.snapshots, 1)
	assert.Equal(t, StateFailed, sink.snapshots[0].State)
	assert.Equal(t, job.ID, sink.snapshots[0].ID)
}

func TestRegistryLifecycle(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	job := NewJob()
	reg.Add(job)

	got, err := reg.Get(job.ID)
	require.NoError(t, err)
	assert.Same(t, job, got)

	assert.Len(t, reg.List(), 1)

	require.NoError(t, reg.Delete(job.ID))
	_, err = reg.Get(job.ID)
	assert.ErrorIs(t, err, ErrJobNotFound)
	assert.Empty(t, reg.List())

	assert.ErrorIs(t, reg.Delete(job.ID), ErrJobNotFound, "double delete")
	_, err = reg.Get("no-such-handle")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestRegistryEvictReclaimsDeletedTerminalJobs(t *testing.T) {
	reg := NewRegistry(zap.NewNop())

	finished := NewJob()
	require.NoError(t, finished.markRunning())
	finished.complete(nil, nil)
	reg.Add(finished)
	require.NoError(t, reg.Delete(finished.ID))

	running := NewJob()
	require.NoError(t, running.markRunning())
	reg.Add(running)

	evicted := reg.Evict(time.Hour)
	assert.Equal(t, 1, evicted)

	_, err := reg.Get(running.ID)
	assert.NoError(t, err, "non-terminal jobs are never evicted")
}

func TestRegistryConcurrentAccess(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	job := NewJob()
	reg.Add(job)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < 100; n++ {
				if j, err := reg.Get(job.ID); err == nil {
					_ = j.Snapshot()
				}
				_ = reg.List()
			}
		}()
	}
	wg.Wait()
}

func TestServiceSubmitAndPoll(t *testing.T) {
	svc := NewService(NewOrchestrator(nil, nil, zap.NewNop()), DefaultServiceOptions(), zap.NewNop())
	defer svc.Close()

	job := svc.Submit(context.Background(), sampleDataset(t), nil)
	svc.Wait()

	snap, err := svc.Status(job.ID)
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, snap.State)

	out, err := svc.Result(job.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Rows())

	require.NoError(t, svc.Delete(job.ID))
	_, err = svc.Status(job.ID)
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestServiceRunsJobsIndependently(t *testing.T) {
	svc := NewService(NewOrchestrator(nil, nil, zap.NewNop()), DefaultServiceOptions(), zap.NewNop())
	defer svc.Close()

	good := svc.Submit(context.Background(), sampleDataset(t), nil)

	empty, err := dataset.FromColumns(nil)
	require.NoError(t, err)
	bad := svc.Submit(context.Background(), empty, nil)

	svc.Wait()

	goodSnap, err := svc.Status(good.ID)
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, goodSnap.State)

	badSnap, err := svc.Status(bad.ID)
	require.NoError(t, err)
	assert.Equal(t, StateFailed, badSnap.State)

	assert.Len(t, svc.List(), 2)
}
