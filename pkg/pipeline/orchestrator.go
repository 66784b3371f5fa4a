// pkg/pipeline/orchestrator.go
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/data-cleanse/pkg/config"
	"github.com/David-Botos/data-cleanse/pkg/dataset"
	"github.com/David-Botos/data-cleanse/pkg/feature"
	"github.com/David-Botos/data-cleanse/pkg/mask"
	"github.com/David-Botos/data-cleanse/pkg/missing"
	"github.com/David-Botos/data-cleanse/pkg/profile"
	"github.com/David-Botos/data-cleanse/pkg/quality"
	"github.com/David-Botos/data-cleanse/pkg/sensitive"
	"github.com/David-Botos/data-cleanse/pkg/standardize"
)

// AuditSink receives the finished audit trail of a job. Implementations
// must tolerate being called after job failure as well as success.
type AuditSink interface {
	RecordJob(ctx context.Context, snapshot Snapshot) error
}

// Orchestrator sequences the stage pipeline for one job at a time and is
// the only writer of job state. Stage components are stateless across
// jobs; per-job state (the external-verdict cache, the random source)
// is created fresh for every execution.
type Orchestrator struct {
	external sensitive.External
	audit    AuditSink
	logger   *zap.Logger
}

// NewOrchestrator creates an orchestrator. The external classifier and
// the audit sink may both be nil.
func NewOrchestrator(external sensitive.External, audit AuditSink, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{external: external, audit: audit, logger: logger}
}

// Execute drives a job through the stage sequence. Stage N+1 never
// starts before stage N finishes; any stage error moves the job to
// failed, keeping the reports accumulated so far.
func (o *Orchestrator) Execute(ctx context.Context, job *Job, raw *dataset.Dataset, cfg *config.Pipeline) {
	logger := o.logger.With(zap.String("jobID", job.ID))

	if err := job.markRunning(); err != nil {
		logger.Error("Job could not start", zap.Error(err))
		return
	}
	logger.Info("Job started", zap.Int("rows", raw.Rows()), zap.Int("columns", raw.Width()))

	run := &execution{
		orchestrator: o,
		job:          job,
		cfg:          cfg,
		logger:       logger,
		raw:          raw,
		current:      raw.Clone(),
	}

	if err := run.execute(ctx); err != nil {
		job.fail(run.failedStage, err)
		logger.Warn("Job failed",
			zap.String("stage", run.failedStage),
			zap.Error(err))
	} else {
		job.complete(run.current, run.comparison)
		logger.Info("Job completed",
			zap.Int("stages", len(job.Snapshot().Reports)),
			zap.Float64("qualityDelta", run.comparison.Delta))
	}

	o.recordAudit(ctx, job, logger)
}

// recordAudit forwards the job's audit trail to the sink, if configured.
// Audit failures are logged, never propagated to the job.
func (o *Orchestrator) recordAudit(ctx context.Context, job *Job, logger *zap.Logger) {
	if o.audit == nil {
		return
	}
	if err := o.audit.RecordJob(ctx, job.Snapshot()); err != nil {
		logger.Warn("Failed to record job audit trail", zap.Error(err))
	}
}

// execution carries the mutable state of one job run
type execution struct {
	orchestrator *Orchestrator
	job          *Job
	cfg          *config.Pipeline
	logger       *zap.Logger

	raw         *dataset.Dataset
	current     *dataset.Dataset
	profiles    profile.Set
	findings    []sensitive.Finding
	comparison  *quality.Comparison
	failedStage string
}

func (e *execution) execute(ctx context.Context) error {
	cfg := e.cfg

	profiler := profile.NewProfiler(cfg.Profile, e.logger)
	scorer := quality.NewScorer(profiler, e.logger)

	// Pre-flight dataset validation runs before any stage
	if err := e.validate(); err != nil {
		return err
	}

	// Profiling
	if err := e.runStage(StageProfiling, func(report *StageReport) error {
		e.profiles = profiler.ProfileDataset(e.current)
		report.Details = e.profiles
		report.Message = fmt.Sprintf("profiled %d columns", len(e.profiles))
		return nil
	}); err != nil {
		return err
	}

	// Standardization
	standardizer := standardize.NewStandardizer(e.logger)
	if err := e.runStage(StageStandardization, func(report *StageReport) error {
		out, result, err := standardizer.Apply(e.current, e.profiles, cfg.Standardize)
		if err != nil {
			return err
		}
		e.current = out
		report.Details = result
		report.Changes = result.Changes()
		report.Message = fmt.Sprintf("standardization complete, %d columns changed", result.ChangedColumns)
		return nil
	}); err != nil {
		return err
	}

	// Later stages consume profiles of the standardized snapshot
	e.profiles = profiler.ProfileDataset(e.current)

	// Strategy/type compatibility is a configuration error, surfaced
	// before the resolver executes
	if err := missing.ValidateStrategies(e.profiles, cfg.Missing); err != nil {
		e.failedStage = StageMissing
		return &ConfigurationError{Reason: "missing-value strategy validation failed", Err: err}
	}

	// Missing-value resolution
	resolver := missing.NewResolver(e.logger)
	if err := e.runStage(StageMissing, func(report *StageReport) error {
		out, result, err := resolver.Apply(e.current, e.profiles, cfg.Missing)
		if err != nil {
			return err
		}
		e.current = out
		e.profiles = dropProfiles(e.profiles, result.DroppedColumns)
		report.Details = result
		report.Changes = result.Changes()
		report.Message = fmt.Sprintf("filled %d values, dropped %d columns",
			result.TotalFilled, len(result.DroppedColumns))
		return nil
	}); err != nil {
		return err
	}

	// Sensitivity classification
	classifier := sensitive.NewClassifier(e.orchestrator.external, e.logger)
	if err := e.runStage(StageSensitivity, func(report *StageReport) error {
		result, err := classifier.ClassifyDataset(ctx, e.current, cfg.Sensitivity)
		if err != nil {
			return err
		}
		e.findings = result.Sensitive()
		report.Details = result
		report.Changes = result.Changes()
		report.Message = fmt.Sprintf("%d sensitive columns found (%d external calls)",
			len(e.findings), result.ExternalCalls)
		return nil
	}); err != nil {
		return err
	}

	// Masking
	masker := mask.NewMasker(time.Now().UnixNano(), e.logger)
	if err := e.runStage(StageMasking, func(report *StageReport) error {
		out, result, err := masker.Apply(e.current, e.findings, cfg.Masking)
		if err != nil {
			return err
		}
		e.current = out
		report.Details = result
		report.Changes = result.Changes()
		report.Message = fmt.Sprintf("masked %d values across %d columns",
			result.TotalMasked, len(result.Columns))
		return nil
	}); err != nil {
		return err
	}

	// Optional feature extraction
	if cfg.Features.Enabled {
		extractor := feature.NewExtractor(e.logger)
		if err := e.runStage(StageFeatures, func(report *StageReport) error {
			out, result, err := extractor.Apply(e.current, e.profiles, cfg.Features)
			if err != nil {
				return err
			}
			e.current = out
			report.Details = result
			report.Changes = result.Changes()
			report.Message = fmt.Sprintf("extracted %d feature columns", len(result.Extracted))
			return nil
		}); err != nil {
			return err
		}
	}

	// Quality comparison over the raw and final snapshots
	return e.runStage(StageQuality, func(report *StageReport) error {
		e.comparison = scorer.Compare(e.raw, e.current, cfg.Quality)
		report.Details = e.comparison
		report.Changes = e.comparison.Changes()
		report.Message = fmt.Sprintf("overall quality %.2f%% -> %.2f%%",
			e.comparison.Before.Overall*100, e.comparison.After.Overall*100)
		return nil
	})
}

// validate applies the pre-flight dataset checks. Violations fail the
// job before the stage sequence begins.
func (e *execution) validate() error {
	report := NewStageReport(StageValidation)
	e.job.setStage(StageValidation)

	limits := e.cfg.Validation
	ds := e.current

	var reason string
	switch {
	case ds.Rows() == 0 || ds.Width() == 0:
		reason = "dataset is empty"
	case limits.MaxRows > 0 && ds.Rows() > limits.MaxRows:
		reason = fmt.Sprintf("row count %d exceeds limit %d", ds.Rows(), limits.MaxRows)
	case limits.MaxColumns > 0 && ds.Width() > limits.MaxColumns:
		reason = fmt.Sprintf("column count %d exceeds limit %d", ds.Width(), limits.MaxColumns)
	case duplicateName(ds) != "":
		reason = fmt.Sprintf("duplicate column name %q", duplicateName(ds))
	case limits.MaxMissingRatio > 0 && ds.MissingRatio() > limits.MaxMissingRatio:
		reason = fmt.Sprintf("missing ratio %.2f exceeds limit %.2f", ds.MissingRatio(), limits.MaxMissingRatio)
	}

	if reason != "" {
		e.failedStage = StageValidation
		e.job.appendReport(*report.Complete(StageFailed, reason))
		return &ConfigurationError{Reason: reason}
	}

	// Fully-empty columns are a warning, not a failure; the
	// standardizer removes them later
	for _, col := range ds.Columns() {
		if len(col.Values) > 0 && col.NullCount() == len(col.Values) {
			report.Changes = append(report.Changes, fmt.Sprintf("column %q is fully empty", col.Name))
		}
	}

	e.job.appendReport(*report.Complete(StageSucceeded,
		fmt.Sprintf("validated %d rows x %d columns", ds.Rows(), ds.Width())))
	return nil
}

// runStage executes one stage, records its report, and enforces the
// row-count invariant across the stage boundary
func (e *execution) runStage(stage string, fn func(report *StageReport) error) error {
	e.job.setStage(stage)
	report := NewStageReport(stage)
	rowsBefore := e.current.Rows()

	e.logger.Debug("Stage started", zap.String("stage", stage))

	if err := fn(report); err != nil {
		e.failedStage = stage
		e.job.appendReport(*report.Complete(StageFailed, err.Error()))
		return &StageProcessingError{Stage: stage, Err: err}
	}

	if e.current.Rows() != rowsBefore {
		e.failedStage = stage
		err := &DataIntegrityError{Stage: stage, Expected: rowsBefore, Actual: e.current.Rows()}
		e.job.appendReport(*report.Complete(StageFailed, err.Error()))
		return err
	}

	e.job.appendReport(*report.Complete(StageSucceeded, report.Message))
	e.logger.Debug("Stage finished",
		zap.String("stage", stage),
		zap.Duration("duration", report.Duration))
	return nil
}

func dropProfiles(profiles profile.Set, dropped []string) profile.Set {
	if len(dropped) == 0 {
		return profiles
	}
	gone := make(map[string]bool, len(dropped))
	for _, name := range dropped {
		gone[name] = true
	}
	kept := make(profile.Set, 0, len(profiles))
	for _, prof := range profiles {
		if !gone[prof.Name] {
			kept = append(kept, prof)
		}
	}
	return kept
}

func duplicateName(ds *dataset.Dataset) string {
	seen := make(map[string]bool)
	for _, name := range ds.ColumnNames() {
		if seen[name] {
			return name
		}
		seen[name] = true
	}
	return ""
}
