// pkg/pipeline/report.go
package pipeline

import "time"

// Stage names in execution order
const (
	StageValidation      = "validation"
	StageProfiling       = "profiling"
	StageStandardization = "standardization"
	StageMissing         = "missing_handling"
	StageSensitivity     = "sensitivity_classification"
	StageMasking         = "masking"
	StageFeatures        = "feature_extraction"
	StageQuality         = "quality_report"
)

// StageStatus is the outcome recorded for one stage
type StageStatus string

const (
	StageSucceeded StageStatus = "success"
	StageFailed    StageStatus = "failed"
)

// StageReport is the append-only audit record of one stage's effect on
// the dataset. The ordered list of reports forms the job's audit trail.
type StageReport struct {
	Stage     string
	Status    StageStatus
	Message   string
	Changes   []string
	Details   interface{}
	StartedAt time.Time
	Duration  time.Duration
}

// NewStageReport starts a report for a stage
func NewStageReport(stage string) *StageReport {
	return &StageReport{
		Stage:     stage,
		Status:    StageSucceeded,
		StartedAt: time.Now(),
	}
}

// Complete finalizes the report with an outcome and message
func (r *StageReport) Complete(status StageStatus, message string) *StageReport {
	r.Status = status
	r.Message = message
	r.Duration = time.Since(r.StartedAt)
	return r
}
