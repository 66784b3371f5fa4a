// pkg/sensitive/classifier.go
package sensitive

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/data-cleanse/pkg/dataset"
	"github.com/David-Botos/data-cleanse/pkg/profile"
)

// External is the contract with the external classification collaborator.
// Implementations may fail or time out; the classifier treats failure as
// the absence of a signal, never as a job error.
type External interface {
	Classify(ctx context.Context, column string, sample []string) (Type, float64, error)
}

// Config controls the sensitivity classification stage
type Config struct {
	// EnableAutoDetection turns the rule and external phases on
	EnableAutoDetection bool
	// Threshold is the global sensitivity cutoff; ties count as sensitive
	Threshold float64
	// TypeThresholds overrides the cutoff per sensitivity type
	TypeThresholds map[Type]float64
	// BandLow and BandHigh bound the inconclusive band. Rule confidence
	// inside the open interval triggers the external phase.
	BandLow  float64
	BandHigh float64
	// RuleWeight and ExternalWeight combine the two signals
	RuleWeight     float64
	ExternalWeight float64
	// SampleSize bounds the non-null sample the matchers run against
	SampleSize int
	// ExternalTimeout bounds a single external call
	ExternalTimeout time.Duration
	// ExternalRetries bounds retries before degrading to rule confidence
	ExternalRetries int
	// ForcedColumns pins a column to a type regardless of detection
	ForcedColumns map[string]Type
}

// DefaultConfig returns the standard stage settings
func DefaultConfig() Config {
	return Config{
		EnableAutoDetection: true,
		Threshold:           0.7,
		BandLow:             0.3,
		BandHigh:            0.9,
		RuleWeight:          0.4,
		ExternalWeight:      0.6,
		SampleSize:          20,
		ExternalTimeout:     10 * time.Second,
		ExternalRetries:     1,
	}
}

// Result records the findings and external-phase accounting for the stage
type Result struct {
	Findings      []Finding
	ExternalCalls int
	Degraded      []string
}

// Sensitive returns only the findings at or above threshold, in order
func (r *Result) Sensitive() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Sensitive {
			out = append(out, f)
		}
	}
	return out
}

// Changes returns human-readable audit lines for the stage report
func (r *Result) Changes() []string {
	var lines []string
	for _, f := range r.Findings {
		if f.Sensitive {
			lines = append(lines, fmt.Sprintf("column %q classified %s (confidence %.2f, source %s)",
				f.Column, f.Type, f.Confidence, f.Source))
		}
	}
	for _, col := range r.Degraded {
		lines = append(lines, fmt.Sprintf("external classifier unavailable for column %q, rule confidence used", col))
	}
	return lines
}

// Classifier combines deterministic pattern matching with an optional
// external confidence signal to decide which columns are sensitive.
type Classifier struct {
	external External
	logger   *zap.Logger

	// cache holds external verdicts per column so the collaborator is
	// called at most once per column per job
	cache map[string]externalVerdict
}

type externalVerdict struct {
	t    Type
	conf float64
	ok   bool
}

// NewClassifier creates a classifier. The external collaborator may be
// nil, in which case only the rule phase runs.
func NewClassifier(external External, logger *zap.Logger) *Classifier {
	return &Classifier{
		external: external,
		logger:   logger,
		cache:    make(map[string]externalVerdict),
	}
}

// ClassifyDataset produces a finding per column. The external phase is
// invoked only for columns whose rule confidence is inconclusive, and a
// failed or timed-out external call degrades to rule confidence alone.
func (c *Classifier) ClassifyDataset(ctx context.Context, ds *dataset.Dataset, cfg Config) (*Result, error) {
	result := &Result{}

	for _, col := range ds.Columns() {
		finding := c.classifyColumn(ctx, col, cfg, result)
		finding.Confidence = clip01(finding.Confidence)
		_, forced := cfg.ForcedColumns[col.Name]
		finding.Sensitive = (forced || finding.Type != TypeNone) &&
			finding.Confidence >= c.thresholdFor(finding.Type, cfg)
		result.Findings = append(result.Findings, finding)

		if c.logger != nil && finding.Sensitive {
			c.logger.Info("Column classified sensitive",
				zap.String("column", col.Name),
				zap.String("type", finding.Type.String()),
				zap.Float64("confidence", finding.Confidence),
				zap.String("source", finding.Source.String()))
		}
	}

	return result, nil
}

func (c *Classifier) classifyColumn(ctx context.Context, col *dataset.Column, cfg Config, result *Result) Finding {
	// Forced columns skip detection entirely
	if t, forced := cfg.ForcedColumns[col.Name]; forced {
		return Finding{Column: col.Name, Type: t, Confidence: 1.0, Source: SourceRule}
	}

	if !cfg.EnableAutoDetection {
		return Finding{Column: col.Name, Type: TypeNone, Confidence: 0, Source: SourceRule}
	}

	sample := sampleColumn(col, cfg.SampleSize)
	ruleType, ruleConf := c.rulePhase(col.Name, sample)

	finding := Finding{Column: col.Name, Type: ruleType, Confidence: ruleConf, Source: SourceRule}

	// Decisive rule confidence never reaches the collaborator
	if ruleConf <= cfg.BandLow || ruleConf >= cfg.BandHigh {
		return finding
	}
	if c.external == nil || len(sample) == 0 {
		return finding
	}

	verdict := c.externalPhase(ctx, col.Name, sample, cfg, result)
	if !verdict.ok {
		result.Degraded = append(result.Degraded, col.Name)
		return finding
	}

	combined := clip01(cfg.RuleWeight*ruleConf + cfg.ExternalWeight*verdict.conf)
	finding.Confidence = combined
	finding.Source = SourceCombined
	if finding.Type == TypeNone && verdict.t != TypeNone {
		finding.Type = verdict.t
	}
	return finding
}

// rulePhase evaluates every matcher over the sample and returns the best
// type with its match ratio as the rule confidence. A column-name hint
// confirmed by at least half the sample is decisive.
func (c *Classifier) rulePhase(column string, sample []string) (Type, float64) {
	if hint := columnNameHint(column); hint != TypeNone {
		hintRatio := matchRatio(hint, sample)
		if len(sample) == 0 || hintRatio >= 0.5 {
			return hint, 1.0
		}
	}

	bestType := TypeNone
	bestRatio := 0.0
	for _, t := range ruleTypes {
		r := matchRatio(t, sample)
		if r > bestRatio {
			bestType = t
			bestRatio = r
		}
	}
	if bestRatio == 0 {
		return TypeNone, 0
	}
	return bestType, bestRatio
}

// externalPhase consults the collaborator with a timeout and bounded
// retries, caching the verdict for the job's lifetime. ExternalCalls on
// the result counts actual collaborator invocations, so cache hits do
// not increment it and every failed attempt does.
func (c *Classifier) externalPhase(ctx context.Context, column string, sample []string, cfg Config, result *Result) externalVerdict {
	if verdict, cached := c.cache[column]; cached {
		return verdict
	}

	// The external prompt sees a short sample only
	limit := 5
	if len(sample) < limit {
		limit = len(sample)
	}
	prompt := sample[:limit]

	var verdict externalVerdict
	for attempt := 0; attempt <= cfg.ExternalRetries; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, cfg.ExternalTimeout)
		result.ExternalCalls++
		t, conf, err := c.external.Classify(callCtx, column, prompt)
		cancel()

		if err == nil {
			verdict = externalVerdict{t: t, conf: clip01(conf), ok: true}
			break
		}

		if c.logger != nil {
			c.logger.Warn("External classifier call failed",
				zap.String("column", column),
				zap.Int("attempt", attempt+1),
				zap.Error(err))
		}
	}

	c.cache[column] = verdict
	return verdict
}

func (c *Classifier) thresholdFor(t Type, cfg Config) float64 {
	if override, ok := cfg.TypeThresholds[t]; ok {
		return override
	}
	return cfg.Threshold
}

func sampleColumn(col *dataset.Column, limit int) []string {
	sample := make([]string, 0, limit)
	for _, v := range col.Values {
		if v == nil {
			continue
		}
		sample = append(sample, profile.FormatValue(v))
		if len(sample) == limit {
			break
		}
	}
	return sample
}

func clip01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
