// pkg/quality/scorer.go
package quality

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/David-Botos/data-cleanse/pkg/dataset"
	"github.com/David-Botos/data-cleanse/pkg/profile"
)

// Config controls metric weighting for the overall score
type Config struct {
	CompletenessWeight float64
	ConsistencyWeight  float64
}

// DefaultConfig weights the metrics equally
func DefaultConfig() Config {
	return Config{
		CompletenessWeight: 0.5,
		ConsistencyWeight:  0.5,
	}
}

// Metrics is one dataset snapshot's quality measurement
type Metrics struct {
	Completeness float64
	Consistency  float64
	Overall      float64
	Rows         int
	Columns      int
	NullCells    int
}

// Comparison pairs the before and after metrics with the scalar delta
type Comparison struct {
	Before Metrics
	After  Metrics
	Delta  float64
}

// Changes returns human-readable audit lines for the stage report
func (c *Comparison) Changes() []string {
	return []string{
		fmt.Sprintf("completeness %.2f%% -> %.2f%%", c.Before.Completeness*100, c.After.Completeness*100),
		fmt.Sprintf("consistency %.2f%% -> %.2f%%", c.Before.Consistency*100, c.After.Consistency*100),
		fmt.Sprintf("overall %.2f%% -> %.2f%% (delta %+.2f%%)",
			c.Before.Overall*100, c.After.Overall*100, c.Delta*100),
	}
}

// RenderText produces the human-readable quality summary
func (c *Comparison) RenderText() string {
	var sb strings.Builder
	sb.WriteString("=== Data Quality Report ===\n")
	sb.WriteString(fmt.Sprintf("Rows: %d -> %d\n", c.Before.Rows, c.After.Rows))
	sb.WriteString(fmt.Sprintf("Columns: %d -> %d\n", c.Before.Columns, c.After.Columns))
	sb.WriteString(fmt.Sprintf("Completeness: %.2f%% -> %.2f%%\n", c.Before.Completeness*100, c.After.Completeness*100))
	sb.WriteString(fmt.Sprintf("Consistency: %.2f%% -> %.2f%%\n", c.Before.Consistency*100, c.After.Consistency*100))
	sb.WriteString(fmt.Sprintf("Overall: %.2f%% -> %.2f%% (%+.2f%%)\n",
		c.Before.Overall*100, c.After.Overall*100, c.Delta*100))
	return sb.String()
}

// Scorer computes completeness, consistency and the weighted overall
// score for dataset snapshots. Scoring never mutates the dataset.
type Scorer struct {
	profiler *profile.Profiler
	logger   *zap.Logger
}

// NewScorer creates a scorer that uses the given profiler for type
// conformance checks
func NewScorer(profiler *profile.Profiler, logger *zap.Logger) *Scorer {
	return &Scorer{profiler: profiler, logger: logger}
}

// Score measures a single dataset snapshot
func (s *Scorer) Score(ds *dataset.Dataset, cfg Config) Metrics {
	m := Metrics{
		Rows:      ds.Rows(),
		Columns:   ds.Width(),
		NullCells: ds.NullCount(),
	}

	m.Completeness = 1 - ds.MissingRatio()
	m.Consistency = s.consistency(ds)

	weightSum := cfg.CompletenessWeight + cfg.ConsistencyWeight
	if weightSum <= 0 {
		weightSum = 1
		cfg.CompletenessWeight = 0.5
		cfg.ConsistencyWeight = 0.5
	}
	m.Overall = (m.Completeness*cfg.CompletenessWeight + m.Consistency*cfg.ConsistencyWeight) / weightSum

	return m
}

// Compare scores the raw and final snapshots and reports the delta
func (s *Scorer) Compare(before, after *dataset.Dataset, cfg Config) *Comparison {
	cmp := &Comparison{
		Before: s.Score(before, cfg),
		After:  s.Score(after, cfg),
	}
	cmp.Delta = cmp.After.Overall - cmp.Before.Overall

	if s.logger != nil {
		s.logger.Info("Quality comparison complete",
			zap.Float64("before", cmp.Before.Overall),
			zap.Float64("after", cmp.After.Overall),
			zap.Float64("delta", cmp.Delta))
	}
	return cmp
}

// consistency is the fraction of columns whose non-null values all
// conform to the column's inferred kind
func (s *Scorer) consistency(ds *dataset.Dataset) float64 {
	if ds.Width() == 0 {
		return 0
	}

	profiles := s.profiler.ProfileDataset(ds)
	conforming := 0.0
	for _, prof := range profiles {
		col := ds.Column(prof.Name)
		if col == nil {
			continue
		}
		conforming += conformance(col, prof.Kind)
	}
	return conforming / float64(ds.Width())
}

// conformance scores one column: 1 when every non-null value parses as
// the inferred kind, otherwise the fraction that do
func conformance(col *dataset.Column, kind profile.Kind) float64 {
	nonNull := col.NonNull()
	if len(nonNull) == 0 {
		return 0.5
	}

	hits := 0
	for _, v := range nonNull {
		var ok bool
		switch kind {
		case profile.KindInteger:
			_, ok = profile.ParseInt(v)
		case profile.KindFloat:
			_, ok = profile.ParseFloat(v)
		case profile.KindBoolean:
			_, ok = profile.ParseBool(v)
		case profile.KindDatetime:
			_, ok = profile.ParseDatetime(v)
		default:
			ok = true
		}
		if ok {
			hits++
		}
	}
	return float64(hits) / float64(len(nonNull))
}
