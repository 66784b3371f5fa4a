// pkg/profile/profiler.go
package profile

import (
	"go.uber.org/zap"

	"github.com/David-Botos/data-cleanse/pkg/dataset"
)

// Profile describes a single column of a dataset snapshot. It is derived,
// read-only data: later stages consume profiles but never mutate them.
type Profile struct {
	Name        string
	Kind        Kind
	NullCount   int
	Cardinality int
	Samples     []string
}

// Set is an ordered collection of profiles, one per column
type Set []Profile

// Find returns the profile for the named column, or nil if absent
func (s Set) Find(name string) *Profile {
	for i := range s {
		if s[i].Name == name {
			return &s[i]
		}
	}
	return nil
}

// Config holds the thresholds that drive type inference
type Config struct {
	// NumericThreshold is the fraction of non-null values that must parse
	// as numbers for a column to classify numeric
	NumericThreshold float64
	// DatetimeThreshold is the same rule applied to datetime parsing
	DatetimeThreshold float64
	// CategoricalRatio is the cardinality/rows bound below which a text
	// column classifies categorical
	CategoricalRatio float64
	// MaxCategories caps the distinct value count for categorical columns
	MaxCategories int
	// SampleSize is the number of sample values retained per profile
	SampleSize int
}

// DefaultConfig returns the standard inference thresholds
func DefaultConfig() Config {
	return Config{
		NumericThreshold:  0.95,
		DatetimeThreshold: 0.95,
		CategoricalRatio:  0.1,
		MaxCategories:     50,
		SampleSize:        20,
	}
}

// Profiler infers column types and summary statistics for a dataset
type Profiler struct {
	config Config
	logger *zap.Logger
}

// NewProfiler creates a profiler with the given thresholds
func NewProfiler(config Config, logger *zap.Logger) *Profiler {
	if config.NumericThreshold <= 0 {
		config.NumericThreshold = 0.95
	}
	if config.DatetimeThreshold <= 0 {
		config.DatetimeThreshold = 0.95
	}
	if config.CategoricalRatio <= 0 {
		config.CategoricalRatio = 0.1
	}
	if config.MaxCategories <= 0 {
		config.MaxCategories = 50
	}
	if config.SampleSize <= 0 {
		config.SampleSize = 20
	}
	return &Profiler{config: config, logger: logger}
}

// ProfileDataset produces one profile per column. Profiling never fails:
// columns that match no other kind default to text.
func (p *Profiler) ProfileDataset(ds *dataset.Dataset) Set {
	profiles := make(Set, 0, ds.Width())
	for _, col := range ds.Columns() {
		prof := p.profileColumn(col)
		profiles = append(profiles, prof)

		if p.logger != nil {
			p.logger.Debug("Profiled column",
				zap.String("column", prof.Name),
				zap.String("kind", prof.Kind.String()),
				zap.Int("nulls", prof.NullCount),
				zap.Int("cardinality", prof.Cardinality))
		}
	}
	return profiles
}

func (p *Profiler) profileColumn(col *dataset.Column) Profile {
	nonNull := col.NonNull()

	prof := Profile{
		Name:        col.Name,
		Kind:        KindText,
		NullCount:   col.NullCount(),
		Cardinality: cardinality(nonNull),
		Samples:     sampleStrings(nonNull, p.config.SampleSize),
	}

	if len(nonNull) == 0 {
		return prof
	}

	prof.Kind = p.inferKind(nonNull)
	return prof
}

// inferKind applies the inference policy: boolean, then numeric under the
// parse-ratio threshold, then datetime, then categorical, else text.
func (p *Profiler) inferKind(nonNull []interface{}) Kind {
	if isBooleanSet(nonNull) {
		return KindBoolean
	}

	total := len(nonNull)

	floatHits, wholeHits := 0, 0
	for _, v := range nonNull {
		if _, ok := ParseFloat(v); ok {
			floatHits++
			if _, ok := ParseInt(v); ok {
				wholeHits++
			}
		}
	}
	if ratio(floatHits, total) >= p.config.NumericThreshold {
		if wholeHits == floatHits {
			return KindInteger
		}
		return KindFloat
	}

	datetimeHits := 0
	for _, v := range nonNull {
		if _, ok := ParseDatetime(v); ok {
			datetimeHits++
		}
	}
	if ratio(datetimeHits, total) >= p.config.DatetimeThreshold {
		return KindDatetime
	}

	distinct := cardinality(nonNull)
	if ratio(distinct, total) < p.config.CategoricalRatio && distinct < p.config.MaxCategories {
		return KindCategorical
	}

	return KindText
}

// isBooleanSet reports whether the distinct values form a boolean vocabulary
func isBooleanSet(values []interface{}) bool {
	seen := make(map[string]bool)
	for _, v := range values {
		if _, ok := v.(bool); ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return false
		}
		if _, isBool := ParseBool(s); !isBool {
			return false
		}
		seen[s] = true
		if len(seen) > 2 {
			return false
		}
	}
	return true
}

func cardinality(values []interface{}) int {
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		seen[FormatValue(v)] = true
	}
	return len(seen)
}

func sampleStrings(values []interface{}, limit int) []string {
	if limit > len(values) {
		limit = len(values)
	}
	samples := make([]string, 0, limit)
	for _, v := range values[:limit] {
		samples = append(samples, FormatValue(v))
	}
	return samples
}

func ratio(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}
