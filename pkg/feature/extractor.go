// pkg/feature/extractor.go
package feature

import (
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/data-cleanse/pkg/dataset"
	"github.com/David-Botos/data-cleanse/pkg/profile"
)

// Config controls the optional feature-extraction stage
type Config struct {
	Enabled         bool
	NumericFeatures bool
	TextFeatures    bool
	TimeFeatures    bool
}

// DefaultConfig returns the standard stage settings with extraction off
func DefaultConfig() Config {
	return Config{
		NumericFeatures: true,
		TextFeatures:    true,
		TimeFeatures:    true,
	}
}

// Result records which derived columns were appended
type Result struct {
	Extracted []string
}

// Changes returns human-readable audit lines for the stage report
func (r *Result) Changes() []string {
	var lines []string
	for _, name := range r.Extracted {
		lines = append(lines, fmt.Sprintf("extracted feature column %q", name))
	}
	return lines
}

// Extractor derives numeric, text and time features. Derived columns are
// appended, never replacing originals; name collisions are suffixed.
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor creates an extractor
func NewExtractor(logger *zap.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Apply runs the stage against a dataset snapshot and its profiles.
// The input dataset is not modified; a transformed copy is returned.
func (e *Extractor) Apply(ds *dataset.Dataset, profiles profile.Set, cfg Config) (*dataset.Dataset, *Result, error) {
	out := ds.Clone()
	result := &Result{}

	if !cfg.Enabled {
		return out, result, nil
	}

	// Feature columns derive from the pre-extraction snapshot only
	source := ds.Columns()

	for _, col := range source {
		prof := profiles.Find(col.Name)
		if prof == nil {
			continue
		}

		switch {
		case prof.Kind.IsNumeric() && cfg.NumericFeatures:
			e.numericFeatures(out, col, result)
		case (prof.Kind == profile.KindText || prof.Kind == profile.KindCategorical) && cfg.TextFeatures:
			e.textFeatures(out, col, result)
		case prof.Kind == profile.KindDatetime && cfg.TimeFeatures:
			e.timeFeatures(out, col, result)
		}
	}

	if e.logger != nil {
		e.logger.Info("Feature extraction complete", zap.Int("features", len(result.Extracted)))
	}

	return out, result, nil
}

func (e *Extractor) numericFeatures(out *dataset.Dataset, col *dataset.Column, result *Result) {
	n := len(col.Values)
	nullFlags := make([]interface{}, n)
	absValues := make([]interface{}, n)
	zScores := make([]interface{}, n)

	mean, stddev := meanStddev(col)

	for i, v := range col.Values {
		if v == nil {
			nullFlags[i] = int64(1)
			continue
		}
		nullFlags[i] = int64(0)
		if f, ok := profile.ParseFloat(v); ok {
			absValues[i] = math.Abs(f)
			if stddev > 0 {
				zScores[i] = (f - mean) / stddev
			} else {
				zScores[i] = 0.0
			}
		}
	}

	appendFeature(out, col.Name+"_is_null", nullFlags, result)
	appendFeature(out, col.Name+"_abs", absValues, result)
	appendFeature(out, col.Name+"_zscore", zScores, result)
}

func (e *Extractor) textFeatures(out *dataset.Dataset, col *dataset.Column, result *Result) {
	n := len(col.Values)
	lengths := make([]interface{}, n)
	tokenCounts := make([]interface{}, n)

	for i, v := range col.Values {
		if v == nil {
			continue
		}
		s := profile.FormatValue(v)
		lengths[i] = int64(len([]rune(s)))
		tokenCounts[i] = int64(len(strings.Fields(s)))
	}

	appendFeature(out, col.Name+"_length", lengths, result)
	appendFeature(out, col.Name+"_word_count", tokenCounts, result)
}

func (e *Extractor) timeFeatures(out *dataset.Dataset, col *dataset.Column, result *Result) {
	n := len(col.Values)
	years := make([]interface{}, n)
	months := make([]interface{}, n)
	weekdays := make([]interface{}, n)

	for i, v := range col.Values {
		if v == nil {
			continue
		}
		t, ok := v.(time.Time)
		if !ok {
			if parsed, parsedOK := profile.ParseDatetime(v); parsedOK {
				t, ok = parsed, true
			}
		}
		if !ok {
			continue
		}
		years[i] = int64(t.Year())
		months[i] = int64(t.Month())
		weekdays[i] = int64(t.Weekday())
	}

	appendFeature(out, col.Name+"_year", years, result)
	appendFeature(out, col.Name+"_month", months, result)
	appendFeature(out, col.Name+"_weekday", weekdays, result)
}

// appendFeature adds a derived column, suffixing the name if a column
// with that name already exists
func appendFeature(out *dataset.Dataset, name string, values []interface{}, result *Result) {
	unique := name
	for i := 2; out.HasColumn(unique); i++ {
		unique = fmt.Sprintf("%s_%d", name, i)
	}
	_ = out.AddColumn(dataset.NewColumn(unique, values))
	result.Extracted = append(result.Extracted, unique)
}

func meanStddev(col *dataset.Column) (float64, float64) {
	var values []float64
	for _, v := range col.Values {
		if v == nil {
			continue
		}
		if f, ok := profile.ParseFloat(v); ok {
			values = append(values, f)
		}
	}
	if len(values) == 0 {
		return 0, 0
	}

	sum := 0.0
	for _, f := range values {
		sum += f
	}
	mean := sum / float64(len(values))

	variance := 0.0
	for _, f := range values {
		variance += (f - mean) * (f - mean)
	}
	variance /= float64(len(values))

	return mean, math.Sqrt(variance)
}
