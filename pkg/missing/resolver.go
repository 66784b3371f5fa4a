// pkg/missing/resolver.go
package missing

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/David-Botos/data-cleanse/pkg/dataset"
	"github.com/David-Botos/data-cleanse/pkg/profile"
)

// Config controls the missing-value stage
type Config struct {
	// DefaultStrategy applies to columns without an explicit override
	DefaultStrategy Strategy
	// ColumnStrategies overrides the strategy per column name
	ColumnStrategies map[string]Strategy
	// ConstantValues carries the fill value per column for the constant
	// strategy
	ConstantValues map[string]interface{}
	// DropThreshold is the missing ratio above which a column is dropped
	// instead of filled
	DropThreshold float64
}

// DefaultConfig returns the standard stage settings
func DefaultConfig() Config {
	return Config{
		DefaultStrategy: StrategyMean,
		DropThreshold:   0.8,
	}
}

// ColumnOutcome records what happened to one column
type ColumnOutcome struct {
	Column        string
	Strategy      Strategy
	Filled        int
	Dropped       bool
	ResidualNulls int
	FillValue     interface{}
}

// Result records everything the resolver changed
type Result struct {
	Outcomes       []ColumnOutcome
	TotalFilled    int
	DroppedColumns []string
}

// Changes returns human-readable audit lines for the stage report
func (r *Result) Changes() []string {
	var lines []string
	for _, o := range r.Outcomes {
		switch {
		case o.Dropped:
			lines = append(lines, fmt.Sprintf("dropped column %q (missing ratio above threshold)", o.Column))
		case o.Filled > 0 && o.ResidualNulls > 0:
			lines = append(lines, fmt.Sprintf("filled %d values in column %q with %s, %d nulls remain unanchored",
				o.Filled, o.Column, o.Strategy, o.ResidualNulls))
		case o.Filled > 0:
			lines = append(lines, fmt.Sprintf("filled %d values in column %q with %s", o.Filled, o.Column, o.Strategy))
		}
	}
	return lines
}

// Resolver selects and applies a fill strategy per column
type Resolver struct {
	logger *zap.Logger
}

// NewResolver creates a resolver
func NewResolver(logger *zap.Logger) *Resolver {
	return &Resolver{logger: logger}
}

// ValidateStrategies checks every configured strategy against the profiled
// column kinds. Numeric strategies on non-numeric columns are configuration
// errors, caught here before the stage executes.
func ValidateStrategies(profiles profile.Set, cfg Config) error {
	for _, prof := range profiles {
		strategy, explicit := cfg.ColumnStrategies[prof.Name]
		if !explicit {
			strategy = cfg.DefaultStrategy
		}

		switch strategy {
		case StrategyMean, StrategyMedian:
			if !prof.Kind.IsNumeric() {
				// The default strategy silently skips incompatible
				// columns; an explicit override does not
				if explicit {
					return fmt.Errorf("strategy %s is invalid for %s column %q", strategy, prof.Kind, prof.Name)
				}
			}
		case StrategyMode:
			if explicit && prof.Kind.IsNumeric() {
				return fmt.Errorf("strategy %s is invalid for %s column %q", strategy, prof.Kind, prof.Name)
			}
		case StrategyConstant:
			if explicit {
				if _, ok := cfg.ConstantValues[prof.Name]; !ok {
					return fmt.Errorf("constant strategy for column %q has no fill value", prof.Name)
				}
			}
		}
	}
	return nil
}

// Apply runs the stage. Columns whose missing ratio exceeds the drop
// threshold are removed entirely; the rest are filled per strategy.
// The input dataset is not modified; a transformed copy is returned.
func (r *Resolver) Apply(ds *dataset.Dataset, profiles profile.Set, cfg Config) (*dataset.Dataset, *Result, error) {
	out := ds.Clone()
	result := &Result{}

	// Drop pass runs first so high-missing columns bypass fill entirely
	var drops []string
	for _, col := range out.Columns() {
		if len(col.Values) > 0 && col.MissingRatio() > cfg.DropThreshold {
			drops = append(drops, col.Name)
		}
	}
	for _, name := range drops {
		_ = out.DropColumn(name)
		result.DroppedColumns = append(result.DroppedColumns, name)
		result.Outcomes = append(result.Outcomes, ColumnOutcome{Column: name, Dropped: true})
	}

	for _, col := range out.Columns() {
		if col.NullCount() == 0 {
			continue
		}

		strategy, explicit := cfg.ColumnStrategies[col.Name]
		if !explicit {
			strategy = cfg.DefaultStrategy
		}

		prof := profiles.Find(col.Name)
		outcome, err := r.fillColumn(col, prof, strategy, explicit, cfg)
		if err != nil {
			return nil, nil, err
		}
		if outcome != nil {
			result.Outcomes = append(result.Outcomes, *outcome)
			result.TotalFilled += outcome.Filled
		}
	}

	if r.logger != nil {
		r.logger.Info("Missing-value resolution complete",
			zap.Int("filled", result.TotalFilled),
			zap.Int("droppedColumns", len(result.DroppedColumns)))
	}

	return out, result, nil
}

func (r *Resolver) fillColumn(col *dataset.Column, prof *profile.Profile, strategy Strategy, explicit bool, cfg Config) (*ColumnOutcome, error) {
	numeric := prof != nil && prof.Kind.IsNumeric()

	switch strategy {
	case StrategyMean, StrategyMedian:
		if !numeric {
			if explicit {
				return nil, fmt.Errorf("strategy %s is invalid for non-numeric column %q", strategy, col.Name)
			}
			// Default numeric strategy does not touch non-numeric columns
			return nil, nil
		}
		value := centralValue(col, strategy)
		if value == nil {
			return nil, nil
		}
		filled := fillWith(col, value)
		return &ColumnOutcome{Column: col.Name, Strategy: strategy, Filled: filled, FillValue: value}, nil

	case StrategyMode:
		if numeric {
			if explicit {
				return nil, fmt.Errorf("strategy mode is invalid for numeric column %q", col.Name)
			}
			return nil, nil
		}
		value := modeValue(col)
		if value == nil {
			return nil, nil
		}
		filled := fillWith(col, value)
		return &ColumnOutcome{Column: col.Name, Strategy: strategy, Filled: filled, FillValue: value}, nil

	case StrategyForwardFill:
		filled, residual := directionalFill(col, true)
		return &ColumnOutcome{Column: col.Name, Strategy: strategy, Filled: filled, ResidualNulls: residual}, nil

	case StrategyBackwardFill:
		filled, residual := directionalFill(col, false)
		return &ColumnOutcome{Column: col.Name, Strategy: strategy, Filled: filled, ResidualNulls: residual}, nil

	case StrategyConstant:
		value, ok := cfg.ConstantValues[col.Name]
		if !ok {
			return nil, fmt.Errorf("constant strategy for column %q has no fill value", col.Name)
		}
		filled := fillWith(col, value)
		return &ColumnOutcome{Column: col.Name, Strategy: strategy, Filled: filled, FillValue: value}, nil

	default:
		return nil, fmt.Errorf("unknown missing-value strategy %d", strategy)
	}
}

// centralValue computes the mean or median over the non-null values.
// Results are rounded to two decimal places for report stability.
func centralValue(col *dataset.Column, strategy Strategy) interface{} {
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
		return nil
	}

	if strategy == StrategyMean {
		sum := 0.0
		for _, f := range values {
			sum += f
		}
		return round2(sum / float64(len(values)))
	}

	sort.Float64s(values)
	mid := len(values) / 2
	if len(values)%2 == 1 {
		return values[mid]
	}
	return round2((values[mid-1] + values[mid]) / 2)
}

// modeValue returns the most frequent non-null value, breaking ties by
// first appearance so the result is deterministic
func modeValue(col *dataset.Column) interface{} {
	counts := make(map[string]int)
	first := make(map[string]int)
	originals := make(map[string]interface{})

	for i, v := range col.Values {
		if v == nil {
			continue
		}
		key := profile.FormatValue(v)
		counts[key]++
		if _, seen := first[key]; !seen {
			first[key] = i
			originals[key] = v
		}
	}
	if len(counts) == 0 {
		return nil
	}

	bestKey := ""
	bestCount := -1
	for key, count := range counts {
		if count > bestCount || (count == bestCount && first[key] < first[bestKey]) {
			bestKey = key
			bestCount = count
		}
	}
	return originals[bestKey]
}

func fillWith(col *dataset.Column, value interface{}) int {
	filled := 0
	for i, v := range col.Values {
		if v == nil {
			col.Values[i] = value
			filled++
		}
	}
	return filled
}

// directionalFill propagates each value forward (or backward) into nulls.
// Gaps with no anchor in the fill direction stay null and are counted.
func directionalFill(col *dataset.Column, forward bool) (filled, residual int) {
	n := len(col.Values)
	var last interface{}

	index := func(i int) int {
		if forward {
			return i
		}
		return n - 1 - i
	}

	for i := 0; i < n; i++ {
		j := index(i)
		if col.Values[j] != nil {
			last = col.Values[j]
			continue
		}
		if last == nil {
			residual++
			continue
		}
		col.Values[j] = last
		filled++
	}
	return filled, residual
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
