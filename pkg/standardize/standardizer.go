// pkg/standardize/standardizer.go
package standardize

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/data-cleanse/pkg/dataset"
	"github.com/David-Botos/data-cleanse/pkg/profile"
)

// Config controls the standardization stage
type Config struct {
	EnableRename       bool
	Convention         NamingConvention
	RemoveDuplicates   bool
	RemoveEmpty        bool
	CoerceTypes        bool
	CustomTypeMappings map[string]profile.Kind
}

// DefaultConfig returns the standard stage settings
func DefaultConfig() Config {
	return Config{
		EnableRename:     true,
		Convention:       SnakeCase,
		RemoveDuplicates: true,
		RemoveEmpty:      true,
		CoerceTypes:      true,
	}
}

// Result records everything the standardizer changed
type Result struct {
	Renames        map[string]string
	DroppedEmpty   []string
	DroppedDupes   []string
	Coercions      map[string]profile.Kind
	CoercionNulls  map[string]int
	ChangedColumns int
}

// Changes returns human-readable audit lines for the stage report
func (r *Result) Changes() []string {
	var lines []string
	for from, to := range r.Renames {
		lines = append(lines, fmt.Sprintf("renamed column %q to %q", from, to))
	}
	for _, name := range r.DroppedEmpty {
		lines = append(lines, fmt.Sprintf("dropped empty column %q", name))
	}
	for _, name := range r.DroppedDupes {
		lines = append(lines, fmt.Sprintf("dropped duplicate column %q", name))
	}
	for name, kind := range r.Coercions {
		lines = append(lines, fmt.Sprintf("coerced column %q to %s (%d values nulled)",
			name, kind, r.CoercionNulls[name]))
	}
	return lines
}

// Standardizer normalizes column names, removes duplicate and empty
// columns, and coerces values to their inferred types. Given the same
// dataset and config its output is byte-for-byte identical, and a second
// run over its own output reports zero additional changes.
type Standardizer struct {
	logger *zap.Logger
}

// NewStandardizer creates a standardizer
func NewStandardizer(logger *zap.Logger) *Standardizer {
	return &Standardizer{logger: logger}
}

// Apply runs the stage against a dataset snapshot and its profiles.
// The input dataset is not modified; a transformed copy is returned.
func (s *Standardizer) Apply(ds *dataset.Dataset, profiles profile.Set, cfg Config) (*dataset.Dataset, *Result, error) {
	out := ds.Clone()
	result := &Result{
		Renames:       make(map[string]string),
		Coercions:     make(map[string]profile.Kind),
		CoercionNulls: make(map[string]int),
	}

	if cfg.RemoveDuplicates {
		s.dropDuplicates(out, result)
	}
	if cfg.RemoveEmpty {
		s.dropEmpty(out, result)
	}
	if cfg.EnableRename {
		if err := s.renameColumns(out, cfg.Convention, result); err != nil {
			return nil, nil, err
		}
	}
	if cfg.CoerceTypes {
		s.coerceColumns(out, profiles, cfg, result)
	}

	result.ChangedColumns = len(result.Renames) + len(result.DroppedEmpty) +
		len(result.DroppedDupes) + len(result.Coercions)

	if s.logger != nil {
		s.logger.Info("Standardization complete",
			zap.Int("renamed", len(result.Renames)),
			zap.Int("droppedEmpty", len(result.DroppedEmpty)),
			zap.Int("droppedDuplicates", len(result.DroppedDupes)),
			zap.Int("coerced", len(result.Coercions)))
	}

	return out, result, nil
}

// dropDuplicates removes columns whose value sequences are byte-identical
// to an earlier column. Detection compares values, not names.
func (s *Standardizer) dropDuplicates(ds *dataset.Dataset, result *Result) {
	seen := make(map[string]string)
	var drops []string
	for _, col := range ds.Columns() {
		key := fingerprint(col)
		if _, dup := seen[key]; dup {
			drops = append(drops, col.Name)
			continue
		}
		seen[key] = col.Name
	}
	for _, name := range drops {
		_ = ds.DropColumn(name)
		result.DroppedDupes = append(result.DroppedDupes, name)
	}
}

func (s *Standardizer) dropEmpty(ds *dataset.Dataset, result *Result) {
	var drops []string
	for _, col := range ds.Columns() {
		if len(col.Values) > 0 && col.NullCount() == len(col.Values) {
			drops = append(drops, col.Name)
		}
	}
	for _, name := range drops {
		_ = ds.DropColumn(name)
		result.DroppedEmpty = append(result.DroppedEmpty, name)
	}
}

func (s *Standardizer) renameColumns(ds *dataset.Dataset, convention NamingConvention, result *Result) error {
	taken := make(map[string]bool)
	for _, col := range ds.Columns() {
		name := convention.Normalize(col.Name)
		if name == "" {
			name = "column"
		}
		// Resolve collisions produced by normalization by suffixing
		unique := name
		for i := 2; taken[unique]; i++ {
			unique = fmt.Sprintf("%s_%d", name, i)
		}
		taken[unique] = true

		if unique != col.Name {
			result.Renames[col.Name] = unique
			col.Name = unique
		}
	}
	return nil
}

// coerceColumns converts each column's values to its inferred kind.
// Individual values that fail to parse become null rather than erroring.
func (s *Standardizer) coerceColumns(ds *dataset.Dataset, profiles profile.Set, cfg Config, result *Result) {
	for _, col := range ds.Columns() {
		kind, ok := s.targetKind(col.Name, profiles, cfg, result)
		if !ok {
			continue
		}

		nulled := 0
		changed := false
		for i, v := range col.Values {
			if v == nil {
				continue
			}
			coerced, ok := CoerceValue(v, kind)
			if !ok {
				col.Values[i] = nil
				nulled++
				changed = true
				continue
			}
			if coerced != v {
				changed = true
			}
			col.Values[i] = coerced
		}

		if changed || nulled > 0 {
			result.Coercions[col.Name] = kind
			result.CoercionNulls[col.Name] = nulled
		}
	}
}

// targetKind picks the coercion target for a column: a custom mapping from
// config wins, otherwise the profiled kind when it is worth converting
func (s *Standardizer) targetKind(name string, profiles profile.Set, cfg Config, result *Result) (profile.Kind, bool) {
	if kind, ok := cfg.CustomTypeMappings[name]; ok {
		return kind, true
	}

	prof := lookupProfile(name, profiles, result.Renames)
	if prof == nil {
		return profile.KindText, false
	}
	switch prof.Kind {
	case profile.KindInteger, profile.KindFloat, profile.KindBoolean, profile.KindDatetime:
		return prof.Kind, true
	default:
		return profile.KindText, false
	}
}

// lookupProfile resolves a possibly-renamed column back to its profile
func lookupProfile(name string, profiles profile.Set, renames map[string]string) *profile.Profile {
	if prof := profiles.Find(name); prof != nil {
		return prof
	}
	for original, renamed := range renames {
		if renamed == name {
			return profiles.Find(original)
		}
	}
	return nil
}

// CoerceValue converts a single value to the target kind. The second
// return is false when the value cannot represent the kind.
func CoerceValue(value interface{}, kind profile.Kind) (interface{}, bool) {
	switch kind {
	case profile.KindInteger:
		if n, ok := profile.ParseInt(value); ok {
			return n, true
		}
		return nil, false
	case profile.KindFloat:
		if f, ok := profile.ParseFloat(value); ok {
			return f, true
		}
		return nil, false
	case profile.KindBoolean:
		if b, ok := profile.ParseBool(value); ok {
			return b, true
		}
		return nil, false
	case profile.KindDatetime:
		if t, ok := profile.ParseDatetime(value); ok {
			return t, true
		}
		return nil, false
	case profile.KindCategorical, profile.KindText:
		return profile.FormatValue(value), true
	default:
		return value, true
	}
}

// fingerprint builds a collision-safe key over a column's value sequence
func fingerprint(col *dataset.Column) string {
	var sb []byte
	for _, v := range col.Values {
		if v == nil {
			sb = append(sb, 0x00)
			continue
		}
		s := profile.FormatValue(v)
		sb = append(sb, 0x01)
		sb = append(sb, []byte(fmt.Sprintf("%d:", len(s)))...)
		sb = append(sb, []byte(s)...)
	}
	return string(sb)
}
