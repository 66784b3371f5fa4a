// pkg/mask/masker.go
package mask

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/David-Botos/data-cleanse/pkg/dataset"
	"github.com/David-Botos/data-cleanse/pkg/profile"
	"github.com/David-Botos/data-cleanse/pkg/sensitive"
)

// Rule pairs a masking strategy with the sensitivity type that shapes it
type Rule struct {
	Type     sensitive.Type
	Strategy Strategy
}

// Config controls the masking stage
type Config struct {
	// DefaultStrategy applies to sensitive columns without a rule
	DefaultStrategy Strategy
	// ColumnRules overrides type and strategy per column name
	ColumnRules map[string]Rule
	// PreviewSize bounds the original/masked sample pairs per column
	PreviewSize int
}

// DefaultConfig returns the standard stage settings
func DefaultConfig() Config {
	return Config{
		DefaultStrategy: StrategyPartial,
		PreviewSize:     3,
	}
}

// Preview pairs original and masked sample values for the audit trail
type Preview struct {
	Original []string
	Masked   []string
}

// MaskedColumn records one column's masking outcome
type MaskedColumn struct {
	Column   string
	Type     sensitive.Type
	Strategy Strategy
	Masked   int
	Preview  Preview
}

// Result records everything the masking engine changed
type Result struct {
	Columns     []MaskedColumn
	TotalMasked int
}

// Changes returns human-readable audit lines for the stage report
func (r *Result) Changes() []string {
	var lines []string
	for _, mc := range r.Columns {
		lines = append(lines, fmt.Sprintf("masked %d values in column %q (%s, %s)",
			mc.Masked, mc.Column, mc.Type, mc.Strategy))
	}
	return lines
}

// Masker applies a masking strategy per sensitive column. Masking is
// column-local: one column's output never depends on another column.
type Masker struct {
	rng    *rand.Rand
	logger *zap.Logger
}

// NewMasker creates a masker seeded from the given source. Hash and
// partial strategies ignore the seed; only random uses it.
func NewMasker(seed int64, logger *zap.Logger) *Masker {
	return &Masker{rng: rand.New(rand.NewSource(seed)), logger: logger}
}

// Apply masks every column named in the findings. Findings below
// threshold must not be passed in; the classifier enforces that.
// The input dataset is not modified; a transformed copy is returned.
func (m *Masker) Apply(ds *dataset.Dataset, findings []sensitive.Finding, cfg Config) (*dataset.Dataset, *Result, error) {
	out := ds.Clone()
	result := &Result{}

	for _, finding := range findings {
		col := out.Column(finding.Column)
		if col == nil {
			return nil, nil, fmt.Errorf("sensitive column %q is absent from the dataset", finding.Column)
		}

		maskType := finding.Type
		strategy := cfg.DefaultStrategy
		if rule, ok := cfg.ColumnRules[finding.Column]; ok {
			if rule.Type != sensitive.TypeNone {
				maskType = rule.Type
			}
			strategy = rule.Strategy
		}

		mc := m.maskColumn(col, maskType, strategy, cfg.PreviewSize)
		result.Columns = append(result.Columns, mc)
		result.TotalMasked += mc.Masked

		if m.logger != nil {
			m.logger.Info("Masked column",
				zap.String("column", col.Name),
				zap.String("type", maskType.String()),
				zap.String("strategy", strategy.String()),
				zap.Int("values", mc.Masked))
		}
	}

	return out, result, nil
}

func (m *Masker) maskColumn(col *dataset.Column, t sensitive.Type, strategy Strategy, previewSize int) MaskedColumn {
	mc := MaskedColumn{Column: col.Name, Type: t, Strategy: strategy}

	// issued tracks random replacements already handed out so repeated
	// source values do not collide when feasible
	var issued map[string]bool
	if strategy == StrategyRandom {
		issued = make(map[string]bool)
	}

	for i, v := range col.Values {
		if v == nil {
			continue
		}
		original := profile.FormatValue(v)

		var masked interface{}
		switch strategy {
		case StrategyPartial:
			masked = partialMask(original, t)
		case StrategyHash:
			masked = hashMask(original)
		case StrategyRandom:
			masked = m.uniqueRandom(original, t, issued)
		case StrategyRemove:
			masked = nil
		}

		col.Values[i] = masked
		mc.Masked++

		if masked != nil && len(mc.Preview.Original) < previewSize {
			mc.Preview.Original = append(mc.Preview.Original, original)
			mc.Preview.Masked = append(mc.Preview.Masked, masked.(string))
		}
	}

	return mc
}

// uniqueRandom draws random replacements until one is unused, bounded so
// tiny value spaces cannot loop forever
func (m *Masker) uniqueRandom(value string, t sensitive.Type, issued map[string]bool) string {
	const maxAttempts = 10
	masked := randomMask(m.rng, value, t)
	for attempt := 0; issued[masked] && attempt < maxAttempts; attempt++ {
		masked = randomMask(m.rng, value, t)
	}
	issued[masked] = true
	return masked
}

// hashMask is a stable one-way transform: the same input always yields
// the same output, within and across jobs
func hashMask(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])[:8]
}
