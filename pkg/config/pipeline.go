// pkg/config/pipeline.go
package config

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/David-Botos/data-cleanse/pkg/feature"
	"github.com/David-Botos/data-cleanse/pkg/mask"
	"github.com/David-Botos/data-cleanse/pkg/missing"
	"github.com/David-Botos/data-cleanse/pkg/profile"
	"github.com/David-Botos/data-cleanse/pkg/quality"
	"github.com/David-Botos/data-cleanse/pkg/sensitive"
	"github.com/David-Botos/data-cleanse/pkg/standardize"
)

// ValidationLimits bounds the raw dataset accepted by a job
type ValidationLimits struct {
	MaxRows         int
	MaxColumns      int
	MaxMissingRatio float64
}

// Pipeline is the validated configuration bundle for one job. It is
// supplied once at submission and immutable for the job's lifetime.
type Pipeline struct {
	Validation  ValidationLimits
	Profile     profile.Config
	Standardize standardize.Config
	Missing     missing.Config
	Sensitivity sensitive.Config
	Masking     mask.Config
	Features    feature.Config
	Quality     quality.Config
}

// Default returns the pipeline defaults used when a job supplies no
// configuration of its own
func Default() *Pipeline {
	return &Pipeline{
		Validation: ValidationLimits{
			MaxRows:         1_000_000,
			MaxColumns:      1000,
			MaxMissingRatio: 0.8,
		},
		Profile:     profile.DefaultConfig(),
		Standardize: standardize.DefaultConfig(),
		Missing:     missing.DefaultConfig(),
		Sensitivity: sensitive.DefaultConfig(),
		Masking:     mask.DefaultConfig(),
		Features:    feature.DefaultConfig(),
		Quality:     quality.DefaultConfig(),
	}
}

// rawPipeline mirrors the declarative document shape. Optional fields
// are pointers so absence falls back to defaults instead of zero values.
type rawPipeline struct {
	Standardization *rawStandardization `yaml:"standardization"`
	MissingHandling *rawMissing         `yaml:"missing_handling"`
	MaskingRules    *rawMasking         `yaml:"masking_rules"`
	Features        *rawFeatures        `yaml:"feature_extraction"`
	Quality         *rawQuality         `yaml:"quality"`
}

type rawStandardization struct {
	EnableColumnRename     *bool             `yaml:"enable_column_rename"`
	NamingConvention       *string           `yaml:"naming_convention"`
	RemoveDuplicateColumns *bool             `yaml:"remove_duplicate_columns"`
	RemoveEmptyColumns     *bool             `yaml:"remove_empty_columns"`
	AutoDetectTypes        *bool             `yaml:"auto_detect_types"`
	CustomTypeMapping      map[string]string `yaml:"custom_type_mapping"`
}

type rawMissing struct {
	DefaultStrategy  *string                `yaml:"default_strategy"`
	ColumnStrategies map[string]string      `yaml:"column_strategies"`
	CustomFillValues map[string]interface{} `yaml:"custom_fill_values"`
	MissingThreshold *float64               `yaml:"missing_threshold"`
}

type rawMasking struct {
	EnableAutoDetection  *bool                 `yaml:"enable_auto_detection"`
	DefaultStrategy      *string               `yaml:"default_strategy"`
	SensitivityThreshold *float64              `yaml:"sensitivity_threshold"`
	TypeThresholds       map[string]float64    `yaml:"type_thresholds"`
	RuleWeight           *float64              `yaml:"rule_weight"`
	ExternalWeight       *float64              `yaml:"external_weight"`
	BandLow              *float64              `yaml:"band_low"`
	BandHigh             *float64              `yaml:"band_high"`
	ColumnRules          map[string]rawColRule `yaml:"column_rules"`
}

type rawColRule struct {
	Type     string `yaml:"type"`
	Strategy string `yaml:"strategy"`
}

type rawFeatures struct {
	EnableExtraction        *bool `yaml:"enable_extraction"`
	ExtractNumericStats     *bool `yaml:"extract_numeric_stats"`
	ExtractTextFeatures     *bool `yaml:"extract_text_features"`
	ExtractDatetimeFeatures *bool `yaml:"extract_datetime_features"`
}

type rawQuality struct {
	CompletenessWeight *float64 `yaml:"completeness_weight"`
	ConsistencyWeight  *float64 `yaml:"consistency_weight"`
}

// Parse reads a declarative pipeline document (YAML, which includes
// JSON) and returns a validated Pipeline. Unknown keys, unknown enum
// values and out-of-range thresholds all fail here, before any stage
// executes.
func Parse(data []byte) (*Pipeline, error) {
	cfg := Default()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	var raw rawPipeline
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse pipeline config: %w", err)
	}

	if err := applyStandardization(cfg, raw.Standardization); err != nil {
		return nil, err
	}
	if err := applyMissing(cfg, raw.MissingHandling); err != nil {
		return nil, err
	}
	if err := applyMasking(cfg, raw.MaskingRules); err != nil {
		return nil, err
	}
	applyFeatures(cfg, raw.Features)
	if err := applyQuality(cfg, raw.Quality); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyStandardization(cfg *Pipeline, raw *rawStandardization) error {
	if raw == nil {
		return nil
	}
	if raw.EnableColumnRename != nil {
		cfg.Standardize.EnableRename = *raw.EnableColumnRename
	}
	if raw.NamingConvention != nil {
		convention, err := standardize.ParseNamingConvention(*raw.NamingConvention)
		if err != nil {
			return fmt.Errorf("standardization: %w", err)
		}
		cfg.Standardize.Convention = convention
	}
	if raw.RemoveDuplicateColumns != nil {
		cfg.Standardize.RemoveDuplicates = *raw.RemoveDuplicateColumns
	}
	if raw.RemoveEmptyColumns != nil {
		cfg.Standardize.RemoveEmpty = *raw.RemoveEmptyColumns
	}
	if raw.AutoDetectTypes != nil {
		cfg.Standardize.CoerceTypes = *raw.AutoDetectTypes
	}
	if len(raw.CustomTypeMapping) > 0 {
		cfg.Standardize.CustomTypeMappings = make(map[string]profile.Kind, len(raw.CustomTypeMapping))
		for column, typeName := range raw.CustomTypeMapping {
			kind, err := profile.ParseKind(typeName)
			if err != nil {
				return fmt.Errorf("standardization: column %q: %w", column, err)
			}
			cfg.Standardize.CustomTypeMappings[column] = kind
		}
	}
	return nil
}

func applyMissing(cfg *Pipeline, raw *rawMissing) error {
	if raw == nil {
		return nil
	}
	if raw.DefaultStrategy != nil {
		strategy, err := missing.ParseStrategy(*raw.DefaultStrategy)
		if err != nil {
			return fmt.Errorf("missing_handling: %w", err)
		}
		cfg.Missing.DefaultStrategy = strategy
	}
	if len(raw.ColumnStrategies) > 0 {
		cfg.Missing.ColumnStrategies = make(map[string]missing.Strategy, len(raw.ColumnStrategies))
		for column, name := range raw.ColumnStrategies {
			strategy, err := missing.ParseStrategy(name)
			if err != nil {
				return fmt.Errorf("missing_handling: column %q: %w", column, err)
			}
			cfg.Missing.ColumnStrategies[column] = strategy
		}
	}
	if len(raw.CustomFillValues) > 0 {
		cfg.Missing.ConstantValues = raw.CustomFillValues
		// A custom fill value implies the constant strategy unless the
		// column carries an explicit strategy already
		if cfg.Missing.ColumnStrategies == nil {
			cfg.Missing.ColumnStrategies = make(map[string]missing.Strategy)
		}
		for column := range raw.CustomFillValues {
			if _, ok := cfg.Missing.ColumnStrategies[column]; !ok {
				cfg.Missing.ColumnStrategies[column] = missing.StrategyConstant
			}
		}
	}
	if raw.MissingThreshold != nil {
		if *raw.MissingThreshold < 0 || *raw.MissingThreshold > 1 {
			return fmt.Errorf("missing_handling: missing_threshold %v is outside [0,1]", *raw.MissingThreshold)
		}
		cfg.Missing.DropThreshold = *raw.MissingThreshold
	}
	return nil
}

func applyMasking(cfg *Pipeline, raw *rawMasking) error {
	if raw == nil {
		return nil
	}
	if raw.EnableAutoDetection != nil {
		cfg.Sensitivity.EnableAutoDetection = *raw.EnableAutoDetection
	}
	if raw.DefaultStrategy != nil {
		strategy, err := mask.ParseStrategy(*raw.DefaultStrategy)
		if err != nil {
			return fmt.Errorf("masking_rules: %w", err)
		}
		cfg.Masking.DefaultStrategy = strategy
	}
	if raw.SensitivityThreshold != nil {
		if *raw.SensitivityThreshold < 0 || *raw.SensitivityThreshold > 1 {
			return fmt.Errorf("masking_rules: sensitivity_threshold %v is outside [0,1]", *raw.SensitivityThreshold)
		}
		cfg.Sensitivity.Threshold = *raw.SensitivityThreshold
	}
	if len(raw.TypeThresholds) > 0 {
		cfg.Sensitivity.TypeThresholds = make(map[sensitive.Type]float64, len(raw.TypeThresholds))
		for typeName, threshold := range raw.TypeThresholds {
			t, err := sensitive.ParseType(typeName)
			if err != nil {
				return fmt.Errorf("masking_rules: %w", err)
			}
			if threshold < 0 || threshold > 1 {
				return fmt.Errorf("masking_rules: threshold %v for type %s is outside [0,1]", threshold, t)
			}
			cfg.Sensitivity.TypeThresholds[t] = threshold
		}
	}
	if raw.RuleWeight != nil {
		cfg.Sensitivity.RuleWeight = *raw.RuleWeight
	}
	if raw.ExternalWeight != nil {
		cfg.Sensitivity.ExternalWeight = *raw.ExternalWeight
	}
	if cfg.Sensitivity.RuleWeight < 0 || cfg.Sensitivity.ExternalWeight < 0 {
		return fmt.Errorf("masking_rules: combination weights must not be negative")
	}
	if raw.BandLow != nil {
		cfg.Sensitivity.BandLow = *raw.BandLow
	}
	if raw.BandHigh != nil {
		cfg.Sensitivity.BandHigh = *raw.BandHigh
	}
	if cfg.Sensitivity.BandLow < 0 || cfg.Sensitivity.BandHigh > 1 ||
		cfg.Sensitivity.BandLow > cfg.Sensitivity.BandHigh {
		return fmt.Errorf("masking_rules: inconclusive band (%v, %v) is invalid",
			cfg.Sensitivity.BandLow, cfg.Sensitivity.BandHigh)
	}
	if len(raw.ColumnRules) > 0 {
		cfg.Masking.ColumnRules = make(map[string]mask.Rule, len(raw.ColumnRules))
		cfg.Sensitivity.ForcedColumns = make(map[string]sensitive.Type, len(raw.ColumnRules))
		for column, rawRule := range raw.ColumnRules {
			rule := mask.Rule{Strategy: cfg.Masking.DefaultStrategy}
			if rawRule.Type != "" {
				t, err := sensitive.ParseType(rawRule.Type)
				if err != nil {
					return fmt.Errorf("masking_rules: column %q: %w", column, err)
				}
				rule.Type = t
			}
			if rawRule.Strategy != "" {
				strategy, err := mask.ParseStrategy(rawRule.Strategy)
				if err != nil {
					return fmt.Errorf("masking_rules: column %q: %w", column, err)
				}
				rule.Strategy = strategy
			}
			cfg.Masking.ColumnRules[column] = rule
			cfg.Sensitivity.ForcedColumns[column] = rule.Type
		}
	}
	return nil
}

func applyFeatures(cfg *Pipeline, raw *rawFeatures) {
	if raw == nil {
		return
	}
	if raw.EnableExtraction != nil {
		cfg.Features.Enabled = *raw.EnableExtraction
	}
	if raw.ExtractNumericStats != nil {
		cfg.Features.NumericFeatures = *raw.ExtractNumericStats
	}
	if raw.ExtractTextFeatures != nil {
		cfg.Features.TextFeatures = *raw.ExtractTextFeatures
	}
	if raw.ExtractDatetimeFeatures != nil {
		cfg.Features.TimeFeatures = *raw.ExtractDatetimeFeatures
	}
}

func applyQuality(cfg *Pipeline, raw *rawQuality) error {
	if raw == nil {
		return nil
	}
	if raw.CompletenessWeight != nil {
		cfg.Quality.CompletenessWeight = *raw.CompletenessWeight
	}
	if raw.ConsistencyWeight != nil {
		cfg.Quality.ConsistencyWeight = *raw.ConsistencyWeight
	}
	if cfg.Quality.CompletenessWeight < 0 || cfg.Quality.ConsistencyWeight < 0 {
		return fmt.Errorf("quality: metric weights must not be negative")
	}
	if cfg.Quality.CompletenessWeight+cfg.Quality.ConsistencyWeight == 0 {
		return fmt.Errorf("quality: at least one metric weight must be positive")
	}
	return nil
}
