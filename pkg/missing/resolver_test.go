// pkg/missing/resolver_test.go
package missing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/David-Botos/data-cleanse/pkg/dataset"
	"github.com/David-Botos/data-cleanse/pkg/profile"
)

func numericProfile(name string) profile.Set {
	return profile.Set{{Name: name, Kind: profile.KindFloat}}
}

func textProfile(name string) profile.Set {
	return profile.Set{{Name: name, Kind: profile.KindText}}
}

func applyOne(t *testing.T, values []interface{}, profiles profile.Set, cfg Config) (*dataset.Dataset, *Result) {
	t.Helper()
	ds, err := dataset.FromColumns([]*dataset.Column{dataset.NewColumn(profiles[0].Name, values)})
	require.NoError(t, err)

	out, result, err := NewResolver(zap.NewNop()).Apply(ds, profiles, cfg)
	require.NoError(t, err)
	return out, result
}

func TestMeanFillRoundsToTwoDecimals(t *testing.T) {
	out, result := applyOne(t,
		[]interface{}{25.0, nil, 35.0, 40.0},
		numericProfile("age"), DefaultConfig())

	assert.Equal(t, 33.33, out.Column("age").Values[1])
	assert.Equal(t, 1, result.TotalFilled)
	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, StrategyMean, result.Outcomes[0].Strategy)
}

func TestMedianFill(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ColumnStrategies = map[string]Strategy{"score": StrategyMedian}

	out, _ := applyOne(t,
		[]interface{}{10.0, nil, 30.0, 20.0, 100.0},
		numericProfile("score"), cfg)

	assert.Equal(t, 25.0, out.Column("score").Values[1], "median of {10,20,30,100}")
}

func TestModeFillBreaksTiesByFirstAppearance(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ColumnStrategies = map[string]Strategy{"city": StrategyMode}

	out, _ := applyOne(t,
		[]interface{}{"sh", "bj", nil, "bj", "sh"},
		textProfile("city"), cfg)

	assert.Equal(t, "sh", out.Column("city").Values[2])
}

func TestForwardFillLeavesLeadingNulls(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ColumnStrategies = map[string]Strategy{"v": StrategyForwardFill}

	out, result := applyOne(t,
		[]interface{}{nil, "a", nil, nil, "b", nil},
		textProfile("v"), cfg)

	col := out.Column("v")
	assert.Equal(t, []interface{}{nil, "a", "a", "a", "b", "b"}, col.Values)
	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, 3, result.Outcomes[0].Filled)
	assert.Equal(t, 1, result.Outcomes[0].ResidualNulls)
}

func TestBackwardFillLeavesTrailingNulls(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ColumnStrategies = map[string]Strategy{"v": StrategyBackwardFill}

	out, result := applyOne(t,
		[]interface{}{nil, "a", nil, "b", nil},
		textProfile("v"), cfg)

	assert.Equal(t, []interface{}{"a", "a", "b", "b", nil}, out.Column("v").Values)
	assert.Equal(t, 1, result.Outcomes[0].ResidualNulls)
}

func TestConstantFill(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ColumnStrategies = map[string]Strategy{"status": StrategyConstant}
	cfg.ConstantValues = map[string]interface{}{"status": "unknown"}

	out, _ := applyOne(t,
		[]interface{}{"active", nil, nil},
		textProfile("status"), cfg)

	assert.Equal(t, []interface{}{"active", "unknown", "unknown"}, out.Column("status").Values)
}

func TestDropThresholdRemovesColumn(t *testing.T) {
	ds, err := dataset.FromColumns([]*dataset.Column{
		dataset.NewColumn("keep", []interface{}{"a", "b", "c", "d", "e"}),
		dataset.NewColumn("sparse", []interface{}{nil, nil, nil, nil, nil}),
	})
	require.NoError(t, err)

	profiles := profile.Set{
		{Name: "keep", Kind: profile.KindText},
		{Name: "sparse", Kind: profile.KindText},
	}

	out, result, err := NewResolver(zap.NewNop()).Apply(ds, profiles, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, []string{"keep"}, out.ColumnNames())
	assert.Equal(t, []string{"sparse"}, result.DroppedColumns)
	assert.True(t, ds.HasColumn("sparse"), "input dataset is untouched")

	require.Len(t, result.Outcomes, 1)
	assert.True(t, result.Outcomes[0].Dropped)
	assert.Equal(t, StrategyNone, result.Outcomes[0].Strategy, "no fill strategy applies to a dropped column")
	assert.Equal(t, "none", result.Outcomes[0].Strategy.String())
}

func TestDropThresholdBoundaryKeepsColumn(t *testing.T) {
	// 4 of 5 missing is exactly the 0.8 threshold, drop requires exceeding it
	out, result := applyOne(t,
		[]interface{}{"x", nil, nil, nil, nil},
		textProfile("edge"),
		Config{DefaultStrategy: StrategyMode, DropThreshold: 0.8})

	assert.True(t, out.HasColumn("edge"))
	assert.Empty(t, result.DroppedColumns)
	assert.Equal(t, "x", out.Column("edge").Values[3])
}

func TestDefaultMeanSkipsNonNumericColumns(t *testing.T) {
	out, result := applyOne(t,
		[]interface{}{"alice", nil, "bob"},
		textProfile("name"), DefaultConfig())

	assert.Nil(t, out.Column("name").Values[1], "default numeric strategy leaves text columns alone")
	assert.Equal(t, 0, result.TotalFilled)
}

func TestExplicitMeanOnTextColumnFails(t *testing.T) {
	ds, err := dataset.FromColumns([]*dataset.Column{
		dataset.NewColumn("name", []interface{}{"alice", nil}),
	})
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.ColumnStrategies = map[string]Strategy{"name": StrategyMean}

	_, _, err = NewResolver(zap.NewNop()).Apply(ds, textProfile("name"), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")
}

func TestValidateStrategies(t *testing.T) {
	profiles := profile.Set{
		{Name: "age", Kind: profile.KindInteger},
		{Name: "city", Kind: profile.KindText},
	}

	t.Run("explicit median on text column", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ColumnStrategies = map[string]Strategy{"city": StrategyMedian}
		err := ValidateStrategies(profiles, cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "city")
	})

	t.Run("explicit mode on numeric column", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ColumnStrategies = map[string]Strategy{"age": StrategyMode}
		require.Error(t, ValidateStrategies(profiles, cfg))
	})

	t.Run("constant without fill value", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ColumnStrategies = map[string]Strategy{"city": StrategyConstant}
		require.Error(t, ValidateStrategies(profiles, cfg))
	})

	t.Run("default mean over mixed kinds passes", func(t *testing.T) {
		require.NoError(t, ValidateStrategies(profiles, DefaultConfig()))
	})
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("forward_fill")
	require.NoError(t, err)
	assert.Equal(t, StrategyForwardFill, s)

	_, err = ParseStrategy("interpolate")
	assert.Error(t, err)
}
