// pkg/standardize/standardizer_test.go
package standardize

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/David-Botos/data-cleanse/pkg/dataset"
	"github.com/David-Botos/data-cleanse/pkg/profile"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		convention NamingConvention
		in         string
		want       string
	}{
		{SnakeCase, "User Name", "user_name"},
		{SnakeCase, "userName", "user_name"},
		{SnakeCase, "User-Name!", "user_name"},
		{SnakeCase, "  order   ID  ", "order_id"},
		{SnakeCase, "already_snake", "already_snake"},
		{CamelCase, "User Name", "userName"},
		{PascalCase, "user name", "UserName"},
		{SnakeCase, "姓名", "姓名"},
		{PascalCase, "姓名", "姓名"},
		{PascalCase, "手机 number", "手机Number"},
		{CamelCase, "客户 名称", "客户名称"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := tt.convention.Normalize(tt.in)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestParseNamingConvention(t *testing.T) {
	n, err := ParseNamingConvention("camelCase")
	require.NoError(t, err)
	assert.Equal(t, CamelCase, n)

	_, err = ParseNamingConvention("kebab-case")
	assert.Error(t, err)
}

func buildDataset(t *testing.T, cols ...*dataset.Column) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.FromColumns(cols)
	require.NoError(t, err)
	return ds
}

func TestApplyRenames(t *testing.T) {
	ds := buildDataset(t,
		dataset.NewColumn("User Name", []interface{}{"alice", "bob"}),
		dataset.NewColumn("Order ID", []interface{}{"a1", "b2"}),
	)
	profiles := profile.NewProfiler(profile.DefaultConfig(), zap.NewNop()).ProfileDataset(ds)

	out, result, err := NewStandardizer(zap.NewNop()).Apply(ds, profiles, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, []string{"user_name", "order_id"}, out.ColumnNames())
	assert.Equal(t, "user_name", result.Renames["User Name"])
	assert.True(t, ds.HasColumn("User Name"), "input dataset is untouched")
}

func TestApplyRenameCollision(t *testing.T) {
	ds := buildDataset(t,
		dataset.NewColumn("user name", []interface{}{"a"}),
		dataset.NewColumn("User Name", []interface{}{"b"}),
	)
	profiles := profile.NewProfiler(profile.DefaultConfig(), zap.NewNop()).ProfileDataset(ds)

	out, _, err := NewStandardizer(zap.NewNop()).Apply(ds, profiles, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, []string{"user_name", "user_name_2"}, out.ColumnNames())
}

func TestApplyDropsDuplicateAndEmptyColumns(t *testing.T) {
	ds := buildDataset(t,
		dataset.NewColumn("a", []interface{}{"x", "y"}),
		dataset.NewColumn("a_copy", []interface{}{"x", "y"}),
		dataset.NewColumn("blank", []interface{}{nil, nil}),
	)
	profiles := profile.NewProfiler(profile.DefaultConfig(), zap.NewNop()).ProfileDataset(ds)

	out, result, err := NewStandardizer(zap.NewNop()).Apply(ds, profiles, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, out.ColumnNames())
	assert.Equal(t, []string{"a_copy"}, result.DroppedDupes)
	assert.Equal(t, []string{"blank"}, result.DroppedEmpty)
	assert.Equal(t, 2, out.Rows(), "row count is preserved")
}

func TestDuplicateDetectionComparesValuesNotNames(t *testing.T) {
	ds := buildDataset(t,
		dataset.NewColumn("a", []interface{}{"x", "y"}),
		dataset.NewColumn("b", []interface{}{"x", "z"}),
	)
	profiles := profile.NewProfiler(profile.DefaultConfig(), zap.NewNop()).ProfileDataset(ds)

	out, result, err := NewStandardizer(zap.NewNop()).Apply(ds, profiles, DefaultConfig())
	require.NoError(t, err)

	assert.Empty(t, result.DroppedDupes)
	assert.Equal(t, 2, out.Width())
}

func TestApplyCoercesTypes(t *testing.T) {
	ds := buildDataset(t,
		dataset.NewColumn("age", []interface{}{"25", "40", nil}),
		dataset.NewColumn("active", []interface{}{"yes", "no", "yes"}),
	)
	profiles := profile.NewProfiler(profile.DefaultConfig(), zap.NewNop()).ProfileDataset(ds)

	out, _, err := NewStandardizer(zap.NewNop()).Apply(ds, profiles, DefaultConfig())
	require.NoError(t, err)

	age := out.Column("age")
	require.NotNil(t, age)
	assert.Equal(t, int64(25), age.Values[0])
	assert.Nil(t, age.Values[2], "nulls pass through untouched")

	active := out.Column("active")
	require.NotNil(t, active)
	assert.Equal(t, true, active.Values[0])
	assert.Equal(t, false, active.Values[1])
}

func TestCoercionNullsUnparseableValues(t *testing.T) {
	ds := buildDataset(t,
		dataset.NewColumn("age", []interface{}{"25", "oops", "40"}),
	)
	profiles := profile.NewProfiler(profile.DefaultConfig(), zap.NewNop()).ProfileDataset(ds)

	cfg := DefaultConfig()
	cfg.CustomTypeMappings = map[string]profile.Kind{"age": profile.KindInteger}

	out, result, err := NewStandardizer(zap.NewNop()).Apply(ds, profiles, cfg)
	require.NoError(t, err)

	age := out.Column("age")
	assert.Equal(t, int64(25), age.Values[0])
	assert.Nil(t, age.Values[1], "unparseable values become null under an explicit mapping")
	assert.Equal(t, 1, result.CoercionNulls["age"])
}

func TestApplyIsIdempotent(t *testing.T) {
	ds := buildDataset(t,
		dataset.NewColumn("User Name", []interface{}{"alice", "bob"}),
		dataset.NewColumn("Age", []interface{}{"25", "40"}),
	)
	profiler := profile.NewProfiler(profile.DefaultConfig(), zap.NewNop())
	std := NewStandardizer(zap.NewNop())

	first, _, err := std.Apply(ds, profiler.ProfileDataset(ds), DefaultConfig())
	require.NoError(t, err)

	second, result, err := std.Apply(first, profiler.ProfileDataset(first), DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, 0, result.ChangedColumns)
	assert.Equal(t, first.ColumnNames(), second.ColumnNames())
	assert.Equal(t, first.Column("age").Values, second.Column("age").Values)
}

func TestCustomTypeMappingWins(t *testing.T) {
	ds := buildDataset(t,
		dataset.NewColumn("code", []interface{}{"1", "2"}),
	)
	profiles := profile.NewProfiler(profile.DefaultConfig(), zap.NewNop()).ProfileDataset(ds)

	cfg := DefaultConfig()
	cfg.CustomTypeMappings = map[string]profile.Kind{"code": profile.KindText}

	out, _, err := NewStandardizer(zap.NewNop()).Apply(ds, profiles, cfg)
	require.NoError(t, err)

	assert.Equal(t, "1", out.Column("code").Values[0], "mapping overrides the inferred integer kind")
}

func TestCoerceValue(t *testing.T) {
	v, ok := CoerceValue("42", profile.KindInteger)
	require.True(t, ok)
	assert.Equal(t, int64(42), v)

	_, ok = CoerceValue("forty-two", profile.KindInteger)
	assert.False(t, ok)

	v, ok = CoerceValue(7, profile.KindText)
	require.True(t, ok)
	assert.Equal(t, "7", v)
}
