// pkg/dataset/dataset_test.go
package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromColumns(t *testing.T) {
	ds, err := FromColumns([]*Column{
		NewColumn("id", []interface{}{"1", "2", "3"}),
		NewColumn("name", []interface{}{"a", nil, "c"}),
	})
	require.NoError(t, err)

	assert.Equal(t, 3, ds.Rows())
	assert.Equal(t, 2, ds.Width())
	assert.Equal(t, []string{"id", "name"}, ds.ColumnNames())
}

func TestFromColumnsLengthMismatch(t *testing.T) {
	_, err := FromColumns([]*Column{
		NewColumn("id", []interface{}{"1", "2"}),
		NewColumn("name", []interface{}{"a"}),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")
}

func TestColumnNullAccounting(t *testing.T) {
	col := NewColumn("age", []interface{}{25, nil, 40, nil})

	assert.Equal(t, 2, col.NullCount())
	assert.Equal(t, []interface{}{25, 40}, col.NonNull())
	assert.InDelta(t, 0.5, col.MissingRatio(), 1e-9)
}

func TestMissingRatioEmptyColumn(t *testing.T) {
	col := NewColumn("empty", nil)
	assert.Equal(t, 0.0, col.MissingRatio())
}

func TestAddColumn(t *testing.T) {
	ds := New(2)
	require.NoError(t, ds.AddColumn(NewColumn("a", []interface{}{1, 2})))

	err := ds.AddColumn(NewColumn("a", []interface{}{3, 4}))
	require.Error(t, err, "duplicate names are rejected")

	err = ds.AddColumn(NewColumn("b", []interface{}{1}))
	require.Error(t, err, "length must match the row count")
}

func TestDropColumnPreservesOrder(t *testing.T) {
	ds, err := FromColumns([]*Column{
		NewColumn("a", []interface{}{1}),
		NewColumn("b", []interface{}{2}),
		NewColumn("c", []interface{}{3}),
	})
	require.NoError(t, err)

	require.NoError(t, ds.DropColumn("b"))
	assert.Equal(t, []string{"a", "c"}, ds.ColumnNames())

	assert.Error(t, ds.DropColumn("missing"))
}

func TestRenameColumn(t *testing.T) {
	ds, err := FromColumns([]*Column{
		NewColumn("User Name", []interface{}{"x"}),
		NewColumn("other", []interface{}{"y"}),
	})
	require.NoError(t, err)

	require.NoError(t, ds.RenameColumn("User Name", "user_name"))
	assert.True(t, ds.HasColumn("user_name"))
	assert.False(t, ds.HasColumn("User Name"))

	assert.Error(t, ds.RenameColumn("user_name", "other"), "rename cannot collide")
	assert.Error(t, ds.RenameColumn("gone", "anything"))
}

func TestCloneIsDeep(t *testing.T) {
	ds, err := FromColumns([]*Column{
		NewColumn("a", []interface{}{"original"}),
	})
	require.NoError(t, err)

	clone := ds.Clone()
	clone.Column("a").Values[0] = "mutated"
	clone.Column("a").Name = "renamed"

	assert.Equal(t, "original", ds.Column("a").Values[0])
	assert.True(t, ds.HasColumn("a"))
}

func TestDatasetMissingRatio(t *testing.T) {
	ds, err := FromColumns([]*Column{
		NewColumn("a", []interface{}{1, nil}),
		NewColumn("b", []interface{}{nil, nil}),
	})
	require.NoError(t, err)

	assert.Equal(t, 3, ds.NullCount())
	assert.InDelta(t, 0.75, ds.MissingRatio(), 1e-9)
}
