// pkg/dataset/dataset.go
package dataset

import (
	"errors"
	"fmt"
)

// Column is an ordered sequence of values under a single name.
// A nil value represents a missing cell.
type Column struct {
	Name   string
	Values []interface{}
}

// NewColumn creates a column from a name and its values
func NewColumn(name string, values []interface{}) *Column {
	return &Column{Name: name, Values: values}
}

// NullCount returns the number of nil values in the column
func (c *Column) NullCount() int {
	count := 0
	for _, v := range c.Values {
		if v == nil {
			count++
		}
	}
	return count
}

// NonNull returns the column's values with nils removed, preserving order
func (c *Column) NonNull() []interface{} {
	out := make([]interface{}, 0, len(c.Values))
	for _, v := range c.Values {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}

// MissingRatio returns the fraction of values that are nil
func (c *Column) MissingRatio() float64 {
	if len(c.Values) == 0 {
		return 0
	}
	return float64(c.NullCount()) / float64(len(c.Values))
}

// Clone returns a deep copy of the column
func (c *Column) Clone() *Column {
	values := make([]interface{}, len(c.Values))
	copy(values, c.Values)
	return &Column{Name: c.Name, Values: values}
}

// Dataset is an ordered collection of named columns with a fixed row count.
// Row order is preserved by every operation.
type Dataset struct {
	columns []*Column
	rows    int
}

// New creates an empty dataset with the given row count
func New(rows int) *Dataset {
	return &Dataset{rows: rows}
}

// FromColumns builds a dataset from columns, validating equal lengths
func FromColumns(columns []*Column) (*Dataset, error) {
	if len(columns) == 0 {
		return &Dataset{}, nil
	}

	rows := len(columns[0].Values)
	for _, col := range columns[1:] {
		if len(col.Values) != rows {
			return nil, fmt.Errorf("column %q has %d values, expected %d", col.Name, len(col.Values), rows)
		}
	}

	ds := &Dataset{columns: make([]*Column, len(columns)), rows: rows}
	copy(ds.columns, columns)
	return ds, nil
}

// Rows returns the number of rows
func (d *Dataset) Rows() int {
	return d.rows
}

// Width returns the number of columns
func (d *Dataset) Width() int {
	return len(d.columns)
}

// Columns returns the columns in order
func (d *Dataset) Columns() []*Column {
	return d.columns
}

// ColumnNames returns the column names in order
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.columns))
	for i, col := range d.columns {
		names[i] = col.Name
	}
	return names
}

// Column returns the named column, or nil if absent
func (d *Dataset) Column(name string) *Column {
	for _, col := range d.columns {
		if col.Name == name {
			return col
		}
	}
	return nil
}

// HasColumn reports whether a column with the given name exists
func (d *Dataset) HasColumn(name string) bool {
	return d.Column(name) != nil
}

// AddColumn appends a column, validating its length against the row count
func (d *Dataset) AddColumn(col *Column) error {
	if len(d.columns) > 0 && len(col.Values) != d.rows {
		return fmt.Errorf("column %q has %d values, expected %d", col.Name, len(col.Values), d.rows)
	}
	if d.HasColumn(col.Name) {
		return fmt.Errorf("column %q already exists", col.Name)
	}
	if len(d.columns) == 0 {
		d.rows = len(col.Values)
	}
	d.columns = append(d.columns, col)
	return nil
}

// DropColumn removes the named column, preserving the order of the rest
func (d *Dataset) DropColumn(name string) error {
	for i, col := range d.columns {
		if col.Name == name {
			d.columns = append(d.columns[:i], d.columns[i+1:]...)
			return nil
		}
	}
	return errors.New("column not found: " + name)
}

// RenameColumn changes a column's name in place
func (d *Dataset) RenameColumn(from, to string) error {
	col := d.Column(from)
	if col == nil {
		return errors.New("column not found: " + from)
	}
	if from != to && d.HasColumn(to) {
		return fmt.Errorf("column %q already exists", to)
	}
	col.Name = to
	return nil
}

// NullCount returns the total number of nil cells across all columns
func (d *Dataset) NullCount() int {
	total := 0
	for _, col := range d.columns {
		total += col.NullCount()
	}
	return total
}

// MissingRatio returns the fraction of all cells that are nil
func (d *Dataset) MissingRatio() float64 {
	cells := d.rows * len(d.columns)
	if cells == 0 {
		return 0
	}
	return float64(d.NullCount()) / float64(cells)
}

// Clone returns a deep copy of the dataset. Every stage boundary clones
// so that before/after snapshots never alias each other.
func (d *Dataset) Clone() *Dataset {
	columns := make([]*Column, len(d.columns))
	for i, col := range d.columns {
		columns[i] = col.Clone()
	}
	return &Dataset{columns: columns, rows: d.rows}
}
