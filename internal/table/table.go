package table

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// Row maps a column name to its cell value.
// Every row in a table holds exactly the table's columns as keys.
type Row map[string]Value

func (r Row) Clone() Row {
	clone := make(Row, len(r))
	for k, v := range r {
		clone[k] = v
	}
	return clone
}

func (r Row) Equal(o Row) bool {
	if len(r) != len(o) {
		return false
	}
	for k, v := range r {
		ov, ok := o[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Table is the in-memory tabular value. Column order is significant
// for serialization; lookups go by name. Operations never mutate a
// Table in place, they return a new one.
type Table struct {
	Columns []string
	Rows    []Row
}

// NewTable validates column uniqueness and normalizes rows: keys
// missing from a row become null, unknown keys are an error.
func NewTable(columns []string, rows []Row) (Table, error) {
	seen := make(map[string]bool, len(columns))
	for _, col := range columns {
		if seen[col] {
			return Table{}, fmt.Errorf("duplicate column %q", col)
		}
		seen[col] = true
	}

	normalized := make([]Row, len(rows))
	for i, row := range rows {
		for k := range row {
			if !seen[k] {
				return Table{}, fmt.Errorf("row %d has unknown column %q", i, k)
			}
		}
		r := make(Row, len(columns))
		for _, col := range columns {
			if v, ok := row[col]; ok {
				r[col] = v
			} else {
				r[col] = NullValue()
			}
		}
		normalized[i] = r
	}

	return Table{Columns: columns, Rows: normalized}, nil
}

func (t Table) HasColumn(name string) bool {
	return slices.Contains(t.Columns, name)
}

func (t Table) Clone() Table {
	columns := make([]string, len(t.Columns))
	copy(columns, t.Columns)
	rows := make([]Row, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = row.Clone()
	}
	return Table{Columns: columns, Rows: rows}
}

func (t Table) Equal(o Table) bool {
	if !slices.Equal(t.Columns, o.Columns) || len(t.Rows) != len(o.Rows) {
		return false
	}
	for i, row := range t.Rows {
		if !row.Equal(o.Rows[i]) {
			return false
		}
	}
	return true
}
