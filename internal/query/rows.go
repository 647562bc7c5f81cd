package query

import (
	"github.com/tablecraft/tablecraft/internal/table"
)

// AddRow appends a record. Columns absent from row become null;
// unknown keys are rejected before anything is copied.
func AddRow(t table.Table, row map[string]table.Value) (table.Table, error) {
	if err := requireRowColumns(t, row, "row"); err != nil {
		return table.Table{}, err
	}

	out := t.Clone()
	record := make(table.Row, len(out.Columns))
	for _, col := range out.Columns {
		if v, ok := row[col]; ok {
			record[col] = v
		} else {
			record[col] = table.NullValue()
		}
	}
	out.Rows = append(out.Rows, record)
	return out, nil
}

// EditRow overwrites the updated columns on every record matching the
// identifier and reports how many records changed. Matching zero
// records is an error; matching several updates them all.
func EditRow(t table.Table, identifier, updates map[string]table.Value) (table.Table, int, error) {
	if err := requireRowColumns(t, identifier, "identifier"); err != nil {
		return table.Table{}, 0, err
	}
	if err := requireRowColumns(t, updates, "update"); err != nil {
		return table.Table{}, 0, err
	}

	mask := matchMask(t, identifier)
	if len(mask) == 0 {
		return table.Table{}, 0, rowNotFoundError()
	}

	out := t.Clone()
	for _, i := range mask {
		for col, v := range updates {
			out.Rows[i][col] = v
		}
	}
	return out, len(mask), nil
}

// DeleteRow removes every record matching the identifier, preserving
// the relative order of the rest.
func DeleteRow(t table.Table, identifier map[string]table.Value) (table.Table, int, error) {
	if err := requireRowColumns(t, identifier, "identifier"); err != nil {
		return table.Table{}, 0, err
	}

	mask := matchMask(t, identifier)
	if len(mask) == 0 {
		return table.Table{}, 0, rowNotFoundError()
	}

	matched := make(map[int]bool, len(mask))
	for _, i := range mask {
		matched[i] = true
	}

	out := t.Clone()
	rows := make([]table.Row, 0, len(out.Rows)-len(mask))
	for i, row := range out.Rows {
		if !matched[i] {
			rows = append(rows, row)
		}
	}
	out.Rows = rows
	return out, len(mask), nil
}
