package sheets

import (
	"fmt"

	"github.com/tablecraft/tablecraft/internal/table"
)

// Grid is the raw cell rectangle of one tab; the first row is the
// header. Grids come straight from clients or snapshots and give no
// invariant guarantees, TableFromGrid establishes them.
type Grid [][]table.Value

// TableFromGrid builds a Table from raw cells: duplicate or empty
// header names are rewritten so columns stay unique, short rows are
// padded with null and long rows truncated to the header width.
func TableFromGrid(g Grid) (table.Table, error) {
	if len(g) == 0 {
		return table.Table{}, fmt.Errorf("tab has no header row")
	}

	columns := dedupeHeader(g[0])
	rows := make([]table.Row, 0, len(g)-1)
	for _, cells := range g[1:] {
		row := make(table.Row, len(columns))
		for i, col := range columns {
			if i < len(cells) {
				row[col] = cells[i]
			} else {
				row[col] = table.NullValue()
			}
		}
		rows = append(rows, row)
	}

	return table.NewTable(columns, rows)
}

// GridFromTable lays a Table out as cells: header row first, then one
// row per record, all in table order.
func GridFromTable(t table.Table) Grid {
	grid := make(Grid, 0, len(t.Rows)+1)

	header := make([]table.Value, len(t.Columns))
	for i, col := range t.Columns {
		header[i] = table.StringValue(col)
	}
	grid = append(grid, header)

	for _, row := range t.Rows {
		cells := make([]table.Value, len(t.Columns))
		for i, col := range t.Columns {
			cells[i] = row[col]
		}
		grid = append(grid, cells)
	}
	return grid
}

func dedupeHeader(header []table.Value) []string {
	columns := make([]string, len(header))
	used := map[string]bool{}
	for i, cell := range header {
		name := cell.Text()
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		if used[name] {
			base := name
			for n := 2; ; n++ {
				name = fmt.Sprintf("%s_%d", base, n)
				if !used[name] {
					break
				}
			}
		}
		used[name] = true
		columns[i] = name
	}
	return columns
}
