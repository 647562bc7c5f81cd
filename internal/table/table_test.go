package table_test

import (
	"testing"

	"github.com/tablecraft/tablecraft/internal/table"
	"gotest.tools/assert"
)

func mustTable(t *testing.T, columns []string, rows []table.Row) table.Table {
	t.Helper()
	tbl, err := table.NewTable(columns, rows)
	assert.NilError(t, err)
	return tbl
}

func TestNewTable(t *testing.T) {
	t.Run("missing keys become null", func(t *testing.T) {
		tbl := mustTable(t, []string{"a", "b"}, []table.Row{
			{"a": table.NumberValue(1)},
		})

		assert.Assert(t, tbl.Rows[0]["b"].IsNull())
	})

	t.Run("duplicate column", func(t *testing.T) {
		_, err := table.NewTable([]string{"a", "a"}, nil)
		assert.ErrorContains(t, err, "duplicate column")
	})

	t.Run("unknown row key", func(t *testing.T) {
		_, err := table.NewTable([]string{"a"}, []table.Row{
			{"b": table.NumberValue(1)},
		})
		assert.ErrorContains(t, err, "unknown column")
	})
}

func TestTableClone(t *testing.T) {
	tbl := mustTable(t, []string{"a"}, []table.Row{
		{"a": table.NumberValue(1)},
	})

	clone := tbl.Clone()
	clone.Columns[0] = "z"
	clone.Rows[0]["a"] = table.NumberValue(2)

	assert.Equal(t, tbl.Columns[0], "a")
	assert.Assert(t, tbl.Rows[0]["a"].Equal(table.NumberValue(1)))
}
