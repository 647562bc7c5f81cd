package query_test

import (
	"net/http"
	"testing"

	. "github.com/tablecraft/tablecraft/internal/query"
	"github.com/tablecraft/tablecraft/internal/table"
	"gotest.tools/assert"
)

func num(n float64) table.Value { return table.NumberValue(n) }
func str(s string) table.Value  { return table.StringValue(s) }

func newTestTable(t *testing.T) table.Table {
	t.Helper()
	tbl, err := table.NewTable([]string{"id", "name", "score"}, []table.Row{
		{"id": num(1), "name": str("ada"), "score": num(10)},
		{"id": num(2), "name": str("grace"), "score": num(20)},
		{"id": num(3), "name": str("alan"), "score": num(20)},
	})
	assert.NilError(t, err)
	return tbl
}

func queryStatus(t *testing.T, err error) int {
	t.Helper()
	query_err, ok := err.(*QueryError)
	assert.Assert(t, ok, "expected *QueryError, got %T", err)
	return query_err.Status()
}

func TestAddRow(t *testing.T) {
	t.Run("appends and fills missing columns with null", func(t *testing.T) {
		tbl := newTestTable(t)
		res, err := AddRow(tbl, map[string]table.Value{"id": num(4), "name": str("edsger")})
		assert.NilError(t, err)

		assert.Equal(t, len(res.Rows), 4)
		assert.Assert(t, res.Rows[3]["id"].Equal(num(4)))
		assert.Assert(t, res.Rows[3]["score"].IsNull())
		// the input table is untouched
		assert.Equal(t, len(tbl.Rows), 3)
	})

	t.Run("unknown column", func(t *testing.T) {
		res, err := AddRow(newTestTable(t), map[string]table.Value{"age": num(30)})
		assert.Equal(t, queryStatus(t, err), http.StatusNotFound)
		assert.ErrorContains(t, err, "Invalid row columns: age")
		assert.Equal(t, len(res.Rows), 0)
	})
}

func TestEditRow(t *testing.T) {
	t.Run("single match", func(t *testing.T) {
		res, count, err := EditRow(newTestTable(t),
			map[string]table.Value{"id": num(2)},
			map[string]table.Value{"score": num(99)})
		assert.NilError(t, err)

		assert.Equal(t, count, 1)
		assert.Assert(t, res.Rows[1]["score"].Equal(num(99)))
		assert.Assert(t, res.Rows[0]["score"].Equal(num(10)))
	})

	t.Run("updates every match", func(t *testing.T) {
		res, count, err := EditRow(newTestTable(t),
			map[string]table.Value{"score": num(20)},
			map[string]table.Value{"score": num(0)})
		assert.NilError(t, err)

		assert.Equal(t, count, 2)
		assert.Assert(t, res.Rows[1]["score"].Equal(num(0)))
		assert.Assert(t, res.Rows[2]["score"].Equal(num(0)))
	})

	t.Run("no match", func(t *testing.T) {
		_, _, err := EditRow(newTestTable(t),
			map[string]table.Value{"id": num(100)},
			map[string]table.Value{"score": num(0)})
		assert.Equal(t, queryStatus(t, err), http.StatusNotFound)
		assert.ErrorContains(t, err, "No row found")
	})

	t.Run("identifier never coerces types", func(t *testing.T) {
		_, _, err := EditRow(newTestTable(t),
			map[string]table.Value{"id": str("2")},
			map[string]table.Value{"score": num(0)})
		assert.Equal(t, queryStatus(t, err), http.StatusNotFound)
	})

	t.Run("unknown update column", func(t *testing.T) {
		_, _, err := EditRow(newTestTable(t),
			map[string]table.Value{"id": num(1)},
			map[string]table.Value{"age": num(30)})
		assert.ErrorContains(t, err, "Invalid update columns: age")
	})
}

func TestDeleteRow(t *testing.T) {
	t.Run("deletes every match in order", func(t *testing.T) {
		res, count, err := DeleteRow(newTestTable(t), map[string]table.Value{"score": num(20)})
		assert.NilError(t, err)

		assert.Equal(t, count, 2)
		assert.Equal(t, len(res.Rows), 1)
		assert.Assert(t, res.Rows[0]["name"].Equal(str("ada")))
	})

	t.Run("no match", func(t *testing.T) {
		_, _, err := DeleteRow(newTestTable(t), map[string]table.Value{"id": num(100)})
		assert.Equal(t, queryStatus(t, err), http.StatusNotFound)
	})
}

func TestMutationSequence(t *testing.T) {
	tbl := newTestTable(t)

	tbl, err := AddRow(tbl, map[string]table.Value{"id": num(4), "name": str("edsger"), "score": num(1)})
	assert.NilError(t, err)

	tbl, count, err := EditRow(tbl,
		map[string]table.Value{"id": num(2)},
		map[string]table.Value{"score": num(99)})
	assert.NilError(t, err)
	assert.Equal(t, count, 1)

	tbl, count, err = DeleteRow(tbl, map[string]table.Value{"id": num(1)})
	assert.NilError(t, err)
	assert.Equal(t, count, 1)

	tbl, err = AddColumn(tbl, "total", FormulaSum, []string{"id", "score"}, nil)
	assert.NilError(t, err)

	assert.Equal(t, len(tbl.Rows), 3)
	assert.Assert(t, tbl.Rows[0]["total"].Equal(num(101)))
	assert.Assert(t, tbl.Rows[2]["total"].Equal(num(5)))
}
