package query_test

import (
	"math"
	"net/http"
	"testing"

	. "github.com/tablecraft/tablecraft/internal/query"
	"github.com/tablecraft/tablecraft/internal/table"
	"gotest.tools/assert"
)

func TestAddColumn(t *testing.T) {
	t.Run("sum", func(t *testing.T) {
		res, err := AddColumn(newTestTable(t), "total", FormulaSum, []string{"id", "score"}, nil)
		assert.NilError(t, err)

		assert.Equal(t, res.Columns[len(res.Columns)-1], "total")
		assert.Assert(t, res.Rows[0]["total"].Equal(num(11)))
		assert.Assert(t, res.Rows[2]["total"].Equal(num(23)))
	})

	t.Run("multiply", func(t *testing.T) {
		res, err := AddColumn(newTestTable(t), "product", FormulaMultiply, []string{"id", "score"}, nil)
		assert.NilError(t, err)
		assert.Assert(t, res.Rows[1]["product"].Equal(num(40)))
	})

	t.Run("subtract", func(t *testing.T) {
		res, err := AddColumn(newTestTable(t), "diff", FormulaSubtract, []string{"score", "id"}, nil)
		assert.NilError(t, err)
		assert.Assert(t, res.Rows[0]["diff"].Equal(num(9)))
	})

	t.Run("divide follows ieee semantics", func(t *testing.T) {
		tbl, err := table.NewTable([]string{"a", "b"}, []table.Row{
			{"a": num(10), "b": num(0)},
			{"a": num(0), "b": num(0)},
			{"a": num(-10), "b": num(0)},
		})
		assert.NilError(t, err)

		res, err := AddColumn(tbl, "ratio", FormulaDivide, []string{"a", "b"}, nil)
		assert.NilError(t, err)

		assert.Assert(t, math.IsInf(res.Rows[0]["ratio"].Number(), 1))
		assert.Assert(t, math.IsNaN(res.Rows[1]["ratio"].Number()))
		assert.Assert(t, math.IsInf(res.Rows[2]["ratio"].Number(), -1))
	})

	t.Run("concat with default separator", func(t *testing.T) {
		res, err := AddColumn(newTestTable(t), "label", FormulaConcat, []string{"name", "id"}, nil)
		assert.NilError(t, err)
		assert.Assert(t, res.Rows[0]["label"].Equal(str("ada 1")))
	})

	t.Run("concat with explicit empty separator", func(t *testing.T) {
		sep := ""
		res, err := AddColumn(newTestTable(t), "label", FormulaConcat,
			[]string{"name", "id"}, &ColumnParams{Separator: &sep})
		assert.NilError(t, err)
		assert.Assert(t, res.Rows[0]["label"].Equal(str("ada1")))
	})

	t.Run("concat with prefix and suffix", func(t *testing.T) {
		res, err := AddColumn(newTestTable(t), "label", FormulaConcat,
			[]string{"name"}, &ColumnParams{Prefix: "[", Suffix: "]"})
		assert.NilError(t, err)
		assert.Assert(t, res.Rows[0]["label"].Equal(str("[ada]")))
	})

	t.Run("concat with format template", func(t *testing.T) {
		res, err := AddColumn(newTestTable(t), "label", FormulaConcat,
			[]string{"name", "score"}, &ColumnParams{FormatTemplate: "{0} scored {1} {{raw}}"})
		assert.NilError(t, err)
		assert.Assert(t, res.Rows[0]["label"].Equal(str("ada scored 10 {raw}")))
	})

	t.Run("template out of range", func(t *testing.T) {
		_, err := AddColumn(newTestTable(t), "label", FormulaConcat,
			[]string{"name"}, &ColumnParams{FormatTemplate: "{1}"})
		assert.Equal(t, queryStatus(t, err), http.StatusBadRequest)
		assert.ErrorContains(t, err, "references value 1")
	})

	t.Run("divide arity", func(t *testing.T) {
		_, err := AddColumn(newTestTable(t), "ratio", FormulaDivide, []string{"id"}, nil)
		assert.Equal(t, queryStatus(t, err), http.StatusBadRequest)
		assert.ErrorContains(t, err, "exactly 2 reference columns")

		_, err = AddColumn(newTestTable(t), "ratio", FormulaDivide, []string{"id", "score", "id"}, nil)
		assert.ErrorContains(t, err, "exactly 2 reference columns, got 3")
	})

	t.Run("column collision", func(t *testing.T) {
		_, err := AddColumn(newTestTable(t), "score", FormulaSum, []string{"id"}, nil)
		assert.Equal(t, queryStatus(t, err), http.StatusConflict)
		assert.ErrorContains(t, err, `Column "score" already exists`)
	})

	t.Run("unknown reference columns sorted in error", func(t *testing.T) {
		_, err := AddColumn(newTestTable(t), "x", FormulaSum, []string{"z", "a"}, nil)
		assert.Equal(t, queryStatus(t, err), http.StatusNotFound)
		assert.ErrorContains(t, err, "Invalid reference columns: a, z")
	})

	t.Run("numeric formula on non-number", func(t *testing.T) {
		_, err := AddColumn(newTestTable(t), "x", FormulaSum, []string{"name"}, nil)
		assert.Equal(t, queryStatus(t, err), http.StatusUnprocessableEntity)
		assert.ErrorContains(t, err, "non-numeric value (string) in row 0")
	})

	t.Run("unsupported formula", func(t *testing.T) {
		_, err := AddColumn(newTestTable(t), "x", Formula("power"), []string{"id"}, nil)
		assert.Equal(t, queryStatus(t, err), http.StatusBadRequest)
		assert.ErrorContains(t, err, "Unsupported formula")
	})
}

func TestRenameColumn(t *testing.T) {
	t.Run("renames column and re-keys rows", func(t *testing.T) {
		tbl := newTestTable(t)
		res, err := RenameColumn(tbl, "score", "points")
		assert.NilError(t, err)

		assert.Equal(t, res.Columns[2], "points")
		assert.Assert(t, res.Rows[0]["points"].Equal(num(10)))
		_, leftover := res.Rows[0]["score"]
		assert.Assert(t, !leftover)
		// the input table is untouched
		assert.Equal(t, tbl.Columns[2], "score")
	})

	t.Run("self rename is a no-op", func(t *testing.T) {
		res, err := RenameColumn(newTestTable(t), "score", "score")
		assert.NilError(t, err)
		assert.Equal(t, res.Columns[2], "score")
	})

	t.Run("collision", func(t *testing.T) {
		_, err := RenameColumn(newTestTable(t), "score", "name")
		assert.Equal(t, queryStatus(t, err), http.StatusConflict)
	})

	t.Run("missing column", func(t *testing.T) {
		_, err := RenameColumn(newTestTable(t), "points", "score")
		assert.Equal(t, queryStatus(t, err), http.StatusNotFound)
		assert.ErrorContains(t, err, `Column "points" not found`)
	})
}
