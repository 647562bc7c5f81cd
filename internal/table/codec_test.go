package table_test

import (
	"errors"
	"math"
	"testing"

	"github.com/tablecraft/tablecraft/internal/table"
	"gotest.tools/assert"
)

func TestEncode(t *testing.T) {
	t.Run("empty table", func(t *testing.T) {
		text, err := table.Encode(table.Table{})
		assert.NilError(t, err)
		assert.Equal(t, text, `{"columns":[],"index":[],"data":[]}`)
	})

	t.Run("cells follow column order", func(t *testing.T) {
		tbl := mustTable(t, []string{"a", "b"}, []table.Row{
			{"a": table.NumberValue(1), "b": table.StringValue("x")},
			{"a": table.NumberValue(2), "b": table.StringValue("y")},
		})

		text, err := table.Encode(tbl)
		assert.NilError(t, err)
		assert.Equal(t, text, `{"columns":["a","b"],"index":[0,1],"data":[[1,"x"],[2,"y"]]}`)
	})
}

func TestDecode(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		tbl := mustTable(t, []string{"a", "b"}, []table.Row{
			{"a": table.NumberValue(1), "b": table.NullValue()},
			{"a": table.NumberValue(math.Inf(1)), "b": table.StringValue("y")},
		})

		text, err := table.Encode(tbl)
		assert.NilError(t, err)

		got, err := table.Decode(text)
		assert.NilError(t, err)
		assert.Assert(t, got.Equal(tbl))
	})

	t.Run("index is regenerated", func(t *testing.T) {
		got, err := table.Decode(`{"columns":["a"],"index":[5,9],"data":[[1],[2]]}`)
		assert.NilError(t, err)

		text, err := table.Encode(got)
		assert.NilError(t, err)
		assert.Equal(t, text, `{"columns":["a"],"index":[0,1],"data":[[1],[2]]}`)
	})

	t.Run("double escaped payload", func(t *testing.T) {
		got, err := table.Decode(`{\"columns\":[\"a\"],\"index\":[0],\"data\":[[1]]}`)
		assert.NilError(t, err)
		assert.Assert(t, got.Rows[0]["a"].Equal(table.NumberValue(1)))
	})

	t.Run("quote wrapped payload", func(t *testing.T) {
		got, err := table.Decode(`"{\"columns\":[\"a\"],\"index\":[0],\"data\":[[2]]}"`)
		assert.NilError(t, err)
		assert.Assert(t, got.Rows[0]["a"].Equal(table.NumberValue(2)))
	})

	t.Run("revives non-finite tokens", func(t *testing.T) {
		got, err := table.Decode(`{"columns":["x"],"index":[0],"data":[["Infinity"]]}`)
		assert.NilError(t, err)
		assert.Equal(t, got.Rows[0]["x"].Kind(), table.KindNumber)
		assert.Assert(t, math.IsInf(got.Rows[0]["x"].Number(), 1))
	})

	t.Run("ragged rows", func(t *testing.T) {
		_, err := table.Decode(`{"columns":["a","b"],"index":[0],"data":[[1]]}`)
		var decode_err *table.DecodeError
		assert.Assert(t, errors.As(err, &decode_err))
		assert.ErrorContains(t, err, "not valid split-format JSON")
	})

	t.Run("missing columns", func(t *testing.T) {
		_, err := table.Decode(`{"index":[],"data":[]}`)
		assert.ErrorContains(t, err, "missing columns")
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := table.Decode(`not json at all`)
		var decode_err *table.DecodeError
		assert.Assert(t, errors.As(err, &decode_err))
	})
}
