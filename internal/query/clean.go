package query

import (
	"fmt"
	"math"
	"net/http"

	"golang.org/x/exp/slices"

	"github.com/tablecraft/tablecraft/internal/table"
	"github.com/tablecraft/tablecraft/pkg"
)

type CleanMethod string

const (
	CleanMean   CleanMethod = "mean"
	CleanMedian CleanMethod = "median"
	CleanDrop   CleanMethod = "drop"
)

// Clean handles missing values: mean and median fill nulls in numeric
// columns with that column's aggregate, drop removes any row holding a
// null. Non-numeric columns are left alone by mean and median.
func Clean(t table.Table, method CleanMethod) (table.Table, error) {
	switch method {
	case CleanDrop:
		out := t.Clone()
		out.Rows = pkg.Filter(out.Rows, func(row table.Row) bool {
			for _, col := range out.Columns {
				if row[col].IsNull() {
					return false
				}
			}
			return true
		})
		return out, nil

	case CleanMean, CleanMedian:
		out := t.Clone()
		for _, col := range out.Columns {
			fill, ok := columnAggregate(out, col, method)
			if !ok {
				continue
			}
			for _, row := range out.Rows {
				if row[col].IsNull() {
					row[col] = table.NumberValue(fill)
				}
			}
		}
		return out, nil
	}

	return table.Table{}, NewQueryError(http.StatusBadRequest, ErrUnsupportedOperation,
		fmt.Sprintf("Unknown cleaning method: %s", method))
}

// columnAggregate reports the mean or median of a numeric column. A
// column qualifies when every non-null value is a finite number and at
// least one exists.
func columnAggregate(t table.Table, col string, method CleanMethod) (float64, bool) {
	numbers := []float64{}
	for _, row := range t.Rows {
		v := row[col]
		if v.IsNull() {
			continue
		}
		if v.Kind() != table.KindNumber || math.IsNaN(v.Number()) || math.IsInf(v.Number(), 0) {
			return 0, false
		}
		numbers = append(numbers, v.Number())
	}
	if len(numbers) == 0 {
		return 0, false
	}

	if method == CleanMean {
		sum := 0.0
		for _, n := range numbers {
			sum += n
		}
		return sum / float64(len(numbers)), true
	}

	slices.Sort(numbers)
	mid := len(numbers) / 2
	if len(numbers)%2 == 1 {
		return numbers[mid], true
	}
	return (numbers[mid-1] + numbers[mid]) / 2, true
}
