package query

import (
	"golang.org/x/exp/slices"

	"github.com/tablecraft/tablecraft/internal/table"
	"github.com/tablecraft/tablecraft/pkg"
)

// requireColumns fails when any of the named columns is absent.
// The error lists the offending names in sorted order.
func requireColumns(t table.Table, names []string, what string) error {
	invalid := pkg.Filter(names, func(name string) bool {
		return !t.HasColumn(name)
	})
	if len(invalid) > 0 {
		slices.Sort(invalid)
		return columnsNotFoundError(what, invalid)
	}
	return nil
}

func requireRowColumns(t table.Table, row map[string]table.Value, what string) error {
	return requireColumns(t, pkg.Map[string, table.Value](row).Keys(), what)
}

// matchMask returns the indexes of every row satisfying the identifier:
// each named column must equal the given value with native equality.
func matchMask(t table.Table, identifier map[string]table.Value) []int {
	mask := []int{}
	for i, row := range t.Rows {
		matched := true
		for col, want := range identifier {
			if !row[col].Equal(want) {
				matched = false
				break
			}
		}
		if matched {
			mask = append(mask, i)
		}
	}
	return mask
}
