package query

import (
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/araddon/dateparse"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tablecraft/tablecraft/internal/table"
)

type Transformation string

const (
	TransformUppercase  Transformation = "uppercase"
	TransformLowercase  Transformation = "lowercase"
	TransformTitleCase  Transformation = "titleCase"
	TransformRound      Transformation = "round"
	TransformFormatDate Transformation = "formatDate"
)

type TransformParams struct {
	// titleCase: title-case only the segment at PartIndex after
	// splitting on SplitOn. Without SplitOn the whole value is cased.
	SplitOn   string `json:"split_on"`
	PartIndex *int   `json:"part_index"`
	// round
	Decimals int `json:"decimals"`
	// formatDate, tokens like YYYY-MM-DD
	Format string `json:"format"`
}

const defaultDateFormat = "YYYY-MM-DD"

// TransformColumn rewrites one column value by value. Case transforms
// stringify first; round demands numbers and rounds half to even;
// formatDate accepts most common date spellings and reformats them.
func TransformColumn(t table.Table, column string, transformation Transformation, params *TransformParams) (table.Table, error) {
	if !t.HasColumn(column) {
		return table.Table{}, columnNotFoundError(column)
	}
	if params == nil {
		params = &TransformParams{}
	}

	var apply func(v table.Value, idx int) (table.Value, error)

	switch transformation {
	case TransformUppercase:
		apply = func(v table.Value, _ int) (table.Value, error) {
			return table.StringValue(strings.ToUpper(v.Text())), nil
		}

	case TransformLowercase:
		apply = func(v table.Value, _ int) (table.Value, error) {
			return table.StringValue(strings.ToLower(v.Text())), nil
		}

	case TransformTitleCase:
		caser := cases.Title(language.Und)
		apply = func(v table.Value, _ int) (table.Value, error) {
			text := v.Text()
			if params.SplitOn == "" {
				return table.StringValue(caser.String(text)), nil
			}
			idx := -1
			if params.PartIndex != nil {
				idx = *params.PartIndex
			}
			parts := strings.Split(text, params.SplitOn)
			if idx >= 0 && idx < len(parts) {
				parts[idx] = caser.String(strings.TrimSpace(parts[idx]))
			}
			return table.StringValue(strings.Join(parts, params.SplitOn)), nil
		}

	case TransformRound:
		factor := math.Pow(10, float64(params.Decimals))
		apply = func(v table.Value, idx int) (table.Value, error) {
			if v.Kind() != table.KindNumber {
				return table.Value{}, typeMismatchError(column, idx, v.Kind().String())
			}
			return table.NumberValue(math.RoundToEven(v.Number()*factor) / factor), nil
		}

	case TransformFormatDate:
		format := params.Format
		if format == "" {
			format = defaultDateFormat
		}
		layout := dateLayout(format)
		apply = func(v table.Value, idx int) (table.Value, error) {
			text := v.Text()
			parsed, err := dateparse.ParseAny(text)
			if err != nil {
				return table.Value{}, NewQueryError(http.StatusUnprocessableEntity, ErrParse,
					fmt.Sprintf("Cannot parse %q as a date in row %d", text, idx))
			}
			return table.StringValue(parsed.Format(layout)), nil
		}

	default:
		return table.Table{}, NewQueryError(http.StatusBadRequest, ErrUnsupportedOperation,
			fmt.Sprintf("Unsupported transformation: %s", transformation))
	}

	out := t.Clone()
	for i, row := range out.Rows {
		v, err := apply(row[column], i)
		if err != nil {
			return table.Table{}, err
		}
		row[column] = v
	}
	return out, nil
}

var date_layout_replacer = strings.NewReplacer(
	"YYYY", "2006",
	"YY", "06",
	"MM", "01",
	"DD", "02",
	"HH", "15",
	"mm", "04",
	"ss", "05",
)

func dateLayout(format string) string {
	return date_layout_replacer.Replace(format)
}
