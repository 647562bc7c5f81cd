package query

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/tablecraft/tablecraft/internal/table"
	"github.com/tablecraft/tablecraft/pkg"
)

type Formula string

const (
	FormulaConcat   Formula = "concat"
	FormulaSum      Formula = "sum"
	FormulaMultiply Formula = "multiply"
	FormulaDivide   Formula = "divide"
	FormulaSubtract Formula = "subtract"
)

// ColumnParams only applies to concat. Separator distinguishes "unset"
// (single space) from an explicit empty string, hence the pointer.
type ColumnParams struct {
	Separator      *string `json:"separator"`
	Prefix         string  `json:"prefix"`
	Suffix         string  `json:"suffix"`
	FormatTemplate string  `json:"format_template"`
}

func (p *ColumnParams) separator() string {
	if p == nil || p.Separator == nil {
		return " "
	}
	return *p.Separator
}

// AddColumn appends a computed column. Values are derived row-wise from
// the reference columns; numeric formulas never coerce, they fail on
// the first non-number. Division follows IEEE semantics: x/0 is signed
// infinity and 0/0 is NaN, both representable on the wire.
func AddColumn(t table.Table, name string, formula Formula, refs []string, params *ColumnParams) (table.Table, error) {
	if err := requireColumns(t, refs, "reference"); err != nil {
		return table.Table{}, err
	}
	if t.HasColumn(name) {
		return table.Table{}, columnExistsError(name)
	}

	switch formula {
	case FormulaDivide, FormulaSubtract:
		if len(refs) != 2 {
			return table.Table{}, NewQueryError(http.StatusBadRequest, ErrInvalidArgument,
				fmt.Sprintf("%s requires exactly 2 reference columns, got %d", formula, len(refs)))
		}
	case FormulaConcat, FormulaSum, FormulaMultiply:
		if len(refs) == 0 {
			return table.Table{}, NewQueryError(http.StatusBadRequest, ErrInvalidArgument,
				fmt.Sprintf("%s requires at least 1 reference column", formula))
		}
	default:
		return table.Table{}, NewQueryError(http.StatusBadRequest, ErrUnsupportedOperation,
			fmt.Sprintf("Unsupported formula: %s", formula))
	}

	out := t.Clone()
	for i, row := range out.Rows {
		v, err := evalFormula(formula, row, i, refs, params)
		if err != nil {
			return table.Table{}, err
		}
		row[name] = v
	}
	out.Columns = append(out.Columns, name)
	return out, nil
}

func evalFormula(formula Formula, row table.Row, idx int, refs []string, params *ColumnParams) (table.Value, error) {
	switch formula {
	case FormulaConcat:
		texts := pkg.MapSlice(refs, func(col string) string {
			return row[col].Text()
		})
		if params != nil && params.FormatTemplate != "" {
			s, err := expandTemplate(params.FormatTemplate, texts)
			if err != nil {
				return table.Value{}, err
			}
			return table.StringValue(s), nil
		}
		joined := strings.Join(texts, params.separator())
		if params != nil {
			joined = params.Prefix + joined + params.Suffix
		}
		return table.StringValue(joined), nil

	case FormulaSum, FormulaMultiply:
		acc := 0.0
		if formula == FormulaMultiply {
			acc = 1.0
		}
		for _, col := range refs {
			n, err := numberAt(row, col, idx)
			if err != nil {
				return table.Value{}, err
			}
			if formula == FormulaMultiply {
				acc *= n
			} else {
				acc += n
			}
		}
		return table.NumberValue(acc), nil

	case FormulaDivide, FormulaSubtract:
		a, err := numberAt(row, refs[0], idx)
		if err != nil {
			return table.Value{}, err
		}
		b, err := numberAt(row, refs[1], idx)
		if err != nil {
			return table.Value{}, err
		}
		if formula == FormulaDivide {
			return table.NumberValue(a / b), nil
		}
		return table.NumberValue(a - b), nil
	}

	return table.Value{}, NewQueryError(http.StatusBadRequest, ErrUnsupportedOperation,
		fmt.Sprintf("Unsupported formula: %s", formula))
}

func numberAt(row table.Row, col string, idx int) (float64, error) {
	v := row[col]
	if v.Kind() != table.KindNumber {
		return 0, typeMismatchError(col, idx, v.Kind().String())
	}
	return v.Number(), nil
}

// expandTemplate substitutes values into positional placeholders: "{}"
// consumes the next value, "{2}" picks by index, "{{" and "}}" escape
// literal braces.
func expandTemplate(template string, values []string) (string, error) {
	var b strings.Builder
	next := 0
	for i := 0; i < len(template); i++ {
		c := template[i]
		switch {
		case c == '{' && i+1 < len(template) && template[i+1] == '{':
			b.WriteByte('{')
			i++
		case c == '}' && i+1 < len(template) && template[i+1] == '}':
			b.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(template[i:], '}')
			if end < 0 {
				b.WriteByte(c)
				continue
			}
			body := template[i+1 : i+end]
			pos := next
			if body != "" {
				n, err := strconv.Atoi(body)
				if err != nil {
					// not a positional placeholder, keep it verbatim
					b.WriteByte(c)
					continue
				}
				pos = n
			} else {
				next++
			}
			if pos < 0 || pos >= len(values) {
				return "", NewQueryError(http.StatusBadRequest, ErrInvalidArgument,
					fmt.Sprintf("Format template references value %d but only %d reference columns given", pos, len(values)))
			}
			b.WriteString(values[pos])
			i += end
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

// RenameColumn renames in place in the column list and re-keys every
// record. Renaming a column to itself is a no-op, not a collision.
func RenameColumn(t table.Table, oldName, newName string) (table.Table, error) {
	if !t.HasColumn(oldName) {
		return table.Table{}, columnNotFoundError(oldName)
	}
	if newName == oldName {
		return t.Clone(), nil
	}
	if t.HasColumn(newName) {
		return table.Table{}, columnExistsError(newName)
	}

	out := t.Clone()
	out.Columns[slices.Index(out.Columns, oldName)] = newName
	for _, row := range out.Rows {
		row[newName] = row[oldName]
		delete(row, oldName)
	}
	return out, nil
}
