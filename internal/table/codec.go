package table

import (
	"encoding/json"
	"fmt"
	"strings"
)

// The wire format is pandas-style "split" JSON:
//
//	{"columns": [...], "index": [0, 1, ...], "data": [[...], ...]}
//
// The index array is a row position marker. It is written on encode
// and regenerated, never trusted, on decode.
type splitDoc struct {
	Columns []string  `json:"columns"`
	Index   []int     `json:"index"`
	Data    [][]Value `json:"data"`
}

type DecodeError struct {
	reason string
	err    error
}

func (e *DecodeError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("decoding table: %s: %s", e.reason, e.err)
	}
	return "decoding table: " + e.reason
}

func (e *DecodeError) Unwrap() error { return e.err }

func Encode(t Table) (string, error) {
	doc := splitDoc{
		Columns: t.Columns,
		Index:   make([]int, len(t.Rows)),
		Data:    make([][]Value, len(t.Rows)),
	}
	if doc.Columns == nil {
		doc.Columns = []string{}
	}
	for i, row := range t.Rows {
		doc.Index[i] = i
		cells := make([]Value, len(t.Columns))
		for j, col := range t.Columns {
			cells[j] = row[col]
		}
		doc.Data[i] = cells
	}

	buf, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// Decode parses split-format text into a Table. Clients routinely send
// the payload double-escaped or wrapped in an extra layer of quotes, so
// a failed parse gets one retry on the unescaped text.
func Decode(text string) (Table, error) {
	t, err := decodeSplit(text)
	if err == nil {
		return t, nil
	}

	cleaned := strings.ReplaceAll(text, `\"`, `"`)
	cleaned = strings.ReplaceAll(cleaned, `\\`, `\`)
	if len(cleaned) >= 2 && strings.HasPrefix(cleaned, `"`) && strings.HasSuffix(cleaned, `"`) {
		cleaned = cleaned[1 : len(cleaned)-1]
	}

	t, retry_err := decodeSplit(cleaned)
	if retry_err != nil {
		return Table{}, &DecodeError{reason: "not valid split-format JSON", err: retry_err}
	}
	return t, nil
}

func decodeSplit(text string) (Table, error) {
	var doc splitDoc
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return Table{}, err
	}
	if doc.Columns == nil {
		return Table{}, fmt.Errorf("missing columns array")
	}

	rows := make([]Row, len(doc.Data))
	for i, cells := range doc.Data {
		if len(cells) != len(doc.Columns) {
			return Table{}, fmt.Errorf("row %d has %d values, want %d", i, len(cells), len(doc.Columns))
		}
		row := make(Row, len(doc.Columns))
		for j, col := range doc.Columns {
			row[col] = cells[j]
		}
		rows[i] = row
	}

	t, err := NewTable(doc.Columns, rows)
	if err != nil {
		return Table{}, err
	}
	return t, nil
}
