package table

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

type ValueKind int

const (
	KindNull ValueKind = iota
	KindBool
	KindNumber
	KindString
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	}
	return "unknown"
}

// Value is a single table cell: null, bool, number or string.
// Numbers are float64 because the wire format is JSON.
type Value struct {
	kind ValueKind
	b    bool
	n    float64
	s    string
}

func NullValue() Value            { return Value{kind: KindNull} }
func BoolValue(b bool) Value      { return Value{kind: KindBool, b: b} }
func NumberValue(n float64) Value { return Value{kind: KindNumber, n: n} }
func StringValue(s string) Value  { return Value{kind: KindString, s: s} }

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) IsNull() bool    { return v.kind == KindNull }
func (v Value) Bool() bool      { return v.b }
func (v Value) Number() float64 { return v.n }
func (v Value) Str() string     { return v.s }

// Equal compares values with native equality: kinds must match and no
// cross-type coercion happens. NaN is treated as equal to NaN so that
// tables stay comparable after operations that can produce it.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindNumber:
		if math.IsNaN(v.n) && math.IsNaN(o.n) {
			return true
		}
		return v.n == o.n
	case KindString:
		return v.s == o.s
	}
	return false
}

// Text renders the value for string operations: null becomes the empty
// string, bools "true"/"false", numbers their shortest decimal form.
func (v Value) Text() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return formatNumber(v.n)
	case KindString:
		return v.s
	}
	return ""
}

// Tokens used to round-trip non-finite numbers through JSON.
// A genuine string cell holding one of these revives as a number;
// that ambiguity is the cost of keeping Inf/NaN representable.
const (
	tokenNaN    = "NaN"
	tokenInf    = "Infinity"
	tokenNegInf = "-Infinity"
)

func formatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return tokenNaN
	case math.IsInf(n, 1):
		return tokenInf
	case math.IsInf(n, -1):
		return tokenNegInf
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindNumber:
		if math.IsNaN(v.n) || math.IsInf(v.n, 0) {
			return json.Marshal(formatNumber(v.n))
		}
		return json.Marshal(v.n)
	case KindString:
		return json.Marshal(v.s)
	}
	return nil, fmt.Errorf("unknown value kind %d", v.kind)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	val, err := FromAny(raw)
	if err != nil {
		return err
	}
	*v = val
	return nil
}

// FromAny converts a decoded JSON scalar to a Value.
// Arrays and objects are not valid cell values.
func FromAny(raw any) (Value, error) {
	switch raw := raw.(type) {
	case nil:
		return NullValue(), nil
	case bool:
		return BoolValue(raw), nil
	case float64:
		return NumberValue(raw), nil
	case int:
		return NumberValue(float64(raw)), nil
	case string:
		switch raw {
		case tokenNaN:
			return NumberValue(math.NaN()), nil
		case tokenInf:
			return NumberValue(math.Inf(1)), nil
		case tokenNegInf:
			return NumberValue(math.Inf(-1)), nil
		}
		return StringValue(raw), nil
	}
	return Value{}, fmt.Errorf("unsupported cell value of type %T", raw)
}
