// Package fieldmap holds ordered, schema-less field maps whose values are a
// closed set of scalar kinds. Proposals persist their before/after snapshots
// as fieldmap.Map so the record schema can grow without touching them.
package fieldmap

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindBool
	KindNumber
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	default:
		return "unknown"
	}
}

// ErrUnsupportedValue is returned when decoding JSON objects or arrays as a Value.
var ErrUnsupportedValue = errors.New("unsupported field value")

// Value is a tagged scalar. The zero Value is null.
type Value struct {
	kind Kind
	str  string
	b    bool
	num  float64
}

func Null() Value            { return Value{} }
func String(s string) Value  { return Value{kind: KindString, str: s} }
func Bool(b bool) Value      { return Value{kind: KindBool, b: b} }
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }
func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsString() (string, bool) {
	return v.str, v.kind == KindString
}

func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

func (v Value) AsNumber() (float64, bool) {
	return v.num, v.kind == KindNumber
}

func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == other.str
	case KindBool:
		return v.b == other.b
	case KindNumber:
		return v.num == other.num
	default:
		return true
	}
}

// String renders the value for display. Null renders as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	default:
		return ""
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindBool:
		return json.Marshal(v.b)
	case KindNumber:
		return json.Marshal(v.num)
	default:
		return []byte("null"), nil
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	token, err := decoder.Token()
	if err != nil {
		return fmt.Errorf("decode field value: %w", err)
	}
	parsed, err := valueFromToken(token)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func valueFromToken(token json.Token) (Value, error) {
	switch t := token.(type) {
	case nil:
		return Null(), nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("%w: number %s", ErrUnsupportedValue, t.String())
		}
		return Number(n), nil
	case float64:
		return Number(t), nil
	case json.Delim:
		return Value{}, fmt.Errorf("%w: nested %s", ErrUnsupportedValue, t.String())
	default:
		return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedValue, token)
	}
}
