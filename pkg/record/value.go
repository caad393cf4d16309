package record

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies the runtime shape of a Value or the established shape of a
// Type. KindNull is only ever carried by values; null never establishes a type.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindObject
	KindArray
)

// String returns the type tag for the kind as it appears in schemas and
// reports. Composite kinds render without their element/field detail; use
// Type.String for the full tag.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBool:
		return "Boolean"
	case KindInt:
		return "Integer"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	case KindObject:
		return "Object"
	case KindArray:
		return "Array"
	default:
		return "Unknown"
	}
}

// Value is the single tagged union backing every record field. Exactly one of
// the payload fields is meaningful, selected by Kind. The zero Value is null.
type Value struct {
	Kind   Kind
	Bool   bool
	Int    int64
	Float  float64
	Str    string
	Object map[string]Value
	Array  []Value
}

// Null is the null Value.
var Null = Value{Kind: KindNull}

// BoolValue wraps a bool.
func BoolValue(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// IntValue wraps an integer.
func IntValue(i int64) Value { return Value{Kind: KindInt, Int: i} }

// FloatValue wraps a float.
func FloatValue(f float64) Value { return Value{Kind: KindFloat, Float: f} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// FromAny converts a Go native value into a Value. Supported inputs are nil,
// bool, all integer and float widths, string, json.Number, []any,
// map[string]any, Value itself, and nested combinations of these. Anything
// else fails with UnsupportedValueError.
func FromAny(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null, nil
	case Value:
		return x, nil
	case bool:
		return BoolValue(x), nil
	case int:
		return IntValue(int64(x)), nil
	case int8:
		return IntValue(int64(x)), nil
	case int16:
		return IntValue(int64(x)), nil
	case int32:
		return IntValue(int64(x)), nil
	case int64:
		return IntValue(x), nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return Null, &UnsupportedValueError{Value: v}
		}
		return IntValue(int64(x)), nil
	case uint8:
		return IntValue(int64(x)), nil
	case uint16:
		return IntValue(int64(x)), nil
	case uint32:
		return IntValue(int64(x)), nil
	case uint64:
		if x > math.MaxInt64 {
			return Null, &UnsupportedValueError{Value: v}
		}
		return IntValue(int64(x)), nil
	case float32:
		return FloatValue(float64(x)), nil
	case float64:
		return FloatValue(x), nil
	case string:
		return StringValue(x), nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return IntValue(i), nil
		}
		f, err := x.Float64()
		if err != nil {
			return Null, &UnsupportedValueError{Value: v}
		}
		return FloatValue(f), nil
	case []any:
		arr := make([]Value, len(x))
		for i, elem := range x {
			ev, err := FromAny(elem)
			if err != nil {
				return Null, err
			}
			arr[i] = ev
		}
		return Value{Kind: KindArray, Array: arr}, nil
	case []string:
		arr := make([]Value, len(x))
		for i, s := range x {
			arr[i] = StringValue(s)
		}
		return Value{Kind: KindArray, Array: arr}, nil
	case map[string]any:
		obj := make(map[string]Value, len(x))
		for k, elem := range x {
			ev, err := FromAny(elem)
			if err != nil {
				return Null, err
			}
			obj[k] = ev
		}
		return Value{Kind: KindObject, Object: obj}, nil
	default:
		return Null, &UnsupportedValueError{Value: v}
	}
}

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// Interface converts the value back to plain Go natives: nil, bool, int64,
// float64, string, []any, map[string]any.
func (v Value) Interface() any {
	switch v.Kind {
	case KindNull:
		return nil
	case KindBool:
		return v.Bool
	case KindInt:
		return v.Int
	case KindFloat:
		return v.Float
	case KindString:
		return v.Str
	case KindArray:
		out := make([]any, len(v.Array))
		for i, elem := range v.Array {
			out[i] = elem.Interface()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.Object))
		for k, elem := range v.Object {
			out[k] = elem.Interface()
		}
		return out
	default:
		return nil
	}
}

// Clone returns a deep copy. Composite payloads never share backing storage
// with the receiver.
func (v Value) Clone() Value {
	switch v.Kind {
	case KindArray:
		arr := make([]Value, len(v.Array))
		for i, elem := range v.Array {
			arr[i] = elem.Clone()
		}
		return Value{Kind: KindArray, Array: arr}
	case KindObject:
		obj := make(map[string]Value, len(v.Object))
		for k, elem := range v.Object {
			obj[k] = elem.Clone()
		}
		return Value{Kind: KindObject, Object: obj}
	default:
		return v
	}
}

// Equal reports deep equality. Int and Float values never compare equal even
// when numerically identical; the tag is part of the value.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindBool:
		return v.Bool == o.Bool
	case KindInt:
		return v.Int == o.Int
	case KindFloat:
		return v.Float == o.Float
	case KindString:
		return v.Str == o.Str
	case KindArray:
		if len(v.Array) != len(o.Array) {
			return false
		}
		for i := range v.Array {
			if !v.Array[i].Equal(o.Array[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.Object) != len(o.Object) {
			return false
		}
		for k, elem := range v.Object {
			other, ok := o.Object[k]
			if !ok || !elem.Equal(other) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String renders the value as a JSON literal: null, true, 12.345, "text",
// [1, 2], {"a": 1}. Object keys are sorted for stable output.
func (v Value) String() string {
	var b strings.Builder
	v.writeTo(&b)
	return b.String()
}

func (v Value) writeTo(b *strings.Builder) {
	switch v.Kind {
	case KindNull:
		b.WriteString("null")
	case KindBool:
		b.WriteString(strconv.FormatBool(v.Bool))
	case KindInt:
		b.WriteString(strconv.FormatInt(v.Int, 10))
	case KindFloat:
		b.WriteString(strconv.FormatFloat(v.Float, 'g', -1, 64))
	case KindString:
		b.WriteString(strconv.Quote(v.Str))
	case KindArray:
		b.WriteByte('[')
		for i, elem := range v.Array {
			if i > 0 {
				b.WriteString(", ")
			}
			elem.writeTo(b)
		}
		b.WriteByte(']')
	case KindObject:
		keys := make([]string, 0, len(v.Object))
		for k := range v.Object {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.Quote(k))
			b.WriteString(": ")
			v.Object[k].writeTo(b)
		}
		b.WriteByte('}')
	}
}

// MarshalJSON encodes the value as its natural JSON representation.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.Bool)
	case KindInt:
		return json.Marshal(v.Int)
	case KindFloat:
		return json.Marshal(v.Float)
	case KindString:
		return json.Marshal(v.Str)
	case KindArray:
		if v.Array == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.Array)
	case KindObject:
		if v.Object == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(v.Object)
	default:
		return nil, fmt.Errorf("unknown value kind %d", v.Kind)
	}
}
