// JSON encoding for type tags and schema-driven value decoding. The persisted
// document stores scalar tags as strings and composite tags as single-key
// objects, e.g. {"Array": "Float"} and {"Object": {"city": "String"}}.
// Object sub-schemas are order-preserving, so decoding walks tokens rather
// than unmarshalling into maps.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// MarshalJSON encodes the type tag, preserving object field order.
func (t *Type) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	if err := t.encodeJSON(&b); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func (t *Type) encodeJSON(b *bytes.Buffer) error {
	if t == nil {
		b.WriteString("null")
		return nil
	}
	switch t.Kind {
	case KindBool, KindInt, KindFloat, KindString:
		fmt.Fprintf(b, "%q", t.Kind.String())
		return nil
	case KindArray:
		b.WriteString(`{"Array":`)
		if err := t.Elem.encodeJSON(b); err != nil {
			return err
		}
		b.WriteByte('}')
		return nil
	case KindObject:
		b.WriteString(`{"Object":{`)
		for i, f := range t.Fields {
			if i > 0 {
				b.WriteByte(',')
			}
			name, err := json.Marshal(f.Name)
			if err != nil {
				return err
			}
			b.Write(name)
			b.WriteByte(':')
			if err := f.Type.encodeJSON(b); err != nil {
				return err
			}
		}
		b.WriteString("}}")
		return nil
	default:
		return fmt.Errorf("unknown type kind %d", t.Kind)
	}
}

// ParseTypeJSON decodes a type tag from its JSON encoding.
func ParseTypeJSON(raw json.RawMessage) (*Type, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	t, err := decodeType(dec)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func decodeType(dec *json.Decoder) (*Type, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch v := tok.(type) {
	case nil:
		return nil, nil
	case string:
		switch v {
		case "Integer":
			return TypeInteger, nil
		case "Float":
			return TypeFloat, nil
		case "String":
			return TypeString, nil
		case "Boolean":
			return TypeBoolean, nil
		default:
			return nil, fmt.Errorf("unknown type tag %q", v)
		}
	case json.Delim:
		if v != '{' {
			return nil, fmt.Errorf("unexpected token %v in type tag", v)
		}
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v in type tag", keyTok)
		}
		var t *Type
		switch key {
		case "Array":
			elem, err := decodeType(dec)
			if err != nil {
				return nil, err
			}
			t = &Type{Kind: KindArray, Elem: elem}
		case "Object":
			fields, err := decodeObjectFields(dec)
			if err != nil {
				return nil, err
			}
			t = &Type{Kind: KindObject, Fields: fields}
		default:
			return nil, fmt.Errorf("unknown composite type tag %q", key)
		}
		// Closing brace of the single-key wrapper.
		if end, err := dec.Token(); err != nil {
			return nil, err
		} else if d, ok := end.(json.Delim); !ok || d != '}' {
			return nil, fmt.Errorf("unexpected token %v after %s tag", end, key)
		}
		return t, nil
	default:
		return nil, fmt.Errorf("unexpected token %v in type tag", tok)
	}
}

func decodeObjectFields(dec *json.Decoder) ([]Field, error) {
	open, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := open.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("unexpected token %v in object sub-schema", open)
	}
	var fields []Field
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v in object sub-schema", keyTok)
		}
		ft, err := decodeType(dec)
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Name: name, Type: ft})
	}
	if _, err := dec.Token(); err != nil { // closing '}'
		return nil, err
	}
	return fields, nil
}

// DecodeValue decodes a JSON value according to an established type so that
// Integer and Float survive round trips. A nil type decodes by JSON shape:
// numbers without a fraction or exponent become Integer, others Float.
func DecodeValue(raw json.RawMessage, t *Type) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return Null, err
	}
	return decodeShaped(v, t)
}

func decodeShaped(v any, t *Type) (Value, error) {
	if v == nil {
		return Null, nil
	}
	switch x := v.(type) {
	case bool:
		return BoolValue(x), nil
	case string:
		return StringValue(x), nil
	case json.Number:
		return decodeNumber(x, t)
	case []any:
		var elem *Type
		if t != nil && t.Kind == KindArray {
			elem = t.Elem
		}
		arr := make([]Value, len(x))
		for i, e := range x {
			ev, err := decodeShaped(e, elem)
			if err != nil {
				return Null, err
			}
			arr[i] = ev
		}
		return Value{Kind: KindArray, Array: arr}, nil
	case map[string]any:
		obj := make(map[string]Value, len(x))
		for k, e := range x {
			var ft *Type
			if t != nil && t.Kind == KindObject {
				ft = t.fieldType(k)
			}
			ev, err := decodeShaped(e, ft)
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

func decodeNumber(n json.Number, t *Type) (Value, error) {
	if t != nil {
		switch t.Kind {
		case KindInt:
			i, err := n.Int64()
			if err != nil {
				return Null, fmt.Errorf("integer attribute holds %s: %w", n.String(), err)
			}
			return IntValue(i), nil
		case KindFloat:
			f, err := n.Float64()
			if err != nil {
				return Null, err
			}
			return FloatValue(f), nil
		}
	}
	if !strings.ContainsAny(n.String(), ".eE") {
		if i, err := n.Int64(); err == nil {
			return IntValue(i), nil
		}
	}
	f, err := n.Float64()
	if err != nil {
		return Null, err
	}
	return FloatValue(f), nil
}

func (t *Type) fieldType(name string) *Type {
	for _, f := range t.Fields {
		if f.Name == name {
			return f.Type
		}
	}
	return nil
}
