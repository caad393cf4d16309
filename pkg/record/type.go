package record

import (
	"sort"
	"strings"
)

// Field is one attribute of an object sub-schema, in establishment order.
type Field struct {
	Name string
	Type *Type
}

// Type is the inferred type established for an attribute from its first
// non-null value. Once established a Type never changes.
//
// For KindArray, Elem is the element type; a nil Elem means the element type
// was never observed (first value was an empty or all-null array) and any
// homogeneous element type is accepted. For KindObject, Fields holds the
// sub-schema in the order fields were first seen; object values may carry
// fields beyond the sub-schema, which stay unconstrained.
type Type struct {
	Kind   Kind
	Elem   *Type
	Fields []Field
}

// Scalar type singletons for the common tags.
var (
	TypeInteger = &Type{Kind: KindInt}
	TypeFloat   = &Type{Kind: KindFloat}
	TypeString  = &Type{Kind: KindString}
	TypeBoolean = &Type{Kind: KindBool}
)

// Infer derives the Type established by a value. A null value establishes
// nothing and returns (nil, nil). Array elements must share one type or
// inference fails with a conflict describing the disagreeing element.
func Infer(v Value) (*Type, error) {
	switch v.Kind {
	case KindNull:
		return nil, nil
	case KindBool:
		return TypeBoolean, nil
	case KindInt:
		return TypeInteger, nil
	case KindFloat:
		return TypeFloat, nil
	case KindString:
		return TypeString, nil
	case KindArray:
		elem, err := inferElem(v.Array)
		if err != nil {
			return nil, err
		}
		return &Type{Kind: KindArray, Elem: elem}, nil
	case KindObject:
		fields := make([]Field, 0, len(v.Object))
		for _, name := range sortedKeys(v.Object) {
			ft, err := Infer(v.Object[name])
			if err != nil {
				return nil, err
			}
			if ft == nil {
				// Null field: no type established for it yet.
				continue
			}
			fields = append(fields, Field{Name: name, Type: ft})
		}
		return &Type{Kind: KindObject, Fields: fields}, nil
	default:
		return nil, &UnsupportedValueError{Value: v}
	}
}

// inferElem derives the shared element type of an array. Null elements are
// skipped; they are legal under any element type. Returns nil if no element
// established a type.
func inferElem(elems []Value) (*Type, error) {
	var elem *Type
	for _, e := range elems {
		t, err := Infer(e)
		if err != nil {
			return nil, err
		}
		if t == nil {
			continue
		}
		if elem == nil {
			elem = t
			continue
		}
		if err := elem.Check(e); err != nil {
			return nil, err
		}
	}
	return elem, nil
}

// Check validates a value against the established type. Null is always
// accepted. A mismatch returns a *ValueMismatchError carrying the expected
// and offered tags; callers wrap it with attribute context.
func (t *Type) Check(v Value) error {
	if v.Kind == KindNull {
		return nil
	}
	switch t.Kind {
	case KindBool, KindInt, KindFloat, KindString:
		if v.Kind != t.Kind {
			return &ValueMismatchError{Expected: t.String(), Offered: tagOf(v)}
		}
		return nil
	case KindArray:
		if v.Kind != KindArray {
			return &ValueMismatchError{Expected: t.String(), Offered: tagOf(v)}
		}
		elem := t.Elem
		for _, e := range v.Array {
			if e.Kind == KindNull {
				continue
			}
			if elem == nil {
				// Element type never established; require homogeneity
				// within this value only.
				et, err := Infer(e)
				if err != nil {
					return err
				}
				elem = et
				continue
			}
			if err := elem.Check(e); err != nil {
				return &ValueMismatchError{Expected: t.String(), Offered: tagOf(v)}
			}
		}
		return nil
	case KindObject:
		if v.Kind != KindObject {
			return &ValueMismatchError{Expected: t.String(), Offered: tagOf(v)}
		}
		for _, f := range t.Fields {
			fv, ok := v.Object[f.Name]
			if !ok {
				continue
			}
			if err := f.Type.Check(fv); err != nil {
				return &ValueMismatchError{Expected: t.String(), Offered: tagOf(v)}
			}
		}
		return nil
	default:
		return &ValueMismatchError{Expected: t.String(), Offered: tagOf(v)}
	}
}

// Equal reports structural equality of two types.
func (t *Type) Equal(o *Type) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KindArray:
		return t.Elem.Equal(o.Elem)
	case KindObject:
		if len(t.Fields) != len(o.Fields) {
			return false
		}
		for i, f := range t.Fields {
			if f.Name != o.Fields[i].Name || !f.Type.Equal(o.Fields[i].Type) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Clone returns a deep copy of the type.
func (t *Type) Clone() *Type {
	if t == nil {
		return nil
	}
	cp := &Type{Kind: t.Kind, Elem: t.Elem.Clone()}
	if t.Fields != nil {
		cp.Fields = make([]Field, len(t.Fields))
		for i, f := range t.Fields {
			cp.Fields[i] = Field{Name: f.Name, Type: f.Type.Clone()}
		}
	}
	return cp
}

// String renders the schema tag: Integer, Float, String, Boolean,
// Array(Float), Array(Any), Object(city: String, zip: Integer).
func (t *Type) String() string {
	if t == nil {
		return "Any"
	}
	switch t.Kind {
	case KindArray:
		return "Array(" + t.Elem.String() + ")"
	case KindObject:
		var b strings.Builder
		b.WriteString("Object(")
		for i, f := range t.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(f.Name)
			b.WriteString(": ")
			b.WriteString(f.Type.String())
		}
		b.WriteString(")")
		return b.String()
	default:
		return t.Kind.String()
	}
}

// tagOf renders the tag a value would establish, for conflict messages.
// Unlike Infer it never fails; heterogeneous arrays report their literal shape.
func tagOf(v Value) string {
	t, err := Infer(v)
	if err != nil {
		if v.Kind == KindArray {
			return "Array(mixed)"
		}
		return v.Kind.String()
	}
	if t == nil {
		return "Null"
	}
	return t.String()
}

func sortedKeys(m map[string]Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Insertion order is not observable on a Go map; establishment order for
	// object sub-schemas is alphabetical by field name.
	sort.Strings(keys)
	return keys
}
