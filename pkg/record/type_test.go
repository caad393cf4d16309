package record

import (
	"testing"
)

func mustValue(t *testing.T, in any) Value {
	t.Helper()
	v, err := FromAny(in)
	if err != nil {
		t.Fatalf("FromAny(%v) failed: %v", in, err)
	}
	return v
}

func TestInfer_Scalars(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{true, "Boolean"},
		{42, "Integer"},
		{12.345, "Float"},
		{"hello", "String"},
	}
	for _, tt := range tests {
		got, err := Infer(mustValue(t, tt.in))
		if err != nil {
			t.Fatalf("Infer(%v) failed: %v", tt.in, err)
		}
		if got.String() != tt.want {
			t.Errorf("Infer(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestInfer_NullEstablishesNothing(t *testing.T) {
	got, err := Infer(Null)
	if err != nil {
		t.Fatalf("Infer(null) failed: %v", err)
	}
	if got != nil {
		t.Errorf("Infer(null) = %s, want nil", got)
	}
}

func TestInfer_Arrays(t *testing.T) {
	got, err := Infer(mustValue(t, []any{1.5, 2.5}))
	if err != nil {
		t.Fatalf("Infer failed: %v", err)
	}
	if got.String() != "Array(Float)" {
		t.Errorf("got %s, want Array(Float)", got)
	}

	// Empty array: element type stays open.
	got, err = Infer(mustValue(t, []any{}))
	if err != nil {
		t.Fatalf("Infer failed: %v", err)
	}
	if got.String() != "Array(Any)" {
		t.Errorf("got %s, want Array(Any)", got)
	}

	// Null elements are skipped during element inference.
	got, err = Infer(mustValue(t, []any{nil, "x", nil}))
	if err != nil {
		t.Fatalf("Infer failed: %v", err)
	}
	if got.String() != "Array(String)" {
		t.Errorf("got %s, want Array(String)", got)
	}
}

func TestInfer_HeterogeneousArrayFails(t *testing.T) {
	_, err := Infer(mustValue(t, []any{1, "two"}))
	if err == nil {
		t.Fatal("expected inference to fail for mixed-type array")
	}
}

func TestInfer_ObjectFieldsSortedAndNullSkipped(t *testing.T) {
	got, err := Infer(mustValue(t, map[string]any{"zip": 10115, "city": "Berlin", "note": nil}))
	if err != nil {
		t.Fatalf("Infer failed: %v", err)
	}
	if got.String() != "Object(city: String, zip: Integer)" {
		t.Errorf("got %s", got)
	}
}

func TestCheck_NullAlwaysAccepted(t *testing.T) {
	for _, typ := range []*Type{TypeInteger, TypeFloat, TypeString, TypeBoolean} {
		if err := typ.Check(Null); err != nil {
			t.Errorf("%s.Check(null) = %v, want nil", typ, err)
		}
	}
}

func TestCheck_ScalarMismatch(t *testing.T) {
	err := TypeString.Check(IntValue(5))
	if err == nil {
		t.Fatal("expected mismatch")
	}
	mismatch, ok := err.(*ValueMismatchError)
	if !ok {
		t.Fatalf("expected *ValueMismatchError, got %T", err)
	}
	if mismatch.Expected != "String" || mismatch.Offered != "Integer" {
		t.Errorf("got expected=%s offered=%s", mismatch.Expected, mismatch.Offered)
	}
}

func TestCheck_IntFloatNeverInterchange(t *testing.T) {
	if err := TypeInteger.Check(FloatValue(1)); err == nil {
		t.Error("Integer must reject Float")
	}
	if err := TypeFloat.Check(IntValue(1)); err == nil {
		t.Error("Float must reject Integer")
	}
}

func TestCheck_Arrays(t *testing.T) {
	arr := &Type{Kind: KindArray, Elem: TypeFloat}

	if err := arr.Check(mustValue(t, []any{1.5, nil, 2.5})); err != nil {
		t.Errorf("valid array rejected: %v", err)
	}
	if err := arr.Check(mustValue(t, []any{})); err != nil {
		t.Errorf("empty array rejected: %v", err)
	}
	if err := arr.Check(mustValue(t, []any{1.5, "x"})); err == nil {
		t.Error("array with wrong element type accepted")
	}
	if err := arr.Check(StringValue("not an array")); err == nil {
		t.Error("non-array accepted")
	}
}

func TestCheck_OpenArrayRequiresHomogeneity(t *testing.T) {
	open := &Type{Kind: KindArray}

	if err := open.Check(mustValue(t, []any{1, 2})); err != nil {
		t.Errorf("homogeneous array rejected: %v", err)
	}
	if err := open.Check(mustValue(t, []any{"a", "b"})); err != nil {
		t.Errorf("homogeneous array rejected: %v", err)
	}
	if err := open.Check(mustValue(t, []any{1, "two"})); err == nil {
		t.Error("mixed array accepted under open element type")
	}
}

func TestCheck_ObjectKnownFieldsOnly(t *testing.T) {
	obj := &Type{Kind: KindObject, Fields: []Field{{Name: "city", Type: TypeString}}}

	if err := obj.Check(mustValue(t, map[string]any{"city": "Berlin"})); err != nil {
		t.Errorf("valid object rejected: %v", err)
	}
	// Fields beyond the sub-schema are unconstrained.
	if err := obj.Check(mustValue(t, map[string]any{"city": "Berlin", "extra": 42})); err != nil {
		t.Errorf("object with extra field rejected: %v", err)
	}
	// A known field missing entirely is fine.
	if err := obj.Check(mustValue(t, map[string]any{"extra": 42})); err != nil {
		t.Errorf("object without known field rejected: %v", err)
	}
	if err := obj.Check(mustValue(t, map[string]any{"city": 99})); err == nil {
		t.Error("object with mistyped known field accepted")
	}
}

func TestType_Equal(t *testing.T) {
	a := &Type{Kind: KindArray, Elem: TypeFloat}
	b := &Type{Kind: KindArray, Elem: TypeFloat}
	c := &Type{Kind: KindArray, Elem: TypeInteger}
	open := &Type{Kind: KindArray}

	if !a.Equal(b) {
		t.Error("identical array types unequal")
	}
	if a.Equal(c) {
		t.Error("different element types equal")
	}
	if a.Equal(open) {
		t.Error("closed and open array types equal")
	}
}

func TestType_CloneIndependent(t *testing.T) {
	orig := &Type{Kind: KindObject, Fields: []Field{{Name: "a", Type: TypeString}}}
	cp := orig.Clone()
	cp.Fields[0].Name = "b"
	if orig.Fields[0].Name != "a" {
		t.Error("mutating the clone leaked into the original")
	}
}

func TestType_String(t *testing.T) {
	tests := []struct {
		t    *Type
		want string
	}{
		{TypeInteger, "Integer"},
		{TypeBoolean, "Boolean"},
		{&Type{Kind: KindArray, Elem: TypeFloat}, "Array(Float)"},
		{&Type{Kind: KindArray}, "Array(Any)"},
		{&Type{Kind: KindArray, Elem: &Type{Kind: KindArray, Elem: TypeString}}, "Array(Array(String))"},
		{&Type{Kind: KindObject, Fields: []Field{
			{Name: "city", Type: TypeString},
			{Name: "zip", Type: TypeInteger},
		}}, "Object(city: String, zip: Integer)"},
	}
	for _, tt := range tests {
		if got := tt.t.String(); got != tt.want {
			t.Errorf("String() = %s, want %s", got, tt.want)
		}
	}
}
