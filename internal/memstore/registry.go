package memstore

import (
	"errors"

	"github.com/SkPhilipp/records/pkg/record"
)

// registry owns the record-type definitions and their per-attribute inferred
// types. Types and attributes only ever grow during a session; the only
// removals happen inside undo, which replays the mutation log backwards.
type registry struct {
	types map[string]*recordType
	order []string
}

// recordType is one named schema: an ordered set of attribute-to-type
// bindings. The reserved id attribute is seeded at creation with fixed type
// Integer and never appears in the mutation log.
type recordType struct {
	name  string
	attrs map[string]*record.Type
	order []string
}

func newRegistry() *registry {
	return &registry{types: make(map[string]*recordType)}
}

func newRecordType(name string) *recordType {
	rt := &recordType{
		name:  name,
		attrs: make(map[string]*record.Type),
	}
	rt.attrs[record.IDAttribute] = record.TypeInteger
	rt.order = append(rt.order, record.IDAttribute)
	return rt
}

// ensure returns the type with the given name, creating it if needed.
// The second result reports whether the type was created by this call.
func (r *registry) ensure(name string) (*recordType, bool) {
	if rt, ok := r.types[name]; ok {
		return rt, false
	}
	rt := newRecordType(name)
	r.types[name] = rt
	r.order = append(r.order, name)
	return rt, true
}

func (r *registry) get(name string) *recordType {
	return r.types[name]
}

// remove deletes a type definition. Only reachable from undo, which
// guarantees the type holds no records and no inferred attributes.
func (r *registry) remove(name string) {
	delete(r.types, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// check validates a value against the attribute's established type without
// mutating anything. For an unseen attribute it returns the type the value
// would establish (nil for null, which establishes nothing). Writes to the
// reserved id attribute fail with *record.ReservedAttributeError.
func (rt *recordType) check(attr string, v record.Value) (*record.Type, error) {
	if attr == record.IDAttribute {
		return nil, &record.ReservedAttributeError{Attribute: attr}
	}
	if established, ok := rt.attrs[attr]; ok {
		if err := established.Check(v); err != nil {
			return nil, conflict(rt.name, attr, established, v, err)
		}
		return nil, nil
	}
	inferred, err := record.Infer(v)
	if err != nil {
		return nil, conflict(rt.name, attr, nil, v, err)
	}
	return inferred, nil
}

// establish records an attribute's inferred type. The caller must have
// validated the value with check first.
func (rt *recordType) establish(attr string, t *record.Type) {
	rt.attrs[attr] = t
	rt.order = append(rt.order, attr)
}

// removeAttr drops an attribute's established type. Only reachable from undo.
func (rt *recordType) removeAttr(attr string) {
	delete(rt.attrs, attr)
	for i, n := range rt.order {
		if n == attr {
			rt.order = append(rt.order[:i], rt.order[i+1:]...)
			break
		}
	}
}

func (rt *recordType) clone() *recordType {
	cp := &recordType{
		name:  rt.name,
		attrs: make(map[string]*record.Type, len(rt.attrs)),
		order: append([]string(nil), rt.order...),
	}
	for name, t := range rt.attrs {
		cp.attrs[name] = t.Clone()
	}
	return cp
}

func (r *registry) clone() *registry {
	cp := &registry{
		types: make(map[string]*recordType, len(r.types)),
		order: append([]string(nil), r.order...),
	}
	for name, rt := range r.types {
		cp.types[name] = rt.clone()
	}
	return cp
}

// structure renders the full schema as type name -> attribute -> type tag.
func (r *registry) structure() map[string]map[string]string {
	out := make(map[string]map[string]string, len(r.types))
	for _, name := range r.order {
		rt := r.types[name]
		attrs := make(map[string]string, len(rt.attrs))
		for attr, t := range rt.attrs {
			attrs[attr] = t.String()
		}
		out[name] = attrs
	}
	return out
}

// conflict builds the TypeConflictError for a failed attribute write.
func conflict(typeName, attr string, established *record.Type, v record.Value, cause error) error {
	establishedTag := ""
	if established != nil {
		establishedTag = established.String()
	}
	offered := ""
	var mismatch *record.ValueMismatchError
	if errors.As(cause, &mismatch) {
		offered = mismatch.Offered
		if establishedTag == "" {
			establishedTag = mismatch.Expected
		}
	}
	if offered == "" {
		offered = v.Kind.String()
	}
	return &record.TypeConflictError{
		TypeName:    typeName,
		Attribute:   attr,
		Established: establishedTag,
		Offered:     offered,
	}
}
