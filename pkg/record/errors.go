package record

import (
	"errors"
	"fmt"
)

// Store lifecycle errors.
var (
	ErrStoreClosed = errors.New("store is closed")
)

// IDAttribute is the reserved per-record identifier attribute. It is assigned
// by the store and has fixed type Integer; external writes are rejected.
const IDAttribute = "_id"

// TypeConflictError reports a write whose value disagrees with the type
// already established for the attribute.
type TypeConflictError struct {
	TypeName    string
	Attribute   string
	Established string
	Offered     string
}

func (e *TypeConflictError) Error() string {
	return fmt.Sprintf("attribute %q in type %q expects %s, got %s",
		e.Attribute, e.TypeName, e.Established, e.Offered)
}

// ReservedAttributeError reports an external write to a reserved attribute.
type ReservedAttributeError struct {
	Attribute string
}

func (e *ReservedAttributeError) Error() string {
	return fmt.Sprintf("attribute %q is reserved and managed by the store", e.Attribute)
}

// NotFoundError reports an operation referencing an unknown record type,
// record id, or attribute. TypeUnknown is set when the type itself was never
// created; Attribute is empty unless an attribute lookup failed.
type NotFoundError struct {
	TypeName    string
	TypeUnknown bool
	ID          int64
	Attribute   string
}

func (e *NotFoundError) Error() string {
	if e.TypeUnknown {
		return fmt.Sprintf("unknown record type %q", e.TypeName)
	}
	if e.Attribute != "" {
		return fmt.Sprintf("attribute %q not set on %s record %d", e.Attribute, e.TypeName, e.ID)
	}
	return fmt.Sprintf("no %s record with id %d", e.TypeName, e.ID)
}

// CorruptStateError reports persisted state that could not be read back. It
// is fatal to construction; the store never silently discards existing data.
type CorruptStateError struct {
	Path string
	Err  error
}

func (e *CorruptStateError) Error() string {
	return fmt.Sprintf("corrupt state at %s: %v", e.Path, e.Err)
}

func (e *CorruptStateError) Unwrap() error { return e.Err }

// UnsupportedValueError reports a Go value that cannot be represented as a
// Value (not JSON-native).
type UnsupportedValueError struct {
	Value any
}

func (e *UnsupportedValueError) Error() string {
	return fmt.Sprintf("unsupported value of type %T: values must be null, bool, int, float, string, array, or object", e.Value)
}

// ValueMismatchError is the low-level mismatch produced by Type.Check. The
// engine wraps it into a TypeConflictError with attribute context.
type ValueMismatchError struct {
	Expected string
	Offered  string
}

func (e *ValueMismatchError) Error() string {
	return fmt.Sprintf("expected %s, got %s", e.Expected, e.Offered)
}
