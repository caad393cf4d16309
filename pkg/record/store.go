package record

// Store provides uniform access to loosely-typed record collections with
// schema inference, session-wide undo, and an auditable change report.
//
// A Store is safe for concurrent use; all mutations are serialized. Reads
// observe a consistent pre- or post-mutation state, never a partial one.
type Store interface {
	// Create makes a new record of the given type from the field map,
	// creating the type on first use and inferring attribute types from the
	// non-null values. The record id is assigned by the store, starting at 0
	// per type and never reused. Fails with *ReservedAttributeError if
	// fields names the reserved id attribute, *TypeConflictError if any
	// value disagrees with an established attribute type, or
	// *UnsupportedValueError for non-representable values. On failure no
	// state changes.
	Create(typeName string, fields map[string]any) (*Handle, error)

	// Get returns a handle to the live record with the given id.
	// Fails with *NotFoundError.
	Get(typeName string, id int64) (*Handle, error)

	// SetAttribute writes one attribute of a live record, establishing the
	// attribute's type if this is its first non-null value anywhere in the
	// type. Previously-unseen attribute names are accepted.
	SetAttribute(typeName string, id int64, name string, value any) error

	// GetAttribute reads one attribute of a live record. Fails with
	// *NotFoundError (carrying the attribute name) if the record never had
	// the attribute set.
	GetAttribute(typeName string, id int64, name string) (any, error)

	// Delete removes the record with the given id.
	// Fails with *NotFoundError.
	Delete(typeName string, id int64) error

	// All returns every live record of the type in insertion order as plain
	// field maps including the id attribute. The result is a defensive
	// copy; mutating it never affects stored state. An unknown type yields
	// an empty slice.
	All(typeName string) []map[string]any

	// Count returns the number of live records of the type; 0 for an
	// unknown type.
	Count(typeName string) int

	// Structure returns the current schema: type name to attribute name to
	// type tag, including the id attribute.
	Structure() map[string]map[string]string

	// Undo reverses every mutation since the session checkpoint (load time)
	// and returns the number of events reverted. Zero means there was
	// nothing to undo; that is not an error.
	Undo() (int, error)

	// Report renders the change report diffing the load-time baseline
	// against current state. Read-only.
	Report() string

	// Flush atomically persists the full current state to the configured
	// path (and rewrites the SQLite mirror when configured), then returns
	// the change report.
	Flush() (string, error)

	// Close flushes and releases the store. Mutating and persisting
	// operations after Close fail with ErrStoreClosed; read accessors keep
	// serving the final state. Idempotent.
	Close() error
}

// Handle is a lightweight reference to one record: a type name and id bound
// to the owning store. It carries no field data; Get and Set go through the
// store so type enforcement and change tracking always apply.
type Handle struct {
	store    Store
	typeName string
	id       int64
}

// NewHandle binds a handle to a store. Intended for Store implementations.
func NewHandle(s Store, typeName string, id int64) *Handle {
	return &Handle{store: s, typeName: typeName, id: id}
}

// TypeName returns the record's type name.
func (h *Handle) TypeName() string { return h.typeName }

// ID returns the record's id within its type.
func (h *Handle) ID() int64 { return h.id }

// Set writes one attribute of the record.
func (h *Handle) Set(name string, value any) error {
	return h.store.SetAttribute(h.typeName, h.id, name, value)
}

// Get reads one attribute of the record.
func (h *Handle) Get(name string) (any, error) {
	return h.store.GetAttribute(h.typeName, h.id, name)
}
