// Package memstore implements the in-memory record engine: schema inference
// and enforcement, mutation logging with session-wide undo, atomic JSON
// persistence, and baseline-diff change reporting.
package memstore

import (
	"sort"
	"sync"

	"github.com/SkPhilipp/records/pkg/record"
)

// Engine implements record.Store. All mutations for one Engine are serialized
// under a single lock; reads take the shared side so they always observe a
// consistent pre- or post-mutation state.
type Engine struct {
	mu     sync.RWMutex
	cfg    record.Config
	closed bool

	registry    *registry
	collections map[string]*collection
	log         *mutationLog
	baseline    *snapshot
}

var _ record.Store = (*Engine)(nil)

// Open loads persisted state from cfg.Path, captures the baseline snapshot,
// and returns a ready Engine. A missing file yields an empty store; an
// unreadable or invalid file fails with *record.CorruptStateError and the
// Engine cannot be used.
func Open(cfg record.Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:         cfg,
		registry:    newRegistry(),
		collections: make(map[string]*collection),
		log:         newMutationLog(),
	}

	if err := e.load(cfg.Path); err != nil {
		return nil, err
	}

	// The baseline is captured once, before any API call, and never updated.
	e.baseline = e.snapshotLocked()

	return e, nil
}

// Create makes a new record of the given type, creating the type on first use
// and establishing attribute types from the non-null field values. Validation
// runs completely before any state or log mutation, so a failing call leaves
// the engine untouched.
func (e *Engine) Create(typeName string, fields map[string]any) (*record.Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, record.ErrStoreClosed
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	// Attribute establishment order is deterministic: sorted by name.
	sort.Strings(names)

	values := make(map[string]record.Value, len(fields))
	for _, name := range names {
		v, err := record.FromAny(fields[name])
		if err != nil {
			return nil, err
		}
		values[name] = v
	}

	// Check phase: validate every field against the schema the type would
	// have, without touching registry, store, or log.
	rt := e.registry.get(typeName)
	checker := rt
	if checker == nil {
		checker = newRecordType(typeName)
	}
	type pendingAttr struct {
		name string
		t    *record.Type
	}
	var pending []pendingAttr
	for _, name := range names {
		inferred, err := checker.check(name, values[name])
		if err != nil {
			return nil, err
		}
		if inferred != nil {
			pending = append(pending, pendingAttr{name: name, t: inferred})
		}
	}

	// Commit phase: emit events in the order undo needs to reverse them.
	rt, created := e.registry.ensure(typeName)
	if created {
		e.collections[typeName] = newCollection()
		e.log.append(event{kind: eventDefineType, typeName: typeName})
	}
	for _, p := range pending {
		rt.establish(p.name, p.t)
		e.log.append(event{
			kind:     eventDefineAttribute,
			typeName: typeName,
			attr:     p.name,
			attrType: p.t,
		})
	}

	col := e.collections[typeName]
	r := col.insert(cloneFields(values))
	e.log.append(event{
		kind:     eventInsert,
		typeName: typeName,
		id:       r.id,
		fields:   cloneFields(values),
	})

	return record.NewHandle(e, typeName, r.id), nil
}

// Get returns a handle to a live record.
func (e *Engine) Get(typeName string, id int64) (*record.Handle, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return nil, record.ErrStoreClosed
	}
	if _, err := e.find(typeName, id); err != nil {
		return nil, err
	}
	return record.NewHandle(e, typeName, id), nil
}

// SetAttribute writes one attribute of a live record, establishing the
// attribute's type on its first non-null value. On failure the engine state
// and log are unchanged.
func (e *Engine) SetAttribute(typeName string, id int64, name string, value any) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return record.ErrStoreClosed
	}
	r, err := e.find(typeName, id)
	if err != nil {
		return err
	}
	v, err := record.FromAny(value)
	if err != nil {
		return err
	}
	rt := e.registry.get(typeName)
	inferred, err := rt.check(name, v)
	if err != nil {
		return err
	}

	if inferred != nil {
		rt.establish(name, inferred)
		e.log.append(event{
			kind:     eventDefineAttribute,
			typeName: typeName,
			attr:     name,
			attrType: inferred,
		})
	}

	old, existed := r.fields[name]
	ev := event{
		kind:      eventUpdate,
		typeName:  typeName,
		id:        id,
		attr:      name,
		oldAbsent: !existed,
		new:       v.Clone(),
	}
	if existed {
		ev.old = old.Clone()
	}
	e.log.append(ev)
	r.fields[name] = v.Clone()

	return nil
}

// GetAttribute reads one attribute of a live record. The reserved id
// attribute is readable and returns the record id.
func (e *Engine) GetAttribute(typeName string, id int64, name string) (any, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return nil, record.ErrStoreClosed
	}
	r, err := e.find(typeName, id)
	if err != nil {
		return nil, err
	}
	if name == record.IDAttribute {
		return r.id, nil
	}
	v, ok := r.fields[name]
	if !ok {
		return nil, &record.NotFoundError{TypeName: typeName, ID: id, Attribute: name}
	}
	return v.Interface(), nil
}

// Delete removes a live record, logging its full field set for reversal.
func (e *Engine) Delete(typeName string, id int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return record.ErrStoreClosed
	}
	r, err := e.find(typeName, id)
	if err != nil {
		return err
	}
	e.log.append(event{
		kind:     eventDelete,
		typeName: typeName,
		id:       id,
		fields:   cloneFields(r.fields),
	})
	e.collections[typeName].remove(id)

	return nil
}

// All returns every live record of the type in insertion order as plain field
// maps. The result shares no storage with the engine. An unknown type yields
// an empty slice.
func (e *Engine) All(typeName string) []map[string]any {
	e.mu.RLock()
	defer e.mu.RUnlock()

	col := e.collections[typeName]
	if col == nil {
		return []map[string]any{}
	}
	out := make([]map[string]any, 0, len(col.records))
	for _, r := range col.records {
		out = append(out, recordMap(r))
	}
	return out
}

// Count returns the number of live records of the type.
func (e *Engine) Count(typeName string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	col := e.collections[typeName]
	if col == nil {
		return 0
	}
	return len(col.records)
}

// Structure returns the current schema as type name -> attribute -> type tag.
func (e *Engine) Structure() map[string]map[string]string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.registry.structure()
}

// Close flushes the store and releases it. Idempotent; mutations and flushes
// after Close fail with record.ErrStoreClosed, reads keep serving the final
// state.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()

	if _, err := e.Flush(); err != nil {
		return err
	}

	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	return nil
}

// find resolves a live record or reports why it cannot.
func (e *Engine) find(typeName string, id int64) (*rec, error) {
	if e.registry.get(typeName) == nil {
		return nil, &record.NotFoundError{TypeName: typeName, TypeUnknown: true}
	}
	r := e.collections[typeName].get(id)
	if r == nil {
		return nil, &record.NotFoundError{TypeName: typeName, ID: id}
	}
	return r, nil
}

// recordMap renders a record as a plain field map with the id attribute
// included, deep-copying every value.
func recordMap(r *rec) map[string]any {
	out := make(map[string]any, len(r.fields)+1)
	out[record.IDAttribute] = r.id
	for name, v := range r.fields {
		out[name] = v.Interface()
	}
	return out
}
