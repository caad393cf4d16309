package memstore

import (
	"fmt"

	"github.com/SkPhilipp/records/pkg/record"
)

// Undo applies the inverse of every logged event since the checkpoint in
// reverse chronological order, then clears the log back to the checkpoint.
// Returns the number of events reverted; zero means there was nothing to
// undo, which is a no-op rather than an error.
//
// Undo restores state exactly, including id counters and attribute type
// assignments: reversing an insert winds the type's id counter back to the
// inserted id, and reversing a delete reinserts the record without touching
// the counter.
func (e *Engine) Undo() (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return 0, record.ErrStoreClosed
	}

	n := e.log.size()
	for i := n - 1; i >= 0; i-- {
		if err := e.applyInverse(e.log.events[i]); err != nil {
			return 0, err
		}
	}
	e.log.truncate()

	return n, nil
}

// applyInverse reverses one event. Log completeness guarantees each case is
// reachable: a define_type inverse only ever sees an empty type, and a
// define_attribute inverse only runs after every write that used the
// attribute has already been reversed.
func (e *Engine) applyInverse(ev event) error {
	switch ev.kind {
	case eventDefineType:
		e.registry.remove(ev.typeName)
		delete(e.collections, ev.typeName)
		return nil

	case eventDefineAttribute:
		rt := e.registry.get(ev.typeName)
		if rt == nil {
			return fmt.Errorf("undo %s: type %q missing", ev.kind, ev.typeName)
		}
		rt.removeAttr(ev.attr)
		return nil

	case eventInsert:
		col := e.collections[ev.typeName]
		if col == nil || !col.remove(ev.id) {
			return fmt.Errorf("undo %s: record %s/%d missing", ev.kind, ev.typeName, ev.id)
		}
		// The insert consumed this id; wind the counter back to it.
		col.nextID = ev.id
		return nil

	case eventUpdate:
		col := e.collections[ev.typeName]
		if col == nil {
			return fmt.Errorf("undo %s: type %q missing", ev.kind, ev.typeName)
		}
		r := col.get(ev.id)
		if r == nil {
			return fmt.Errorf("undo %s: record %s/%d missing", ev.kind, ev.typeName, ev.id)
		}
		if ev.oldAbsent {
			delete(r.fields, ev.attr)
		} else {
			r.fields[ev.attr] = ev.old.Clone()
		}
		return nil

	case eventDelete:
		col := e.collections[ev.typeName]
		if col == nil {
			return fmt.Errorf("undo %s: type %q missing", ev.kind, ev.typeName)
		}
		col.reinsert(ev.id, cloneFields(ev.fields))
		return nil

	default:
		return fmt.Errorf("undo: unknown event kind %d", ev.kind)
	}
}
