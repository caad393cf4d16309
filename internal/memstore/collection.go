package memstore

import (
	"github.com/SkPhilipp/records/pkg/record"
)

// rec is one stored record: its id and its field values. Field values are
// owned exclusively by the store; everything crossing the API boundary is
// deep-copied.
type rec struct {
	id     int64
	fields map[string]record.Value
}

func (r *rec) clone() *rec {
	return &rec{id: r.id, fields: cloneFields(r.fields)}
}

func cloneFields(fields map[string]record.Value) map[string]record.Value {
	cp := make(map[string]record.Value, len(fields))
	for name, v := range fields {
		cp[name] = v.Clone()
	}
	return cp
}

// collection holds the live records of one type in insertion order, plus the
// id counter. Ids start at 0, increase by one per create, and are never
// reused even after deletion.
type collection struct {
	records []*rec
	byID    map[int64]*rec
	nextID  int64
}

func newCollection() *collection {
	return &collection{byID: make(map[int64]*rec)}
}

// insert appends a record with the next id and returns it.
func (c *collection) insert(fields map[string]record.Value) *rec {
	r := &rec{id: c.nextID, fields: fields}
	c.nextID++
	c.records = append(c.records, r)
	c.byID[r.id] = r
	return r
}

// reinsert appends a record with a fixed id, leaving the id counter alone.
// Used by undo to reverse a delete.
func (c *collection) reinsert(id int64, fields map[string]record.Value) {
	r := &rec{id: id, fields: fields}
	c.records = append(c.records, r)
	c.byID[id] = r
}

// remove deletes the record with the given id, preserving the order of the
// rest. Reports whether the id was present.
func (c *collection) remove(id int64) bool {
	if _, ok := c.byID[id]; !ok {
		return false
	}
	delete(c.byID, id)
	for i, r := range c.records {
		if r.id == id {
			c.records = append(c.records[:i], c.records[i+1:]...)
			break
		}
	}
	return true
}

func (c *collection) get(id int64) *rec {
	return c.byID[id]
}

func (c *collection) clone() *collection {
	cp := &collection{
		records: make([]*rec, len(c.records)),
		byID:    make(map[int64]*rec, len(c.byID)),
		nextID:  c.nextID,
	}
	for i, r := range c.records {
		rc := r.clone()
		cp.records[i] = rc
		cp.byID[rc.id] = rc
	}
	return cp
}
