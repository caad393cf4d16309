// Persisted document handling: ordered JSON encode, schema-driven decode,
// and the temp-file-then-rename atomic write.
//
// Document shape:
//
//	{
//	  "<typeName>": {
//	    "schema":  { "<attr>": <typeTag>, ... },
//	    "records": [ { "_id": 0, "<attr>": <value>, ... }, ... ]
//	  },
//	  ...
//	}
package memstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/SkPhilipp/records/pkg/record"
)

// Flush atomically persists the full current state to the configured path,
// rewrites the SQLite mirror when one is configured, and returns the change
// report. A crash mid-write never corrupts the last valid persisted state.
func (e *Engine) Flush() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return "", record.ErrStoreClosed
	}

	doc, err := e.encodeLocked()
	if err != nil {
		return "", fmt.Errorf("encode state: %w", err)
	}
	if err := writeFileAtomic(e.cfg.Path, doc); err != nil {
		return "", fmt.Errorf("persist state: %w", err)
	}
	if e.cfg.MirrorPath != "" {
		if err := e.exportMirrorLocked(); err != nil {
			return "", fmt.Errorf("export mirror: %w", err)
		}
	}

	return e.renderReportLocked(), nil
}

// encodeLocked renders the document with type and schema-attribute order
// preserved, indented for human auditing.
func (e *Engine) encodeLocked() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, typeName := range e.registry.order {
		if i > 0 {
			b.WriteByte(',')
		}
		if err := writeKey(&b, typeName); err != nil {
			return nil, err
		}
		if err := e.encodeTypeLocked(&b, typeName); err != nil {
			return nil, err
		}
	}
	b.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, b.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func (e *Engine) encodeTypeLocked(b *bytes.Buffer, typeName string) error {
	rt := e.registry.types[typeName]
	col := e.collections[typeName]

	b.WriteString(`{"schema":{`)
	for i, attr := range rt.order {
		if i > 0 {
			b.WriteByte(',')
		}
		if err := writeKey(b, attr); err != nil {
			return err
		}
		tag, err := rt.attrs[attr].MarshalJSON()
		if err != nil {
			return err
		}
		b.Write(tag)
	}
	b.WriteString(`},"records":[`)
	for i, r := range col.records {
		if i > 0 {
			b.WriteByte(',')
		}
		if err := encodeRecord(b, rt, r); err != nil {
			return err
		}
	}
	b.WriteString("]}")
	return nil
}

// encodeRecord writes one record object, id first, then fields in schema
// attribute order.
func encodeRecord(b *bytes.Buffer, rt *recordType, r *rec) error {
	b.WriteString(`{"_id":`)
	fmt.Fprintf(b, "%d", r.id)
	for _, attr := range orderedAttrs(rt, r) {
		b.WriteByte(',')
		if err := writeKey(b, attr); err != nil {
			return err
		}
		raw, err := r.fields[attr].MarshalJSON()
		if err != nil {
			return err
		}
		b.Write(raw)
	}
	b.WriteByte('}')
	return nil
}

func writeKey(b *bytes.Buffer, key string) error {
	quoted, err := json.Marshal(key)
	if err != nil {
		return err
	}
	b.Write(quoted)
	b.WriteByte(':')
	return nil
}

// load reads persisted state into the registry and collections. A missing
// file yields empty state. Anything unreadable or inconsistent fails with
// *record.CorruptStateError; existing data is never silently discarded.
func (e *Engine) load(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return &record.CorruptStateError{Path: path, Err: err}
	}
	if err := e.decode(data); err != nil {
		return &record.CorruptStateError{Path: path, Err: err}
	}
	return nil
}

func (e *Engine) decode(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	for dec.More() {
		typeName, err := readKey(dec)
		if err != nil {
			return err
		}
		if err := e.decodeType(dec, typeName); err != nil {
			return fmt.Errorf("type %q: %w", typeName, err)
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return err
	}
	return nil
}

// decodeType reads one type body: the ordered schema and the record list.
// Record values decode against the schema so Integer and Float round-trip.
func (e *Engine) decodeType(dec *json.Decoder, typeName string) error {
	if _, ok := e.registry.types[typeName]; ok {
		return fmt.Errorf("duplicate type")
	}

	var schemaAttrs []record.Field
	var rawRecords []json.RawMessage
	sawSchema := false

	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return err
		}
		switch key {
		case "schema":
			schemaAttrs, err = decodeSchema(dec)
			if err != nil {
				return fmt.Errorf("schema: %w", err)
			}
			sawSchema = true
		case "records":
			if err := dec.Decode(&rawRecords); err != nil {
				return fmt.Errorf("records: %w", err)
			}
		default:
			return fmt.Errorf("unknown key %q", key)
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return err
	}
	if !sawSchema {
		return fmt.Errorf("missing schema")
	}

	rt := newRecordType(typeName)
	for _, f := range schemaAttrs {
		if f.Name == record.IDAttribute {
			if f.Type != nil && !f.Type.Equal(record.TypeInteger) {
				return fmt.Errorf("reserved attribute %q must be Integer", f.Name)
			}
			continue
		}
		if _, ok := rt.attrs[f.Name]; ok {
			return fmt.Errorf("duplicate attribute %q", f.Name)
		}
		if f.Type == nil {
			return fmt.Errorf("attribute %q has no type", f.Name)
		}
		rt.attrs[f.Name] = f.Type
		rt.order = append(rt.order, f.Name)
	}
	e.registry.types[typeName] = rt
	e.registry.order = append(e.registry.order, typeName)

	col := newCollection()
	for i, raw := range rawRecords {
		if err := decodeRecordInto(col, rt, raw); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	e.collections[typeName] = col

	return nil
}

// decodeSchema walks the schema object with tokens so attribute order is
// preserved.
func decodeSchema(dec *json.Decoder) ([]record.Field, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	var fields []record.Field
	for dec.More() {
		name, err := readKey(dec)
		if err != nil {
			return nil, err
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		t, err := record.ParseTypeJSON(raw)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		fields = append(fields, record.Field{Name: name, Type: t})
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return fields, nil
}

// decodeRecordInto parses one persisted record, validates every field against
// the schema, and appends it in file order. Ids must be unique; the type's id
// counter becomes max id + 1.
func decodeRecordInto(col *collection, rt *recordType, raw json.RawMessage) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return err
	}
	idRaw, ok := obj[record.IDAttribute]
	if !ok {
		return fmt.Errorf("missing %s", record.IDAttribute)
	}
	var id int64
	if err := json.Unmarshal(idRaw, &id); err != nil {
		return fmt.Errorf("%s: %w", record.IDAttribute, err)
	}
	if col.get(id) != nil {
		return fmt.Errorf("duplicate id %d", id)
	}

	fields := make(map[string]record.Value, len(obj)-1)
	for name, fieldRaw := range obj {
		if name == record.IDAttribute {
			continue
		}
		v, err := record.DecodeValue(fieldRaw, rt.attrs[name])
		if err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
		t, ok := rt.attrs[name]
		if !ok {
			// Only always-null attributes legitimately lack a schema entry.
			if !v.IsNull() {
				return fmt.Errorf("field %q has a value but no schema entry", name)
			}
			fields[name] = v
			continue
		}
		if err := t.Check(v); err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
		fields[name] = v
	}

	col.reinsert(id, fields)
	if id >= col.nextID {
		col.nextID = id + 1
	}
	return nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	d, ok := tok.(json.Delim)
	if !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return key, nil
}

// writeFileAtomic writes data to a temp file in the target directory, syncs
// it, and renames it over the destination in one step.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".records-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
