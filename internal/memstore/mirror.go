// SQLite mirror export. When Config.MirrorPath is set, Flush rewrites a
// SQLite database with one table per record type so the persisted data can be
// queried with ordinary SQL tooling. The mirror is write-only output; the
// JSON document remains the source of truth.
package memstore

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/SkPhilipp/records/pkg/record"
)

// exportMirrorLocked rewrites the mirror database from current state. Each
// type becomes a table with _id as its integer primary key; scalar attributes
// map to SQLite affinities and composite values are stored as JSON text.
func (e *Engine) exportMirrorLocked() error {
	db, err := sql.Open("sqlite", e.cfg.MirrorPath)
	if err != nil {
		return fmt.Errorf("opening mirror: %w", err)
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning mirror transaction: %w", err)
	}
	defer tx.Rollback()

	if err := dropStaleTables(tx, e.registry); err != nil {
		return fmt.Errorf("dropping stale tables: %w", err)
	}
	for _, typeName := range e.registry.order {
		if err := exportType(tx, e.registry.types[typeName], e.collections[typeName]); err != nil {
			return fmt.Errorf("table %s: %w", typeName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing mirror transaction: %w", err)
	}
	return nil
}

// dropStaleTables removes mirror tables whose type is no longer registered,
// e.g. a type that was created, flushed, then undone.
func dropStaleTables(tx *sql.Tx, r *registry) error {
	rows, err := tx.Query(`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite\_%' ESCAPE '\'`)
	if err != nil {
		return err
	}
	defer rows.Close()

	var stale []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		if r.get(name) == nil {
			stale = append(stale, name)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, name := range stale {
		if _, err := tx.Exec("DROP TABLE IF EXISTS " + quoteIdent(name)); err != nil {
			return err
		}
	}
	return nil
}

func exportType(tx *sql.Tx, rt *recordType, col *collection) error {
	// Drop and recreate so schema growth never needs migration.
	if _, err := tx.Exec("DROP TABLE IF EXISTS " + quoteIdent(rt.name)); err != nil {
		return fmt.Errorf("dropping: %w", err)
	}

	columns := []string{quoteIdent(record.IDAttribute) + " INTEGER PRIMARY KEY"}
	attrs := make([]string, 0, len(rt.order))
	for _, attr := range rt.order {
		if attr == record.IDAttribute {
			continue
		}
		attrs = append(attrs, attr)
		columns = append(columns, quoteIdent(attr)+" "+columnType(rt.attrs[attr]))
	}
	createSQL := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(rt.name), strings.Join(columns, ", "))
	if _, err := tx.Exec(createSQL); err != nil {
		return fmt.Errorf("creating: %w", err)
	}

	if len(col.records) == 0 {
		return nil
	}

	names := make([]string, 0, len(attrs)+1)
	placeholders := make([]string, 0, len(attrs)+1)
	names = append(names, quoteIdent(record.IDAttribute))
	placeholders = append(placeholders, "?")
	for _, attr := range attrs {
		names = append(names, quoteIdent(attr))
		placeholders = append(placeholders, "?")
	}
	insertSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(rt.name), strings.Join(names, ", "), strings.Join(placeholders, ", "))

	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range col.records {
		args := make([]any, 0, len(attrs)+1)
		args = append(args, r.id)
		for _, attr := range attrs {
			v, ok := r.fields[attr]
			if !ok {
				args = append(args, nil)
				continue
			}
			arg, err := columnValue(v)
			if err != nil {
				return fmt.Errorf("record %d, field %q: %w", r.id, attr, err)
			}
			args = append(args, arg)
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("inserting record %d: %w", r.id, err)
		}
	}
	return nil
}

// columnType maps an inferred type to a SQLite column affinity.
func columnType(t *record.Type) string {
	switch t.Kind {
	case record.KindInt, record.KindBool:
		return "INTEGER"
	case record.KindFloat:
		return "REAL"
	case record.KindString:
		return "TEXT"
	default:
		// Objects and arrays are stored as JSON text.
		return "TEXT"
	}
}

// columnValue converts a Value into a driver-friendly argument. Composite
// values are serialized to JSON text.
func columnValue(v record.Value) (any, error) {
	switch v.Kind {
	case record.KindNull:
		return nil, nil
	case record.KindBool:
		return v.Bool, nil
	case record.KindInt:
		return v.Int, nil
	case record.KindFloat:
		return v.Float, nil
	case record.KindString:
		return v.Str, nil
	default:
		raw, err := v.MarshalJSON()
		if err != nil {
			return nil, err
		}
		return string(raw), nil
	}
}

// quoteIdent quotes a SQL identifier, doubling embedded quotes. Type and
// attribute names are caller-supplied and arbitrary.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
