package memstore

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/SkPhilipp/records/pkg/record"
)

func TestFlush_WritesDataFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	e, err := Open(record.Config{Path: path})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if _, err := e.Create("task", map[string]any{"title": "t"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	report, err := e.Flush()
	if err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if !strings.Contains(report, "+ created task(_id=0") {
		t.Errorf("Flush report missing change:\n%s", report)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("data file not written: %v", err)
	}
	if !json.Valid(data) {
		t.Error("data file is not valid JSON")
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".tmp") {
			t.Errorf("leftover temp file %s", entry.Name())
		}
	}
}

func TestFlush_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	e, err := Open(record.Config{Path: path})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	_, err = e.Create("note", map[string]any{
		"text":    "remember",
		"done":    false,
		"count":   2,
		"score":   4.5,
		"tags":    []any{"a", "b"},
		"address": map[string]any{"city": "Berlin", "zip": 10115},
		"blank":   nil,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := e.Create("plan", map[string]any{"goal": "ship"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	e2, err := Open(record.Config{Path: path})
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}

	if !reflect.DeepEqual(e2.Structure(), e.Structure()) {
		t.Errorf("structure after reload = %v, want %v", e2.Structure(), e.Structure())
	}
	if !reflect.DeepEqual(e2.All("note"), e.All("note")) {
		t.Errorf("note records after reload = %v, want %v", e2.All("note"), e.All("note"))
	}
	if !reflect.DeepEqual(e2.All("plan"), e.All("plan")) {
		t.Errorf("plan records after reload = %v, want %v", e2.All("plan"), e.All("plan"))
	}

	// The id counter continues past persisted ids.
	h, err := e2.Create("note", map[string]any{"text": "next"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if h.ID() != 1 {
		t.Errorf("id after reload = %d, want 1", h.ID())
	}
}

func TestFlush_WholeNumberFloatStaysFloat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	e, err := Open(record.Config{Path: path})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := e.Create("reading", map[string]any{"value": 5.0}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	e2, err := Open(record.Config{Path: path})
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if got := e2.Structure()["reading"]["value"]; got != "Float" {
		t.Fatalf("value type after reload = %s, want Float", got)
	}
	v, err := e2.GetAttribute("reading", 0, "value")
	if err != nil {
		t.Fatalf("GetAttribute failed: %v", err)
	}
	if _, ok := v.(float64); !ok {
		t.Errorf("value after reload = %T, want float64", v)
	}

	// Writing another whole-number float still passes the Float check.
	if err := e2.SetAttribute("reading", 0, "value", 6.0); err != nil {
		t.Errorf("whole-number float rejected after reload: %v", err)
	}
}

func TestFlush_OutputIsOrdered(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	e, err := Open(record.Config{Path: path})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	// Types in creation order, attributes in establishment order.
	if _, err := e.Create("zebra", map[string]any{"stripes": 30}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := e.Create("alpha", map[string]any{"beta": 1}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := e.SetAttribute("zebra", 0, "age", 4); err != nil {
		t.Fatalf("SetAttribute failed: %v", err)
	}
	if _, err := e.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	text := string(data)

	if strings.Index(text, `"zebra"`) > strings.Index(text, `"alpha"`) {
		t.Error("types not in creation order")
	}
	if strings.Index(text, `"_id"`) > strings.Index(text, `"stripes"`) {
		t.Error("_id not first in schema")
	}
	if strings.Index(text, `"stripes"`) > strings.Index(text, `"age"`) {
		t.Error("attributes not in establishment order")
	}
}

func TestOpen_MissingFileIsEmptyStore(t *testing.T) {
	e, err := Open(record.Config{Path: filepath.Join(t.TempDir(), "does-not-exist.json")})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if len(e.Structure()) != 0 {
		t.Errorf("structure = %v, want empty", e.Structure())
	}
}

func TestOpen_CorruptFile(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "definitely not json"},
		{"missing schema", `{"task": {"records": []}}`},
		{"duplicate id", `{"task": {"schema": {"_id": "Integer", "title": "String"},
			"records": [{"_id": 0, "title": "a"}, {"_id": 0, "title": "b"}]}}`},
		{"record violates schema", `{"task": {"schema": {"_id": "Integer", "title": "String"},
			"records": [{"_id": 0, "title": 5}]}}`},
		{"bad id type", `{"task": {"schema": {"_id": "String"}, "records": []}}`},
		{"non-null field without schema entry", `{"task": {"schema": {"_id": "Integer"},
			"records": [{"_id": 0, "x": 5}]}}`},
		{"unknown type tag", `{"task": {"schema": {"_id": "Integer", "x": "Decimal"}, "records": []}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "records.json")
			if err := os.WriteFile(path, []byte(tt.data), 0o644); err != nil {
				t.Fatalf("WriteFile failed: %v", err)
			}

			_, err := Open(record.Config{Path: path})
			var corrupt *record.CorruptStateError
			if !errors.As(err, &corrupt) {
				t.Fatalf("expected CorruptStateError, got %v", err)
			}
			if corrupt.Path != path {
				t.Errorf("error path = %s, want %s", corrupt.Path, path)
			}

			// The corrupt file was not overwritten or removed.
			data, readErr := os.ReadFile(path)
			if readErr != nil || string(data) != tt.data {
				t.Error("corrupt file was modified")
			}
		})
	}
}

func TestFlush_PreservesStateAcrossCrashyRewrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	e, err := Open(record.Config{Path: path})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := e.Create("task", map[string]any{"title": "v1"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := e.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	// A second flush rewrites the file completely rather than appending.
	if err := e.SetAttribute("task", 0, "title", "v2"); err != nil {
		t.Fatalf("SetAttribute failed: %v", err)
	}
	if _, err := e.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(first) == string(second) {
		t.Error("second flush did not rewrite the file")
	}
	if !json.Valid(second) {
		t.Error("rewritten file is not valid JSON")
	}
}
