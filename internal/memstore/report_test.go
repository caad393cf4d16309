package memstore

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/SkPhilipp/records/pkg/record"
)

func TestReport_NoChanges(t *testing.T) {
	e := newTestEngine(t)

	want := "No structure changes.\nNo content changes.\n"
	if got := e.Report(); got != want {
		t.Errorf("Report() = %q, want %q", got, want)
	}
}

func TestReport_CreateWording(t *testing.T) {
	e := newTestEngine(t)

	if _, err := e.Create("location", map[string]any{"lat": 12.345, "long": 67.89}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	want := strings.Join([]string{
		"Structure changes:",
		"+ location",
		"+ location.lat: Float",
		"+ location.long: Float",
		"Content changes:",
		"+ created location(_id=0, lat=12.345, long=67.89)",
		"To undo all of the above changes, invoke `undo()` once.",
		"",
	}, "\n")
	if got := e.Report(); got != want {
		t.Errorf("Report() =\n%s\nwant:\n%s", got, want)
	}
}

func TestReport_UpdateWording(t *testing.T) {
	e := reopenedEngine(t, []map[string]any{{"title": "draft"}})

	if err := e.SetAttribute("task", 0, "title", "final"); err != nil {
		t.Fatalf("SetAttribute failed: %v", err)
	}
	if err := e.SetAttribute("task", 0, "done", true); err != nil {
		t.Fatalf("SetAttribute failed: %v", err)
	}

	report := e.Report()
	if !strings.Contains(report, "+ task.done: Boolean") {
		t.Errorf("missing new-attribute structure line:\n%s", report)
	}
	wantLine := `+ updated task(_id=0, title: "draft" -> "final", done: unset -> true)`
	if !strings.Contains(report, wantLine) {
		t.Errorf("missing %q in:\n%s", wantLine, report)
	}
}

func TestReport_DeleteWording(t *testing.T) {
	e := reopenedEngine(t, []map[string]any{{"title": "doomed"}})

	if err := e.Delete("task", 0); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	report := e.Report()
	if !strings.Contains(report, "No structure changes.") {
		t.Errorf("delete must not change structure:\n%s", report)
	}
	if !strings.Contains(report, "+ deleted task(_id=0)") {
		t.Errorf("missing delete line:\n%s", report)
	}
}

func TestReport_CreateThenDeleteIsNoNetChange(t *testing.T) {
	e := reopenedEngine(t, []map[string]any{{"title": "anchor"}})

	h, err := e.Create("task", map[string]any{"title": "temp"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := e.Delete("task", h.ID()); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// The diff is against the baseline; the transient record never shows.
	report := e.Report()
	if !strings.Contains(report, "No content changes.") {
		t.Errorf("transient record leaked into report:\n%s", report)
	}
}

func TestReport_UpdateBackToOriginalIsNoNetChange(t *testing.T) {
	e := reopenedEngine(t, []map[string]any{{"title": "same"}})

	if err := e.SetAttribute("task", 0, "title", "other"); err != nil {
		t.Fatalf("SetAttribute failed: %v", err)
	}
	if err := e.SetAttribute("task", 0, "title", "same"); err != nil {
		t.Fatalf("SetAttribute failed: %v", err)
	}

	want := "No structure changes.\nNo content changes.\n"
	if got := e.Report(); got != want {
		t.Errorf("Report() = %q, want %q", got, want)
	}
}

func TestReport_OmitsBeyondLimit(t *testing.T) {
	e, err := Open(record.Config{
		Path:        filepath.Join(t.TempDir(), "records.json"),
		ReportLimit: 3,
	})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		if _, err := e.Create("task", map[string]any{"n": i}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	report := e.Report()
	if !strings.Contains(report, "2 records omitted") {
		t.Errorf("missing omission line:\n%s", report)
	}
	if got := strings.Count(report, "+ created"); got != 3 {
		t.Errorf("%d created lines, want 3:\n%s", got, report)
	}
	// The first limit entries are the ones kept.
	if !strings.Contains(report, "+ created task(_id=0, n=0)") {
		t.Errorf("first entry missing:\n%s", report)
	}
	if strings.Contains(report, "_id=3") || strings.Contains(report, "_id=4") {
		t.Errorf("entries past the limit leaked:\n%s", report)
	}
}

func TestReport_DefaultLimitIsTen(t *testing.T) {
	e := newTestEngine(t)

	for i := 0; i < 15; i++ {
		if _, err := e.Create("task", map[string]any{"n": i}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	report := e.Report()
	if got := strings.Count(report, "+ created"); got != 10 {
		t.Errorf("%d created lines, want 10:\n%s", got, report)
	}
	if !strings.Contains(report, "5 records omitted") {
		t.Errorf("missing omission line:\n%s", report)
	}
}

func TestReport_LimitAppliesPerType(t *testing.T) {
	e, err := Open(record.Config{
		Path:        filepath.Join(t.TempDir(), "records.json"),
		ReportLimit: 2,
	})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := e.Create("task", map[string]any{"n": i}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if _, err := e.Create("plan", map[string]any{"n": i}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	report := e.Report()
	if got := strings.Count(report, "1 records omitted"); got != 2 {
		t.Errorf("%d omission lines, want one per type:\n%s", got, report)
	}
}

func TestReport_EndsWithUndoHintOnlyWhenChanged(t *testing.T) {
	e := newTestEngine(t)

	const hint = "To undo all of the above changes, invoke `undo()` once.\n"
	if strings.Contains(e.Report(), hint) {
		t.Error("hint present with no changes")
	}

	if _, err := e.Create("task", map[string]any{"title": "t"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !strings.HasSuffix(e.Report(), hint) {
		t.Errorf("report does not end with the undo hint:\n%s", e.Report())
	}
}

func TestReport_FieldRendering(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Create("note", map[string]any{
		"text":  "pick up milk",
		"done":  false,
		"count": 2,
		"tags":  []any{"errand", "home"},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	report := e.Report()
	want := fmt.Sprintf("+ created note(_id=0, count=2, done=false, tags=%s, text=%q)",
		`["errand", "home"]`, "pick up milk")
	if !strings.Contains(report, want) {
		t.Errorf("missing %q in:\n%s", want, report)
	}
}
