package memstore

import (
	"fmt"
	"sort"
	"strings"

	"github.com/SkPhilipp/records/pkg/record"
)

// undoHint is the final report line, emitted only when something changed.
const undoHint = "To undo all of the above changes, invoke `undo()` once."

// Report renders the change report: the load-time baseline diffed against
// current state. Read-only; the mutation log is never consulted, so a
// created-then-deleted record produces no net entry.
func (e *Engine) Report() string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.renderReportLocked()
}

func (e *Engine) renderReportLocked() string {
	structure := e.structureDiffLocked()
	content := e.contentDiffLocked()

	var b strings.Builder
	if len(structure) == 0 {
		b.WriteString("No structure changes.\n")
	} else {
		b.WriteString("Structure changes:\n")
		for _, line := range structure {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	if len(content) == 0 {
		b.WriteString("No content changes.\n")
	} else {
		b.WriteString("Content changes:\n")
		for _, line := range content {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	if len(structure) > 0 || len(content) > 0 {
		b.WriteString(undoHint)
		b.WriteByte('\n')
	}
	return b.String()
}

// structureDiffLocked lists every attribute present now but absent from the
// baseline, and every whole new type. Schema only grows, so there is no
// removal case. The reserved id attribute is implicit and never reported.
func (e *Engine) structureDiffLocked() []string {
	var lines []string
	for _, typeName := range e.registry.order {
		rt := e.registry.types[typeName]
		base := e.baseline.registry.get(typeName)
		if base == nil {
			lines = append(lines, "+ "+typeName)
		}
		for _, attr := range rt.order {
			if attr == record.IDAttribute {
				continue
			}
			if base != nil {
				if _, ok := base.attrs[attr]; ok {
					continue
				}
			}
			lines = append(lines, fmt.Sprintf("+ %s.%s: %s", typeName, attr, rt.attrs[attr]))
		}
	}
	return lines
}

// contentDiffLocked lists created, updated, and deleted records per type.
// When a type has more changed records than the configured limit, the first
// limit entries are kept and the rest collapse into one "omitted" line.
func (e *Engine) contentDiffLocked() []string {
	limit := e.cfg.EffectiveReportLimit()

	var lines []string
	for _, typeName := range e.registry.order {
		entries := e.typeContentDiffLocked(typeName)
		if len(entries) > limit {
			omitted := len(entries) - limit
			entries = append(entries[:limit], fmt.Sprintf("%d records omitted", omitted))
		}
		lines = append(lines, entries...)
	}
	return lines
}

func (e *Engine) typeContentDiffLocked(typeName string) []string {
	rt := e.registry.types[typeName]
	col := e.collections[typeName]
	base := e.baseline.collections[typeName]

	var entries []string
	for _, r := range col.records {
		var baseRec *rec
		if base != nil {
			baseRec = base.get(r.id)
		}
		if baseRec == nil {
			entries = append(entries, createdEntry(typeName, rt, r))
			continue
		}
		if entry, changed := updatedEntry(typeName, rt, baseRec, r); changed {
			entries = append(entries, entry)
		}
	}
	if base != nil {
		for _, r := range base.records {
			if col.get(r.id) == nil {
				entries = append(entries, fmt.Sprintf("+ deleted %s(_id=%d)", typeName, r.id))
			}
		}
	}
	return entries
}

// createdEntry renders a created record with its full field listing in schema
// attribute order.
func createdEntry(typeName string, rt *recordType, r *rec) string {
	var b strings.Builder
	fmt.Fprintf(&b, "+ created %s(_id=%d", typeName, r.id)
	for _, attr := range orderedAttrs(rt, r) {
		fmt.Fprintf(&b, ", %s=%s", attr, r.fields[attr])
	}
	b.WriteByte(')')
	return b.String()
}

// updatedEntry renders the changed fields of an updated record as old -> new
// pairs, in schema attribute order. A field the baseline record never had
// renders its old side as "unset".
func updatedEntry(typeName string, rt *recordType, before, after *rec) (string, bool) {
	var changes []string
	for _, attr := range orderedAttrs(rt, after) {
		now := after.fields[attr]
		prior, had := before.fields[attr]
		if had && prior.Equal(now) {
			continue
		}
		oldText := "unset"
		if had {
			oldText = prior.String()
		}
		changes = append(changes, fmt.Sprintf("%s: %s -> %s", attr, oldText, now))
	}
	if len(changes) == 0 {
		return "", false
	}
	return fmt.Sprintf("+ updated %s(_id=%d, %s)", typeName, after.id, strings.Join(changes, ", ")), true
}

// orderedAttrs returns the record's field names in schema attribute order,
// with fields that never established a schema entry (always-null attributes)
// appended alphabetically at the end.
func orderedAttrs(rt *recordType, r *rec) []string {
	out := make([]string, 0, len(r.fields))
	seen := make(map[string]bool, len(r.fields))
	for _, attr := range rt.order {
		if attr == record.IDAttribute {
			continue
		}
		if _, ok := r.fields[attr]; ok {
			out = append(out, attr)
			seen[attr] = true
		}
	}
	var rest []string
	for name := range r.fields {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	if len(rest) > 0 {
		sort.Strings(rest)
		out = append(out, rest...)
	}
	return out
}
