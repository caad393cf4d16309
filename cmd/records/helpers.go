// Shared helpers for records CLI commands.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// parseFields turns name=value arguments into a field map. Values parse as
// JSON (so numbers, booleans, null, arrays, and objects work on the command
// line); anything that is not valid JSON is taken as a plain string.
func parseFields(args []string) (map[string]any, error) {
	fields := make(map[string]any, len(args))
	for _, arg := range args {
		name, raw, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid field %q: expected name=value", arg)
		}
		fields[name] = parseValue(raw)
	}
	return fields, nil
}

// parseValue interprets a command-line value: JSON first, string fallback.
func parseValue(raw string) any {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err == nil && !dec.More() {
		return v
	}
	return raw
}

// parseID parses a record id argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid record id %q", arg)
	}
	return id, nil
}

// marshalIndent renders a value as indented JSON for --json output.
func marshalIndent(v any) (string, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal output: %w", err)
	}
	return string(out), nil
}
