package integration

import "os"

// writeFile writes a data file for tests that need pre-existing state.
func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
