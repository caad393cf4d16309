// Package paths resolves configuration and data file locations for the
// records CLI.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// CWD-relative defaults. The data file default lives here, in the CLI
// collaborator; the core store takes its path explicitly and has no default.
const (
	DefaultConfigDirName = ".records"
	DefaultDataFileName  = "records.json"
)

// Environment variable names for location overrides.
const (
	EnvConfigDir = "RECORDS_CONFIG_DIR"
	EnvDataFile  = "RECORDS_DATA_FILE"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/records (fallback ~/.config/records)
// macOS:   ~/Library/Application Support/records
// Windows: %APPDATA%/records
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "records"), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "records"), nil
	default:
		// macOS and Windows use os.UserConfigDir which returns
		// ~/Library/Application Support on macOS and %APPDATA% on Windows.
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "records"), nil
	}
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > RECORDS_CONFIG_DIR env > $(CWD)/.records.
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultConfigDirName), nil
}

// ResolveDataFile returns the data file location following the precedence
// chain: flag > config file value > RECORDS_DATA_FILE env >
// $(CWD)/records.json.
func ResolveDataFile(flag, configValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configValue != "" {
		return filepath.Abs(configValue)
	}
	if env := os.Getenv(EnvDataFile); env != "" {
		return filepath.Abs(env)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataFileName), nil
}
