// Init command scaffolds the configuration directory and data file.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/SkPhilipp/records/internal/paths"
)

// configFile holds the structure written to config.yaml.
type configFile struct {
	DataFile    string `yaml:"data_file,omitempty"`
	MirrorFile  string `yaml:"mirror_file,omitempty"`
	ReportLimit int    `yaml:"report_limit,omitempty"`
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize records storage",
	Long:  "Create the configuration directory with a default config.yaml and initialize the data file.",
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	dataFile, err := paths.ResolveDataFile(flags.dataFile, "")
	if err != nil {
		return fmt.Errorf("resolve data file: %w", err)
	}
	if err := writeConfigIfMissing(filepath.Join(configDir, "config.yaml"), dataFile); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	// The store was already opened by PersistentPreRunE; flushing it once
	// materializes the data file.
	if _, err := store.Flush(); err != nil {
		return fmt.Errorf("initialize data file: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Records storage initialized successfully")
	return nil
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. If it already exists, the function returns nil (idempotent).
func writeConfigIfMissing(path, dataFile string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	cfg := configFile{
		DataFile: dataFile,
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
