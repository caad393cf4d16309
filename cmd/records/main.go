// Package main provides the records CLI, a thin collaborator over the record
// store: it resolves locations, opens the store for the duration of one
// command, and prints the change report after every mutating command.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/SkPhilipp/records/pkg/record"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir   string
	dataFile    string
	mirrorFile  string
	reportLimit int
	jsonMode    bool
}

var flags rootFlags

// store is the per-invocation store instance, opened by PersistentPreRunE.
var store record.Store

// mutated is set by commands that change state; the change report is printed
// and the store flushed only when it is set.
var mutated bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUserError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "records",
	Short: "A small structured data store for AI agents",
	Long: `Records manages loosely-typed structured data across agent task steps.
Record types and attribute types are inferred from the values written and
enforced from then on; every change is tracked so one undo reverses the
whole session, and every flush emits an auditable change report.`,
	SilenceUsage:       true,
	PersistentPreRunE:  openStore,
	PersistentPostRunE: closeStore,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: .records)")
	rootCmd.PersistentFlags().StringVar(&flags.dataFile, "data-file", "", "data file (default: records.json)")
	rootCmd.PersistentFlags().StringVar(&flags.mirrorFile, "mirror", "", "SQLite mirror database rewritten on flush")
	rootCmd.PersistentFlags().IntVar(&flags.reportLimit, "report-limit", 0, "max content-diff entries per type before omission")
	rootCmd.PersistentFlags().BoolVar(&flags.jsonMode, "json", false, "output in JSON format")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(countCmd)
	rootCmd.AddCommand(structureCmd)
	rootCmd.AddCommand(undoCmd)
	rootCmd.AddCommand(flushCmd)
}

// openStore loads config and opens the store. The version command runs
// without one.
func openStore(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	cfg, err := loadStoreConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	s, err := openConfigured(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	store = s
	return nil
}

// closeStore flushes and prints the change report when the command mutated
// state, mirroring the original session-end behavior.
func closeStore(cmd *cobra.Command, args []string) error {
	if store == nil {
		return nil
	}
	if mutated {
		report, err := store.Flush()
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
			os.Exit(exitSysError)
		}
		fmt.Fprint(cmd.OutOrStdout(), report)
	}
	return store.Close()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "records v0.1.0")
	},
}
