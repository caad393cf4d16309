// Undo and flush commands.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Undo every change made this session",
	Long: `Undo reverses every mutation made since the store was loaded, in
reverse order, restoring the loaded state exactly. An empty session is a
no-op.

The checkpoint is load time and each CLI invocation opens the store fresh,
so this command on its own always finds nothing to undo. Session-wide undo
is for library callers that hold one store open across many operations.`,
	Args: cobra.NoArgs,
	RunE: runUndo,
}

func runUndo(cmd *cobra.Command, args []string) error {
	n, err := store.Undo()
	if err != nil {
		return fmt.Errorf("undo: %w", err)
	}
	if n == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to undo.")
		return nil
	}
	mutated = true

	fmt.Fprintf(cmd.OutOrStdout(), "Reverted %d changes\n", n)
	return nil
}

var flushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Persist current state and print the change report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := store.Flush()
		if err != nil {
			return fmt.Errorf("flush: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), report)
		return nil
	},
}
