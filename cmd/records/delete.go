// Delete command removes a record by id.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <type> <id>",
	Short: "Delete a record",
	Args:  cobra.ExactArgs(2),
	RunE:  runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[1])
	if err != nil {
		return err
	}
	if err := store.Delete(args[0], id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	mutated = true

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s record %d\n", args[0], id)
	return nil
}
