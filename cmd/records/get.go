// Get command reads a record or a single attribute of it.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <type> <id> [attr]",
	Short: "Read a record or one of its attributes",
	Args:  cobra.RangeArgs(2, 3),
	RunE:  runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[1])
	if err != nil {
		return err
	}

	if len(args) == 3 {
		value, err := store.GetAttribute(args[0], id, args[2])
		if err != nil {
			return fmt.Errorf("get attribute: %w", err)
		}
		out, err := marshalIndent(value)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	}

	handle, err := store.Get(args[0], id)
	if err != nil {
		return fmt.Errorf("get record: %w", err)
	}
	// Render the full record from the collection listing.
	for _, rec := range store.All(handle.TypeName()) {
		if rec["_id"] == handle.ID() {
			out, err := marshalIndent(rec)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		}
	}
	return fmt.Errorf("get record: no %s record with id %d", args[0], id)
}
