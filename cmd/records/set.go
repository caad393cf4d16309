// Set command writes one attribute of an existing record.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var setCmd = &cobra.Command{
	Use:   "set <type> <id> <attr>=<value>",
	Short: "Set an attribute on a record",
	Long: `Set writes one attribute of an existing record. A previously-unseen
attribute name is accepted and its type is inferred from the value; writes to
an established attribute must match its type or be null.

Example:
  records set location 0 lat=13.0
  records set note 2 done=true`,
	Args: cobra.ExactArgs(3),
	RunE: runSet,
}

func runSet(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[1])
	if err != nil {
		return err
	}
	fields, err := parseFields(args[2:])
	if err != nil {
		return err
	}

	for name, value := range fields {
		if err := store.SetAttribute(args[0], id, name, value); err != nil {
			return fmt.Errorf("set attribute: %w", err)
		}
	}
	mutated = true

	fmt.Fprintf(cmd.OutOrStdout(), "Updated %s record %d\n", args[0], id)
	return nil
}
