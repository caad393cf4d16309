// Create command makes a new record, inferring the type's schema from the
// field values on first use.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create <type> [field=value ...]",
	Short: "Create a new record",
	Long: `Create makes a new record of the given type. The type is created on
first use and attribute types are inferred from the values.

Values are parsed as JSON; unquoted text is taken as a string.

Example:
  records create location lat=12.345 long=67.89
  records create note text="pick up milk" tags='["errand"]'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCreate,
}

func runCreate(cmd *cobra.Command, args []string) error {
	fields, err := parseFields(args[1:])
	if err != nil {
		return err
	}

	handle, err := store.Create(args[0], fields)
	if err != nil {
		return fmt.Errorf("create record: %w", err)
	}
	mutated = true

	if flags.jsonMode {
		out, err := marshalIndent(map[string]any{"type": handle.TypeName(), "_id": handle.ID()})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s record %d\n", handle.TypeName(), handle.ID())
	return nil
}
