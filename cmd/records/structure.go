// Structure command prints the current schema.
package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Print the current schema: types, attributes, and inferred types",
	Args:  cobra.NoArgs,
	RunE:  runStructure,
}

func runStructure(cmd *cobra.Command, args []string) error {
	structure := store.Structure()

	if flags.jsonMode {
		out, err := marshalIndent(structure)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	}

	typeNames := make([]string, 0, len(structure))
	for name := range structure {
		typeNames = append(typeNames, name)
	}
	sort.Strings(typeNames)
	for _, typeName := range typeNames {
		fmt.Fprintf(cmd.OutOrStdout(), "%s:\n", typeName)
		attrs := structure[typeName]
		attrNames := make([]string, 0, len(attrs))
		for attr := range attrs {
			attrNames = append(attrNames, attr)
		}
		sort.Strings(attrNames)
		for _, attr := range attrNames {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", attr, attrs[attr])
		}
	}
	return nil
}
