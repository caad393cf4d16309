// List and count commands over one record type.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list <type>",
	Short: "List all records of a type in insertion order",
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	records := store.All(args[0])
	out, err := marshalIndent(records)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

var countCmd = &cobra.Command{
	Use:   "count <type>",
	Short: "Count the records of a type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), store.Count(args[0]))
		return nil
	},
}
