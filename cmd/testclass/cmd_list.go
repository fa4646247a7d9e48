package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/freemyipod/testclass/pkg/suite"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List test cases",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range suite.Names() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}
