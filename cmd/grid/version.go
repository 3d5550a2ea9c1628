package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/grid/pkg/grid"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the grid version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "grid", grid.Version)
	},
}
