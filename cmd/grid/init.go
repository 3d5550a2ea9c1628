package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/grid/internal/paths"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the config file and saved-view database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// PersistentPreRunE already wrote a default config.yaml.
		configDir, err := paths.ResolveConfigDir(flagConfigDir)
		if err != nil {
			return systemError(err)
		}
		store, dataDir, err := openStore()
		if err != nil {
			return err
		}
		defer store.Detach()

		out := cmd.OutOrStdout()
		if flagJSON {
			return printJSON(out, map[string]string{"config_dir": configDir, "data_dir": dataDir})
		}
		fmt.Fprintln(out, "grid initialized")
		fmt.Fprintln(out, "  config:", configDir)
		fmt.Fprintln(out, "  data:  ", dataDir)
		return nil
	},
}
