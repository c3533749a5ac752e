package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gnolang/pygolf/golf"
)

// initCmd: pygolf init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with every rule enabled",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = golf.DefaultConfigFile
		}
		if err := golf.DefaultConfig().Write(path); err != nil {
			return fmt.Errorf("error initializing config file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created/updated: %s\n", path)
		return nil
	},
}
