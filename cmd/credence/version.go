package main

import (
	"github.com/spf13/cobra"

	"github.com/Harshitk-cp/credence/internal/buildconfig"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Args:  cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return printJSON(cmd.OutOrStdout(), buildconfig.VersionInfo())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
