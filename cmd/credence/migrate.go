package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Harshitk-cp/credence/internal/config"
	"github.com/Harshitk-cp/credence/internal/store"
)

var migrationsDir string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending SQL migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		pool, err := connect(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		dir := migrationsDir
		if dir == "" {
			dir = config.MigrationsPath()
		}
		applied, err := store.Migrate(ctx, pool, dir, logger)
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		}
		for _, name := range applied {
			fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().StringVar(&migrationsDir, "dir", "", "migrations directory (default $MIGRATIONS_PATH or ./migrations)")
}
