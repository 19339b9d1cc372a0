package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"debttrack/internal/storage"
)

func migrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations to the ledger database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := storage.RunMigrations(opts.dbPath); err != nil {
				return err
			}
			return printVersion(cmd, opts.dbPath)
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printVersion(cmd, opts.dbPath)
		},
	})
	return cmd
}

func printVersion(cmd *cobra.Command, dbPath string) error {
	version, dirty, err := storage.SchemaVersion(dbPath)
	if err != nil {
		return err
	}
	state := "clean"
	if dirty {
		state = "dirty"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: schema version %d (%s)\n", dbPath, version, state)
	return nil
}
