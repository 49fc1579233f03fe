package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"expensetracker/internal/storage"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the ledger schema if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := storage.RunMigrations(a.cfg.SQLiteDBPath); err != nil {
				return err
			}
			a.logger.Info("Schema is up to date", "db_path", a.cfg.SQLiteDBPath)
			fmt.Fprintf(cmd.OutOrStdout(), "schema ready at %s\n", a.cfg.SQLiteDBPath)
			return nil
		},
	}
}
