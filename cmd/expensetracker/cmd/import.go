package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"expensetracker/internal/core"
	"expensetracker/internal/export"
	applog "expensetracker/internal/log"
)

func newImportCmd(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Add every row of a CSV export to the ledger",
		Long: `Read a CSV file in the layout produced by export_expenses_csv and add
each row as a new expense. The id column is ignored; rows get fresh IDs.

Example:
  expensetracker import backup.csv --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			rows, err := export.ParseCSV(f)
			if err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "%d expense(s) would be imported\n", len(rows))
				return nil
			}

			ctx := cmd.Context()
			b, err := a.openBackend(ctx)
			if err != nil {
				return err
			}
			defer a.closeBackend(b)

			for i, row := range rows {
				_, err := b.Service.AddExpense(ctx, core.NewExpense{
					Date:        row.Date,
					Amount:      row.Amount,
					Category:    row.Category,
					Subcategory: row.Subcategory,
					Note:        row.Note,
				})
				if err != nil {
					return fmt.Errorf("row %d: %w", i+1, err)
				}
			}

			a.logger.WithComponent(applog.ComponentCLI).Info("Import complete", applog.FieldOperation, applog.OpImport, applog.FieldCount, len(rows))
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d expense(s)\n", len(rows))
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse the file without writing")
	return cmd
}
