package cmd

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"expensetracker/internal/amqp"
	"expensetracker/internal/cli"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print ledger change events from the broker",
		Long: `Consume ledger change events from the configured AMQP queue and print
each one as a JSON line until interrupted. Requires AMQP_URL.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := cli.SignalContext(cmd.Context())
			defer stop()

			cfg, err := a.backendConfig()
			if err != nil {
				return err
			}
			client, err := a.factory().ConnectEvents(ctx, cfg)
			if err != nil {
				return err
			}
			defer client.Close()

			enc := json.NewEncoder(cmd.OutOrStdout())
			err = client.ConsumeExpenseEvents(ctx, func(e *amqp.ExpenseEvent) error {
				return enc.Encode(e)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
