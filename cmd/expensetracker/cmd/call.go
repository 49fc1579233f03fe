package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newCallCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "call <tool> [params-json|-]",
		Short: "Invoke one tool and print its JSON result",
		Long: `Invoke one tool against the local ledger and print its result.

Parameters are a JSON object given inline, or read from stdin when the
argument is "-". Omitting them calls the tool with no parameters.

Example:
  expensetracker call get_total_expenses '{"start_date":"2024-01-01","end_date":"2024-12-31"}'
  echo '{"expense_id":3}' | expensetracker call get_expense_by_id -`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var params []byte
			if len(args) == 2 {
				if args[1] == "-" {
					data, err := io.ReadAll(cmd.InOrStdin())
					if err != nil {
						return fmt.Errorf("read params: %w", err)
					}
					params = data
				} else {
					params = []byte(args[1])
				}
			}

			ctx := cmd.Context()
			b, err := a.openBackend(ctx)
			if err != nil {
				return err
			}
			defer a.closeBackend(b)

			result, err := b.Registry.Call(ctx, args[0], params)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
}
