package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"expensetracker/internal/tools"
)

func newToolsCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the available tools and their parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := a.openBackend(ctx)
			if err != nil {
				return err
			}
			defer a.closeBackend(b)

			catalog := b.Registry.Tools()
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(catalog)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TOOL\tPARAMS\tDESCRIPTION")
			for _, t := range catalog {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", t.Name, paramSummary(t.Params), t.Description)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the catalog as JSON")
	return cmd
}

// paramSummary renders required parameters bare and optional ones in brackets.
func paramSummary(params []tools.Param) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		if p.Required {
			parts = append(parts, p.Name)
		} else {
			parts = append(parts, "["+p.Name+"]")
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}
