// Package cmd provides the expensetracker subcommands.
package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"expensetracker/internal/backend"
	"expensetracker/internal/cli"
	"expensetracker/internal/config"
	applog "expensetracker/internal/log"
)

// app carries what PersistentPreRunE prepared for the subcommands.
type app struct {
	envFile string
	debug   bool

	cfg    *config.Config
	logger *applog.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "expensetracker",
		Short: "Personal expense ledger with a tool-call API",
		Long: `expensetracker keeps a personal expense ledger in SQLite and exposes it
as a catalog of named tools: add, list, update, delete, search,
summarize, total, bulk delete and export.

Example:
  expensetracker serve
  expensetracker call add_expense '{"date":"2024-03-15","amount":12.5,"category":"food"}'
  expensetracker call list_expenses '{"start_date":"2024-03-01","end_date":"2024-03-31"}'`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newServeCmd(a),
		newCallCmd(a),
		newToolsCmd(a),
		newWatchCmd(a),
		newMigrateCmd(a),
		newImportCmd(a),
	)
	return root
}

// Execute runs the command tree against os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

func (a *app) init() error {
	if err := cli.LoadEnvFile(a.envFile); err != nil {
		return err
	}
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	if a.debug {
		cfg.LogLevel = "debug"
	}
	logger, err := cli.SetupLogger(cfg)
	if err != nil {
		return err
	}
	a.cfg, a.logger = cfg, logger
	return nil
}

func (a *app) backendConfig() (backend.Config, error) {
	return backend.FromAppConfig(a.cfg)
}

func (a *app) openBackend(ctx context.Context) (*backend.Backend, error) {
	cfg, err := a.backendConfig()
	if err != nil {
		return nil, err
	}
	return a.factory().CreateBackend(ctx, cfg)
}

func (a *app) factory() backend.Factory {
	return backend.NewFactory(a.logger.Logger)
}

func (a *app) closeBackend(b *backend.Backend) {
	if err := b.Cleanup(); err != nil {
		a.logger.Error("Failed to close backend", applog.FieldError, err)
	}
}
