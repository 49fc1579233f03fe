package cmd

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"expensetracker/internal/cli"
	apphttp "expensetracker/internal/http"
	applog "expensetracker/internal/log"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the tool catalog over HTTP",
		Long: `Serve the ledger over HTTP until SIGINT or SIGTERM.

Routes:
  GET  /tools                  tool catalog
  POST /tools/{name}           call a tool; the body is its parameter object
  GET  /resources/categories   category catalog
  GET  /export/{csv|xlsx}      file download for start_date..end_date
  GET  /healthz, /readyz       probes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := cli.SignalContext(cmd.Context())
			defer stop()
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	b, err := a.openBackend(ctx)
	if err != nil {
		return err
	}
	defer a.closeBackend(b)

	srv := apphttp.NewServer(":"+a.cfg.Port, b.Registry, b.Service, a.logger,
		apphttp.Options{RequestsPerMinute: a.cfg.RateLimitPerMinute})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("Starting expensetracker server",
			applog.FieldOperation, applog.OpStartup,
			"port", a.cfg.Port,
			"db_path", a.cfg.SQLiteDBPath,
			"events", b.Events)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		a.logger.Error("Server error", applog.FieldError, err)
		return err
	}
	a.logger.Info("Server stopped gracefully")
	return nil
}
