// Package cli holds the start-up steps shared by every subcommand.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"expensetracker/internal/config"
	applog "expensetracker/internal/log"
)

// LoadEnvFile loads a .env file for local development. A missing file is not
// an error; the process environment always wins over the file.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// LoadAndValidateConfig reads configuration from the environment.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetupLogger builds the application logger from cfg and installs it as the
// slog default.
func SetupLogger(cfg *config.Config) (*applog.Logger, error) {
	level, err := applog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := applog.New(applog.Config{
		Level:     level,
		Format:    cfg.LogFormat,
		Component: applog.ComponentApp,
		Output:    os.Stderr,
	})
	applog.SetDefault(logger)
	return logger, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
