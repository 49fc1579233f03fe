package backend

import (
	"fmt"

	"expensetracker/internal/config"
)

// Config holds what the factory needs to assemble the ledger.
type Config struct {
	SQLiteDBPath   string
	CategoriesPath string

	// Change events are off when AMQPURL is empty.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}
	cfg := Config{
		SQLiteDBPath:   appConfig.SQLiteDBPath,
		CategoriesPath: appConfig.CategoriesPath,
	}
	if appConfig.EventsEnabled() {
		cfg.AMQPURL = appConfig.AMQPURL
		cfg.AMQPExchange = appConfig.AMQPExchange
		cfg.AMQPQueue = appConfig.AMQPQueue
	}
	return cfg, cfg.Validate()
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if c.SQLiteDBPath == "" {
		return fmt.Errorf("SQLite database path is required")
	}
	if c.CategoriesPath == "" {
		return fmt.Errorf("categories path is required")
	}
	if c.AMQPURL != "" && (c.AMQPExchange == "" || c.AMQPQueue == "") {
		return fmt.Errorf("AMQP exchange and queue are required when AMQP URL is set")
	}
	return nil
}
