package backend

import (
	"context"
	"fmt"
	"log/slog"

	"expensetracker/internal/amqp"
	"expensetracker/internal/catalog"
	applog "expensetracker/internal/log"
	"expensetracker/internal/services"
	"expensetracker/internal/storage"
	"expensetracker/internal/tools"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger.With(applog.FieldComponent, applog.ComponentStorage),
	}
}

// CreateBackend implements Factory.CreateBackend. A broker that cannot be
// reached is logged and the ledger runs without change events.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Backend, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	// Left nil unless connected so the service never sees a typed nil.
	var events services.EventPublisher
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without change events", applog.FieldError, err)
		} else {
			events = client
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	svc := services.NewExpenseService(repo, events)
	registry := tools.NewRegistry(svc, catalog.NewFileSource(config.CategoriesPath))

	f.logger.InfoContext(ctx, "Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"categories_path", config.CategoriesPath,
		"amqp_enabled", events != nil)

	return &Backend{
		Service:  svc,
		Registry: registry,
		Events:   events != nil,
		Cleanup:  svc.Close,
	}, nil
}

// ConnectEvents implements Factory.ConnectEvents.
func (f *DefaultFactory) ConnectEvents(ctx context.Context, config Config) (*amqp.Client, error) {
	if config.AMQPURL == "" {
		return nil, fmt.Errorf("AMQP_URL is not set")
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	f.logger.InfoContext(ctx, "Connected to AMQP broker", "queue", config.AMQPQueue)
	return client, nil
}
