package backend

import (
	"context"

	"expensetracker/internal/amqp"
	"expensetracker/internal/services"
	"expensetracker/internal/tools"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Backend is the assembled ledger: the service, the tool catalog over it and
// the function that releases the database and broker connections.
type Backend struct {
	Service  *services.ExpenseService
	Registry *tools.Registry
	Events   bool
	Cleanup  CleanupFunc
}

// Factory builds backends from configuration.
type Factory interface {
	// CreateBackend opens storage and, when configured, the event publisher.
	CreateBackend(ctx context.Context, config Config) (*Backend, error)

	// ConnectEvents opens a broker connection for consuming change events.
	ConnectEvents(ctx context.Context, config Config) (*amqp.Client, error)
}
