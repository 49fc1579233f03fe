package services

import (
	"context"
	"fmt"
	"log/slog"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
)

// Repository is the persistence the service needs.
type Repository interface {
	Create(ctx context.Context, e core.NewExpense) (int64, error)
	Get(ctx context.Context, id int64) (core.Expense, error)
	List(ctx context.Context, f core.Filter, order core.Order) ([]core.Expense, error)
	Update(ctx context.Context, id int64, patch core.ExpensePatch) (core.Expense, error)
	Delete(ctx context.Context, id int64) error
	DeleteWhere(ctx context.Context, f core.Filter) (int64, error)
	SumByCategory(ctx context.Context, f core.Filter) ([]core.CategoryTotal, error)
	Total(ctx context.Context, f core.Filter) (float64, error)
	Close() error
}

// EventPublisher receives change events after mutations are stored.
type EventPublisher interface {
	PublishExpenseEvent(ctx context.Context, event *amqp.ExpenseEvent) error
	Close() error
}

// ExpenseService runs ledger operations against the repository and announces
// mutations to the optional publisher.
type ExpenseService struct {
	storage Repository
	events  EventPublisher
}

// NewExpenseService wires the service. events may be nil to disable change events.
func NewExpenseService(storage Repository, events EventPublisher) *ExpenseService {
	return &ExpenseService{
		storage: storage,
		events:  events,
	}
}

// AddExpense stores a new expense and returns its ID.
func (s *ExpenseService) AddExpense(ctx context.Context, e core.NewExpense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}

	id, err := s.storage.Create(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("save expense: %w", err)
	}

	s.publish(ctx, amqp.NewExpenseEvent(amqp.ActionCreated, id))
	return id, nil
}

// GetExpense returns one expense; a missing ID yields core.ErrNotFound.
func (s *ExpenseService) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	return s.storage.Get(ctx, id)
}

// ListExpenses returns expenses dated within [start, end], newest first.
func (s *ExpenseService) ListExpenses(ctx context.Context, start, end string) ([]core.Expense, error) {
	return s.storage.List(ctx, core.Where(core.DateRange(start, end)), core.NewestFirst)
}

// UpdateExpense overwrites only the fields set in patch and returns the result.
// Blanking the date or category is rejected before storage is touched.
func (s *ExpenseService) UpdateExpense(ctx context.Context, id int64, patch core.ExpensePatch) (core.Expense, error) {
	if err := patch.Validate(); err != nil {
		return core.Expense{}, err
	}

	updated, err := s.storage.Update(ctx, id, patch)
	if err != nil {
		return core.Expense{}, err
	}

	s.publish(ctx, amqp.NewExpenseEvent(amqp.ActionUpdated, id))
	return updated, nil
}

// DeleteExpense removes one expense.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id int64) error {
	if err := s.storage.Delete(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, amqp.NewExpenseEvent(amqp.ActionDeleted, id))
	return nil
}

// SearchExpenses returns expenses whose field contains term, newest first.
func (s *ExpenseService) SearchExpenses(ctx context.Context, term string, field core.SearchField) ([]core.Expense, error) {
	return s.storage.List(ctx, core.Where(core.Contains(field, term)), core.NewestFirst)
}

// Summarize totals amounts per category within [start, end]. A non-empty
// category restricts the result to that category.
func (s *ExpenseService) Summarize(ctx context.Context, start, end, category string) ([]core.CategoryTotal, error) {
	return s.storage.SumByCategory(ctx, core.Where(core.DateRange(start, end), core.CategoryIs(category)))
}

// TotalExpenses sums amounts within [start, end], optionally for one category.
func (s *ExpenseService) TotalExpenses(ctx context.Context, start, end, category string) (float64, error) {
	return s.storage.Total(ctx, core.Where(core.DateRange(start, end), core.CategoryIs(category)))
}

// DeleteExpenses removes every expense matching the request. Without Confirm
// nothing is touched. With no filters at all the whole ledger is wiped.
func (s *ExpenseService) DeleteExpenses(ctx context.Context, req core.BulkDelete) (int64, error) {
	if !req.Confirm {
		return 0, core.ErrConfirmationRequired
	}
	if req.HasLoneBound() {
		slog.WarnContext(ctx, "Ignoring date filter with a single bound",
			"start_date", req.StartDate,
			"end_date", req.EndDate)
	}

	n, err := s.storage.DeleteWhere(ctx, req.Filter())
	if err != nil {
		return 0, err
	}

	s.publish(ctx, amqp.NewBulkDeleteEvent(n, req.Category))
	return n, nil
}

// DeleteExpensesByCategory removes every expense whose category equals category.
func (s *ExpenseService) DeleteExpensesByCategory(ctx context.Context, category string, confirm bool) (int64, error) {
	if !confirm {
		return 0, core.ErrConfirmationRequired
	}

	n, err := s.storage.DeleteWhere(ctx, core.Where(core.ExactCategory(category)))
	if err != nil {
		return 0, err
	}

	s.publish(ctx, amqp.NewBulkDeleteEvent(n, category))
	return n, nil
}

// ExportExpenses returns expenses within [start, end] oldest first, the order
// a ledger is read in.
func (s *ExpenseService) ExportExpenses(ctx context.Context, start, end string) ([]core.Expense, error) {
	return s.storage.List(ctx, core.Where(core.DateRange(start, end)), core.OldestFirst)
}

// publish never fails the caller; the mutation is already stored.
func (s *ExpenseService) publish(ctx context.Context, event *amqp.ExpenseEvent) {
	if s.events == nil {
		slog.DebugContext(ctx, "Event publisher not configured, skipping event", "action", event.Action)
		return
	}

	if err := s.events.PublishExpenseEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"action", event.Action,
			"id", event.ID,
			"error", err)
	}
}

// Close closes both storage and the event publisher
func (s *ExpenseService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.events != nil {
		if err := s.events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %v", errs)
	}

	return nil
}
