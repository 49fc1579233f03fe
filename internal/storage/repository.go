package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"

	_ "modernc.org/sqlite"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// busyTimeoutDSN makes a locked database wait up to 5s before failing.
const busyTimeoutDSN = "?_pragma=busy_timeout(5000)"

type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens the database file, creating its directory, and
// makes sure the schema exists.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+busyTimeoutDSN)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection serializes writers; a second connection upgrading
	// a read transaction would fail with SQLITE_BUSY instead of waiting.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return NewRepository(db), nil
}

// NewRepository wraps an already opened database whose schema is in place.
func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Create inserts a new expense and returns its assigned ID.
func (r *SQLiteRepository) Create(ctx context.Context, e core.NewExpense) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO expenses(date, amount, category, subcategory, note) VALUES (?, ?, ?, ?, ?)",
		e.Date, e.Amount, e.Category, e.Subcategory, e.Note)
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted id: %w", err)
	}

	fields := applog.NewFields().
		WithOperation(applog.OpCreate).
		WithExpense(id, e.Category, e.Amount)
	slog.InfoContext(ctx, "Expense saved to SQLite", fields.ToSlice()...)

	return id, nil
}

// Get returns the expense with the given ID, or an error wrapping core.ErrNotFound.
func (r *SQLiteRepository) Get(ctx context.Context, id int64) (core.Expense, error) {
	return getExpense(ctx, r.db, id)
}

// List returns every expense matching f in the requested order.
func (r *SQLiteRepository) List(ctx context.Context, f core.Filter, order core.Order) ([]core.Expense, error) {
	where, args, err := buildWhere(f)
	if err != nil {
		return nil, fmt.Errorf("build filter: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, "SELECT "+selectColumns+" FROM "+tableName+where+orderBy(order), args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	expenses := make([]core.Expense, 0)
	for rows.Next() {
		var e core.Expense
		if err := rows.Scan(&e.ID, &e.Date, &e.Amount, &e.Category, &e.Subcategory, &e.Note); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}

	return expenses, nil
}

// Update applies the supplied fields of patch to one expense. The existence
// check and the UPDATE share a transaction. An empty patch returns
// core.ErrNoFields without writing anything.
func (r *SQLiteRepository) Update(ctx context.Context, id int64, patch core.ExpensePatch) (core.Expense, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Expense{}, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	current, err := getExpense(ctx, tx, id)
	if err != nil {
		return core.Expense{}, err
	}

	assignments := patch.Assignments()
	if len(assignments) == 0 {
		return core.Expense{}, core.ErrNoFields
	}

	set, args, err := buildSet(assignments)
	if err != nil {
		return core.Expense{}, fmt.Errorf("build update: %w", err)
	}
	args = append(args, id)

	if _, err := tx.ExecContext(ctx, "UPDATE "+tableName+" SET "+set+" WHERE id = ?", args...); err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Expense{}, fmt.Errorf("commit update: %w", err)
	}

	updated := patch.Apply(current)
	fields := applog.NewFields().
		WithOperation(applog.OpUpdate).
		WithExpense(id, updated.Category, updated.Amount)
	fields[applog.FieldCount] = len(assignments)
	slog.InfoContext(ctx, "Expense updated", fields.ToSlice()...)
	return updated, nil
}

// Delete removes exactly one expense after confirming it exists.
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	current, err := getExpense(ctx, tx, id)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+tableName+" WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}

	fields := applog.NewFields().
		WithOperation(applog.OpDelete).
		WithExpense(current.ID, current.Category, current.Amount)
	slog.InfoContext(ctx, "Expense deleted", fields.ToSlice()...)
	return nil
}

// DeleteWhere removes every row matching f in one statement and returns the
// number removed. An empty filter clears the table.
func (r *SQLiteRepository) DeleteWhere(ctx context.Context, f core.Filter) (int64, error) {
	where, args, err := buildWhere(f)
	if err != nil {
		return 0, fmt.Errorf("build filter: %w", err)
	}

	res, err := r.db.ExecContext(ctx, "DELETE FROM "+tableName+where, args...)
	if err != nil {
		return 0, fmt.Errorf("delete expenses: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read deleted count: %w", err)
	}

	slog.WarnContext(ctx, "Expenses bulk deleted",
		applog.FieldOperation, applog.OpDelete,
		applog.FieldCount, n,
		"filters", len(f))
	return n, nil
}

// SumByCategory totals amounts per category, ascending by category. Categories
// without matching rows are absent.
func (r *SQLiteRepository) SumByCategory(ctx context.Context, f core.Filter) ([]core.CategoryTotal, error) {
	where, args, err := buildWhere(f)
	if err != nil {
		return nil, fmt.Errorf("build filter: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT category, SUM(amount) AS total_amount FROM "+tableName+where+" GROUP BY category ORDER BY category ASC",
		args...)
	if err != nil {
		return nil, fmt.Errorf("query category sums: %w", err)
	}
	defer rows.Close()

	totals := make([]core.CategoryTotal, 0)
	for rows.Next() {
		var ct core.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.TotalAmount); err != nil {
			return nil, fmt.Errorf("scan category sum: %w", err)
		}
		totals = append(totals, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category sums: %w", err)
	}

	return totals, nil
}

// Total sums amounts over rows matching f; no rows yields 0.
func (r *SQLiteRepository) Total(ctx context.Context, f core.Filter) (float64, error) {
	where, args, err := buildWhere(f)
	if err != nil {
		return 0, fmt.Errorf("build filter: %w", err)
	}

	var total sql.NullFloat64
	if err := r.db.QueryRowContext(ctx, "SELECT SUM(amount) AS total FROM "+tableName+where, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("query total: %w", err)
	}
	if !total.Valid {
		return 0, nil
	}
	return total.Float64, nil
}

func getExpense(ctx context.Context, q querier, id int64) (core.Expense, error) {
	var e core.Expense
	err := q.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM "+tableName+" WHERE id = ?", id).
		Scan(&e.ID, &e.Date, &e.Amount, &e.Category, &e.Subcategory, &e.Note)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("query expense %d: %w", id, err)
	}
	return e, nil
}
