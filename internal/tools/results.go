package tools

import (
	"errors"
	"fmt"

	"expensetracker/internal/core"
)

const (
	StatusOK    = "ok"
	StatusError = "error"

	// AllCategories is echoed by get_total_expenses when no category filter was given.
	AllCategories = "all"
)

type (
	// ErrorResult is returned for expected failures callers branch on.
	ErrorResult struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}

	CreateResult struct {
		Status string `json:"status"`
		ID     int64  `json:"id"`
	}

	UpdateResult struct {
		Status  string       `json:"status"`
		Message string       `json:"message"`
		Expense core.Expense `json:"expense"`
	}

	DeleteResult struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Count   int64  `json:"count"`
	}

	SearchResult struct {
		Status   string         `json:"status"`
		Count    int            `json:"count"`
		Expenses []core.Expense `json:"expenses"`
	}

	TotalResult struct {
		Status    string  `json:"status"`
		Total     float64 `json:"total"`
		StartDate string  `json:"start_date"`
		EndDate   string  `json:"end_date"`
		Category  string  `json:"category"`
	}

	ExportResult struct {
		Status   string `json:"status"`
		CSV      string `json:"csv"`
		RowCount int    `json:"row_count"`
	}

	WorkbookResult struct {
		Status   string `json:"status"`
		XLSX     string `json:"xlsx_base64"`
		RowCount int    `json:"row_count"`
	}
)

const (
	msgConfirm     = "This is a destructive operation. Set confirm=true to proceed."
	msgNoFields    = "No fields to update"
	msgSearchField = "search_in must be 'note', 'category', or 'subcategory'"
)

func errorResult(format string, a ...any) ErrorResult {
	return ErrorResult{Status: StatusError, Message: fmt.Sprintf(format, a...)}
}

func notFound(id int64) ErrorResult {
	return errorResult("Expense with id %d not found", id)
}

// expected converts the ledger's expected outcomes into error envelopes.
// Any other error is returned unchanged for the caller to propagate.
func expected(err error, id int64) (any, error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return notFound(id), nil
	case errors.Is(err, core.ErrNoFields):
		return errorResult(msgNoFields), nil
	case errors.Is(err, core.ErrConfirmationRequired):
		return errorResult(msgConfirm), nil
	case errors.Is(err, core.ErrInvalidSearchField):
		return errorResult(msgSearchField), nil
	default:
		return nil, err
	}
}
