package tools

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"expensetracker/internal/core"
	"expensetracker/internal/export"
)

var (
	paramStartDate = Param{Name: "start_date", Type: TypeString, Required: true, Description: "Inclusive lower bound, YYYY-MM-DD"}
	paramEndDate   = Param{Name: "end_date", Type: TypeString, Required: true, Description: "Inclusive upper bound, YYYY-MM-DD"}
	paramExpenseID = Param{Name: "expense_id", Type: TypeInteger, Required: true, Description: "ID of the expense"}
	paramCategory  = Param{Name: "category", Type: TypeString, Description: "Only include this exact category"}
	paramConfirm   = Param{Name: "confirm", Type: TypeBoolean, Default: false, Description: "Must be true for the deletion to run"}
)

func (r *Registry) definitions() []Tool {
	return []Tool{
		{
			Name:        "add_expense",
			Description: "Add a new expense entry to the database.",
			Params: []Param{
				{Name: "date", Type: TypeString, Required: true, Description: "Expense date, YYYY-MM-DD"},
				{Name: "amount", Type: TypeNumber, Required: true, Description: "Amount; negative values record refunds"},
				{Name: "category", Type: TypeString, Required: true, Description: "Category name"},
				{Name: "subcategory", Type: TypeString, Default: "", Description: "Optional subcategory"},
				{Name: "note", Type: TypeString, Default: "", Description: "Optional free-text note"},
			},
			handler: r.addExpense,
		},
		{
			Name:        "list_expenses",
			Description: "List expense entries within an inclusive date range, most recent first.",
			Params:      []Param{paramStartDate, paramEndDate},
			handler:     r.listExpenses,
		},
		{
			Name:        "summarize",
			Description: "Summarize expenses by category within an inclusive date range.",
			Params:      []Param{paramStartDate, paramEndDate, paramCategory},
			handler:     r.summarize,
		},
		{
			Name:        "get_expense_by_id",
			Description: "Get a specific expense by its ID.",
			Params:      []Param{paramExpenseID},
			handler:     r.getExpenseByID,
		},
		{
			Name:        "delete_expense",
			Description: "Delete a specific expense by its ID.",
			Params:      []Param{paramExpenseID},
			handler:     r.deleteExpense,
		},
		{
			Name:        "update_expense",
			Description: "Update an existing expense. Only provided fields are updated.",
			Params: []Param{
				paramExpenseID,
				{Name: "date", Type: TypeString, Description: "New date, YYYY-MM-DD"},
				{Name: "amount", Type: TypeNumber, Description: "New amount"},
				{Name: "category", Type: TypeString, Description: "New category"},
				{Name: "subcategory", Type: TypeString, Description: "New subcategory; an empty string clears it"},
				{Name: "note", Type: TypeString, Description: "New note; an empty string clears it"},
			},
			handler: r.updateExpense,
		},
		{
			Name:        "search_expenses",
			Description: "Search expenses by note, category, or subcategory. Returns all matching expenses.",
			Params: []Param{
				{Name: "search_term", Type: TypeString, Required: true, Description: "Text to look for anywhere in the field"},
				{Name: "search_in", Type: TypeString, Default: string(core.SearchNote), Description: "One of note, category, subcategory"},
			},
			handler: r.searchExpenses,
		},
		{
			Name:        "delete_all_expenses",
			Description: "Delete multiple expenses, narrowed by optional filters. With no filters every expense is deleted. Requires confirm=true.",
			Params: []Param{
				{Name: "start_date", Type: TypeString, Description: "Inclusive lower bound; ignored unless end_date is also given"},
				{Name: "end_date", Type: TypeString, Description: "Inclusive upper bound; ignored unless start_date is also given"},
				paramCategory,
				paramConfirm,
			},
			handler: r.deleteAllExpenses,
		},
		{
			Name:        "delete_expenses_by_category",
			Description: "Delete all expenses in a specific category. Requires confirm=true.",
			Params: []Param{
				{Name: "category", Type: TypeString, Required: true, Description: "Exact category to delete"},
				paramConfirm,
			},
			handler: r.deleteExpensesByCategory,
		},
		{
			Name:        "get_total_expenses",
			Description: "Get the total amount of expenses for a date range, optionally filtered by category.",
			Params:      []Param{paramStartDate, paramEndDate, paramCategory},
			handler:     r.getTotalExpenses,
		},
		{
			Name:        "export_expenses_csv",
			Description: "Export expenses to CSV for a date range, oldest first. Returns CSV as a string.",
			Params:      []Param{paramStartDate, paramEndDate},
			handler:     r.exportExpensesCSV,
		},
		{
			Name:        "export_expenses_xlsx",
			Description: "Export expenses to an Excel workbook for a date range, oldest first. Returns the file base64-encoded.",
			Params:      []Param{paramStartDate, paramEndDate},
			handler:     r.exportExpensesXLSX,
		},
		{
			Name:        "get_categories",
			Description: "Get the list of valid expense categories.",
			Params:      []Param{},
			handler:     r.getCategories,
		},
	}
}

func (r *Registry) addExpense(ctx context.Context, args Args) (any, error) {
	var e core.NewExpense
	var err error
	if e.Date, err = args.String("date", ""); err != nil {
		return nil, err
	}
	if e.Amount, err = args.Float("amount", 0); err != nil {
		return nil, err
	}
	if e.Category, err = args.String("category", ""); err != nil {
		return nil, err
	}
	if e.Subcategory, err = args.String("subcategory", ""); err != nil {
		return nil, err
	}
	if e.Note, err = args.String("note", ""); err != nil {
		return nil, err
	}

	id, err := r.ledger.AddExpense(ctx, e)
	if isMissingField(err) {
		return nil, paramError("%v", err)
	}
	if err != nil {
		return nil, err
	}
	return CreateResult{Status: StatusOK, ID: id}, nil
}

func (r *Registry) listExpenses(ctx context.Context, args Args) (any, error) {
	start, end, err := dateRange(args)
	if err != nil {
		return nil, err
	}
	return r.ledger.ListExpenses(ctx, start, end)
}

func (r *Registry) summarize(ctx context.Context, args Args) (any, error) {
	start, end, err := dateRange(args)
	if err != nil {
		return nil, err
	}
	category, err := args.String("category", "")
	if err != nil {
		return nil, err
	}
	return r.ledger.Summarize(ctx, start, end, category)
}

func (r *Registry) getExpenseByID(ctx context.Context, args Args) (any, error) {
	id, err := args.Int("expense_id", 0)
	if err != nil {
		return nil, err
	}
	e, err := r.ledger.GetExpense(ctx, id)
	if err != nil {
		return expected(err, id)
	}
	return e, nil
}

func (r *Registry) deleteExpense(ctx context.Context, args Args) (any, error) {
	id, err := args.Int("expense_id", 0)
	if err != nil {
		return nil, err
	}
	if err := r.ledger.DeleteExpense(ctx, id); err != nil {
		return expected(err, id)
	}
	return DeleteResult{
		Status:  StatusOK,
		Message: fmt.Sprintf("Expense %d deleted successfully", id),
		Count:   1,
	}, nil
}

func (r *Registry) updateExpense(ctx context.Context, args Args) (any, error) {
	id, err := args.Int("expense_id", 0)
	if err != nil {
		return nil, err
	}
	var patch core.ExpensePatch
	if err := args.Into(&patch); err != nil {
		return nil, err
	}

	updated, err := r.ledger.UpdateExpense(ctx, id, patch)
	if isMissingField(err) {
		return nil, paramError("%v", err)
	}
	if err != nil {
		return expected(err, id)
	}
	return UpdateResult{
		Status:  StatusOK,
		Message: fmt.Sprintf("Expense %d updated successfully", id),
		Expense: updated,
	}, nil
}

func (r *Registry) searchExpenses(ctx context.Context, args Args) (any, error) {
	term, err := args.String("search_term", "")
	if err != nil {
		return nil, err
	}
	in, err := args.String("search_in", string(core.SearchNote))
	if err != nil {
		return nil, err
	}

	field, err := core.ParseSearchField(in)
	if err != nil {
		return expected(err, 0)
	}

	found, err := r.ledger.SearchExpenses(ctx, term, field)
	if err != nil {
		return nil, err
	}
	return SearchResult{Status: StatusOK, Count: len(found), Expenses: found}, nil
}

func (r *Registry) deleteAllExpenses(ctx context.Context, args Args) (any, error) {
	var req core.BulkDelete
	var err error
	if req.StartDate, err = args.String("start_date", ""); err != nil {
		return nil, err
	}
	if req.EndDate, err = args.String("end_date", ""); err != nil {
		return nil, err
	}
	if req.Category, err = args.String("category", ""); err != nil {
		return nil, err
	}
	if req.Confirm, err = args.Bool("confirm", false); err != nil {
		return nil, err
	}

	n, err := r.ledger.DeleteExpenses(ctx, req)
	if err != nil {
		return expected(err, 0)
	}
	return DeleteResult{
		Status:  StatusOK,
		Message: fmt.Sprintf("Deleted %d expense(s)", n),
		Count:   n,
	}, nil
}

func (r *Registry) deleteExpensesByCategory(ctx context.Context, args Args) (any, error) {
	category, err := args.String("category", "")
	if err != nil {
		return nil, err
	}
	confirm, err := args.Bool("confirm", false)
	if err != nil {
		return nil, err
	}

	n, err := r.ledger.DeleteExpensesByCategory(ctx, category, confirm)
	if err != nil {
		return expected(err, 0)
	}
	return DeleteResult{
		Status:  StatusOK,
		Message: fmt.Sprintf("Deleted %d expense(s) from category '%s'", n, category),
		Count:   n,
	}, nil
}

func (r *Registry) getTotalExpenses(ctx context.Context, args Args) (any, error) {
	start, end, err := dateRange(args)
	if err != nil {
		return nil, err
	}
	category, err := args.String("category", "")
	if err != nil {
		return nil, err
	}

	total, err := r.ledger.TotalExpenses(ctx, start, end, category)
	if err != nil {
		return nil, err
	}

	echo := category
	if echo == "" {
		echo = AllCategories
	}
	return TotalResult{
		Status:    StatusOK,
		Total:     total,
		StartDate: start,
		EndDate:   end,
		Category:  echo,
	}, nil
}

func (r *Registry) exportExpensesCSV(ctx context.Context, args Args) (any, error) {
	start, end, err := dateRange(args)
	if err != nil {
		return nil, err
	}
	rows, err := r.ledger.ExportExpenses(ctx, start, end)
	if err != nil {
		return nil, err
	}
	doc, err := export.EncodeCSV(rows)
	if err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}
	return ExportResult{Status: StatusOK, CSV: doc, RowCount: len(rows)}, nil
}

func (r *Registry) exportExpensesXLSX(ctx context.Context, args Args) (any, error) {
	start, end, err := dateRange(args)
	if err != nil {
		return nil, err
	}
	rows, err := r.ledger.ExportExpenses(ctx, start, end)
	if err != nil {
		return nil, err
	}
	data, err := export.EncodeXLSX(rows)
	if err != nil {
		return nil, fmt.Errorf("encode xlsx: %w", err)
	}
	return WorkbookResult{
		Status:   StatusOK,
		XLSX:     base64.StdEncoding.EncodeToString(data),
		RowCount: len(rows),
	}, nil
}

// getCategories returns the catalog file content as a string, unparsed.
func (r *Registry) getCategories(ctx context.Context, _ Args) (any, error) {
	return r.categories.Read(ctx)
}

// isMissingField reports a blank required field, which is a caller fault.
func isMissingField(err error) bool {
	return errors.Is(err, core.ErrEmptyDate) || errors.Is(err, core.ErrEmptyCategory)
}

func dateRange(args Args) (string, string, error) {
	start, err := args.String("start_date", "")
	if err != nil {
		return "", "", err
	}
	end, err := args.String("end_date", "")
	if err != nil {
		return "", "", err
	}
	return start, end, nil
}
