package tools

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/catalog"
	"expensetracker/internal/core"
	"expensetracker/internal/services"
	"expensetracker/internal/storage"
)

// Results must reproduce this layout byte for byte.
const categoriesDoc = "{\n  \"food\": [\"lunch\", \"groceries\"]\n}\n"

type staticSource string

func (s staticSource) Read(context.Context) (string, error) {
	return string(s), nil
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "expenses.db"))
	require.NoError(t, err)
	svc := services.NewExpenseService(repo, nil)
	t.Cleanup(func() { svc.Close() })
	return NewRegistry(svc, staticSource(categoriesDoc))
}

func call(t *testing.T, r *Registry, name, params string) any {
	t.Helper()
	got, err := r.Call(context.Background(), name, json.RawMessage(params))
	require.NoError(t, err)
	return got
}

func add(t *testing.T, r *Registry, params string) int64 {
	t.Helper()
	res, ok := call(t, r, "add_expense", params).(CreateResult)
	require.True(t, ok)
	require.Equal(t, StatusOK, res.Status)
	return res.ID
}

func TestCatalogOrder(t *testing.T) {
	r := newTestRegistry(t)
	names := make([]string, 0)
	for _, tool := range r.Tools() {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{
		"add_expense",
		"list_expenses",
		"summarize",
		"get_expense_by_id",
		"delete_expense",
		"update_expense",
		"search_expenses",
		"delete_all_expenses",
		"delete_expenses_by_category",
		"get_total_expenses",
		"export_expenses_csv",
		"export_expenses_xlsx",
		"get_categories",
	}, names)
}

func TestAddAndGet(t *testing.T) {
	r := newTestRegistry(t)
	id := add(t, r, `{"date":"2024-03-15","amount":12.5,"category":"food"}`)
	assert.Equal(t, int64(1), id)

	got := call(t, r, "get_expense_by_id", `{"expense_id":1}`)
	assert.Equal(t, core.Expense{ID: 1, Date: "2024-03-15", Amount: 12.5, Category: "food"}, got)

	got = call(t, r, "get_expense_by_id", `{"expense_id":99}`)
	assert.Equal(t, ErrorResult{Status: StatusError, Message: "Expense with id 99 not found"}, got)
}

func TestInvalidParams(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		tool   string
		params string
	}{
		{"missing required", "add_expense", `{"date":"2024-01-01","amount":1}`},
		{"unknown param", "list_expenses", `{"start_date":"a","end_date":"b","limit":3}`},
		{"wrong type", "get_expense_by_id", `{"expense_id":"seven"}`},
		{"not an object", "get_categories", `[1,2]`},
		{"bad patch type", "update_expense", `{"expense_id":1,"amount":"ten"}`},
		{"empty category", "add_expense", `{"date":"2024-01-01","amount":1,"category":""}`},
		{"blank category on update", "update_expense", `{"expense_id":1,"category":""}`},
		{"blank date on update", "update_expense", `{"expense_id":1,"date":"  "}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Call(ctx, tt.tool, json.RawMessage(tt.params))
			assert.ErrorIs(t, err, ErrInvalidParams)
		})
	}

	_, err := r.Call(ctx, "nope", nil)
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestListExpensesNewestFirst(t *testing.T) {
	r := newTestRegistry(t)
	add(t, r, `{"date":"2024-01-01","amount":1,"category":"a"}`)
	add(t, r, `{"date":"2024-01-03","amount":2,"category":"a"}`)
	add(t, r, `{"date":"2024-02-01","amount":3,"category":"a"}`)

	got, ok := call(t, r, "list_expenses", `{"start_date":"2024-01-01","end_date":"2024-01-31"}`).([]core.Expense)
	require.True(t, ok)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-01-03", got[0].Date)

	empty := call(t, r, "list_expenses", `{"start_date":"2030-01-01","end_date":"2030-01-31"}`)
	data, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestUpdateExpense(t *testing.T) {
	r := newTestRegistry(t)
	add(t, r, `{"date":"2024-01-01","amount":5,"category":"food","subcategory":"lunch","note":"x"}`)

	got := call(t, r, "update_expense", `{"expense_id":1,"amount":7,"note":""}`)
	assert.Equal(t, UpdateResult{
		Status:  StatusOK,
		Message: "Expense 1 updated successfully",
		Expense: core.Expense{ID: 1, Date: "2024-01-01", Amount: 7, Category: "food", Subcategory: "lunch"},
	}, got)

	got = call(t, r, "update_expense", `{"expense_id":1}`)
	assert.Equal(t, ErrorResult{Status: StatusError, Message: msgNoFields}, got)

	got = call(t, r, "update_expense", `{"expense_id":1,"note":null}`)
	assert.Equal(t, ErrorResult{Status: StatusError, Message: msgNoFields}, got)

	got = call(t, r, "update_expense", `{"expense_id":42,"amount":1}`)
	assert.Equal(t, ErrorResult{Status: StatusError, Message: "Expense with id 42 not found"}, got)
}

func TestDeleteExpense(t *testing.T) {
	r := newTestRegistry(t)
	add(t, r, `{"date":"2024-01-01","amount":5,"category":"food"}`)

	got := call(t, r, "delete_expense", `{"expense_id":1}`)
	assert.Equal(t, DeleteResult{Status: StatusOK, Message: "Expense 1 deleted successfully", Count: 1}, got)

	got = call(t, r, "delete_expense", `{"expense_id":1}`)
	assert.Equal(t, ErrorResult{Status: StatusError, Message: "Expense with id 1 not found"}, got)
}

func TestSearchExpenses(t *testing.T) {
	r := newTestRegistry(t)
	add(t, r, `{"date":"2024-01-01","amount":1,"category":"food","note":"100% juice"}`)
	add(t, r, `{"date":"2024-01-02","amount":1,"category":"food","note":"1000 grams"}`)

	got, ok := call(t, r, "search_expenses", `{"search_term":"100%"}`).(SearchResult)
	require.True(t, ok)
	assert.Equal(t, 1, got.Count)
	assert.Equal(t, "100% juice", got.Expenses[0].Note)

	got, ok = call(t, r, "search_expenses", `{"search_term":"FOOD","search_in":"category"}`).(SearchResult)
	require.True(t, ok)
	assert.Equal(t, 2, got.Count)

	bad := call(t, r, "search_expenses", `{"search_term":"x","search_in":"amount"}`)
	assert.Equal(t, ErrorResult{Status: StatusError, Message: msgSearchField}, bad)
}

func TestSummarizeAndTotal(t *testing.T) {
	r := newTestRegistry(t)
	add(t, r, `{"date":"2024-01-01","amount":10,"category":"food"}`)
	add(t, r, `{"date":"2024-01-02","amount":5,"category":"food"}`)
	add(t, r, `{"date":"2024-01-03","amount":20,"category":"rent"}`)

	summary := call(t, r, "summarize", `{"start_date":"2024-01-01","end_date":"2024-01-31"}`)
	assert.Equal(t, []core.CategoryTotal{
		{Category: "food", TotalAmount: 15},
		{Category: "rent", TotalAmount: 20},
	}, summary)

	total := call(t, r, "get_total_expenses", `{"start_date":"2024-01-01","end_date":"2024-01-31"}`)
	assert.Equal(t, TotalResult{Status: StatusOK, Total: 35, StartDate: "2024-01-01", EndDate: "2024-01-31", Category: AllCategories}, total)

	total = call(t, r, "get_total_expenses", `{"start_date":"2025-01-01","end_date":"2025-01-31","category":"food"}`)
	assert.Equal(t, TotalResult{Status: StatusOK, Total: 0, StartDate: "2025-01-01", EndDate: "2025-01-31", Category: "food"}, total)
}

func TestBulkDeletes(t *testing.T) {
	r := newTestRegistry(t)
	add(t, r, `{"date":"2024-01-01","amount":1,"category":"food"}`)
	add(t, r, `{"date":"2024-01-02","amount":1,"category":"fun"}`)
	add(t, r, `{"date":"2024-02-01","amount":1,"category":"food"}`)

	got := call(t, r, "delete_all_expenses", `{"category":"food"}`)
	assert.Equal(t, ErrorResult{Status: StatusError, Message: msgConfirm}, got)

	got = call(t, r, "delete_expenses_by_category", `{"category":"food"}`)
	assert.Equal(t, ErrorResult{Status: StatusError, Message: msgConfirm}, got)

	got = call(t, r, "delete_all_expenses", `{"start_date":"2024-01-01","end_date":"2024-01-31","category":"food","confirm":true}`)
	assert.Equal(t, DeleteResult{Status: StatusOK, Message: "Deleted 1 expense(s)", Count: 1}, got)

	got = call(t, r, "delete_expenses_by_category", `{"category":"food","confirm":true}`)
	assert.Equal(t, DeleteResult{Status: StatusOK, Message: "Deleted 1 expense(s) from category 'food'", Count: 1}, got)

	got = call(t, r, "delete_all_expenses", `{"confirm":true}`)
	assert.Equal(t, DeleteResult{Status: StatusOK, Message: "Deleted 1 expense(s)", Count: 1}, got)
}

func TestExports(t *testing.T) {
	r := newTestRegistry(t)
	add(t, r, `{"date":"2024-01-02","amount":2.5,"category":"food","note":"a, b"}`)
	add(t, r, `{"date":"2024-01-01","amount":1,"category":"rent"}`)

	csvRes, ok := call(t, r, "export_expenses_csv", `{"start_date":"2024-01-01","end_date":"2024-01-31"}`).(ExportResult)
	require.True(t, ok)
	assert.Equal(t, 2, csvRes.RowCount)
	assert.Equal(t,
		"id,date,amount,category,subcategory,note\n"+
			"2,2024-01-01,1,rent,,\n"+
			"1,2024-01-02,2.5,food,,\"a, b\"\n",
		csvRes.CSV)

	xlsxRes, ok := call(t, r, "export_expenses_xlsx", `{"start_date":"2024-01-01","end_date":"2024-01-31"}`).(WorkbookResult)
	require.True(t, ok)
	assert.Equal(t, 2, xlsxRes.RowCount)
	data, err := base64.StdEncoding.DecodeString(xlsxRes.XLSX)
	require.NoError(t, err)
	assert.Equal(t, "PK", string(data[:2]))
}

func TestCategoriesToolAndResource(t *testing.T) {
	r := newTestRegistry(t)

	got := call(t, r, "get_categories", ``)
	assert.Equal(t, categoriesDoc, got)

	data, err := json.Marshal(got)
	require.NoError(t, err)
	var text string
	require.NoError(t, json.Unmarshal(data, &text), "result must serialize as a JSON string")
	assert.Equal(t, categoriesDoc, text)

	res, err := r.ReadResource(context.Background(), catalog.ResourceURI)
	require.NoError(t, err)
	assert.Equal(t, catalog.MimeType, res.MimeType)
	assert.Equal(t, categoriesDoc, res.Text)

	_, err = r.ReadResource(context.Background(), "expense://nope")
	assert.ErrorIs(t, err, ErrUnknownResource)
}
