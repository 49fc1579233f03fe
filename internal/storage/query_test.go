package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
)

func TestBuildWhere(t *testing.T) {
	tests := []struct {
		name      string
		filter    core.Filter
		wantWhere string
		wantArgs  []any
	}{
		{
			name:      "empty filter",
			filter:    nil,
			wantWhere: "",
			wantArgs:  nil,
		},
		{
			name:      "date range and category",
			filter:    core.Where(core.DateRange("2024-01-01", "2024-01-31"), core.CategoryIs("food")),
			wantWhere: " WHERE date >= ? AND date <= ? AND category = ?",
			wantArgs:  []any{"2024-01-01", "2024-01-31", "food"},
		},
		{
			name:      "contains escapes wildcards",
			filter:    core.Where(core.Contains(core.SearchNote, `50%_\`)),
			wantWhere: ` WHERE note LIKE ? ESCAPE '\'`,
			wantArgs:  []any{`%50\%\_\\%`},
		},
		{
			name:      "hostile value stays bound",
			filter:    core.Where(core.CategoryIs("x'; DROP TABLE expenses; --")),
			wantWhere: " WHERE category = ?",
			wantArgs:  []any{"x'; DROP TABLE expenses; --"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args, err := buildWhere(tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestBuildWhereRejectsUnknownColumn(t *testing.T) {
	_, _, err := buildWhere(core.Filter{{Column: "amount; --", Operator: core.OpEqual, Value: 1}})
	assert.Error(t, err)

	_, _, err = buildWhere(core.Filter{{Column: core.ColumnNote, Operator: "GLOB", Value: "x"}})
	assert.Error(t, err)
}

func TestBuildSet(t *testing.T) {
	set, args, err := buildSet(core.ExpensePatch{Date: core.Some("2024-01-01"), Note: core.Some("")}.Assignments())
	require.NoError(t, err)
	assert.Equal(t, "date = ?, note = ?", set)
	assert.Equal(t, []any{"2024-01-01", ""}, args)

	_, _, err = buildSet([]core.Assignment{{Column: core.ColumnID, Value: 1}})
	assert.Error(t, err)
}
