package storage

import (
	"fmt"
	"strings"

	"expensetracker/internal/core"
)

const (
	tableName     = "expenses"
	selectColumns = "id, date, amount, category, COALESCE(subcategory, ''), COALESCE(note, '')"
)

// Only these identifiers may reach the query text; every value is bound.
var knownColumns = map[string]struct{}{
	core.ColumnID:          {},
	core.ColumnDate:        {},
	core.ColumnAmount:      {},
	core.ColumnCategory:    {},
	core.ColumnSubcategory: {},
	core.ColumnNote:        {},
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildWhere renders a filter as " WHERE a = ? AND b <= ?" plus its arguments.
// An empty filter renders as the empty string.
func buildWhere(f core.Filter) (string, []any, error) {
	if len(f) == 0 {
		return "", nil, nil
	}

	clauses := make([]string, 0, len(f))
	args := make([]any, 0, len(f))
	for _, p := range f {
		if _, ok := knownColumns[p.Column]; !ok {
			return "", nil, fmt.Errorf("unknown column %q", p.Column)
		}
		switch p.Operator {
		case core.OpEqual, core.OpGreaterEqual, core.OpLessEqual:
			clauses = append(clauses, p.Column+" "+string(p.Operator)+" ?")
			args = append(args, p.Value)
		case core.OpContains:
			term, ok := p.Value.(string)
			if !ok {
				return "", nil, fmt.Errorf("contains on %s needs a string, got %T", p.Column, p.Value)
			}
			clauses = append(clauses, p.Column+` LIKE ? ESCAPE '\'`)
			args = append(args, "%"+likeEscaper.Replace(term)+"%")
		default:
			return "", nil, fmt.Errorf("unsupported operator %q", p.Operator)
		}
	}

	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

// buildSet renders "a = ?, b = ?" for an UPDATE.
func buildSet(assignments []core.Assignment) (string, []any, error) {
	parts := make([]string, 0, len(assignments))
	args := make([]any, 0, len(assignments))
	for _, a := range assignments {
		if _, ok := knownColumns[a.Column]; !ok || a.Column == core.ColumnID {
			return "", nil, fmt.Errorf("column %q cannot be updated", a.Column)
		}
		parts = append(parts, a.Column+" = ?")
		args = append(args, a.Value)
	}
	return strings.Join(parts, ", "), args, nil
}

func orderBy(o core.Order) string {
	if o == core.OldestFirst {
		return " ORDER BY date ASC, id ASC"
	}
	return " ORDER BY date DESC, id DESC"
}
