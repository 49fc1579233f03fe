package core

import "fmt"

// Column names of the expenses table.
const (
	ColumnID          = "id"
	ColumnDate        = "date"
	ColumnAmount      = "amount"
	ColumnCategory    = "category"
	ColumnSubcategory = "subcategory"
	ColumnNote        = "note"
)

// Columns lists every column in export order.
var Columns = []string{ColumnID, ColumnDate, ColumnAmount, ColumnCategory, ColumnSubcategory, ColumnNote}

type (
	// Operator is a comparison used in a Predicate.
	Operator string

	// Predicate is one "column operator ?" condition with its bound value.
	Predicate struct {
		Column   string
		Operator Operator
		Value    any
	}

	// Filter is a conjunction of predicates. An empty Filter matches every row.
	Filter []Predicate

	// Order selects the sort direction for listings.
	Order int

	// SearchField is a column that supports substring search.
	SearchField string

	// BulkDelete describes a filtered, confirmation-gated delete.
	BulkDelete struct {
		StartDate string
		EndDate   string
		Category  string
		Confirm   bool
	}
)

const (
	OpEqual        Operator = "="
	OpGreaterEqual Operator = ">="
	OpLessEqual    Operator = "<="
	OpContains     Operator = "LIKE"
)

const (
	// NewestFirst sorts by date then id, both descending.
	NewestFirst Order = iota
	// OldestFirst sorts by date then id, both ascending.
	OldestFirst
)

const (
	SearchNote        SearchField = "note"
	SearchCategory    SearchField = "category"
	SearchSubcategory SearchField = "subcategory"
)

// SearchFields lists the accepted search fields.
var SearchFields = []SearchField{SearchNote, SearchCategory, SearchSubcategory}

// ParseSearchField validates s against SearchFields. An empty string selects note.
func ParseSearchField(s string) (SearchField, error) {
	if s == "" {
		return SearchNote, nil
	}
	for _, f := range SearchFields {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSearchField, s)
}

// Where joins predicate groups into one Filter, preserving order.
func Where(groups ...[]Predicate) Filter {
	var f Filter
	for _, g := range groups {
		f = append(f, g...)
	}
	return f
}

// DateRange matches dates within [start, end], both inclusive.
func DateRange(start, end string) []Predicate {
	return []Predicate{
		{Column: ColumnDate, Operator: OpGreaterEqual, Value: start},
		{Column: ColumnDate, Operator: OpLessEqual, Value: end},
	}
}

// OptionalDateRange is DateRange when both bounds are given and nothing otherwise.
func OptionalDateRange(start, end string) []Predicate {
	if start == "" || end == "" {
		return nil
	}
	return DateRange(start, end)
}

// CategoryIs matches an exact category. An empty category adds no condition.
func CategoryIs(category string) []Predicate {
	if category == "" {
		return nil
	}
	return []Predicate{{Column: ColumnCategory, Operator: OpEqual, Value: category}}
}

// ExactCategory matches an exact category, including the empty string.
func ExactCategory(category string) []Predicate {
	return []Predicate{{Column: ColumnCategory, Operator: OpEqual, Value: category}}
}

// Contains matches rows whose field contains term anywhere.
func Contains(field SearchField, term string) []Predicate {
	return []Predicate{{Column: string(field), Operator: OpContains, Value: term}}
}

// Filter returns the conjunction described by the bulk delete. With no
// filters it is empty and matches the whole table.
func (b BulkDelete) Filter() Filter {
	return Where(OptionalDateRange(b.StartDate, b.EndDate), CategoryIs(b.Category))
}

// HasLoneBound reports whether exactly one date bound was supplied; such a
// bound is ignored.
func (b BulkDelete) HasLoneBound() bool {
	return (b.StartDate == "") != (b.EndDate == "")
}
