package core

import (
	"encoding/json"
	"errors"
	"strings"
)

type (
	// Expense is a stored ledger entry.
	Expense struct {
		ID          int64   `json:"id"`
		Date        string  `json:"date"`
		Amount      float64 `json:"amount"`
		Category    string  `json:"category"`
		Subcategory string  `json:"subcategory"`
		Note        string  `json:"note"`
	}

	// NewExpense holds the caller-supplied fields of an expense that has no ID yet.
	NewExpense struct {
		Date        string
		Amount      float64
		Category    string
		Subcategory string
		Note        string
	}

	// CategoryTotal is the sum of amounts for one category.
	CategoryTotal struct {
		Category    string  `json:"category"`
		TotalAmount float64 `json:"total_amount"`
	}

	// Optional marks whether a value was supplied at all, so that an explicit
	// zero value ("" or 0) can be told apart from an omitted one.
	Optional[T any] struct {
		Value T
		Set   bool
	}

	// ExpensePatch lists the fields a partial update should overwrite.
	ExpensePatch struct {
		Date        Optional[string]  `json:"date"`
		Amount      Optional[float64] `json:"amount"`
		Category    Optional[string]  `json:"category"`
		Subcategory Optional[string]  `json:"subcategory"`
		Note        Optional[string]  `json:"note"`
	}

	// Assignment is one "column = value" pair of an UPDATE.
	Assignment struct {
		Column string
		Value  any
	}
)

var (
	ErrNotFound             = errors.New("expense not found")
	ErrNoFields             = errors.New("no fields to update")
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrInvalidSearchField   = errors.New("invalid search field")
	ErrEmptyDate            = errors.New("empty date")
	ErrEmptyCategory        = errors.New("empty category")
)

// Some returns a set Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// Get returns the value and whether it was set.
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Set
}

// UnmarshalJSON is only invoked for keys present in the document; a JSON null
// is treated the same as an absent key.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		var zero T
		o.Value, o.Set = zero, false
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Set = true
	return nil
}

// MarshalJSON renders an unset Optional as null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Validate checks presence of the required fields. Dates are not checked for
// calendar correctness and amounts may be negative (refunds).
func (e NewExpense) Validate() error {
	if strings.TrimSpace(e.Date) == "" {
		return ErrEmptyDate
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// Assignments returns the supplied fields in fixed column order.
func (p ExpensePatch) Assignments() []Assignment {
	var out []Assignment
	if v, ok := p.Date.Get(); ok {
		out = append(out, Assignment{Column: ColumnDate, Value: v})
	}
	if v, ok := p.Amount.Get(); ok {
		out = append(out, Assignment{Column: ColumnAmount, Value: v})
	}
	if v, ok := p.Category.Get(); ok {
		out = append(out, Assignment{Column: ColumnCategory, Value: v})
	}
	if v, ok := p.Subcategory.Get(); ok {
		out = append(out, Assignment{Column: ColumnSubcategory, Value: v})
	}
	if v, ok := p.Note.Get(); ok {
		out = append(out, Assignment{Column: ColumnNote, Value: v})
	}
	return out
}

// Validate applies the presence rules of NewExpense to the fields being set:
// a patch may not blank out the date or category.
func (p ExpensePatch) Validate() error {
	if v, ok := p.Date.Get(); ok && strings.TrimSpace(v) == "" {
		return ErrEmptyDate
	}
	if v, ok := p.Category.Get(); ok && strings.TrimSpace(v) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// Apply returns e with the supplied fields overwritten.
func (p ExpensePatch) Apply(e Expense) Expense {
	if v, ok := p.Date.Get(); ok {
		e.Date = v
	}
	if v, ok := p.Amount.Get(); ok {
		e.Amount = v
	}
	if v, ok := p.Category.Get(); ok {
		e.Category = v
	}
	if v, ok := p.Subcategory.Get(); ok {
		e.Subcategory = v
	}
	if v, ok := p.Note.Get(); ok {
		e.Note = v
	}
	return e
}
