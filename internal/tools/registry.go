// Package tools exposes the ledger as a catalog of named operations.
//
// Each tool takes a JSON object of parameters and returns a JSON-serializable
// result. Expected outcomes such as a missing record are returned as
// {"status":"error"} envelopes; only malformed parameters and storage
// failures come back as Go errors.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"expensetracker/internal/catalog"
	"expensetracker/internal/core"
)

var (
	ErrUnknownTool     = errors.New("unknown tool")
	ErrUnknownResource = errors.New("unknown resource")
	ErrInvalidParams   = errors.New("invalid params")
)

// Parameter types as advertised in the catalog.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
)

type (
	// Param documents one tool parameter.
	Param struct {
		Name        string `json:"name"`
		Type        string `json:"type"`
		Required    bool   `json:"required"`
		Default     any    `json:"default,omitempty"`
		Description string `json:"description,omitempty"`
	}

	// Tool is one named operation.
	Tool struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Params      []Param `json:"params"`

		handler handlerFunc
	}

	// Resource is a read-only document addressable by URI.
	Resource struct {
		URI      string `json:"uri"`
		MimeType string `json:"mime_type"`
		Text     string `json:"text"`
	}

	handlerFunc func(ctx context.Context, args Args) (any, error)

	// Ledger is the set of operations the tools delegate to.
	Ledger interface {
		AddExpense(ctx context.Context, e core.NewExpense) (int64, error)
		GetExpense(ctx context.Context, id int64) (core.Expense, error)
		ListExpenses(ctx context.Context, start, end string) ([]core.Expense, error)
		UpdateExpense(ctx context.Context, id int64, patch core.ExpensePatch) (core.Expense, error)
		DeleteExpense(ctx context.Context, id int64) error
		SearchExpenses(ctx context.Context, term string, field core.SearchField) ([]core.Expense, error)
		Summarize(ctx context.Context, start, end, category string) ([]core.CategoryTotal, error)
		TotalExpenses(ctx context.Context, start, end, category string) (float64, error)
		DeleteExpenses(ctx context.Context, req core.BulkDelete) (int64, error)
		DeleteExpensesByCategory(ctx context.Context, category string, confirm bool) (int64, error)
		ExportExpenses(ctx context.Context, start, end string) ([]core.Expense, error)
	}
)

// Registry dispatches tool calls and resource reads.
type Registry struct {
	ledger     Ledger
	categories catalog.Source
	tools      map[string]*Tool
	order      []string
}

// NewRegistry builds the full tool catalog over ledger and categories.
func NewRegistry(ledger Ledger, categories catalog.Source) *Registry {
	r := &Registry{
		ledger:     ledger,
		categories: categories,
		tools:      make(map[string]*Tool),
	}
	for _, t := range r.definitions() {
		t := t
		r.tools[t.Name] = &t
		r.order = append(r.order, t.Name)
	}
	return r
}

// Tools returns the catalog in registration order.
func (r *Registry) Tools() []Tool {
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, *r.tools[name])
	}
	return out
}

// Call invokes a tool with a JSON object of parameters. An empty or null
// payload means no parameters.
func (r *Registry) Call(ctx context.Context, name string, params json.RawMessage) (any, error) {
	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	args, err := decodeArgs(params)
	if err != nil {
		return nil, err
	}
	if err := t.check(args); err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "Calling tool", "tool", name, "params", args.names())

	result, err := t.handler(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return result, nil
}

// ReadResource returns a resource by URI. The category catalog is read fresh
// on every call.
func (r *Registry) ReadResource(ctx context.Context, uri string) (Resource, error) {
	if uri != catalog.ResourceURI {
		return Resource{}, fmt.Errorf("%w: %s", ErrUnknownResource, uri)
	}
	doc, err := r.categories.Read(ctx)
	if err != nil {
		return Resource{}, err
	}
	return Resource{URI: uri, MimeType: catalog.MimeType, Text: doc}, nil
}

// check rejects unknown parameter names and missing required ones.
func (t *Tool) check(args Args) error {
	known := make(map[string]bool, len(t.Params))
	for _, p := range t.Params {
		known[p.Name] = true
		if p.Required && !args.Has(p.Name) {
			return paramError("missing required parameter %q", p.Name)
		}
	}

	var unknown []string
	for name := range args {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return paramError("unknown parameters %v", unknown)
	}
	return nil
}

func paramError(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParams, fmt.Sprintf(format, a...))
}
