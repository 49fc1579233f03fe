// Package export renders expenses as ledger files.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"expensetracker/internal/core"
)

// WriteCSV writes a header row followed by one row per expense, in the order given.
func WriteCSV(w io.Writer, expenses []core.Expense) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(core.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, e := range expenses {
		if err := cw.Write(record(e)); err != nil {
			return fmt.Errorf("write expense %d: %w", e.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// EncodeCSV returns the CSV document as a string.
func EncodeCSV(expenses []core.Expense) (string, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, expenses); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ParseCSV reads a document produced by WriteCSV. Columns are located by
// header name, so their order does not matter.
func ParseCSV(r io.Reader) ([]core.Expense, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty csv document")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	pos := make(map[string]int, len(header))
	for i, name := range header {
		pos[name] = i
	}
	for _, name := range core.Columns {
		if _, ok := pos[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	expenses := make([]core.Expense, 0)
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}

		id, err := strconv.ParseInt(row[pos[core.ColumnID]], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid id: %w", line, err)
		}
		amount, err := strconv.ParseFloat(row[pos[core.ColumnAmount]], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid amount: %w", line, err)
		}

		expenses = append(expenses, core.Expense{
			ID:          id,
			Date:        row[pos[core.ColumnDate]],
			Amount:      amount,
			Category:    row[pos[core.ColumnCategory]],
			Subcategory: row[pos[core.ColumnSubcategory]],
			Note:        row[pos[core.ColumnNote]],
		})
	}

	return expenses, nil
}

func record(e core.Expense) []string {
	return []string{
		strconv.FormatInt(e.ID, 10),
		e.Date,
		formatAmount(e.Amount),
		e.Category,
		e.Subcategory,
		e.Note,
	}
}

// formatAmount uses the shortest representation that parses back to the same float.
func formatAmount(a float64) string {
	return strconv.FormatFloat(a, 'f', -1, 64)
}
