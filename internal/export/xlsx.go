package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"expensetracker/internal/core"
)

const sheetName = "Expenses"

// EncodeXLSX renders the same header and rows as WriteCSV into a workbook
// with a single sheet. Amounts are stored as numbers.
func EncodeXLSX(expenses []core.Expense) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(core.Columns))
	for i, c := range core.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, e := range expenses {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("cell for row %d: %w", i+2, err)
		}
		row := []any{e.ID, e.Date, e.Amount, e.Category, e.Subcategory, e.Note}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write expense %d: %w", e.ID, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
