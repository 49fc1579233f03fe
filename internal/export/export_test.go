package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"expensetracker/internal/core"
)

var sample = []core.Expense{
	{ID: 1, Date: "2024-01-01", Amount: 10.5, Category: "food", Subcategory: "lunch", Note: "pizza, large"},
	{ID: 2, Date: "2024-01-02", Amount: -4, Category: "food", Subcategory: "", Note: "refund \"deposit\""},
	{ID: 5, Date: "2024-01-02", Amount: 20, Category: "transport", Subcategory: "taxi", Note: "line one\nline two"},
}

func TestEncodeCSVHeaderAndRows(t *testing.T) {
	out, err := EncodeCSV(sample)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "id,date,amount,category,subcategory,note\n"))
	assert.Contains(t, out, `1,2024-01-01,10.5,food,lunch,"pizza, large"`)
	assert.Contains(t, out, `2,2024-01-02,-4,food,,"refund ""deposit"""`)
	assert.Contains(t, out, "\"line one\nline two\"")
}

func TestCSVRoundTrip(t *testing.T) {
	out, err := EncodeCSV(sample)
	require.NoError(t, err)

	got, err := ParseCSV(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, sample, got)
}

func TestParseCSVIgnoresColumnOrder(t *testing.T) {
	doc := "note,amount,id,category,date,subcategory\nhello,3.25,9,misc,2024-05-05,\n"

	got, err := ParseCSV(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, []core.Expense{{ID: 9, Date: "2024-05-05", Amount: 3.25, Category: "misc", Note: "hello"}}, got)
}

func TestParseCSVErrors(t *testing.T) {
	for name, doc := range map[string]string{
		"empty":          "",
		"missing column": "id,date,amount\n1,2024-01-01,3\n",
		"bad amount":     "id,date,amount,category,subcategory,note\n1,2024-01-01,abc,a,,\n",
		"bad id":         "id,date,amount,category,subcategory,note\nx,2024-01-01,1,a,,\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestEncodeCSVEmpty(t *testing.T) {
	out, err := EncodeCSV(nil)
	require.NoError(t, err)
	assert.Equal(t, "id,date,amount,category,subcategory,note\n", out)
}

func TestEncodeXLSX(t *testing.T) {
	data, err := EncodeXLSX(sample)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, len(sample)+1)
	assert.Equal(t, core.Columns, rows[0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "food", rows[1][3])
	assert.Equal(t, "transport", rows[3][3])
}
