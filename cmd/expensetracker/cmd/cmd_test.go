package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	catPath := filepath.Join(dir, "categories.json")
	require.NoError(t, os.WriteFile(catPath, []byte(`{"food":["lunch"]}`), 0o644))

	t.Setenv("SQLITE_DB_PATH", filepath.Join(dir, "expenses.db"))
	t.Setenv("CATEGORIES_PATH", catPath)
	t.Setenv("AMQP_URL", "")
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "none.env")))
	err := root.Execute()
	return out.String(), err
}

func TestCallRoundTrip(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "", "call", "add_expense", `{"date":"2024-03-15","amount":12.5,"category":"food"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok","id":1}`, out)

	out, err = run(t, `{"expense_id":1}`, "call", "get_expense_by_id", "-")
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "food", got["category"])

	_, err = run(t, "", "call", "no_such_tool")
	assert.Error(t, err)
}

func TestToolsListing(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "", "tools")
	require.NoError(t, err)
	assert.Contains(t, out, "add_expense")
	assert.Contains(t, out, "[subcategory]")

	out, err = run(t, "", "tools", "--json")
	require.NoError(t, err)
	var catalog []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &catalog))
	assert.Len(t, catalog, 13)
}

func TestMigrateAndImport(t *testing.T) {
	dir := setupEnv(t)

	out, err := run(t, "", "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema ready")

	csvPath := filepath.Join(dir, "backup.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"id,date,amount,category,subcategory,note\n"+
			"7,2024-01-01,3.5,food,lunch,\"a, b\"\n"+
			"9,2024-01-02,10,rent,,\n"), 0o644))

	out, err = run(t, "", "import", csvPath, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "2 expense(s) would be imported")

	out, err = run(t, "", "import", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 2 expense(s)")

	out, err = run(t, "", "call", "get_total_expenses", `{"start_date":"2024-01-01","end_date":"2024-01-31"}`)
	require.NoError(t, err)
	assert.Contains(t, out, `"total": 13.5`)
}

func TestInvalidConfigFailsEarly(t *testing.T) {
	setupEnv(t)
	t.Setenv("LOG_FORMAT", "xml")

	_, err := run(t, "", "tools")
	assert.Error(t, err)
}

func TestWatchRequiresBroker(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "", "watch")
	assert.Error(t, err)
}
