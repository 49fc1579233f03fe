package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/config"
)

func TestLoadEnvFile(t *testing.T) {
	assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("EXPENSETRACKER_TEST_KEY=from-file\n"), 0o644))
	t.Setenv("EXPENSETRACKER_TEST_KEY", "")
	require.NoError(t, os.Unsetenv("EXPENSETRACKER_TEST_KEY"))

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "from-file", os.Getenv("EXPENSETRACKER_TEST_KEY"))
}

func TestSetupLoggerRejectsBadLevel(t *testing.T) {
	_, err := SetupLogger(&config.Config{LogLevel: "loud"})
	assert.Error(t, err)

	logger, err := SetupLogger(&config.Config{LogLevel: "debug", LogFormat: "json"})
	require.NoError(t, err)
	assert.Equal(t, "app", logger.Component())
}
