package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskmanager/internal/models"
	"taskmanager/internal/store"
	"taskmanager/internal/tasks"
)

// setupConfig writes a config pointing at a fresh sqlite file.
func setupConfig(t *testing.T) (cfgPath, dbPath string) {
	t.Helper()
	dir := t.TempDir()
	dbPath = filepath.Join(dir, "tasks.db")
	cfgPath = filepath.Join(dir, "config.yaml")

	content := "storage:\n  driver: sqlite\n  path: " + dbPath + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0644))
	return cfgPath, dbPath
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	// Flags keep their values between executions of the package-level commands.
	listCmd.Flags().Set("filter", "all")
	listCmd.Flags().Set("search", "")
	resetCmd.Flags().Set("yes", "false")
	exportPDFCmd.Flags().Set("filter", "all")
	exportPDFCmd.Flags().Set("search", "")
	configPath = ""

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func storedTasks(t *testing.T, dbPath string) []models.Task {
	t.Helper()
	kv, err := store.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer kv.Close()

	list, _ := tasks.NewPersistence(kv).Load(context.Background())
	return list
}

func TestCLI_AddListToggleClear(t *testing.T) {
	cfg, db := setupConfig(t)

	out, _, err := run(t, "--config", cfg, "add", "Buy", "milk")
	require.NoError(t, err)
	assert.Equal(t, "Task Manager (1 left)\n", out)

	_, _, err = run(t, "--config", cfg, "add", "Walk dog")
	require.NoError(t, err)

	saved := storedTasks(t, db)
	require.Len(t, saved, 2)
	assert.Equal(t, "Walk dog", saved[0].Title)
	assert.Equal(t, "Buy milk", saved[1].Title)

	out, _, err = run(t, "--config", cfg, "toggle", saved[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "Task Manager (1 left)\n", out)

	out, _, err = run(t, "--config", cfg, "list", "--filter", "completed")
	require.NoError(t, err)
	assert.Contains(t, out, "Buy milk")
	assert.NotContains(t, out, "Walk dog")
	assert.Contains(t, out, "1 remaining, 1 completed, 2 total")

	_, _, err = run(t, "--config", cfg, "clear-completed")
	require.NoError(t, err)

	saved = storedTasks(t, db)
	require.Len(t, saved, 1)
	assert.Equal(t, "Walk dog", saved[0].Title)
}

func TestCLI_EditAndDelete(t *testing.T) {
	cfg, db := setupConfig(t)

	_, _, err := run(t, "--config", cfg, "add", "Old title")
	require.NoError(t, err)
	id := storedTasks(t, db)[0].ID

	_, _, err = run(t, "--config", cfg, "edit", id, "New", "title")
	require.NoError(t, err)
	assert.Equal(t, "New title", storedTasks(t, db)[0].Title)

	_, stderr, err := run(t, "--config", cfg, "delete", "missing-id")
	require.NoError(t, err)
	assert.Contains(t, stderr, "no task with id missing-id")

	_, _, err = run(t, "--config", cfg, "delete", id)
	require.NoError(t, err)
	assert.Empty(t, storedTasks(t, db))
}

func TestCLI_SampleAndReset(t *testing.T) {
	cfg, db := setupConfig(t)

	_, _, err := run(t, "--config", cfg, "sample")
	require.NoError(t, err)
	assert.Len(t, storedTasks(t, db), 5)

	_, _, err = run(t, "--config", cfg, "reset")
	assert.ErrorIs(t, err, errResetNotConfirmed)
	assert.Len(t, storedTasks(t, db), 5)

	out, _, err := run(t, "--config", cfg, "reset", "--yes")
	require.NoError(t, err)
	assert.Equal(t, "Task Manager\n", out)
	assert.Empty(t, storedTasks(t, db))
}

func TestCLI_ListInvalidFilter(t *testing.T) {
	cfg, _ := setupConfig(t)

	_, _, err := run(t, "--config", cfg, "list", "--filter", "done")
	assert.ErrorIs(t, err, models.ErrInvalidFilter)
}

func TestCLI_ListEmpty(t *testing.T) {
	cfg, _ := setupConfig(t)

	out, _, err := run(t, "--config", cfg, "list")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "No tasks yet."))
}

func TestCLI_ExportPDF(t *testing.T) {
	cfg, _ := setupConfig(t)
	pdfPath := filepath.Join(t.TempDir(), "tasks.pdf")

	_, _, err := run(t, "--config", cfg, "sample")
	require.NoError(t, err)

	out, _, err := run(t, "--config", cfg, "export-pdf", pdfPath, "--filter", "active")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 4 tasks")

	data, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestCLI_ConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskmanager.yaml")

	_, _, err := run(t, "config", "init", path)
	require.NoError(t, err)

	_, _, err = run(t, "config", "init", path)
	assert.Error(t, err)

	out, _, err := run(t, "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "driver: sqlite")
}
