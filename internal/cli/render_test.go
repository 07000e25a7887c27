package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/tabsql/internal/metrics"
	"github.com/raphaelgruber/tabsql/internal/tdsx"
)

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "orders", "orders"},
		{"spaces", "Sales DB", "Sales_DB"},
		{"slashes", "a/b\\c", "a_b_c"},
		{"fallback label", "Connection 2", "Connection_2"},
		{"initial sql suffix", "Warehouse (initial SQL)", "Warehouse__initial_SQL_"},
		{"dots and dashes kept", "db-v2.1_copy", "db-v2.1_copy"},
		{"unicode", "café", "caf_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeLabel(tt.in))
		})
	}
}

func TestRenderTerminal(t *testing.T) {
	queries := []tdsx.Query{
		{Label: "Sales DB", SQL: "SELECT * FROM sales"},
		{Label: "Connection 2", SQL: "SELECT * FROM orders"},
	}

	var buf bytes.Buffer
	renderTerminal(&buf, queries, true)

	out := buf.String()
	assert.Contains(t, out, "--- Sales DB ---\nSELECT * FROM sales\n")
	assert.Contains(t, out, "--- Connection 2 ---\nSELECT * FROM orders\n")
	assert.Contains(t, out, separator, "results are separated")
}

func TestRenderTerminalEmpty(t *testing.T) {
	var buf bytes.Buffer
	renderTerminal(&buf, nil, true)
	assert.Empty(t, buf.String(), "empty run prints nothing to stdout")
}

func TestWriteFilesRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	sql := "\n  SELECT *\n  FROM sales -- trailing spaces  \n"
	queries := []tdsx.Query{{Label: "Sales DB", SQL: sql}}

	stats := metrics.NewCollector()
	require.NoError(t, writeFiles(dir, queries, stats))

	got, err := os.ReadFile(filepath.Join(dir, "Sales_DB.sql"))
	require.NoError(t, err)
	assert.Equal(t, sql, string(got), "file contents are byte-identical to the harvested SQL")
	assert.Equal(t, int64(1), stats.Count(metrics.CountFilesWritten))
}

func TestWriteFilesIdempotent(t *testing.T) {
	dir := t.TempDir()
	queries := []tdsx.Query{
		{Label: "a", SQL: "SELECT 1"},
		{Label: "b", SQL: "SELECT 2"},
	}

	require.NoError(t, writeFiles(dir, queries, metrics.NewCollector()))
	require.NoError(t, writeFiles(dir, queries, metrics.NewCollector()), "second run overwrites silently")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	got, err := os.ReadFile(filepath.Join(dir, "a.sql"))
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", string(got))
}

func TestWriteFilesEmptyRunCreatesNothing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	require.NoError(t, writeFiles(dir, nil, metrics.NewCollector()))

	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "no output directory for an empty run")
}

func TestWriteFilesUnwritableDir(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	parent := t.TempDir()
	require.NoError(t, os.Chmod(parent, 0555))
	t.Cleanup(func() { os.Chmod(parent, 0755) })

	dir := filepath.Join(parent, "out")
	err := writeFiles(dir, []tdsx.Query{{Label: "a", SQL: "SELECT 1"}}, metrics.NewCollector())
	require.Error(t, err)
	assert.ErrorIs(t, err, errWrite)
}
