package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/raphaelgruber/tabsql/internal/metrics"
	"github.com/raphaelgruber/tabsql/internal/tdsx"
)

// errWrite marks output failures in file mode.
var errWrite = errors.New("write failed")

var (
	headingStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5FAFD7"))
	separatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C6C6C"))
)

const separator = "------------------------------------------------------------"

// plainOutput reports whether styling should be disabled: either asked
// for explicitly or stdout is not a terminal.
func plainOutput() bool {
	return flagNoColor || !term.IsTerminal(int(os.Stdout.Fd()))
}

// renderTerminal prints each query as a heading followed by its SQL,
// verbatim, with a separator between results. An empty run prints
// nothing.
func renderTerminal(w io.Writer, queries []tdsx.Query, plain bool) {
	if len(queries) == 0 {
		slog.Info("no custom SQL found in the data source")
		return
	}

	for i, q := range queries {
		heading := "--- " + q.Label + " ---"
		sep := separator
		if !plain {
			heading = headingStyle.Render(heading)
			sep = separatorStyle.Render(sep)
		}

		if i > 0 {
			fmt.Fprintln(w, sep)
		}
		fmt.Fprintln(w, heading)
		fmt.Fprintln(w, q.SQL)
	}
}

// writeFiles writes each query verbatim to <dir>/<sanitized label>.sql,
// creating dir if needed. Existing files are overwritten. A failure
// aborts remaining writes; earlier files stay in place.
func writeFiles(dir string, queries []tdsx.Query, stats *metrics.Collector) error {
	if len(queries) == 0 {
		slog.Info("no custom SQL found in the data source")
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: create output directory: %v", errWrite, err)
	}

	for _, q := range queries {
		path := filepath.Join(dir, sanitizeLabel(q.Label)+".sql")
		if err := os.WriteFile(path, []byte(q.SQL), 0644); err != nil {
			return fmt.Errorf("%w: %v", errWrite, err)
		}
		stats.Add(metrics.CountFilesWritten, 1)
		slog.Info("saved query", "label", q.Label, "path", path)
	}
	return nil
}

// sanitizeLabel converts a query label into a filesystem-safe file name:
// anything outside [A-Za-z0-9._-] becomes an underscore.
func sanitizeLabel(label string) string {
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
