// Package cli provides the command-line interface for tabsql.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/tabsql/internal/config"
	"github.com/raphaelgruber/tabsql/internal/extract"
	"github.com/raphaelgruber/tabsql/internal/metrics"
	"github.com/raphaelgruber/tabsql/internal/tableau"
	"github.com/raphaelgruber/tabsql/internal/tdsx"
)

// Version is set at build time.
var Version = "0.1.0"

// Exit codes, sysexits-style. Stable; scripts key off them.
const (
	exitOK       = 0
	exitUsage    = 64
	exitFormat   = 65
	exitNotFound = 66
	exitRemote   = 69
	exitIO       = 74
	exitAuth     = 77
)

var (
	// Global flags
	flagToken   string
	flagTimeout time.Duration
	flagNoColor bool
	verbose     bool
)

// errUsage marks argument combinations the flag parser can't catch, like
// a URL without a token.
var errUsage = errors.New("usage error")

var rootCmd = &cobra.Command{
	Use:   "tabsql <path-or-url> [output-dir]",
	Short: "Extract custom SQL from Tableau packaged data sources",
	Long: `Tabsql extracts the custom SQL queries embedded in a Tableau packaged
data source (.tdsx), read from a local file or downloaded from Tableau
Server/Cloud.

Without an output directory the queries are printed to the terminal;
with one, each query is written to its own .sql file.

Examples:
  tabsql sales.tdsx
  tabsql sales.tdsx ./extracted-sql
  tabsql 'https://tableau.example.com/#/site/sales/datasources/0b2a02a7-...' --token $TOKEN
  tabsql 'https://tableau.example.com/api/3.17/sites/abc/datasources/def/content' --token $TOKEN ./out`,
	Version:       Version,
	Args:          cobra.RangeArgs(1, 2),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runExtract,
}

func init() {
	rootCmd.Flags().StringVar(&flagToken, "token", "", "personal access token for Tableau Server/Cloud")
	rootCmd.Flags().DurationVar(&flagTimeout, "timeout", 0, "download timeout (default from config, 60s)")
	rootCmd.Flags().BoolVar(&flagNoColor, "no-color", false, "disable styled terminal output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitCode(err)
	}
	return exitOK
}

// exitCode maps the error taxonomy onto exit codes. Errors that reach
// Execute without a sentinel come from cobra's own flag and argument
// parsing, which is a usage problem.
func exitCode(err error) int {
	switch {
	case errors.Is(err, extract.ErrNotFound):
		return exitNotFound
	case errors.Is(err, tdsx.ErrFormat):
		return exitFormat
	case errors.Is(err, tableau.ErrAuth):
		return exitAuth
	case errors.Is(err, tableau.ErrRemote):
		return exitRemote
	case errors.Is(err, errWrite):
		return exitIO
	default:
		return exitUsage
	}
}

func runExtract(cmd *cobra.Command, args []string) error {
	target := args[0]
	outDir := ""
	if len(args) == 2 {
		outDir = args[1]
	}

	cfg := config.Load()
	level := cfg.LogLevel
	if verbose {
		level = slog.LevelDebug
	}
	logger, cleanup := config.SetupLogger(cfg.LogFile, level)
	defer cleanup()
	slog.SetDefault(logger)

	token := flagToken
	if token == "" {
		token = cfg.Token
	}
	timeout := cfg.Timeout
	if flagTimeout > 0 {
		timeout = flagTimeout
	}

	stats := metrics.NewCollector()

	var data []byte
	if extract.IsURL(target) {
		if token == "" {
			return fmt.Errorf("%w: --token is required when downloading from a URL", errUsage)
		}
		endpoint, err := tableau.ContentURL(target, cfg.APIVersion)
		if err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}

		client := tableau.NewClient(token, timeout)
		done := stats.Time(metrics.PhaseDownload)
		data, err = client.Download(cmd.Context(), endpoint)
		done()
		if err != nil {
			return err
		}
	} else {
		var err error
		data, err = extract.ReadLocal(target)
		if err != nil {
			return err
		}
	}

	queries, err := extract.Run(data, stats)
	if err != nil {
		return err
	}
	slog.Info("harvested queries", "count", len(queries), "source", target)

	done := stats.Time(metrics.PhaseRender)
	if outDir == "" {
		renderTerminal(os.Stdout, queries, plainOutput())
	} else {
		err = writeFiles(outDir, queries, stats)
	}
	done()
	if err != nil {
		return err
	}

	slog.Debug("run stats", stats.Attrs()...)
	return nil
}
