// Package extract ties the pipeline together: archive bytes in, harvested
// SQL queries out.
package extract

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/raphaelgruber/tabsql/internal/metrics"
	"github.com/raphaelgruber/tabsql/internal/tdsx"
)

// ErrNotFound marks a local archive path that does not exist or cannot
// be read.
var ErrNotFound = errors.New("archive not found")

// IsURL reports whether the input argument names a remote datasource
// rather than a local file.
func IsURL(arg string) bool {
	return strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://")
}

// ReadLocal loads a packaged data source from disk, fully into memory.
func ReadLocal(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// Run opens the archive, parses the manifest and harvests SQL. The
// archive bytes are not needed once the manifest is parsed.
func Run(data []byte, stats *metrics.Collector) ([]tdsx.Query, error) {
	stats.Add(metrics.CountArchiveBytes, int64(len(data)))

	done := stats.Time(metrics.PhaseParse)
	root, err := tdsx.OpenManifest(data)
	done()
	if err != nil {
		return nil, err
	}

	done = stats.Time(metrics.PhaseHarvest)
	queries := tdsx.Harvest(root)
	done()

	stats.Add(metrics.CountQueries, int64(len(queries)))
	return queries, nil
}
