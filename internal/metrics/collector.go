// Package metrics provides in-memory statistics for a single run.
package metrics

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Phase names for the collector.
const (
	PhaseDownload = "download"
	PhaseParse    = "parse"
	PhaseHarvest  = "harvest"
	PhaseRender   = "render"
)

// Counter names for the collector.
const (
	CountArchiveBytes = "archive_bytes"
	CountQueries      = "queries"
	CountFilesWritten = "files_written"
)

// Collector accumulates phase timings and counters for one run.
// The zero value is not usable; create with NewCollector.
type Collector struct {
	mu     sync.Mutex
	start  time.Time
	phases map[string]time.Duration
	counts map[string]int64
}

// NewCollector creates a collector with the run clock started.
func NewCollector() *Collector {
	return &Collector{
		start:  time.Now(),
		phases: make(map[string]time.Duration),
		counts: make(map[string]int64),
	}
}

// Time starts timing a phase and returns a func that stops it.
// Meant for deferred use:
//
//	defer stats.Time(metrics.PhaseParse)()
func (c *Collector) Time(phase string) func() {
	began := time.Now()
	return func() {
		elapsed := time.Since(began)
		c.mu.Lock()
		defer c.mu.Unlock()
		c.phases[phase] += elapsed
	}
}

// Add increments a counter by n.
func (c *Collector) Add(counter string, n int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[counter] += n
}

// Count returns the current value of a counter.
func (c *Collector) Count(counter string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[counter]
}

// Elapsed returns the total time recorded against a phase.
func (c *Collector) Elapsed(phase string) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phases[phase]
}

// Attrs flattens the collected stats into slog attributes, suitable for
// a single summary log line at the end of a run.
func (c *Collector) Attrs() []any {
	c.mu.Lock()
	defer c.mu.Unlock()

	attrs := []any{slog.Duration("total", time.Since(c.start))}

	names := make([]string, 0, len(c.counts))
	for name := range c.counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		attrs = append(attrs, slog.Int64(name, c.counts[name]))
	}

	names = names[:0]
	for name := range c.phases {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		attrs = append(attrs, slog.Duration(name+"_time", c.phases[name]))
	}

	return attrs
}
