package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCollectorCounters(t *testing.T) {
	c := NewCollector()
	c.Add(CountQueries, 2)
	c.Add(CountQueries, 3)
	c.Add(CountArchiveBytes, 1024)

	assert.Equal(t, int64(5), c.Count(CountQueries))
	assert.Equal(t, int64(1024), c.Count(CountArchiveBytes))
	assert.Equal(t, int64(0), c.Count(CountFilesWritten), "untouched counter reads zero")
}

func TestCollectorPhases(t *testing.T) {
	c := NewCollector()

	done := c.Time(PhaseParse)
	time.Sleep(time.Millisecond)
	done()

	assert.Greater(t, c.Elapsed(PhaseParse), time.Duration(0))
	assert.Equal(t, time.Duration(0), c.Elapsed(PhaseDownload))
}

func TestCollectorAttrs(t *testing.T) {
	c := NewCollector()
	c.Add(CountQueries, 1)
	c.Time(PhaseHarvest)()

	attrs := c.Attrs()
	// total + one counter + one phase
	assert.Len(t, attrs, 3)
}
