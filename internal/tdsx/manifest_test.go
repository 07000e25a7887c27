package tdsx

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildArchive assembles an in-memory zip with the given entries.
func buildArchive(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

const sampleManifest = `<?xml version='1.0' encoding='utf-8'?>
<datasource formatted-name='sample' version='18.1'>
  <connection class='postgres' caption='Sales DB'>
    <relation type='text' name='Custom SQL Query'>SELECT * FROM sales</relation>
  </connection>
</datasource>`

func TestOpenManifest(t *testing.T) {
	data := buildArchive(t, map[string]string{
		"Data/Datasources/sample.tds": sampleManifest,
		"Data/extract.hyper":          "not xml",
	})

	root, err := OpenManifest(data)
	require.NoError(t, err)
	assert.Equal(t, "datasource", root.Tag)
}

func TestOpenManifestNotAZip(t *testing.T) {
	_, err := OpenManifest([]byte("definitely not a zip archive"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestOpenManifestNoManifestEntry(t *testing.T) {
	data := buildArchive(t, map[string]string{"Data/extract.hyper": "binary"})

	_, err := OpenManifest(data)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFormat)
	assert.Contains(t, err.Error(), "no .tds entry")
}

func TestOpenManifestAmbiguousEntries(t *testing.T) {
	data := buildArchive(t, map[string]string{
		"a.tds": sampleManifest,
		"b.tds": sampleManifest,
	})

	_, err := OpenManifest(data)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFormat)
	assert.Contains(t, err.Error(), "multiple .tds entries")
}

func TestOpenManifestMalformedXML(t *testing.T) {
	data := buildArchive(t, map[string]string{
		"sample.tds": "<datasource><connection></datasource>",
	})

	_, err := OpenManifest(data)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestOpenManifestEndToEnd(t *testing.T) {
	data := buildArchive(t, map[string]string{"sample.tds": sampleManifest})

	root, err := OpenManifest(data)
	require.NoError(t, err)

	queries := Harvest(root)
	require.Len(t, queries, 1)
	assert.Equal(t, "Sales DB", queries[0].Label)
	assert.Equal(t, "SELECT * FROM sales", queries[0].SQL)
}
