// Package tdsx opens Tableau packaged data source archives and harvests
// the SQL text embedded in their manifest.
package tdsx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// ManifestExt is the file extension of the data source definition entry
// inside a packaged archive.
const ManifestExt = ".tds"

// ErrFormat marks a malformed archive or manifest: bytes that are not a
// zip container, a missing or ambiguous manifest entry, or XML that does
// not parse.
var ErrFormat = errors.New("invalid packaged data source")

// OpenManifest treats data as a packaged data source archive, locates the
// single manifest entry and returns its parsed XML root. The archive is
// not needed afterwards; only the manifest is read.
func OpenManifest(data []byte) (*etree.Element, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a zip archive: %v", ErrFormat, err)
	}

	var manifest *zip.File
	for _, f := range zr.File {
		if !strings.HasSuffix(f.Name, ManifestExt) {
			continue
		}
		if manifest != nil {
			return nil, fmt.Errorf("%w: multiple %s entries (%s, %s)",
				ErrFormat, ManifestExt, manifest.Name, f.Name)
		}
		manifest = f
	}
	if manifest == nil {
		return nil, fmt.Errorf("%w: no %s entry in archive", ErrFormat, ManifestExt)
	}

	rc, err := manifest.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrFormat, manifest.Name, err)
	}
	defer rc.Close()

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(rc); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrFormat, manifest.Name, err)
	}

	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("%w: %s has no document element", ErrFormat, manifest.Name)
	}
	return root, nil
}
