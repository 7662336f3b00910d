package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"

	"github.com/gogpu/pagetex/internal/logging"
)

// flagEncrypted is bit 0 of the zip general purpose flags.
const flagEncrypted = 0x1

type entry struct {
	path string
	file *zip.File
}

// Resolve unpacks zip archive bytes into a Bundle.
//
// Every entry is validated before any content is read, so a failing
// archive never yields a partial bundle. OS metadata entries are skipped.
// If the archive wraps the whole project in a single top-level directory
// and has no root main document, that directory is stripped.
func Resolve(data []byte) (*Bundle, error) {
	return ResolveNamed("", data)
}

// ResolveNamed is like Resolve but records name as the bundle name.
func ResolveNamed(name string, data []byte) (*Bundle, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	r.RegisterDecompressor(zstd.ZipMethodWinZip, zstd.ZipDecompressor())

	entries := make([]entry, 0, len(r.File))
	for _, f := range r.File {
		p, err := NormalizePath(f.Name)
		if err != nil {
			return nil, err
		}
		if p == "" || strings.HasSuffix(f.Name, "/") || f.FileInfo().IsDir() {
			continue
		}
		if IsMetadata(p) {
			logging.Logger().Debug("archive: skipping metadata entry", "entry", f.Name)
			continue
		}
		if f.Flags&flagEncrypted != 0 {
			return nil, fmt.Errorf("%w: encrypted entry %q", ErrUnsupported, f.Name)
		}
		entries = append(entries, entry{path: p, file: f})
	}

	stripRoot(entries)

	files := make(map[string][]byte, len(entries))
	for _, e := range entries {
		if _, dup := files[e.path]; dup {
			return nil, fmt.Errorf("%w: duplicate entry %q", ErrCorrupt, e.path)
		}
		content, err := readEntry(e.file)
		if err != nil {
			return nil, err
		}
		files[e.path] = content
	}

	return newBundle(name, files)
}

// stripRoot removes a single wrapping directory in place when the main
// document is not already at the root.
func stripRoot(entries []entry) {
	paths := make([]string, len(entries))
	for i, e := range entries {
		if e.path == MainDocument {
			return
		}
		paths[i] = e.path
	}
	root := commonRoot(paths)
	if root == "" {
		return
	}
	for i := range entries {
		entries[i].path = strings.TrimPrefix(entries[i].path, root+"/")
	}
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		if errors.Is(err, zip.ErrAlgorithm) {
			return nil, fmt.Errorf("%w: compression method %d in %q", ErrUnsupported, f.Method, f.Name)
		}
		return nil, fmt.Errorf("%w: %q: %v", ErrCorrupt, f.Name, err)
	}
	defer func() { _ = rc.Close() }()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrCorrupt, f.Name, err)
	}
	return content, nil
}
