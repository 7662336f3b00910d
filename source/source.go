// Package source loads job inputs and turns them into bundles.
//
// A Source names either a file reachable through a Loader, inline bytes,
// or an already resolved bundle. Open does the loading, picks the archive
// or standalone path by extension and fingerprints the bytes. It runs on
// worker goroutines, never on the caller's control goroutine.
package source

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/gogpu/pagetex/archive"
)

var (
	// ErrUnsupportedFormat is returned for sources that are neither a zip
	// archive nor a standalone document.
	ErrUnsupportedFormat = errors.New("source: unsupported format")

	// ErrEmpty is returned for a Source with no name, data or bundle.
	ErrEmpty = errors.New("source: empty source")

	// ErrNoLoader is returned when a source must be loaded but no Loader
	// is configured.
	ErrNoLoader = errors.New("source: no loader configured")

	// ErrNotFound is returned by loaders when the named file does not exist.
	ErrNotFound = errors.New("source: not found")
)

// zipMagic starts every local file header.
var zipMagic = []byte("PK\x03\x04")

// Source describes the input of one job.
type Source struct {
	// Name is a path or URL for loaded sources and a display name for
	// inline ones. Its extension selects the format.
	Name string

	// Data holds inline bytes. When nil the source is loaded by name.
	Data []byte

	// Bundle is a pre-resolved bundle; it takes precedence over Name and
	// Data.
	Bundle *archive.Bundle
}

// Path returns a Source loaded by name.
func Path(name string) Source {
	return Source{Name: name}
}

// Bytes returns an inline Source.
func Bytes(name string, data []byte) Source {
	return Source{Name: name, Data: data}
}

// FromBundle returns a Source for an already resolved bundle.
func FromBundle(b *archive.Bundle) Source {
	return Source{Name: b.Name, Bundle: b}
}

// String returns the source name.
func (s Source) String() string {
	if s.Name != "" {
		return s.Name
	}
	return "<inline>"
}

// Validate reports static problems that make the source unusable.
func (s Source) Validate() error {
	if s.Bundle != nil {
		return nil
	}
	if s.Name == "" && s.Data == nil {
		return ErrEmpty
	}
	if s.Data == nil {
		if _, ok := kindOf(s.Name, nil); !ok {
			return fmt.Errorf("%w: %q", ErrUnsupportedFormat, s.Name)
		}
	}
	return nil
}

type kind int

const (
	kindArchive kind = iota
	kindDocument
)

// kindOf picks the format by extension, falling back to sniffing data.
func kindOf(name string, data []byte) (kind, bool) {
	switch strings.ToLower(path.Ext(name)) {
	case ".zip":
		return kindArchive, true
	case ".yaml", ".yml":
		return kindDocument, true
	}
	if bytes.HasPrefix(data, zipMagic) {
		return kindArchive, true
	}
	return 0, false
}

// Digest returns a short hex fingerprint of data.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

// Open loads src and resolves it into a bundle. The returned digest
// fingerprints the source bytes and is empty for pre-resolved bundles.
// loader may be nil for inline and bundle sources.
//
// Archive errors are returned wrapped so errors.Is matches the archive
// package sentinels.
func Open(ctx context.Context, loader Loader, src Source) (*archive.Bundle, string, error) {
	if src.Bundle != nil {
		return src.Bundle, "", nil
	}
	if err := src.Validate(); err != nil {
		return nil, "", err
	}

	data := src.Data
	if data == nil {
		if loader == nil {
			return nil, "", fmt.Errorf("%w: %s", ErrNoLoader, src)
		}
		var err error
		if data, err = loader.Load(ctx, src.Name); err != nil {
			return nil, "", fmt.Errorf("source: load %s: %w", src, err)
		}
	}
	digest := Digest(data)

	k, ok := kindOf(src.Name, data)
	if !ok {
		return nil, digest, fmt.Errorf("%w: %s", ErrUnsupportedFormat, src)
	}
	name := path.Base(src.Name)
	if src.Name == "" {
		name = src.String()
	}
	switch k {
	case kindArchive:
		b, err := archive.ResolveNamed(name, data)
		if err != nil {
			return nil, digest, fmt.Errorf("%s: %w", src, err)
		}
		return b, digest, nil
	default:
		return archive.Standalone(name, data), digest, nil
	}
}
