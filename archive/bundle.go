package archive

import (
	"fmt"
	"slices"
)

// MainDocument is the bundle path of the root document.
const MainDocument = "main.yaml"

// Bundle is a resolved, self-contained project: a closed set of files
// keyed by normalized path plus the decoded manifest.
//
// Paths are relative, slash-separated, NFC-normalized and case-sensitive.
// A Bundle is immutable after construction and safe for concurrent reads.
type Bundle struct {
	// Name identifies where the bundle came from (file name or caller label).
	Name string

	// Manifest is the decoded package.toml, or an empty manifest.
	Manifest *Manifest

	// Standalone is true for bundles wrapping a single document. The
	// document sees no sibling files.
	Standalone bool

	files map[string][]byte
	paths []string
}

// NewBundle builds a bundle from in-memory files, for projects defined in
// code rather than loaded from an archive. Paths are normalized exactly as
// Resolve does, and the same errors apply.
func NewBundle(name string, files map[string][]byte) (*Bundle, error) {
	normalized := make(map[string][]byte, len(files))
	for p, data := range files {
		np, err := NormalizePath(p)
		if err != nil {
			return nil, err
		}
		if np == "" || IsMetadata(np) {
			continue
		}
		if _, dup := normalized[np]; dup {
			return nil, fmt.Errorf("%w: duplicate entry %q", ErrCorrupt, np)
		}
		normalized[np] = data
	}
	return newBundle(name, normalized)
}

// Standalone wraps a single document. The document is exposed as
// MainDocument and has no access to any other file.
func Standalone(name string, data []byte) *Bundle {
	return &Bundle{
		Name:       name,
		Manifest:   &Manifest{},
		Standalone: true,
		files:      map[string][]byte{MainDocument: data},
		paths:      []string{MainDocument},
	}
}

func newBundle(name string, files map[string][]byte) (*Bundle, error) {
	if _, ok := files[MainDocument]; !ok {
		return nil, ErrMissingMainDocument
	}

	manifest := &Manifest{}
	if data, ok := files[ManifestFile]; ok {
		m, err := ParseManifest(data)
		if err != nil {
			return nil, err
		}
		manifest = m
	}

	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	slices.Sort(paths)

	return &Bundle{
		Name:     name,
		Manifest: manifest,
		files:    files,
		paths:    paths,
	}, nil
}

// ReadFile returns the content stored at path p.
// The returned slice must not be modified.
func (b *Bundle) ReadFile(p string) ([]byte, bool) {
	data, ok := b.files[p]
	return data, ok
}

// Main returns the root document source.
func (b *Bundle) Main() []byte {
	return b.files[MainDocument]
}

// Paths returns all file paths in lexical order.
func (b *Bundle) Paths() []string {
	return slices.Clone(b.paths)
}

// Len returns the number of files in the bundle.
func (b *Bundle) Len() int {
	return len(b.paths)
}
