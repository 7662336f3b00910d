package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
)

// Loader fetches source bytes by name. Implementations must be safe for
// concurrent use; Load runs on worker goroutines.
type Loader interface {
	Load(ctx context.Context, name string) ([]byte, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, name string) ([]byte, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, name string) ([]byte, error) {
	return f(ctx, name)
}

// DirLoader reads sources from a file system rooted at an asset directory.
type DirLoader struct {
	FS fs.FS
}

// NewDirLoader returns a loader rooted at dir.
func NewDirLoader(dir string) *DirLoader {
	return &DirLoader{FS: os.DirFS(dir)}
}

// Load reads name relative to the root. Names may use a file:// prefix.
func (l *DirLoader) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name = strings.TrimPrefix(name, "file://")
	name = strings.TrimPrefix(name, "/")
	if !fs.ValidPath(name) {
		return nil, fmt.Errorf("source: invalid path %q", name)
	}
	data, err := fs.ReadFile(l.FS, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return data, err
}

// Mux routes names to loaders by URL scheme. Names without a scheme use
// the "" entry, which also serves "file".
type Mux map[string]Loader

// Load dispatches to the loader registered for name's scheme.
func (m Mux) Load(ctx context.Context, name string) ([]byte, error) {
	scheme := schemeOf(name)
	l, ok := m[scheme]
	if !ok && scheme == "file" {
		l, ok = m[""]
	}
	if !ok || l == nil {
		return nil, fmt.Errorf("source: no loader for scheme %q", scheme)
	}
	return l.Load(ctx, name)
}

// schemeOf returns the URL scheme of name, or "" for plain paths.
// Windows drive letters are not schemes.
func schemeOf(name string) string {
	i := strings.Index(name, "://")
	if i <= 1 {
		return ""
	}
	u, err := url.Parse(name)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Scheme)
}
