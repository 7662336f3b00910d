// Package world combines a resolved bundle, a font set and input values
// into the closed, compiler-ready input of one job.
//
// A World never reaches outside the bundle it was built from: every file a
// document can read is already in memory, and a standalone document sees
// only itself.
package world

import (
	"fmt"
	"io/fs"

	"github.com/gogpu/pagetex/archive"
	"github.com/gogpu/pagetex/internal/logging"
)

// InputsKey is the name under which input values are reachable from a
// document.
const InputsKey = "inputs"

// World is the compiler input of one job. It is built on a worker
// goroutine and owned by it.
type World struct {
	// Name identifies the source the world was built from.
	Name string

	// Standalone is true when the world wraps a single document.
	Standalone bool

	// Manifest is the bundle manifest (never nil).
	Manifest *archive.Manifest

	// Inputs is the structured input value. Never nil.
	Inputs map[string]any

	// Fonts lists the available fonts in resolution order:
	// bundle, embedded, system.
	Fonts []Font

	bundle *archive.Bundle
}

// Main returns the root document source.
func (w *World) Main() []byte {
	return w.bundle.Main()
}

// ReadFile returns the content of a bundle file. Paths are normalized the
// same way archive entries are. A standalone world can only read its own
// document.
func (w *World) ReadFile(p string) ([]byte, error) {
	np, err := archive.NormalizePath(p)
	if err != nil {
		return nil, err
	}
	if w.Standalone && np != archive.MainDocument {
		return nil, fmt.Errorf("%s: standalone document cannot read %q: %w", w.Name, p, fs.ErrNotExist)
	}
	data, ok := w.bundle.ReadFile(np)
	if !ok {
		return nil, fmt.Errorf("%q: %w", p, fs.ErrNotExist)
	}
	return data, nil
}

// Font returns the first font whose family or full name matches family,
// ignoring case.
func (w *World) Font(family string) (Font, bool) {
	for _, f := range w.Fonts {
		if matchFamily(f, family) {
			return f, true
		}
	}
	return Font{}, false
}

// DefaultFont returns the first font in resolution order.
func (w *World) DefaultFont() (Font, bool) {
	if len(w.Fonts) == 0 {
		return Font{}, false
	}
	return w.Fonts[0], true
}

// Builder builds worlds. Embedded and system fonts are loaded lazily the
// first time a world asks for them and shared afterwards.
//
// Builder is safe for concurrent use.
type Builder struct {
	defaults FontOptions
	system   systemFonts
}

// NewBuilder creates a Builder whose worlds use defaults unless a job
// overrides the font options.
func NewBuilder(defaults FontOptions) *Builder {
	return &Builder{defaults: defaults}
}

// Defaults returns the builder's default font options.
func (b *Builder) Defaults() FontOptions {
	return b.defaults
}

// Build assembles a World. opts overrides the builder defaults when
// non-nil; inputs may be nil.
//
// Build does not check that the fonts can render the document. A document
// that needs text but has no usable font fails later, at compile time.
func (b *Builder) Build(bundle *archive.Bundle, inputs map[string]any, opts *FontOptions) *World {
	fo := b.defaults
	if opts != nil {
		fo = *opts
	}
	if inputs == nil {
		inputs = map[string]any{}
	}

	w := &World{
		Name:       bundle.Name,
		Standalone: bundle.Standalone,
		Manifest:   bundle.Manifest,
		Inputs:     inputs,
		bundle:     bundle,
	}
	if w.Manifest == nil {
		w.Manifest = &archive.Manifest{}
	}

	for _, p := range bundle.Paths() {
		if !IsFontPath(p) {
			continue
		}
		data, _ := bundle.ReadFile(p)
		src, err := loadFont(data)
		if err != nil {
			logging.Logger().Warn("world: skipping bundle font",
				"bundle", bundle.Name, "error", fontError(p, err))
			continue
		}
		w.Fonts = append(w.Fonts, Font{Source: src, Origin: OriginBundle, Path: p})
	}

	if fo.Embedded {
		w.Fonts = append(w.Fonts, embeddedFonts()...)
	}
	if fo.System {
		dirs := fo.Dirs
		if len(dirs) == 0 {
			dirs = DefaultFontDirs()
		}
		w.Fonts = append(w.Fonts, b.system.load(dirs)...)
	}

	if bundle.Standalone && !fo.Embedded && !fo.System {
		logging.Logger().Warn("world: standalone document built without embedded or system fonts; text will fail to compile",
			"document", bundle.Name)
	}
	return w
}
