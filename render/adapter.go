package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/pagetex/document"
	"github.com/gogpu/pagetex/internal/logging"
	"github.com/gogpu/pagetex/world"
)

// Result is a rendered page.
type Result struct {
	// Pixels holds Width*Height premultiplied RGBA8 pixels, row-major,
	// without padding.
	Pixels []byte

	Width, Height int

	// Page is the rendered page index; PageCount is the number of pages
	// the document compiled to.
	Page, PageCount int

	// Diagnostics are the compiler warnings.
	Diagnostics []document.Diagnostic
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithCompiler replaces the built-in document compiler.
func WithCompiler(c Compiler) AdapterOption {
	return func(a *Adapter) {
		if c != nil {
			a.compiler = c
		}
	}
}

// WithRasterizer replaces the software rasterizer.
func WithRasterizer(r Rasterizer) AdapterOption {
	return func(a *Adapter) {
		if r != nil {
			a.rasterizer = r
		}
	}
}

// WithLogger sets the logger for compiler warnings. Without it the
// package logger is used.
func WithLogger(l *slog.Logger) AdapterOption {
	return func(a *Adapter) {
		a.logger = l
	}
}

// Adapter compiles and rasterizes worlds. It is safe for concurrent use
// when its Compiler and Rasterizer are.
type Adapter struct {
	compiler   Compiler
	rasterizer Rasterizer
	logger     *slog.Logger
}

// NewAdapter creates an Adapter using the built-in compiler and the
// software rasterizer unless overridden.
func NewAdapter(opts ...AdapterOption) *Adapter {
	a := &Adapter{
		compiler:   document.NewCompiler(),
		rasterizer: SoftwareRasterizer{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Adapter) log() *slog.Logger {
	if a.logger != nil {
		return a.logger
	}
	return logging.Logger()
}

// Render compiles w and rasterizes page into a width x height image.
//
// Errors wrap ErrInvalidSize, ErrCompile, ErrPageOutOfRange or
// ErrRasterize. A canceled context is returned as is.
func (a *Adapter) Render(ctx context.Context, w *world.World, page, width, height int) (*Result, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if page < 0 {
		return nil, fmt.Errorf("%w: page %d", ErrPageOutOfRange, page)
	}

	doc, diags, err := a.compiler.Compile(ctx, w)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", ErrCompile, err)
	}
	for _, d := range diags {
		a.log().Warn("render: compiler diagnostic", "document", w.Name, "diagnostic", d.String())
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: compiler returned no document", ErrCompile)
	}
	if page >= len(doc.Pages) {
		return nil, fmt.Errorf("%w: page %d, document has %d", ErrPageOutOfRange, page, len(doc.Pages))
	}

	t, err := a.rasterize(doc.Pages[page], width, height)
	if err != nil {
		return nil, err
	}
	if t.Width() != width || t.Height() != height {
		return nil, fmt.Errorf("%w: rasterizer produced %dx%d, want %dx%d",
			ErrRasterize, t.Width(), t.Height(), width, height)
	}
	return &Result{
		Pixels:      t.Pixels(),
		Width:       width,
		Height:      height,
		Page:        page,
		PageCount:   len(doc.Pages),
		Diagnostics: diags,
	}, nil
}

func (a *Adapter) rasterize(page *document.Page, width, height int) (t *Target, err error) {
	defer func() {
		if r := recover(); r != nil {
			t, err = nil, fmt.Errorf("%w: panic: %v", ErrRasterize, r)
		}
	}()
	t, err = a.rasterizer.Rasterize(page, width, height)
	if err != nil && !errors.Is(err, ErrRasterize) {
		err = fmt.Errorf("%w: %w", ErrRasterize, err)
	}
	return t, err
}
