package render

import (
	"context"

	"github.com/gogpu/pagetex/document"
	"github.com/gogpu/pagetex/world"
)

// Compiler compiles the main document of a world.
//
// Implementations report failures as errors; diagnostics are returned in
// both the success and the failure case. Compile may be called from many
// goroutines at once.
type Compiler interface {
	Compile(ctx context.Context, w *world.World) (*document.Document, []document.Diagnostic, error)
}

// Rasterizer draws one compiled page into a width x height target.
//
// The returned target holds premultiplied RGBA8 pixels. Rasterize must not
// retain the page.
type Rasterizer interface {
	Rasterize(page *document.Page, width, height int) (*Target, error)
}

// CompilerFunc adapts a function to the Compiler interface.
type CompilerFunc func(ctx context.Context, w *world.World) (*document.Document, []document.Diagnostic, error)

// Compile calls f.
func (f CompilerFunc) Compile(ctx context.Context, w *world.World) (*document.Document, []document.Diagnostic, error) {
	return f(ctx, w)
}

var _ Compiler = (*document.Compiler)(nil)
