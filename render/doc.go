// Package render turns a document world into pixels.
//
// The Adapter is the single entry point used by job workers. It runs the
// compiler once, selects a page and hands it to a Rasterizer:
//
//	adapter := render.NewAdapter()
//	res, err := adapter.Render(ctx, w, 0, 512, 512)
//	if err != nil {
//	    // errors.Is(err, render.ErrPageOutOfRange), render.ErrCompile, ...
//	}
//	upload(res.Pixels) // premultiplied RGBA8, exactly 512x512
//
// # Compilers
//
// Any value implementing Compiler can be plugged in with WithCompiler. The
// default is the built-in document.Compiler. Compiler output is never
// cached; every Render call compiles again.
//
// # Rasterization
//
// SoftwareRasterizer draws a compiled page with gg into a Target of exactly
// the requested size. The page is scaled uniformly to fit and anchored at
// the top-left corner:
//
//	s = min(width/pageWidth, height/pageHeight)
//
//	┌──────────────┬─────────┐
//	│ page × s     │         │
//	├──────────────┘         │
//	│       transparent      │
//	└────────────────────────┘
//
// Pixels the page does not cover stay fully transparent. The only
// background drawn is the page's own fill.
//
// Rasterizers are not expected to be thread-safe; the Adapter creates a
// fresh drawing context for every call, so one Adapter can serve many
// workers concurrently.
package render
