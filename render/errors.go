package render

import "errors"

var (
	// ErrCompile wraps every compiler failure. The built-in compiler's
	// *document.CompileError stays reachable with errors.As.
	ErrCompile = errors.New("render: compilation failed")

	// ErrPageOutOfRange is returned when the requested page index is not
	// smaller than the document's page count.
	ErrPageOutOfRange = errors.New("render: page out of range")

	// ErrRasterize is returned when drawing a page fails or panics.
	ErrRasterize = errors.New("render: rasterization failed")

	// ErrInvalidSize is returned for non-positive target dimensions.
	ErrInvalidSize = errors.New("render: invalid target size")
)
