package document

import (
	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
)

// Document is a compiled document: an ordered list of pages.
type Document struct {
	Pages []*Page
}

// Page is a single page. Coordinates and sizes are in points with the
// origin at the top-left corner.
type Page struct {
	Width, Height float64

	// Fill is the page background. A zero alpha leaves the page transparent.
	Fill gg.RGBA

	Items []Item
}

// Item is a display list entry. The concrete types are *Rect, *Circle,
// *Line, *Text and *Image.
type Item interface {
	item()
}

// Rect is an axis-aligned, optionally rounded rectangle.
type Rect struct {
	X, Y, Width, Height float64
	Radius              float64
	Fill                gg.RGBA
	Stroke              gg.RGBA
	StrokeWidth         float64
}

// Circle is a circle around (X, Y).
type Circle struct {
	X, Y, R     float64
	Fill        gg.RGBA
	Stroke      gg.RGBA
	StrokeWidth float64
}

// Line is a straight stroked segment.
type Line struct {
	X1, Y1, X2, Y2 float64
	Stroke         gg.RGBA
	StrokeWidth    float64
}

// Text is a block of laid-out lines sharing one font and size.
type Text struct {
	Font  *text.FontSource
	Size  float64
	Color gg.RGBA
	Lines []TextLine
}

// TextLine is one line of text; Y is the baseline.
type TextLine struct {
	Text string
	X, Y float64
}

// Image is a decoded raster image placed into a rectangle.
type Image struct {
	Src                 *gg.ImageBuf
	X, Y, Width, Height float64
	Opacity             float64
}

func (*Rect) item()   {}
func (*Circle) item() {}
func (*Line) item()   {}
func (*Text) item()   {}
func (*Image) item()  {}
