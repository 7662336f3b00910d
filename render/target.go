package render

import (
	"github.com/gogpu/gg"
	"github.com/gogpu/gputypes"
)

// Target is a CPU-backed raster target with premultiplied RGBA8 pixels.
//
// Example:
//
//	t := render.NewTarget(256, 256)
//	px := t.Pixels() // len 256*256*4, all transparent
type Target struct {
	pm *gg.Pixmap
}

// NewTarget creates a fully transparent target.
func NewTarget(width, height int) *Target {
	return &Target{pm: gg.NewPixmap(width, height)}
}

// Width returns the target width in pixels.
func (t *Target) Width() int {
	return t.pm.Width()
}

// Height returns the target height in pixels.
func (t *Target) Height() int {
	return t.pm.Height()
}

// Format returns the pixel format. Pixels are premultiplied.
func (t *Target) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

// Pixels returns direct access to the pixel data.
func (t *Target) Pixels() []byte {
	return t.pm.Data()
}

// Stride returns the number of bytes per row.
func (t *Target) Stride() int {
	return t.pm.Width() * 4
}

// Pixmap returns the underlying gg pixmap. It shares memory with the
// target.
func (t *Target) Pixmap() *gg.Pixmap {
	return t.pm
}

// At returns the premultiplied RGBA bytes of the pixel at (x, y).
func (t *Target) At(x, y int) [4]byte {
	i := y*t.Stride() + x*4
	p := t.pm.Data()
	return [4]byte{p[i], p[i+1], p[i+2], p[i+3]}
}
