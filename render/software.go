package render

import (
	"fmt"

	"github.com/gogpu/gg"

	"github.com/gogpu/pagetex/document"
)

// SoftwareRasterizer draws pages on the CPU with gg's anti-aliased software
// renderer.
//
// The page is scaled uniformly so that it fits the target and is anchored
// at the top-left corner. Coordinates are scaled before they reach gg so
// text, which gg draws in device space, lines up with shapes.
//
// Example:
//
//	r := render.SoftwareRasterizer{}
//	t, err := r.Rasterize(page, 512, 512)
type SoftwareRasterizer struct{}

// Rasterize draws page into a new width x height target. A panic inside
// gg is reported as ErrRasterize.
func (SoftwareRasterizer) Rasterize(page *document.Page, width, height int) (t *Target, err error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if page == nil || page.Width <= 0 || page.Height <= 0 {
		return nil, fmt.Errorf("%w: page has no area", ErrRasterize)
	}
	defer func() {
		if r := recover(); r != nil {
			t, err = nil, fmt.Errorf("%w: panic: %v", ErrRasterize, r)
		}
	}()

	t = NewTarget(width, height)
	dc := gg.NewContext(width, height, gg.WithPixmap(t.Pixmap()))
	defer dc.Close()

	s := Scale(page, width, height)
	p := painter{dc: dc, s: s}

	if page.Fill.A > 0 {
		w, h := page.Width*s, page.Height*s
		if w >= float64(width) && h >= float64(height) {
			dc.ClearWithColor(page.Fill.Premultiply())
		} else {
			dc.DrawRectangle(0, 0, w, h)
			p.fill(page.Fill)
		}
	}

	for _, it := range page.Items {
		if err := p.draw(it); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRasterize, err)
		}
	}
	if err := dc.FlushGPU(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRasterize, err)
	}
	return t, nil
}

// Scale returns the uniform factor that fits page into width x height.
func Scale(page *document.Page, width, height int) float64 {
	return min(float64(width)/page.Width, float64(height)/page.Height)
}

type painter struct {
	dc  *gg.Context
	s   float64
	err error
}

func setColor(dc *gg.Context, c gg.RGBA) {
	dc.SetRGBA(c.R, c.G, c.B, c.A)
}

func (p *painter) fill(c gg.RGBA) {
	setColor(p.dc, c)
	if err := p.dc.Fill(); err != nil && p.err == nil {
		p.err = err
	}
}

func (p *painter) stroke(c gg.RGBA, width float64) {
	setColor(p.dc, c)
	p.dc.SetLineWidth(width * p.s)
	if err := p.dc.Stroke(); err != nil && p.err == nil {
		p.err = err
	}
}

// fillStroke fills and then strokes the current path. Either step is
// skipped when its color is invisible.
func (p *painter) fillStroke(fill, stroke gg.RGBA, strokeWidth float64) {
	doFill := fill.A > 0
	doStroke := stroke.A > 0 && strokeWidth > 0
	switch {
	case doFill && doStroke:
		setColor(p.dc, fill)
		if err := p.dc.FillPreserve(); err != nil && p.err == nil {
			p.err = err
		}
		p.stroke(stroke, strokeWidth)
	case doFill:
		p.fill(fill)
	case doStroke:
		p.stroke(stroke, strokeWidth)
	default:
		p.dc.ClearPath()
	}
}

func (p *painter) draw(it document.Item) error {
	s := p.s
	switch it := it.(type) {
	case *document.Rect:
		if it.Radius > 0 {
			p.dc.DrawRoundedRectangle(it.X*s, it.Y*s, it.Width*s, it.Height*s, it.Radius*s)
		} else {
			p.dc.DrawRectangle(it.X*s, it.Y*s, it.Width*s, it.Height*s)
		}
		p.fillStroke(it.Fill, it.Stroke, it.StrokeWidth)
	case *document.Circle:
		p.dc.DrawCircle(it.X*s, it.Y*s, it.R*s)
		p.fillStroke(it.Fill, it.Stroke, it.StrokeWidth)
	case *document.Line:
		p.dc.DrawLine(it.X1*s, it.Y1*s, it.X2*s, it.Y2*s)
		p.stroke(it.Stroke, it.StrokeWidth)
	case *document.Text:
		p.text(it)
	case *document.Image:
		p.dc.DrawImageEx(it.Src, gg.DrawImageOptions{
			X:         it.X * s,
			Y:         it.Y * s,
			DstWidth:  it.Width * s,
			DstHeight: it.Height * s,
			Opacity:   it.Opacity,
		})
	default:
		return fmt.Errorf("unknown item %T", it)
	}
	return p.err
}

func (p *painter) text(t *document.Text) {
	if t.Font == nil || len(t.Lines) == 0 {
		return
	}
	size := t.Size * p.s
	if size <= 0 {
		return
	}
	p.dc.SetFont(t.Font.Face(size))
	setColor(p.dc, t.Color)
	for _, l := range t.Lines {
		p.dc.DrawString(l.Text, l.X*p.s, l.Y*p.s)
	}
}
