package document

import (
	"context"
	"image"
	"path"

	"github.com/gogpu/gg"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/pagetex/archive"
	"github.com/gogpu/pagetex/world"
)

// DefaultMaxIncludeDepth bounds nested includes, which also stops include
// cycles.
const DefaultMaxIncludeDepth = 16

// A4 page size in points, used when a document gives no page size.
const (
	defaultPageWidth  = 595.28
	defaultPageHeight = 841.89
)

// Compiler is the built-in document compiler. The zero value is ready to
// use and safe for concurrent use.
type Compiler struct {
	// MaxIncludeDepth overrides DefaultMaxIncludeDepth when positive.
	MaxIncludeDepth int
}

// NewCompiler returns a Compiler with default settings.
func NewCompiler() *Compiler {
	return &Compiler{}
}

// Compile compiles the world's main document.
//
// On failure the error is a *CompileError holding every diagnostic, or the
// context error when ctx was canceled. Warnings of a successful compilation
// are returned alongside the document.
func (c *Compiler) Compile(ctx context.Context, w *world.World) (*Document, []Diagnostic, error) {
	depth := c.MaxIncludeDepth
	if depth <= 0 {
		depth = DefaultMaxIncludeDepth
	}
	cs := &compilation{
		ctx:      ctx,
		world:    w,
		maxDepth: depth,
		images:   make(map[string]*decodedImage),
		doc:      &Document{},
	}
	cs.compile()

	if err := ctx.Err(); err != nil {
		return nil, cs.diags.list, err
	}
	if cs.diags.failed {
		return nil, cs.diags.list, &CompileError{Diagnostics: cs.diags.list}
	}
	return cs.doc, cs.diags.list, nil
}

type pageSpec struct {
	Width  *Length `yaml:"width"`
	Height *Length `yaml:"height"`
	Fill   Color   `yaml:"fill"`
	Margin Length  `yaml:"margin"`
}

type mainSpec struct {
	Page    pageSpec    `yaml:"page"`
	Content []yaml.Node `yaml:"content"`
}

type fragmentSpec struct {
	Content []yaml.Node `yaml:"content"`
}

type decodedImage struct {
	buf  *gg.ImageBuf
	size image.Point
}

// compilation is the state of one Compile call.
type compilation struct {
	ctx      context.Context
	world    *world.World
	maxDepth int
	diags    diagnostics

	doc  *Document
	cur  *Page
	page struct {
		width, height float64
		margin        float64
		fill          gg.RGBA
	}

	images  map[string]*decodedImage
	noFonts bool
}

func (cs *compilation) compile() {
	const file = archive.MainDocument

	src, ok := cs.expand(file, cs.world.Main())
	if !ok {
		return
	}
	var spec mainSpec
	if err := yaml.Unmarshal(src, &spec); err != nil {
		cs.diags.errorf(file, 0, "%v", err)
		return
	}
	if !cs.setupPage(file, spec.Page) {
		return
	}
	cs.newPage()
	cs.content(file, spec.Content, 0)
}

func (cs *compilation) expand(file string, src []byte) ([]byte, bool) {
	out, err := expand(file, src, cs.world.Inputs)
	if err != nil {
		cs.diags.errorf(file, 0, "template: %v", err)
		return nil, false
	}
	return out, true
}

func (cs *compilation) setupPage(file string, p pageSpec) bool {
	w, h := defaultPageWidth, defaultPageHeight
	if p.Width != nil {
		if p.Width.Rel {
			cs.diags.errorf(file, 0, "page width cannot be relative")
			return false
		}
		w = p.Width.Pt
	}
	if p.Height != nil {
		if p.Height.Rel {
			cs.diags.errorf(file, 0, "page height cannot be relative")
			return false
		}
		h = p.Height.Pt
	}
	if w <= 0 || h <= 0 {
		cs.diags.errorf(file, 0, "page size %gx%g must be positive", w, h)
		return false
	}
	margin := p.Margin.Resolve(min(w, h))
	if margin < 0 || 2*margin >= min(w, h) {
		cs.diags.errorf(file, 0, "page margin %g does not fit the page", margin)
		return false
	}
	cs.page.width, cs.page.height = w, h
	cs.page.margin = margin
	cs.page.fill = p.Fill.Or(gg.Transparent)
	return true
}

func (cs *compilation) newPage() {
	cs.cur = &Page{
		Width:  cs.page.width,
		Height: cs.page.height,
		Fill:   cs.page.fill,
	}
	cs.doc.Pages = append(cs.doc.Pages, cs.cur)
}

// box returns the content area size.
func (cs *compilation) box() (w, h float64) {
	m := cs.page.margin
	return cs.page.width - 2*m, cs.page.height - 2*m
}

func (cs *compilation) xy(x, y Length) (float64, float64) {
	bw, bh := cs.box()
	return cs.page.margin + x.Resolve(bw), cs.page.margin + y.Resolve(bh)
}

func (cs *compilation) content(file string, items []yaml.Node, depth int) {
	for i := range items {
		if cs.ctx.Err() != nil {
			return
		}
		n := &items[i]
		if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
			cs.diags.errorf(file, n.Line, "content element must be a mapping with exactly one key")
			continue
		}
		kind, value := n.Content[0].Value, n.Content[1]
		switch kind {
		case "rect":
			cs.rect(file, value)
		case "circle":
			cs.circle(file, value)
		case "line":
			cs.line(file, value)
		case "text":
			cs.text(file, value)
		case "image":
			cs.image(file, value)
		case "include":
			cs.include(file, value, depth)
		case "pagebreak":
			cs.newPage()
		default:
			cs.diags.errorf(file, n.Line, "unknown element %q", kind)
		}
	}
}

func (cs *compilation) decode(file string, n *yaml.Node, v any) bool {
	if err := n.Decode(v); err != nil {
		cs.diags.errorf(file, n.Line, "%v", err)
		return false
	}
	return true
}

func (cs *compilation) include(file string, n *yaml.Node, depth int) {
	var rel string
	if !cs.decode(file, n, &rel) {
		return
	}
	if depth+1 > cs.maxDepth {
		cs.diags.errorf(file, n.Line, "include %q: nesting deeper than %d", rel, cs.maxDepth)
		return
	}
	target := path.Join(path.Dir(file), rel)
	data, err := cs.world.ReadFile(target)
	if err != nil {
		cs.diags.errorf(file, n.Line, "include: %v", err)
		return
	}
	src, ok := cs.expand(target, data)
	if !ok {
		return
	}
	var frag fragmentSpec
	if err := yaml.Unmarshal(src, &frag); err != nil {
		cs.diags.errorf(target, 0, "%v", err)
		return
	}
	cs.content(target, frag.Content, depth+1)
}

type rectSpec struct {
	X           Length `yaml:"x"`
	Y           Length `yaml:"y"`
	Width       Length `yaml:"width"`
	Height      Length `yaml:"height"`
	Radius      Length `yaml:"radius"`
	Fill        Color  `yaml:"fill"`
	Stroke      Color  `yaml:"stroke"`
	StrokeWidth Length `yaml:"stroke-width"`
}

func (cs *compilation) rect(file string, n *yaml.Node) {
	var s rectSpec
	if !cs.decode(file, n, &s) {
		return
	}
	bw, bh := cs.box()
	x, y := cs.xy(s.X, s.Y)
	r := &Rect{
		X:           x,
		Y:           y,
		Width:       s.Width.Resolve(bw),
		Height:      s.Height.Resolve(bh),
		Radius:      s.Radius.Resolve(bw),
		Fill:        s.Fill.RGBA,
		Stroke:      s.Stroke.RGBA,
		StrokeWidth: s.StrokeWidth.Resolve(bw),
	}
	if !s.Fill.Set && !s.Stroke.Set {
		r.Fill = gg.Black
	}
	if s.Stroke.Set && r.StrokeWidth == 0 {
		r.StrokeWidth = 1
	}
	if r.Width <= 0 || r.Height <= 0 {
		cs.diags.warnf(file, n.Line, "rect has no area")
		return
	}
	cs.cur.Items = append(cs.cur.Items, r)
}

type circleSpec struct {
	X           Length `yaml:"x"`
	Y           Length `yaml:"y"`
	R           Length `yaml:"r"`
	Fill        Color  `yaml:"fill"`
	Stroke      Color  `yaml:"stroke"`
	StrokeWidth Length `yaml:"stroke-width"`
}

func (cs *compilation) circle(file string, n *yaml.Node) {
	var s circleSpec
	if !cs.decode(file, n, &s) {
		return
	}
	bw, _ := cs.box()
	x, y := cs.xy(s.X, s.Y)
	c := &Circle{
		X:           x,
		Y:           y,
		R:           s.R.Resolve(bw),
		Fill:        s.Fill.RGBA,
		Stroke:      s.Stroke.RGBA,
		StrokeWidth: s.StrokeWidth.Resolve(bw),
	}
	if !s.Fill.Set && !s.Stroke.Set {
		c.Fill = gg.Black
	}
	if s.Stroke.Set && c.StrokeWidth == 0 {
		c.StrokeWidth = 1
	}
	if c.R <= 0 {
		cs.diags.warnf(file, n.Line, "circle has no area")
		return
	}
	cs.cur.Items = append(cs.cur.Items, c)
}

type lineSpec struct {
	X1          Length `yaml:"x1"`
	Y1          Length `yaml:"y1"`
	X2          Length `yaml:"x2"`
	Y2          Length `yaml:"y2"`
	Stroke      Color  `yaml:"stroke"`
	StrokeWidth Length `yaml:"stroke-width"`
}

func (cs *compilation) line(file string, n *yaml.Node) {
	var s lineSpec
	if !cs.decode(file, n, &s) {
		return
	}
	bw, _ := cs.box()
	x1, y1 := cs.xy(s.X1, s.Y1)
	x2, y2 := cs.xy(s.X2, s.Y2)
	l := &Line{
		X1: x1, Y1: y1, X2: x2, Y2: y2,
		Stroke:      s.Stroke.Or(gg.Black),
		StrokeWidth: s.StrokeWidth.Resolve(bw),
	}
	if l.StrokeWidth == 0 {
		l.StrokeWidth = 1
	}
	cs.cur.Items = append(cs.cur.Items, l)
}

type imageSpec struct {
	Src     string   `yaml:"src"`
	X       Length   `yaml:"x"`
	Y       Length   `yaml:"y"`
	Width   *Length  `yaml:"width"`
	Height  *Length  `yaml:"height"`
	Opacity *float64 `yaml:"opacity"`
}

func (cs *compilation) image(file string, n *yaml.Node) {
	var s imageSpec
	if !cs.decode(file, n, &s) {
		return
	}
	if s.Src == "" {
		cs.diags.errorf(file, n.Line, "image: missing src")
		return
	}
	target := path.Join(path.Dir(file), s.Src)
	img, ok := cs.images[target]
	if !ok {
		data, err := cs.world.ReadFile(target)
		if err != nil {
			cs.diags.errorf(file, n.Line, "image: %v", err)
			return
		}
		buf, size, err := decodeImage(data)
		if err != nil {
			cs.diags.errorf(file, n.Line, "image %q: %v", s.Src, err)
			return
		}
		img = &decodedImage{buf: buf, size: size}
		cs.images[target] = img
	}

	bw, bh := cs.box()
	x, y := cs.xy(s.X, s.Y)
	// Intrinsic size is taken as CSS pixels.
	iw, ih := float64(img.size.X)*unitPt["px"], float64(img.size.Y)*unitPt["px"]
	w, h := iw, ih
	switch {
	case s.Width != nil && s.Height != nil:
		w, h = s.Width.Resolve(bw), s.Height.Resolve(bh)
	case s.Width != nil:
		w = s.Width.Resolve(bw)
		h = w * ih / iw
	case s.Height != nil:
		h = s.Height.Resolve(bh)
		w = h * iw / ih
	}
	opacity := 1.0
	if s.Opacity != nil {
		opacity = min(max(*s.Opacity, 0), 1)
	}
	if w <= 0 || h <= 0 || opacity == 0 {
		cs.diags.warnf(file, n.Line, "image %q is not visible", s.Src)
		return
	}
	cs.cur.Items = append(cs.cur.Items, &Image{
		Src: img.buf, X: x, Y: y, Width: w, Height: h, Opacity: opacity,
	})
}
