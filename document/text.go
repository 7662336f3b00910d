package document

import (
	"strings"
	"unicode"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"gopkg.in/yaml.v3"
)

const (
	defaultTextSize    = 11
	defaultLineSpacing = 1.2
)

type textSpec struct {
	Body        string   `yaml:"body"`
	X           Length   `yaml:"x"`
	Y           Length   `yaml:"y"`
	Font        string   `yaml:"font"`
	Size        *Length  `yaml:"size"`
	Fill        Color    `yaml:"fill"`
	Align       string   `yaml:"align"`
	Width       Length   `yaml:"width"`
	LineSpacing *float64 `yaml:"line-spacing"`
}

// text lays out a text element. Y is the top of the block; each line is
// placed at its baseline.
func (cs *compilation) text(file string, n *yaml.Node) {
	var s textSpec
	if !cs.decode(file, n, &s) {
		return
	}
	body := strings.TrimRight(s.Body, "\n")
	if strings.TrimSpace(body) == "" {
		return
	}

	switch s.Align {
	case "", "left", "center", "right":
	default:
		cs.diags.errorf(file, n.Line, "text: unknown alignment %q", s.Align)
		return
	}

	src := cs.font(file, n.Line, s.Font)
	if src == nil {
		return
	}

	bw, _ := cs.box()
	size := float64(defaultTextSize)
	if s.Size != nil {
		size = s.Size.Resolve(bw)
	}
	if size <= 0 {
		cs.diags.errorf(file, n.Line, "text: size must be positive")
		return
	}
	spacing := defaultLineSpacing
	if s.LineSpacing != nil && *s.LineSpacing > 0 {
		spacing = *s.LineSpacing
	}

	face := src.Face(size)
	if missing := missingGlyphs(face, body); missing != "" {
		cs.diags.warnf(file, n.Line, "font %q has no glyphs for %q", src.Name(), missing)
	}

	x, y := cs.xy(s.X, s.Y)
	width := s.Width.Resolve(bw)
	lines := wrap(face, body, width)

	t := &Text{
		Font:  src,
		Size:  size,
		Color: s.Fill.Or(gg.Black),
		Lines: make([]TextLine, 0, len(lines)),
	}
	baseline := y + face.Metrics().Ascent
	for _, l := range lines {
		t.Lines = append(t.Lines, TextLine{
			Text: l,
			X:    alignX(x, width, face.Advance(l), s.Align),
			Y:    baseline,
		})
		baseline += size * spacing
	}
	cs.cur.Items = append(cs.cur.Items, t)
}

// font resolves a family name. Unknown families fall back to the first
// available font with a warning; no font at all is an error, reported once.
func (cs *compilation) font(file string, line int, family string) *text.FontSource {
	def, ok := cs.world.DefaultFont()
	if !ok {
		if !cs.noFonts {
			cs.noFonts = true
			cs.diags.errorf(file, line, "text requires a font, but no fonts are available")
		}
		return nil
	}
	if family == "" {
		return def.Source
	}
	if f, ok := cs.world.Font(family); ok {
		return f.Source
	}
	cs.diags.warnf(file, line, "unknown font family %q, using %q", family, def.Family())
	return def.Source
}

// missingGlyphs returns the distinct non-space runes of s that face cannot
// render.
func missingGlyphs(face text.Face, s string) string {
	var b strings.Builder
	seen := make(map[rune]bool)
	for _, r := range s {
		if unicode.IsSpace(r) || seen[r] {
			continue
		}
		seen[r] = true
		if !face.HasGlyph(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// wrap splits s into lines at newlines and, when width is positive, breaks
// lines greedily at spaces so they fit width. A single word wider than
// width gets a line of its own.
func wrap(face text.Face, s string, width float64) []string {
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		para = strings.TrimRight(para, " \t\r")
		if width <= 0 {
			lines = append(lines, para)
			continue
		}
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		cur := words[0]
		for _, w := range words[1:] {
			next := cur + " " + w
			if face.Advance(next) > width {
				lines = append(lines, cur)
				cur = w
				continue
			}
			cur = next
		}
		lines = append(lines, cur)
	}
	return lines
}

func alignX(x, width, advance float64, align string) float64 {
	switch align {
	case "center":
		if width > 0 {
			return x + (width-advance)/2
		}
		return x - advance/2
	case "right":
		if width > 0 {
			return x + width - advance
		}
		return x - advance
	default:
		return x
	}
}
