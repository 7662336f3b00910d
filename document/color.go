package document

import (
	"fmt"
	"strings"

	"github.com/gogpu/gg"
	"gopkg.in/yaml.v3"
)

var namedColors = map[string]gg.RGBA{
	"transparent": gg.Transparent,
	"black":       gg.Black,
	"white":       gg.White,
	"red":         gg.Red,
	"green":       gg.Green,
	"blue":        gg.Blue,
	"yellow":      gg.Yellow,
	"cyan":        gg.Cyan,
	"magenta":     gg.Magenta,
	"gray":        gg.RGB(0.5, 0.5, 0.5),
}

// Color is a straight-alpha color as written in a document. The zero value
// means "unset".
type Color struct {
	gg.RGBA
	Set bool
}

// ParseColor parses "#rgb", "#rgba", "#rrggbb", "#rrggbbaa" or a basic
// color name.
func ParseColor(s string) (gg.RGBA, error) {
	s = strings.TrimSpace(s)
	if c, ok := namedColors[strings.ToLower(s)]; ok {
		return c, nil
	}
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return gg.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	switch len(hex) {
	case 3, 4, 6, 8:
	default:
		return gg.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	for _, r := range hex {
		if !isHexDigit(r) {
			return gg.RGBA{}, fmt.Errorf("invalid color %q", s)
		}
	}
	return gg.Hex(hex), nil
}

func isHexDigit(r rune) bool {
	return '0' <= r && r <= '9' || 'a' <= r && r <= 'f' || 'A' <= r && r <= 'F'
}

// UnmarshalYAML parses a color string.
func (c *Color) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: color must be a string", n.Line)
	}
	v, err := ParseColor(n.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*c = Color{RGBA: v, Set: true}
	return nil
}

// Or returns c when set and def otherwise.
func (c Color) Or(def gg.RGBA) gg.RGBA {
	if c.Set {
		return c.RGBA
	}
	return def
}
