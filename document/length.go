package document

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Length is a distance in points, or a fraction of a reference length.
type Length struct {
	Pt      float64
	Percent float64
	Rel     bool
}

// Pt returns an absolute length.
func Pt(v float64) Length { return Length{Pt: v} }

// Resolve returns the length in points. ref is the reference for relative
// lengths.
func (l Length) Resolve(ref float64) float64 {
	if l.Rel {
		return l.Percent / 100 * ref
	}
	return l.Pt
}

// unitPt converts each unit to points.
var unitPt = map[string]float64{
	"pt": 1,
	"px": 0.75,
	"in": 72,
	"cm": 72 / 2.54,
	"mm": 72 / 25.4,
}

// ParseLength parses "12", "12pt", "4.5mm", "50%" and the like.
func ParseLength(s string) (Length, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Length{}, fmt.Errorf("empty length")
	}
	if num, ok := strings.CutSuffix(s, "%"); ok {
		v, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
		if err != nil {
			return Length{}, fmt.Errorf("invalid length %q", s)
		}
		return Length{Percent: v, Rel: true}, nil
	}
	for unit, k := range unitPt {
		if num, ok := strings.CutSuffix(s, unit); ok {
			v, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
			if err != nil {
				return Length{}, fmt.Errorf("invalid length %q", s)
			}
			return Pt(v * k), nil
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Length{}, fmt.Errorf("invalid length %q", s)
	}
	return Pt(v), nil
}

// UnmarshalYAML accepts numbers (points) and unit strings.
func (l *Length) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: length must be a scalar", n.Line)
	}
	v, err := ParseLength(n.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*l = v
	return nil
}
