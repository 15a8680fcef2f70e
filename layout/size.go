package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
)

// Unit is the unit of a Size.
type Unit uint8

const (
	UnitAuto Unit = iota
	UnitPx
	UnitPercent
)

// Size is a style dimension before resolution.
type Size struct {
	Value float32
	Unit  Unit
}

// Auto is the unset Size.
var Auto = Size{}

// Pixels returns a Size in pixels.
func Pixels(v float32) Size { return Size{Value: v, Unit: UnitPx} }

// Percent returns a fractional Size: 0.5 is 50%. v is clamped to [0, 1],
// so Percent(50) is 100%; use ParseSize("50%") for percent notation.
func Percent(v float32) Size {
	return Size{Value: math32.Min(math32.Max(v, 0), 1), Unit: UnitPercent}
}

// IsAuto reports whether the size is unset.
func (s Size) IsAuto() bool { return s.Unit == UnitAuto }

// Resolve converts s to a Length against the reference size.
func (s Size) Resolve(reference float32) Length {
	switch s.Unit {
	case UnitPx:
		return Px(s.Value)
	case UnitPercent:
		return Px(s.Value * reference)
	default:
		return Length{}
	}
}

// String formats the size as "auto", "12px" or "50%".
func (s Size) String() string {
	switch s.Unit {
	case UnitPx:
		return strconv.FormatFloat(float64(s.Value), 'g', -1, 32) + "px"
	case UnitPercent:
		return strconv.FormatFloat(float64(s.Value*100), 'g', -1, 32) + "%"
	default:
		return "auto"
	}
}

// ParseSize accepts "auto", "12", "12px" and "50%".
func ParseSize(s string) (Size, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case s == "" || s == "auto":
		return Auto, nil
	case strings.HasSuffix(s, "%"):
		v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 32)
		if err != nil {
			return Auto, fmt.Errorf("layout: bad size %q: %w", s, err)
		}
		return Percent(float32(v) / 100), nil
	default:
		v, err := strconv.ParseFloat(strings.TrimSuffix(s, "px"), 32)
		if err != nil {
			return Auto, fmt.Errorf("layout: bad size %q: %w", s, err)
		}
		return Pixels(float32(v)), nil
	}
}
