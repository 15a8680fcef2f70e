// Package element implements the Div, Text and Image elements.
//
// Every element owns frame-buffered storage for its atom geometry, atom
// placements and uniforms, allocated on first use from the frame's buffer
// allocator, and writes only to that storage during the parallel phases.
package element

import (
	"github.com/gogpu/ui/fragment"
	"github.com/gogpu/ui/geom"
	"github.com/gogpu/ui/layout"
)

// Style is the visual and positioning description shared by all elements.
// Percentages resolve against the parent's content box.
type Style struct {
	Position layout.Position
	Display  layout.Display

	Top, Right, Bottom, Left layout.Size

	Width, Height layout.Size
	MaxWidth      layout.Size

	Margin  layout.Edges
	Padding layout.Edges

	Background   fragment.Color
	BorderColor  fragment.Color
	BorderWidth  float32
	CornerRadius float32

	// Color is the text color. The zero value means black.
	Color      fragment.Color
	FontFamily string
	FontSize   float32
	// LineHeight of zero means 1.2 times FontSize.
	LineHeight float32

	// ZIndex is only used when HasZIndex is set; otherwise the node paints
	// at its parent's z.
	ZIndex    int
	HasZIndex bool
}

// DefaultFontSize is used when a text style has no FontSize.
const DefaultFontSize = 16

// WithZIndex returns a copy of s with an explicit z-index.
func (s Style) WithZIndex(z int) Style {
	s.ZIndex, s.HasZIndex = z, true
	return s
}

func (s Style) fontSize() float32 {
	if s.FontSize > 0 {
		return s.FontSize
	}
	return DefaultFontSize
}

func (s Style) textColor() fragment.Color {
	if s.Color == (fragment.Color{}) {
		return fragment.Black
	}
	return s.Color
}

func (s Style) lineHeight() float32 {
	if s.LineHeight > 0 {
		return s.LineHeight
	}
	return 1.2 * s.fontSize()
}

// measure resolves the explicit size against the parent's content size.
// In-flow block boxes without a width fill the parent's content width.
func (s Style) measure(parent geom.Vec2) fragment.Measured {
	var m fragment.Measured
	switch w := s.Width.Resolve(parent.X); {
	case w.Set:
		m.Width = w.Value
	case s.Display == layout.Block && s.Position == layout.Relative:
		m.Width = max(parent.X-s.Margin.Horizontal(), 0)
	default:
		m.AutoWidth = true
	}
	if h := s.Height.Resolve(parent.Y); h.Set {
		m.Height = h.Value
	} else {
		m.AutoHeight = true
	}
	return m
}

// input builds the layout input for a node measured as m.
func (s Style) input(parent geom.Vec2, m fragment.Measured) layout.Input {
	in := layout.Input{
		Position: s.Position,
		Display:  s.Display,
		Top:      s.Top.Resolve(parent.Y),
		Bottom:   s.Bottom.Resolve(parent.Y),
		Left:     s.Left.Resolve(parent.X),
		Right:    s.Right.Resolve(parent.X),
		Margin:   s.Margin,
		Padding:  s.Padding,
		MaxWidth: s.MaxWidth.Resolve(parent.X).Or(0),
	}
	if !m.AutoWidth {
		in.Width = layout.Px(m.Width)
	}
	if !m.AutoHeight {
		in.Height = layout.Px(m.Height)
	}
	return in
}
