// Package layout implements the flow layout engine.
//
// Resolve is a pure function of its arguments: it positions a node's atoms
// under the constraints handed down by the parent (and threaded across
// previous siblings) and reports where the next sibling and the node's
// children should start. Normal flow supports block and inline display with
// vertical margin collapsing and greedy line breaking; absolute and fixed
// positioning take a node out of flow.
package layout

import "github.com/gogpu/ui/geom"

// Position is the positioning scheme of a node.
type Position uint8

const (
	// Relative places the node in normal flow.
	Relative Position = iota
	// Absolute places the node relative to its containing block's content
	// origin, out of flow.
	Absolute
	// Fixed places the node relative to the viewport, out of flow.
	Fixed
)

// String returns the CSS keyword.
func (p Position) String() string {
	switch p {
	case Relative:
		return "relative"
	case Absolute:
		return "absolute"
	case Fixed:
		return "fixed"
	default:
		return "unknown"
	}
}

// Display is the outer display type of a node.
type Display uint8

const (
	Block Display = iota
	Inline
)

// String returns the CSS keyword.
func (d Display) String() string {
	if d == Inline {
		return "inline"
	}
	return "block"
}

// Axis is the axis a trailing margin applies to.
type Axis uint8

const (
	// AxisNone means no previous in-flow sibling.
	AxisNone Axis = iota
	// AxisBlock is the vertical axis.
	AxisBlock
	// AxisInline is the horizontal axis.
	AxisInline
)

// EdgeIntent is what a node leaves behind for the next in-flow sibling:
// its trailing margin, the axis it applies on, and whether it may collapse
// with the next sibling's leading margin.
type EdgeIntent struct {
	Axis        Axis
	Margin      float32
	Collapsible bool
}

// Edges holds one value per box side.
type Edges struct {
	Top, Right, Bottom, Left float32
}

// Uniform returns Edges with all sides set to v.
func Uniform(v float32) Edges {
	return Edges{Top: v, Right: v, Bottom: v, Left: v}
}

// Horizontal returns Left + Right.
func (e Edges) Horizontal() float32 { return e.Left + e.Right }

// Vertical returns Top + Bottom.
func (e Edges) Vertical() float32 { return e.Top + e.Bottom }

// Length is an optional resolved length in pixels.
type Length struct {
	Value float32
	Set   bool
}

// Px returns a set Length.
func Px(v float32) Length { return Length{Value: v, Set: true} }

// Or returns the length's value when set, otherwise def.
func (l Length) Or(def float32) float32 {
	if l.Set {
		return l.Value
	}
	return def
}

// Input is the subset of a node's style the engine needs, with sizes
// already resolved to pixels.
type Input struct {
	Position Position
	Display  Display

	Top, Right, Bottom, Left Length

	Margin  Edges
	Padding Edges

	// Width and Height override the extents computed from atoms.
	Width, Height Length

	// MaxWidth bounds inline line length. Zero means unbounded.
	MaxWidth float32
}

// Constraints is the layout context handed to a node.
type Constraints struct {
	// Origin is the content origin of the containing block. Lines wrap back
	// to Origin.X.
	Origin geom.Vec2

	// Cursor is where the next in-flow box starts.
	Cursor geom.Vec2

	MaxWidth  float32
	MaxHeight float32

	// Viewport is the frame size.
	Viewport geom.Vec2

	// Edge is the previous in-flow sibling's edge intent.
	Edge EdgeIntent

	// LineHeight is the height of the inline line the cursor sits on.
	LineHeight float32
}

// Root returns the constraints for the root of a frame of the given size.
func Root(viewport geom.Vec2) Constraints {
	return Constraints{
		MaxWidth:  viewport.X,
		MaxHeight: viewport.Y,
		Viewport:  viewport,
	}
}

// Result is the output of Resolve.
type Result struct {
	// Offsets has one entry per atom, in atom order.
	Offsets []geom.Vec2

	// Box is the node's border box.
	Box geom.Rect

	// ConsumedHeight is how far the flow cursor advanced vertically.
	ConsumedHeight float32

	// Child is the constraints for the node's first child.
	Child Constraints

	// Next, Edge and LineHeight are threaded to the next sibling unless
	// OutOfFlow is set.
	Next       geom.Vec2
	Edge       EdgeIntent
	LineHeight float32

	OutOfFlow bool
}

// Sibling returns the constraints for the sibling following a node laid out
// under c with result r. Out-of-flow results leave c untouched.
func (r Result) Sibling(c Constraints) Constraints {
	if r.OutOfFlow {
		return c
	}
	c.Cursor = r.Next
	c.Edge = r.Edge
	c.LineHeight = r.LineHeight
	return c
}
