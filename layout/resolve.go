package layout

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/ui/fragment"
	"github.com/gogpu/ui/geom"
)

// Resolve lays out one node. It has no side effects; identical arguments
// produce identical results.
func Resolve(c Constraints, in Input, atoms []fragment.Atom) Result {
	switch in.Position {
	case Absolute:
		return outOfFlow(c, c.Origin, geom.V2(c.MaxWidth, c.MaxHeight), in, atoms)
	case Fixed:
		return outOfFlow(c, geom.Vec2{}, c.Viewport, in, atoms)
	}
	if in.Display == Inline {
		return inlineFlow(c, in, atoms)
	}
	return blockFlow(c, in, atoms)
}

// leadingGap is the vertical space between the previous sibling and a box
// with the given top margin.
func leadingGap(prev EdgeIntent, top float32) float32 {
	if prev.Axis != AxisBlock {
		return top
	}
	if prev.Collapsible {
		return math32.Max(prev.Margin, top)
	}
	return prev.Margin + top
}

// row places atoms left to right from (x, y) without wrapping and returns
// their total width and maximum height.
func row(offsets []geom.Vec2, atoms []fragment.Atom, x, y float32) (w, h float32) {
	for i, a := range atoms {
		offsets[i] = geom.V2(x+w, y)
		w += a.Width
		h = math32.Max(h, a.Height)
	}
	return w, h
}

// childConstraints derives the constraints for a node's children from its
// border box.
func childConstraints(c Constraints, box geom.Rect, pad Edges) Constraints {
	content := box.Inset(pad.Top, pad.Right, pad.Bottom, pad.Left)
	return Constraints{
		Origin:    content.Min,
		Cursor:    content.Min,
		MaxWidth:  content.Width(),
		MaxHeight: content.Height(),
		Viewport:  c.Viewport,
	}
}

func blockFlow(c Constraints, in Input, atoms []fragment.Atom) Result {
	// A block always starts below the current line.
	top := c.Cursor.Y + c.LineHeight + leadingGap(c.Edge, in.Margin.Top)
	x := c.Origin.X + in.Margin.Left

	offsets := make([]geom.Vec2, len(atoms))
	w, h := row(offsets, atoms, x, top)
	w = in.Width.Or(w)
	h = in.Height.Or(h)

	box := geom.XYWH(x, top, w, h)
	next := geom.V2(c.Origin.X, top+h)
	return Result{
		Offsets:        offsets,
		Box:            box,
		ConsumedHeight: next.Y - c.Cursor.Y,
		Child:          childConstraints(c, box, in.Padding),
		Next:           next,
		Edge:           EdgeIntent{Axis: AxisBlock, Margin: in.Margin.Bottom, Collapsible: true},
	}
}

// lineLimit is the x coordinate inline content may not cross.
func lineLimit(c Constraints, in Input) float32 {
	lineStart := c.Origin.X
	avail := float32(math32.MaxFloat32)
	for _, v := range []float32{in.MaxWidth, c.MaxWidth, c.Viewport.X - lineStart} {
		if v > 0 {
			avail = math32.Min(avail, v)
		}
	}
	return lineStart + avail
}

func inlineFlow(c Constraints, in Input, atoms []fragment.Atom) Result {
	x, y := c.Cursor.X, c.Cursor.Y
	lineHeight := c.LineHeight

	switch c.Edge.Axis {
	case AxisInline:
		x += c.Edge.Margin + in.Margin.Left
	case AxisBlock:
		y += leadingGap(c.Edge, in.Margin.Top)
		x += in.Margin.Left
	default:
		x += in.Margin.Left
	}

	lineStart := c.Origin.X
	limit := lineLimit(c, in)

	offsets := make([]geom.Vec2, len(atoms))
	top := y
	minX, maxX := x, x
	for i, a := range atoms {
		if a.NewLine || (x+a.Width > limit && x > lineStart) {
			y += lineHeight
			x = lineStart
			lineHeight = 0
		}
		if i == 0 {
			top = y
			minX, maxX = x, x
		}
		offsets[i] = geom.V2(x, y)
		minX = math32.Min(minX, x)
		x += a.Width
		maxX = math32.Max(maxX, x)
		lineHeight = math32.Max(lineHeight, a.Height)
	}

	var extent float32
	if len(atoms) > 0 {
		extent = y + lineHeight - top
	}
	w := in.Width.Or(maxX - minX)
	h := in.Height.Or(extent)
	box := geom.XYWH(minX, top, w, h)

	r := Result{
		Offsets: offsets,
		Box:     box,
		Child:   childConstraints(c, box, in.Padding),
		Edge:    EdgeIntent{Axis: AxisInline, Margin: in.Margin.Right},
	}
	if x >= limit {
		r.Next = geom.V2(lineStart, y+lineHeight)
	} else {
		r.Next = geom.V2(x, y)
		r.LineHeight = lineHeight
	}
	r.ConsumedHeight = r.Next.Y - c.Cursor.Y
	return r
}

// outOfFlow positions a node against a containing block at origin with the
// given size. Atoms are blockified into a single row.
func outOfFlow(c Constraints, origin, container geom.Vec2, in Input, atoms []fragment.Atom) Result {
	offsets := make([]geom.Vec2, len(atoms))
	w, h := row(offsets, atoms, 0, 0)
	w = in.Width.Or(w)
	h = in.Height.Or(h)

	x := origin.X + in.Margin.Left
	switch {
	case in.Left.Set:
		x += in.Left.Value
	case in.Right.Set:
		x = origin.X + container.X - in.Right.Value - in.Margin.Right - w
	}
	y := origin.Y + in.Margin.Top
	switch {
	case in.Top.Set:
		y += in.Top.Value
	case in.Bottom.Set:
		y = origin.Y + container.Y - in.Bottom.Value - in.Margin.Bottom - h
	}

	for i := range offsets {
		offsets[i] = offsets[i].Add(geom.V2(x, y))
	}
	box := geom.XYWH(x, y, w, h)
	return Result{
		Offsets:    offsets,
		Box:        box,
		Child:      childConstraints(c, box, in.Padding),
		Next:       c.Cursor,
		Edge:       c.Edge,
		LineHeight: c.LineHeight,
		OutOfFlow:  true,
	}
}

// Enclose grows an in-flow block result so that its box reaches at least
// contentBottom plus the bottom padding. The tree calls it after laying out
// the children of auto-height blocks.
func Enclose(r Result, in Input, contentBottom float32) Result {
	if r.OutOfFlow || in.Display == Inline || in.Height.Set {
		return r
	}
	bottom := contentBottom + in.Padding.Bottom
	if bottom <= r.Box.Max.Y {
		return r
	}
	delta := bottom - r.Box.Max.Y
	r.Box.Max.Y = bottom
	r.Next.Y += delta
	r.ConsumedHeight += delta
	r.Child.MaxHeight += delta
	return r
}
