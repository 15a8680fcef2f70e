package geom

// Rect is an axis-aligned rectangle given by its top-left and bottom-right
// corners.
type Rect struct {
	Min, Max Vec2
}

// XYWH builds a Rect from an origin and a size.
func XYWH(x, y, w, h float32) Rect {
	return Rect{Min: Vec2{X: x, Y: y}, Max: Vec2{X: x + w, Y: y + h}}
}

// Width returns Max.X - Min.X.
func (r Rect) Width() float32 { return r.Max.X - r.Min.X }

// Height returns Max.Y - Min.Y.
func (r Rect) Height() float32 { return r.Max.Y - r.Min.Y }

// Size returns the width and height as a vector.
func (r Rect) Size() Vec2 { return r.Max.Sub(r.Min) }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Vec2 { return r.Min.Midpoint(r.Max) }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Max.X <= r.Min.X || r.Max.Y <= r.Min.Y
}

// Contains reports whether p lies inside r. The top and left edges are
// inclusive, the bottom and right edges exclusive.
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.Min.X && p.X < r.Max.X &&
		p.Y >= r.Min.Y && p.Y < r.Max.Y
}

// Union returns the smallest rectangle containing both r and s.
// An empty operand is ignored.
func (r Rect) Union(s Rect) Rect {
	if r.Empty() {
		return s
	}
	if s.Empty() {
		return r
	}
	return Rect{Min: r.Min.Min(s.Min), Max: r.Max.Max(s.Max)}
}

// Extend grows r so that it contains p.
func (r Rect) Extend(p Vec2) Rect {
	return Rect{Min: r.Min.Min(p), Max: r.Max.Max(p)}
}

// Translate offsets the rectangle by d.
func (r Rect) Translate(d Vec2) Rect {
	return Rect{Min: r.Min.Add(d), Max: r.Max.Add(d)}
}

// Inset shrinks the rectangle by the given amounts on each side.
// The result never has negative extent.
func (r Rect) Inset(top, right, bottom, left float32) Rect {
	out := Rect{
		Min: Vec2{X: r.Min.X + left, Y: r.Min.Y + top},
		Max: Vec2{X: r.Max.X - right, Y: r.Max.Y - bottom},
	}
	if out.Max.X < out.Min.X {
		out.Max.X = out.Min.X
	}
	if out.Max.Y < out.Min.Y {
		out.Max.Y = out.Min.Y
	}
	return out
}
