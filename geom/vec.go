// Package geom holds the float32 vector and rectangle types shared by the
// tessellator, the glyph processor and the layout engine.
//
// Coordinates are in frame pixels with the origin at the top-left corner and
// y growing downwards. float32 matches what ends up in GPU-visible buffers.
package geom

import "github.com/chewxy/math32"

// Vec2 is a 2D point or displacement.
type Vec2 struct {
	X, Y float32
}

// V2 is a convenience function to create a Vec2.
func V2(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns the sum of two vectors.
func (v Vec2) Add(w Vec2) Vec2 {
	return Vec2{X: v.X + w.X, Y: v.Y + w.Y}
}

// Sub returns the difference of two vectors.
func (v Vec2) Sub(w Vec2) Vec2 {
	return Vec2{X: v.X - w.X, Y: v.Y - w.Y}
}

// Mul returns the vector scaled by s.
func (v Vec2) Mul(s float32) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// Dot returns the dot product of two vectors.
func (v Vec2) Dot(w Vec2) float32 {
	return v.X*w.X + v.Y*w.Y
}

// Cross returns the z component of the 3D cross product with z=0.
func (v Vec2) Cross(w Vec2) float32 {
	return v.X*w.Y - v.Y*w.X
}

// LengthSq returns the squared length of the vector.
func (v Vec2) LengthSq() float32 {
	return v.X*v.X + v.Y*v.Y
}

// Length returns the length of the vector.
func (v Vec2) Length() float32 {
	return math32.Sqrt(v.LengthSq())
}

// Lerp interpolates linearly between v and w.
func (v Vec2) Lerp(w Vec2, t float32) Vec2 {
	return Vec2{
		X: v.X + (w.X-v.X)*t,
		Y: v.Y + (w.Y-v.Y)*t,
	}
}

// Midpoint returns the point halfway between v and w.
func (v Vec2) Midpoint(w Vec2) Vec2 {
	return Vec2{X: (v.X + w.X) / 2, Y: (v.Y + w.Y) / 2}
}

// Min returns the component-wise minimum.
func (v Vec2) Min(w Vec2) Vec2 {
	return Vec2{X: math32.Min(v.X, w.X), Y: math32.Min(v.Y, w.Y)}
}

// Max returns the component-wise maximum.
func (v Vec2) Max(w Vec2) Vec2 {
	return Vec2{X: math32.Max(v.X, w.X), Y: math32.Max(v.Y, w.Y)}
}
