// Package tessellate flattens quadratic and cubic Bezier curves into
// polylines.
//
// Two strategies are provided. Sample evaluates a curve at a fixed
// resolution using nested linear interpolation, so callers that want N
// uniformly spaced segments sample t = 0..N. Flattener subdivides a curve
// at its parametric midpoint until each piece is flat within a tolerance,
// concentrating output where curvature is high.
package tessellate

import "github.com/gogpu/ui/geom"

// MaxControlPoints is the largest control polygon accepted (a cubic).
const MaxControlPoints = 4

// lerp interpolates with the two-product form so that s == 0 yields a and
// s == 1 yields b bit-exactly.
func lerp(a, b geom.Vec2, s float32) geom.Vec2 {
	r := 1 - s
	return geom.Vec2{
		X: a.X*r + b.X*s,
		Y: a.Y*r + b.Y*s,
	}
}

// Sample returns the point of the curve described by ctrl at parameter t/n.
//
// ctrl holds 2 to 4 control points (line, quadratic, cubic). t is expected in
// [0, n]; Sample(ctrl, 0, n) is ctrl[0] and Sample(ctrl, n, n) is the last
// control point exactly. A non-positive n is treated as 1.
func Sample(ctrl []geom.Vec2, t, n int) geom.Vec2 {
	switch len(ctrl) {
	case 0:
		return geom.Vec2{}
	case 1:
		return ctrl[0]
	}
	if n <= 0 {
		n = 1
	}
	if t <= 0 {
		return ctrl[0]
	}
	if t >= n {
		return ctrl[len(ctrl)-1]
	}

	s := float32(t) / float32(n)

	var buf [MaxControlPoints]geom.Vec2
	m := copy(buf[:], ctrl)
	for m > 1 {
		for i := 0; i < m-1; i++ {
			buf[i] = lerp(buf[i], buf[i+1], s)
		}
		m--
	}
	return buf[0]
}

// SampleN appends n+1 samples of the curve (t = 0..n inclusive) to dst.
func SampleN(dst, ctrl []geom.Vec2, n int) []geom.Vec2 {
	if n <= 0 {
		n = 1
	}
	for t := 0; t <= n; t++ {
		dst = append(dst, Sample(ctrl, t, n))
	}
	return dst
}

// Split divides the curve at its parametric midpoint and returns the two
// halves. Both halves have the same number of control points as ctrl; the
// last point of left equals the first point of right.
func Split(ctrl []geom.Vec2) (left, right []geom.Vec2) {
	n := len(ctrl)
	left = make([]geom.Vec2, n)
	right = make([]geom.Vec2, n)
	splitInto(ctrl, left, right)
	return left, right
}

// splitInto is Split writing into caller-provided slices of len(ctrl).
func splitInto(ctrl, left, right []geom.Vec2) {
	n := len(ctrl)
	var work [MaxControlPoints]geom.Vec2
	copy(work[:], ctrl)

	// Each de Casteljau level contributes its first point to the left half
	// and its last point to the right half.
	for level := 0; level < n; level++ {
		m := n - level
		left[level] = work[0]
		right[m-1] = work[m-1]
		for i := 0; i < m-1; i++ {
			work[i] = work[i].Midpoint(work[i+1])
		}
	}
}
