package tessellate

import "github.com/gogpu/ui/geom"

// Defaults used by the zero Flattener.
const (
	DefaultTolerance = 0.1
	DefaultMaxDepth  = 16
)

// MaxDepthLimit bounds Flattener.MaxDepth, so one curve emits at most
// 2^MaxDepthLimit points.
const MaxDepthLimit = 20

// degenerateChordSq is the squared chord length below which the chord is
// treated as a point.
const degenerateChordSq = 1e-12

// Flattener adaptively subdivides Bezier curves.
//
// The zero value uses DefaultTolerance and DefaultMaxDepth.
type Flattener struct {
	// Tolerance is the maximum perpendicular distance between an interior
	// control point and the chord for a piece to be considered flat.
	Tolerance float32

	// MaxDepth caps the recursion. Pieces reached at MaxDepth are emitted
	// as chords whether or not they are flat. Values above MaxDepthLimit
	// are treated as MaxDepthLimit.
	MaxDepth int
}

func (f Flattener) tolerance() float32 {
	if f.Tolerance > 0 {
		return f.Tolerance
	}
	if f.Tolerance < 0 {
		return 0
	}
	return DefaultTolerance
}

func (f Flattener) maxDepth() int {
	if f.MaxDepth > 0 {
		return min(f.MaxDepth, MaxDepthLimit)
	}
	return DefaultMaxDepth
}

// Flatten appends the flattened curve to dst and returns the extended slice.
//
// The first control point is not emitted; the caller already holds it as the
// end of the previous segment. Every subsequent chord endpoint is appended,
// ending with the last control point. A two-point input is a straight chord:
// it contributes its midpoint once.
func (f Flattener) Flatten(dst, ctrl []geom.Vec2) []geom.Vec2 {
	switch {
	case len(ctrl) < 2:
		return dst
	case len(ctrl) == 2:
		return append(dst, ctrl[0].Midpoint(ctrl[1]))
	case len(ctrl) > MaxControlPoints:
		ctrl = ctrl[:MaxControlPoints]
	}
	tol := f.tolerance()
	return flattenRec(dst, ctrl, tol*tol, f.maxDepth())
}

func flattenRec(dst, ctrl []geom.Vec2, tolSq float32, depth int) []geom.Vec2 {
	if depth <= 0 || IsFlat(ctrl, tolSq) {
		return append(dst, ctrl[len(ctrl)-1])
	}
	var lbuf, rbuf [MaxControlPoints]geom.Vec2
	left, right := lbuf[:len(ctrl)], rbuf[:len(ctrl)]
	splitInto(ctrl, left, right)
	dst = flattenRec(dst, left, tolSq, depth-1)
	return flattenRec(dst, right, tolSq, depth-1)
}

// IsFlat reports whether every interior control point lies within
// sqrt(tolSq) of the chord joining the first and last control points.
//
// Curves with two or fewer control points are always flat. When the chord
// is degenerate the distance to its start point is used instead.
func IsFlat(ctrl []geom.Vec2, tolSq float32) bool {
	if len(ctrl) <= 2 {
		return true
	}
	return MaxDistanceSq(ctrl) <= tolSq
}

// MaxDistanceSq returns the largest squared distance from an interior
// control point to the chord.
func MaxDistanceSq(ctrl []geom.Vec2) float32 {
	if len(ctrl) <= 2 {
		return 0
	}
	first, last := ctrl[0], ctrl[len(ctrl)-1]
	chord := last.Sub(first)
	chordSq := chord.LengthSq()

	var worst float32
	for _, p := range ctrl[1 : len(ctrl)-1] {
		rel := p.Sub(first)
		var d float32
		if chordSq < degenerateChordSq {
			d = rel.LengthSq()
		} else {
			c := chord.Cross(rel)
			d = c * c / chordSq
		}
		if d > worst {
			worst = d
		}
	}
	return worst
}
