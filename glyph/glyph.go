package glyph

import "github.com/gogpu/ui/geom"

// SegmentKind identifies the curve type of a flushed segment.
type SegmentKind uint8

const (
	SegmentLine SegmentKind = iota
	SegmentQuad
	SegmentCubic
)

// String returns the segment kind name.
func (k SegmentKind) String() string {
	switch k {
	case SegmentLine:
		return "line"
	case SegmentQuad:
		return "quad"
	case SegmentCubic:
		return "cubic"
	default:
		return "unknown"
	}
}

// Segment is one flushed piece of a contour, before flattening.
type Segment struct {
	Kind SegmentKind
	Ctrl [4]geom.Vec2
	N    int // number of valid points in Ctrl
}

// Points returns the valid control points.
func (s Segment) Points() []geom.Vec2 { return s.Ctrl[:s.N] }

// Contour locates one contour inside Glyph.Points.
type Contour struct {
	Offset int
	Size   int
}

// Glyph is the processed, flattened form of an outline. It is immutable
// once returned and may be shared between goroutines.
type Glyph struct {
	// Bounds covers every raw outline point, expanded by one pixel on each
	// side.
	Bounds geom.Rect

	// Points is the concatenation of all flattened contours. Each contour
	// starts with its anchor point and is implicitly closed.
	Points []geom.Vec2

	Contours []Contour
	Segments []Segment

	Advance float32
}

// NumContours returns the number of contours.
func (g *Glyph) NumContours() int { return len(g.Contours) }

// ContourPoints returns the flattened points of contour i.
func (g *Glyph) ContourPoints(i int) []geom.Vec2 {
	c := g.Contours[i]
	return g.Points[c.Offset : c.Offset+c.Size]
}

// Empty reports whether the glyph has no geometry (for example a space).
func (g *Glyph) Empty() bool { return len(g.Points) == 0 }

// Width returns the bounding box width.
func (g *Glyph) Width() float32 { return g.Bounds.Width() }

// Height returns the bounding box height.
func (g *Glyph) Height() float32 { return g.Bounds.Height() }
