// Package glyph turns font outlines into flattened contours.
//
// A font Face produces an Outline: raw points tagged as on-curve, conic
// (quadratic) control or cubic control, grouped into closed contours. The
// Processor walks each contour, reconstructs the implied on-curve points
// between consecutive conic controls, flattens every curve through the
// tessellate package, and yields a Glyph with bounds and per-contour ranges.
// Cache memoises Glyphs by (font, size, character).
package glyph

import (
	"fmt"

	"github.com/gogpu/ui/geom"
)

// Tag classifies an outline point.
type Tag uint8

const (
	// TagOnCurve marks a point the outline passes through.
	TagOnCurve Tag = iota
	// TagConic marks a quadratic Bezier control point.
	TagConic
	// TagCubic marks a cubic Bezier control point.
	TagCubic
)

// String returns the tag name.
func (t Tag) String() string {
	switch t {
	case TagOnCurve:
		return "on"
	case TagConic:
		return "conic"
	case TagCubic:
		return "cubic"
	default:
		return fmt.Sprintf("Tag(%d)", uint8(t))
	}
}

// Outline is the point-tagged representation of one glyph at a pixel size.
//
// Points are in pixels, y down, relative to the glyph origin on the
// baseline. Ends[i] is the exclusive end index of contour i; contour i
// spans Points[Ends[i-1]:Ends[i]] with Ends[-1] taken as 0.
type Outline struct {
	Points  []geom.Vec2
	Tags    []Tag
	Ends    []int
	Advance float32
}

// NumContours returns the number of contours.
func (o *Outline) NumContours() int { return len(o.Ends) }

// Contour returns the points and tags of contour i.
func (o *Outline) Contour(i int) ([]geom.Vec2, []Tag) {
	start := 0
	if i > 0 {
		start = o.Ends[i-1]
	}
	end := o.Ends[i]
	return o.Points[start:end], o.Tags[start:end]
}

// Validate checks that tags match points and contour ends are ordered.
func (o *Outline) Validate() error {
	if len(o.Points) != len(o.Tags) {
		return fmt.Errorf("%w: %d points, %d tags", ErrMalformedOutline, len(o.Points), len(o.Tags))
	}
	prev := 0
	for i, e := range o.Ends {
		if e < prev || e > len(o.Points) {
			return fmt.Errorf("%w: contour %d ends at %d", ErrMalformedOutline, i, e)
		}
		prev = e
	}
	if len(o.Ends) > 0 && prev != len(o.Points) {
		return fmt.Errorf("%w: %d trailing points outside any contour", ErrMalformedOutline, len(o.Points)-prev)
	}
	if len(o.Ends) == 0 && len(o.Points) != 0 {
		return fmt.Errorf("%w: points without contours", ErrMalformedOutline)
	}
	return nil
}

// outlineBuilder accumulates an Outline from segment-based font APIs
// (move/line/quad/cube) that report explicit on-curve endpoints.
type outlineBuilder struct {
	o     Outline
	start int // index of the current contour's first point
	open  bool
}

func (b *outlineBuilder) moveTo(p geom.Vec2) {
	b.closeContour()
	b.start = len(b.o.Points)
	b.open = true
	b.push(p, TagOnCurve)
}

func (b *outlineBuilder) lineTo(p geom.Vec2) {
	b.push(p, TagOnCurve)
}

func (b *outlineBuilder) quadTo(c, p geom.Vec2) {
	b.push(c, TagConic)
	b.push(p, TagOnCurve)
}

func (b *outlineBuilder) cubeTo(c1, c2, p geom.Vec2) {
	b.push(c1, TagCubic)
	b.push(c2, TagCubic)
	b.push(p, TagOnCurve)
}

func (b *outlineBuilder) push(p geom.Vec2, t Tag) {
	b.o.Points = append(b.o.Points, p)
	b.o.Tags = append(b.o.Tags, t)
}

// closeContour ends the open contour. Segment APIs repeat the start point
// as the final endpoint; the duplicate is dropped because contours are
// implicitly closed.
func (b *outlineBuilder) closeContour() {
	if !b.open {
		return
	}
	b.open = false
	n := len(b.o.Points)
	if n-b.start > 1 && b.o.Tags[n-1] == TagOnCurve && b.o.Points[n-1] == b.o.Points[b.start] {
		b.o.Points = b.o.Points[:n-1]
		b.o.Tags = b.o.Tags[:n-1]
	}
	b.o.Ends = append(b.o.Ends, len(b.o.Points))
}

func (b *outlineBuilder) finish(advance float32) *Outline {
	b.closeContour()
	b.o.Advance = advance
	return &b.o
}
