package glyph

import (
	"github.com/gogpu/ui/geom"
	"github.com/gogpu/ui/tessellate"
)

// boundsPadding expands glyph bounds so edge pixels are not clipped.
const boundsPadding = 1

// Processor converts Outlines into Glyphs.
//
// With Resolution > 0 every curve is sampled at Resolution uniform steps;
// otherwise curves are flattened adaptively with Flattener. The zero value
// flattens adaptively with tessellate defaults.
type Processor struct {
	Flattener  tessellate.Flattener
	Resolution int
}

// Process flattens every contour of o.
func (p *Processor) Process(o *Outline) (*Glyph, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}

	g := &Glyph{
		Advance:  o.Advance,
		Contours: make([]Contour, 0, len(o.Ends)),
	}
	if len(o.Points) > 0 {
		b := geom.Rect{Min: o.Points[0], Max: o.Points[0]}
		for _, pt := range o.Points[1:] {
			b = b.Extend(pt)
		}
		g.Bounds = geom.Rect{
			Min: b.Min.Sub(geom.V2(boundsPadding, boundsPadding)),
			Max: b.Max.Add(geom.V2(boundsPadding, boundsPadding)),
		}
	}

	w := contourWalker{proc: p, g: g}
	for i := range o.Ends {
		pts, tags := o.Contour(i)
		offset := len(g.Points)
		w.walk(pts, tags)
		g.Contours = append(g.Contours, Contour{Offset: offset, Size: len(g.Points) - offset})
	}
	return g, nil
}

// contourWalker holds the scan state for one contour at a time.
type contourWalker struct {
	proc *Processor
	g    *Glyph

	kind    SegmentKind
	start   geom.Vec2 // on-curve point the pending segment begins at
	pending []geom.Vec2
	anchor  geom.Vec2
}

func (w *contourWalker) walk(pts []geom.Vec2, tags []Tag) {
	n := len(pts)
	if n == 0 {
		return
	}

	// A contour may begin with a control point. Anchor it on the last point
	// when that is on-curve, otherwise on the midpoint of last and first.
	from, to := 1, n
	switch {
	case tags[0] == TagOnCurve:
		w.anchor = pts[0]
	case tags[n-1] == TagOnCurve:
		w.anchor = pts[n-1]
		from, to = 0, n-1
	default:
		w.anchor = pts[n-1].Midpoint(pts[0])
		from = 0
	}

	w.kind = SegmentLine
	w.start = w.anchor
	w.pending = w.pending[:0]
	w.g.Points = append(w.g.Points, w.anchor)

	for i := from; i < to; i++ {
		w.visit(pts[i], tags[i])
	}
	w.close()
}

func (w *contourWalker) visit(pt geom.Vec2, tag Tag) {
	switch tag {
	case TagOnCurve:
		w.flushTo(pt, false)

	case TagConic:
		if w.kind == SegmentQuad && len(w.pending) == 1 {
			// Two conic controls in a row imply an on-curve midpoint.
			mid := w.pending[0].Midpoint(pt)
			w.flushTo(mid, false)
		}
		if w.kind == SegmentCubic {
			w.pushCubic(pt)
			return
		}
		w.kind = SegmentQuad
		w.pending = append(w.pending, pt)

	case TagCubic:
		w.pushCubic(pt)
	}
}

func (w *contourWalker) pushCubic(pt geom.Vec2) {
	if w.kind == SegmentCubic && len(w.pending) == 2 {
		mid := w.pending[1].Midpoint(pt)
		w.flushTo(mid, false)
	}
	// A conic control followed by a cubic one is read as a cubic pair.
	w.kind = SegmentCubic
	w.pending = append(w.pending, pt)
}

// close flushes the segment back to the anchor.
func (w *contourWalker) close() {
	w.flushTo(w.anchor, true)
}

// flushTo ends the pending segment at end and appends its flattened
// points, excluding the start point. When closing, the final point (the
// anchor, already emitted) is dropped.
func (w *contourWalker) flushTo(end geom.Vec2, closing bool) {
	var seg Segment
	switch {
	case len(w.pending) == 0:
		seg.Kind = SegmentLine
		seg.Ctrl[0], seg.Ctrl[1] = w.start, end
		seg.N = 2
	case len(w.pending) == 1:
		seg.Kind = SegmentQuad
		seg.Ctrl[0], seg.Ctrl[1], seg.Ctrl[2] = w.start, w.pending[0], end
		seg.N = 3
	default:
		seg.Kind = SegmentCubic
		seg.Ctrl[0], seg.Ctrl[1], seg.Ctrl[2], seg.Ctrl[3] = w.start, w.pending[0], w.pending[1], end
		seg.N = 4
	}
	w.g.Segments = append(w.g.Segments, seg)

	before := len(w.g.Points)
	if seg.Kind == SegmentLine {
		w.g.Points = append(w.g.Points, end)
	} else {
		w.g.Points = w.proc.flatten(w.g.Points, seg.Points())
	}
	if closing && len(w.g.Points) > before {
		w.g.Points = w.g.Points[:len(w.g.Points)-1]
	}

	w.start = end
	w.kind = SegmentLine
	w.pending = w.pending[:0]
}

// flatten appends the points of a curve after its first control point.
func (p *Processor) flatten(dst, ctrl []geom.Vec2) []geom.Vec2 {
	if p.Resolution > 0 {
		for t := 1; t <= p.Resolution; t++ {
			dst = append(dst, tessellate.Sample(ctrl, t, p.Resolution))
		}
		return dst
	}
	return p.Flattener.Flatten(dst, ctrl)
}
