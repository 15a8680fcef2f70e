package glyph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/ui/geom"
	"github.com/gogpu/ui/tessellate"
)

func v(x, y float32) geom.Vec2 { return geom.V2(x, y) }

func TestProcessPolygonRoundTrip(t *testing.T) {
	o := &Outline{
		Points: []geom.Vec2{
			v(0, 0), v(10, 0), v(10, 10), v(0, 10),
			v(2, 2), v(4, 2), v(3, 5),
		},
		Tags: []Tag{
			TagOnCurve, TagOnCurve, TagOnCurve, TagOnCurve,
			TagOnCurve, TagOnCurve, TagOnCurve,
		},
		Ends: []int{4, 7},
	}
	var p Processor
	g, err := p.Process(o)
	require.NoError(t, err)

	assert.Equal(t, o.Points, g.Points)
	assert.Equal(t, 2, g.NumContours())
	assert.Equal(t, []Contour{{Offset: 0, Size: 4}, {Offset: 4, Size: 3}}, g.Contours)
	for _, s := range g.Segments {
		assert.Equal(t, SegmentLine, s.Kind)
	}
}

func TestProcessConsecutiveConicsImplyOneMidpoint(t *testing.T) {
	c1, c2 := v(10, 0), v(20, 10)
	o := &Outline{
		Points: []geom.Vec2{v(0, 0), c1, c2, v(20, 20)},
		Tags:   []Tag{TagOnCurve, TagConic, TagConic, TagOnCurve},
		Ends:   []int{4},
	}
	var p Processor
	g, err := p.Process(o)
	require.NoError(t, err)

	conics := 2
	require.Len(t, g.Segments, conics+1)

	mid := c1.Midpoint(c2)
	assert.Equal(t, SegmentQuad, g.Segments[0].Kind)
	assert.Equal(t, []geom.Vec2{v(0, 0), c1, mid}, g.Segments[0].Points())
	assert.Equal(t, SegmentQuad, g.Segments[1].Kind)
	assert.Equal(t, []geom.Vec2{mid, c2, v(20, 20)}, g.Segments[1].Points())
	assert.Equal(t, SegmentLine, g.Segments[2].Kind)

	synthesized := 0
	for _, s := range g.Segments {
		for _, pt := range s.Points() {
			if pt == mid {
				synthesized++
			}
		}
	}
	// Shared by the end of the first quad and the start of the second.
	assert.Equal(t, 2, synthesized)
}

func TestProcessLeadingControlPointWrapsToLast(t *testing.T) {
	o := &Outline{
		Points: []geom.Vec2{v(5, -5), v(10, 0), v(0, 0)},
		Tags:   []Tag{TagConic, TagOnCurve, TagOnCurve},
		Ends:   []int{3},
	}
	p := Processor{Resolution: 4}
	g, err := p.Process(o)
	require.NoError(t, err)

	// Anchored on the last on-curve point.
	assert.Equal(t, v(0, 0), g.Points[0])
	require.NotEmpty(t, g.Segments)
	assert.Equal(t, []geom.Vec2{v(0, 0), v(5, -5), v(10, 0)}, g.Segments[0].Points())
	assert.Equal(t, 1, g.NumContours())
	assert.Equal(t, len(g.Points), g.Contours[0].Size)
}

func TestProcessAllControlPointsAnchorOnMidpoint(t *testing.T) {
	o := &Outline{
		Points: []geom.Vec2{v(0, 0), v(10, 0), v(10, 10), v(0, 10)},
		Tags:   []Tag{TagConic, TagConic, TagConic, TagConic},
		Ends:   []int{4},
	}
	var p Processor
	g, err := p.Process(o)
	require.NoError(t, err)

	assert.Equal(t, v(0, 5), g.Points[0])
	assert.Len(t, g.Segments, 4)
	for _, s := range g.Segments {
		assert.Equal(t, SegmentQuad, s.Kind)
	}
	assert.NotEqual(t, g.Points[0], g.Points[len(g.Points)-1], "closing point must not repeat the anchor")
}

func TestProcessCubic(t *testing.T) {
	o := &Outline{
		Points: []geom.Vec2{v(0, 0), v(0, 10), v(10, 10), v(10, 0)},
		Tags:   []Tag{TagOnCurve, TagCubic, TagCubic, TagOnCurve},
		Ends:   []int{4},
	}
	p := Processor{Resolution: 8}
	g, err := p.Process(o)
	require.NoError(t, err)

	require.Len(t, g.Segments, 2)
	assert.Equal(t, SegmentCubic, g.Segments[0].Kind)
	// anchor + 8 samples of the cubic
	assert.Len(t, g.Points, 9)
	assert.Equal(t, v(10, 0), g.Points[8])
}

func TestProcessBoundsExpandedByOne(t *testing.T) {
	o := &Outline{
		Points: []geom.Vec2{v(0, 0), v(10, -20), v(20, 5)},
		Tags:   []Tag{TagOnCurve, TagConic, TagOnCurve},
		Ends:   []int{3},
	}
	g, err := (&Processor{}).Process(o)
	require.NoError(t, err)
	assert.Equal(t, geom.Rect{Min: v(-1, -21), Max: v(21, 6)}, g.Bounds)
}

func TestProcessAdaptiveStaysInsideBounds(t *testing.T) {
	o := &Outline{
		Points: []geom.Vec2{v(0, 0), v(50, -80), v(100, 0), v(50, 80)},
		Tags:   []Tag{TagOnCurve, TagConic, TagOnCurve, TagConic},
		Ends:   []int{4},
	}
	p := Processor{Flattener: tessellate.Flattener{Tolerance: 0.05}}
	g, err := p.Process(o)
	require.NoError(t, err)
	assert.Greater(t, len(g.Points), 4)
	for _, pt := range g.Points {
		assert.True(t, g.Bounds.Contains(pt), "point %v outside %v", pt, g.Bounds)
	}
}

func TestProcessEmptyOutline(t *testing.T) {
	g, err := (&Processor{}).Process(&Outline{Advance: 4})
	require.NoError(t, err)
	assert.True(t, g.Empty())
	assert.Equal(t, float32(4), g.Advance)
	assert.Zero(t, g.NumContours())
}

func TestProcessRejectsMalformed(t *testing.T) {
	_, err := (&Processor{}).Process(&Outline{
		Points: []geom.Vec2{v(0, 0), v(1, 1)},
		Tags:   []Tag{TagOnCurve},
		Ends:   []int{2},
	})
	assert.ErrorIs(t, err, ErrMalformedOutline)

	_, err = (&Processor{}).Process(&Outline{
		Points: []geom.Vec2{v(0, 0), v(1, 1)},
		Tags:   []Tag{TagOnCurve, TagOnCurve},
		Ends:   []int{1},
	})
	assert.ErrorIs(t, err, ErrMalformedOutline)
}

func TestOutlineBuilderDropsRepeatedStart(t *testing.T) {
	var b outlineBuilder
	b.moveTo(v(0, 0))
	b.lineTo(v(10, 0))
	b.quadTo(v(10, 10), v(0, 0))
	b.moveTo(v(2, 2))
	b.lineTo(v(3, 3))
	o := b.finish(12)

	assert.Equal(t, []int{3, 5}, o.Ends)
	assert.Equal(t, []Tag{TagOnCurve, TagOnCurve, TagConic, TagOnCurve, TagOnCurve}, o.Tags)
	assert.NoError(t, o.Validate())
	assert.Equal(t, float32(12), o.Advance)
}
