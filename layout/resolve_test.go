package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/ui/fragment"
	"github.com/gogpu/ui/geom"
)

func box(w, h float32) []fragment.Atom {
	return []fragment.Atom{{Width: w, Height: h}}
}

func atoms(n int, w, h float32) []fragment.Atom {
	out := make([]fragment.Atom, n)
	for i := range out {
		out[i] = fragment.Atom{Width: w, Height: h}
	}
	return out
}

func TestResolveIsIdempotent(t *testing.T) {
	c := Root(geom.V2(800, 600))
	c.Cursor = geom.V2(12, 30)
	c.Edge = EdgeIntent{Axis: AxisBlock, Margin: 8, Collapsible: true}
	in := Input{
		Display: Inline,
		Margin:  Uniform(4),
		Padding: Uniform(2),
	}
	as := atoms(30, 37, 18)

	for _, pos := range []Position{Relative, Absolute, Fixed} {
		in.Position = pos
		first := Resolve(c, in, as)
		second := Resolve(c, in, as)
		assert.Equal(t, first, second, "position %v", pos)
	}
}

func TestBlockFlowCursorAdvance(t *testing.T) {
	c := Root(geom.V2(800, 600))
	in := Input{Display: Block}

	a := Resolve(c, in, box(100, 50))
	assert.Equal(t, float32(50), a.Next.Y)
	assert.Equal(t, float32(50), a.ConsumedHeight)

	c = a.Sibling(c)
	b := Resolve(c, in, box(100, 80))
	assert.Equal(t, float32(130), b.Next.Y)
	assert.Equal(t, geom.V2(0, 50), b.Offsets[0])
	assert.Equal(t, EdgeIntent{Axis: AxisBlock, Collapsible: true}, b.Edge)
}

func TestBlockMarginsCollapse(t *testing.T) {
	c := Root(geom.V2(800, 600))

	a := Resolve(c, Input{Margin: Edges{Bottom: 20}}, box(100, 50))
	require.Equal(t, EdgeIntent{Axis: AxisBlock, Margin: 20, Collapsible: true}, a.Edge)

	b := Resolve(a.Sibling(c), Input{Margin: Edges{Top: 10}}, box(100, 50))
	gap := b.Box.Min.Y - a.Box.Max.Y
	assert.Equal(t, float32(20), gap)
}

func TestBlockMarginsAddWhenNotCollapsible(t *testing.T) {
	c := Root(geom.V2(800, 600))
	c.Edge = EdgeIntent{Axis: AxisBlock, Margin: 20}
	r := Resolve(c, Input{Margin: Edges{Top: 10}}, box(10, 10))
	assert.Equal(t, float32(30), r.Box.Min.Y)
}

func TestBlockAtomsInOneRow(t *testing.T) {
	c := Root(geom.V2(100, 600))
	c.Origin = geom.V2(5, 0)
	c.Cursor = c.Origin
	r := Resolve(c, Input{Margin: Edges{Left: 3}}, []fragment.Atom{
		{Width: 60, Height: 10},
		{Width: 60, Height: 25},
	})
	assert.Equal(t, []geom.Vec2{{X: 8, Y: 0}, {X: 68, Y: 0}}, r.Offsets, "block atoms never wrap")
	assert.Equal(t, geom.XYWH(8, 0, 120, 25), r.Box)
	assert.Equal(t, geom.V2(5, 25), r.Next, "next block returns to the content origin")
}

func TestBlockExplicitSizeOverrides(t *testing.T) {
	c := Root(geom.V2(800, 600))
	r := Resolve(c, Input{Width: Px(300), Height: Px(40)}, box(100, 50))
	assert.Equal(t, float32(300), r.Box.Width())
	assert.Equal(t, float32(40), r.Box.Height())
	assert.Equal(t, float32(40), r.Next.Y)
}

func TestBlockAfterInlineStartsBelowLine(t *testing.T) {
	c := Root(geom.V2(800, 600))
	in := Resolve(c, Input{Display: Inline}, box(40, 18))
	require.Equal(t, geom.V2(40, 0), in.Next)
	require.Equal(t, float32(18), in.LineHeight)

	b := Resolve(in.Sibling(c), Input{}, box(10, 10))
	assert.Equal(t, geom.V2(0, 18), b.Offsets[0])
}

func TestInlineWrapping(t *testing.T) {
	c := Root(geom.V2(800, 600))
	c.MaxWidth = 100

	r := Resolve(c, Input{Display: Inline}, atoms(3, 40, 20))
	require.Len(t, r.Offsets, 3)
	assert.Equal(t, geom.V2(0, 0), r.Offsets[0])
	assert.Equal(t, geom.V2(40, 0), r.Offsets[1])
	assert.Equal(t, geom.V2(0, 20), r.Offsets[2])

	assert.Equal(t, geom.XYWH(0, 0, 80, 40), r.Box)
	assert.Equal(t, geom.V2(40, 20), r.Next)
	assert.Equal(t, float32(20), r.LineHeight)
	assert.Equal(t, EdgeIntent{Axis: AxisInline}, r.Edge)
	assert.False(t, r.OutOfFlow)
}

func TestInlineWrappingOwnMaxWidth(t *testing.T) {
	c := Root(geom.V2(800, 600))
	r := Resolve(c, Input{Display: Inline, MaxWidth: 100}, atoms(3, 40, 20))
	assert.Equal(t, geom.V2(0, 20), r.Offsets[2])
}

func TestInlineWrapsAtViewport(t *testing.T) {
	c := Root(geom.V2(100, 600))
	c.MaxWidth = 0
	r := Resolve(c, Input{Display: Inline}, atoms(3, 40, 20))
	assert.Equal(t, geom.V2(0, 20), r.Offsets[2])
}

func TestInlineForcedNewLine(t *testing.T) {
	c := Root(geom.V2(800, 600))
	as := []fragment.Atom{
		{Width: 10, Height: 16},
		{NewLine: true, Height: 16},
		{Width: 10, Height: 16},
	}
	r := Resolve(c, Input{Display: Inline}, as)
	assert.Equal(t, geom.V2(0, 0), r.Offsets[0])
	assert.Equal(t, geom.V2(0, 16), r.Offsets[1])
	assert.Equal(t, geom.V2(0, 16), r.Offsets[2])
}

func TestInlineOversizedAtomDoesNotWrapAtLineStart(t *testing.T) {
	c := Root(geom.V2(800, 600))
	c.MaxWidth = 50
	r := Resolve(c, Input{Display: Inline}, atoms(2, 80, 10))
	assert.Equal(t, geom.V2(0, 0), r.Offsets[0])
	assert.Equal(t, geom.V2(0, 10), r.Offsets[1])
}

func TestInlineSiblingsContinueLine(t *testing.T) {
	c := Root(geom.V2(800, 600))
	c.MaxWidth = 100

	a := Resolve(c, Input{Display: Inline, Margin: Edges{Right: 5}}, atoms(1, 30, 10))
	b := Resolve(a.Sibling(c), Input{Display: Inline, Margin: Edges{Left: 7}}, atoms(1, 30, 12))

	// Inline margins add; they never collapse.
	assert.Equal(t, geom.V2(42, 0), b.Offsets[0])
	assert.Equal(t, float32(12), b.LineHeight)
}

func TestInlineFillingLineWrapsSiblingCursor(t *testing.T) {
	c := Root(geom.V2(800, 600))
	c.MaxWidth = 100
	r := Resolve(c, Input{Display: Inline}, atoms(2, 50, 10))
	assert.Equal(t, geom.V2(0, 10), r.Next)
	assert.Zero(t, r.LineHeight)
}

func TestInlineAfterBlockUsesBlockAxisMargin(t *testing.T) {
	c := Root(geom.V2(800, 600))
	a := Resolve(c, Input{Margin: Edges{Bottom: 20}}, box(100, 50))
	b := Resolve(a.Sibling(c), Input{Display: Inline, Margin: Edges{Top: 10, Left: 4}}, atoms(1, 10, 10))
	assert.Equal(t, geom.V2(4, 70), b.Offsets[0])
}

func TestAbsolutePositioning(t *testing.T) {
	c := Root(geom.V2(800, 600))
	c.Origin = geom.V2(10, 10)
	c.Cursor = geom.V2(10, 200)
	c.Edge = EdgeIntent{Axis: AxisBlock, Margin: 6, Collapsible: true}

	in := Input{
		Position: Absolute,
		Display:  Inline,
		Left:     Px(30),
		Top:      Px(40),
	}
	r := Resolve(c, in, atoms(2, 25, 10))

	assert.True(t, r.OutOfFlow)
	assert.Equal(t, geom.V2(40, 50), r.Offsets[0])
	assert.Equal(t, geom.V2(65, 50), r.Offsets[1], "atoms are blockified into one row")

	next := r.Sibling(c)
	assert.Equal(t, c, next, "out-of-flow nodes do not perturb the sibling cursor")
	assert.Equal(t, c.Cursor, r.Next)
	assert.Zero(t, r.ConsumedHeight)
}

func TestAbsoluteRightBottom(t *testing.T) {
	c := Root(geom.V2(800, 600))
	c.Origin = geom.V2(100, 100)
	c.MaxWidth, c.MaxHeight = 200, 100

	r := Resolve(c, Input{Position: Absolute, Right: Px(10), Bottom: Px(5)}, box(20, 30))
	assert.Equal(t, geom.V2(270, 165), r.Offsets[0])
}

func TestFixedIgnoresAncestorOrigin(t *testing.T) {
	c := Root(geom.V2(800, 600))
	c.Origin = geom.V2(300, 300)
	in := Input{Position: Fixed, Left: Px(5), Top: Px(6), Padding: Uniform(2)}
	r := Resolve(c, in, box(50, 50))

	assert.True(t, r.OutOfFlow)
	assert.Equal(t, geom.V2(5, 6), r.Offsets[0])
	assert.Equal(t, geom.V2(7, 8), r.Child.Origin)
}

func TestChildConstraintsSubtractPadding(t *testing.T) {
	c := Root(geom.V2(800, 600))
	in := Input{
		Width:   Px(200),
		Height:  Px(100),
		Padding: Edges{Top: 5, Right: 10, Bottom: 15, Left: 20},
	}
	r := Resolve(c, in, box(0, 0))
	assert.Equal(t, geom.V2(20, 5), r.Child.Origin)
	assert.Equal(t, r.Child.Origin, r.Child.Cursor)
	assert.Equal(t, float32(170), r.Child.MaxWidth)
	assert.Equal(t, float32(80), r.Child.MaxHeight)
	assert.Equal(t, c.Viewport, r.Child.Viewport)
	assert.Equal(t, EdgeIntent{}, r.Child.Edge)
}

func TestEncloseGrowsAutoHeightBlock(t *testing.T) {
	c := Root(geom.V2(800, 600))
	in := Input{Padding: Edges{Bottom: 4}}
	r := Resolve(c, in, box(100, 10))

	grown := Enclose(r, in, 50)
	assert.Equal(t, float32(54), grown.Box.Max.Y)
	assert.Equal(t, float32(54), grown.Next.Y)
	assert.Equal(t, float32(54), grown.ConsumedHeight)

	assert.Equal(t, r, Enclose(r, in, 2), "never shrinks")

	fixed := Input{Height: Px(10)}
	assert.Equal(t, r, Enclose(r, fixed, 50), "explicit heights are kept")
}

func TestSizeResolve(t *testing.T) {
	assert.Equal(t, Length{}, Auto.Resolve(100))
	assert.Equal(t, Px(12), Pixels(12).Resolve(100))
	assert.Equal(t, Px(50), Percent(0.5).Resolve(100))
	assert.Equal(t, Px(100), Percent(3).Resolve(100), "percent clamps to 1")
	assert.Equal(t, Px(0), Percent(-1).Resolve(100))
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		want Size
	}{
		{"auto", Auto},
		{"", Auto},
		{"12", Pixels(12)},
		{"12px", Pixels(12)},
		{"50%", Percent(0.5)},
	}
	for _, tt := range tests {
		got, err := ParseSize(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	_, err := ParseSize("wide")
	assert.Error(t, err)
	assert.Equal(t, "50%", Percent(0.5).String())
	assert.Equal(t, "12px", Pixels(12).String())
}
