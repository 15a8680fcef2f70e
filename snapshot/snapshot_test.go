package snapshot

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/ui/buffer"
	"github.com/gogpu/ui/element"
	"github.com/gogpu/ui/fragment"
	"github.com/gogpu/ui/geom"
	"github.com/gogpu/ui/glyph"
	"github.com/gogpu/ui/layout"
	"github.com/gogpu/ui/tree"
)

var viewport = geom.V2(200, 100)

func buildTree(t *testing.T) *tree.Tree {
	t.Helper()
	alloc := buffer.NewHostAllocator(0)
	face, err := glyph.NewSFNTFace("go", goregular.TTF)
	require.NoError(t, err)
	lib := glyph.NewLibrary()
	lib.Register("go", face)
	atlas, err := glyph.NewAtlas(alloc)
	require.NoError(t, err)

	tr, err := tree.New(element.NewDiv(element.Style{}))
	require.NoError(t, err)
	t.Cleanup(tr.Close)

	b := tr.Builder(tr.Root())
	b.Child(element.NewDiv(element.Style{
		Width:       layout.Pixels(100),
		Height:      layout.Pixels(100),
		Background:  fragment.RGBA(1, 0, 0, 1),
		BorderWidth: 2,
		BorderColor: fragment.Black,
	}), func(b *tree.Builder) {
		b.Child(element.NewText("Hi", element.Style{Display: layout.Inline, FontSize: 24}), nil)
	})
	b.Child(element.NewImage(image.NewNRGBA(image.Rect(0, 0, 4, 4)), element.Style{
		Position: layout.Absolute,
		Left:     layout.Pixels(150),
		Top:      layout.Pixels(10),
		Width:    layout.Pixels(20),
	}), nil)
	require.NoError(t, b.Err())

	require.NoError(t, tr.Update(&tree.Env{
		FramesInFlight: 1,
		Viewport:       viewport,
		Buffers:        alloc,
		Glyphs:         glyph.NewCache(lib, nil),
		Atlas:          atlas,
	}))
	return tr
}

func TestCaptureDrawsEveryCall(t *testing.T) {
	e, err := Capture(buildTree(t), viewport, fragment.White)
	require.NoError(t, err)
	assert.Equal(t, 3, e.Draws(), "box, text and image; the transparent root is skipped")
	assert.NotNil(t, e.Canvas())
}

func TestWritePDF(t *testing.T) {
	e, err := Capture(buildTree(t), viewport, fragment.White)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, e.WritePDF(&buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestImageRasterizesBoxes(t *testing.T) {
	e, err := Capture(buildTree(t), viewport, fragment.White)
	require.NoError(t, err)

	img := e.Image(1)
	require.Equal(t, image.Rect(0, 0, 200, 100), img.Bounds())

	inside := color.NRGBAModel.Convert(img.At(50, 80)).(color.NRGBA)
	assert.Greater(t, inside.R, uint8(200))
	assert.Less(t, inside.G, uint8(50))

	outside := color.NRGBAModel.Convert(img.At(180, 80)).(color.NRGBA)
	assert.Greater(t, outside.G, uint8(200), "background is white")
}

func TestGlyphPathSkipsDegenerateContours(t *testing.T) {
	g := &glyph.Glyph{
		Points: []geom.Vec2{
			{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 4},
			{X: 9, Y: 9}, {X: 9, Y: 9},
		},
		Contours: []glyph.Contour{{Offset: 0, Size: 3}, {Offset: 3, Size: 2}},
	}
	p := glyphPath(g)
	assert.False(t, p.Empty())
}

func TestDrawErrors(t *testing.T) {
	e := New(viewport, fragment.Transparent)
	assert.ErrorIs(t, e.Draw(fragment.DrawCall{Node: 3}), ErrNotFinalized)
	assert.Error(t, e.Draw(fragment.DrawCall{Node: 3, Finalized: &fragment.Finalized{}}))
	assert.Error(t, e.Draw(fragment.DrawCall{Node: 3, Finalized: &fragment.Finalized{
		Uniforms: fragment.ImageUniforms{HalfExtent: geom.V2(1, 1)},
	}}))
	assert.Zero(t, e.Draws())
}
