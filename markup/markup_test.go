package markup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/ui/element"
	"github.com/gogpu/ui/fragment"
	"github.com/gogpu/ui/layout"
	"github.com/gogpu/ui/tree"
)

const sample = `
// page
div {
  padding: 8 16
  background: #f4f4f4
  border: 2 navy

  text "Hello,\nworld" { font-size: 24; color: #336 }

  /* badge */
  image "logo.png" {
    position: absolute
    top: 8
    right: 10%
    width: 32px
    opacity: 0.5
    z-index: 2
  }

  div {
    width: 50%
    margin: 1 2 3 4
    display: inline
  }
}
`

func TestParseDocument(t *testing.T) {
	doc, err := ParseString(sample)
	require.NoError(t, err)
	require.NotNil(t, doc.Root)

	root := doc.Root
	assert.Equal(t, "div", root.Kind)
	assert.Nil(t, root.Arg)
	assert.Len(t, root.Properties(), 3)

	kids := root.Children()
	require.Len(t, kids, 3)
	assert.Equal(t, "text", kids[0].Kind)
	assert.Equal(t, "Hello,\nworld", string(*kids[0].Arg))
	assert.Equal(t, `image "logo.png"`, kids[1].String())
	assert.Equal(t, 8, kids[0].Pos.Line)

	pad := root.Properties()[0]
	assert.Equal(t, "padding", pad.Key)
	require.Len(t, pad.Values, 2)
	assert.Equal(t, "8", pad.Values[0].Text())
}

func TestStyle(t *testing.T) {
	doc, err := ParseString(sample)
	require.NoError(t, err)

	s, err := doc.Root.Style()
	require.NoError(t, err)
	assert.Equal(t, layout.Edges{Top: 8, Right: 16, Bottom: 8, Left: 16}, s.Padding)
	assert.Equal(t, float32(2), s.BorderWidth)
	assert.Equal(t, fragment.RGBA(0, 0, 128.0/255, 1), s.BorderColor)
	assert.Equal(t, layout.Block, s.Display)

	kids := doc.Root.Children()
	text, err := kids[0].Style()
	require.NoError(t, err)
	assert.Equal(t, layout.Inline, text.Display, "text defaults to inline")
	assert.Equal(t, float32(24), text.FontSize)
	assert.Equal(t, fragment.RGBA(0x33/255.0, 0x33/255.0, 0x66/255.0, 1), text.Color)

	img, err := kids[1].Style()
	require.NoError(t, err)
	assert.Equal(t, layout.Absolute, img.Position)
	assert.Equal(t, layout.Pixels(8), img.Top)
	assert.Equal(t, layout.Percent(0.1), img.Right)
	assert.Equal(t, layout.Pixels(32), img.Width)
	assert.True(t, img.HasZIndex)
	assert.Equal(t, 2, img.ZIndex)

	box, err := kids[2].Style()
	require.NoError(t, err)
	assert.Equal(t, layout.Percent(0.5), box.Width)
	assert.Equal(t, layout.Edges{Top: 1, Right: 2, Bottom: 3, Left: 4}, box.Margin)
	assert.Equal(t, layout.Inline, box.Display)
}

func TestEdgesShorthand(t *testing.T) {
	tests := []struct {
		src  string
		want layout.Edges
	}{
		{"div { margin: 5 }", layout.Edges{Top: 5, Right: 5, Bottom: 5, Left: 5}},
		{"div { margin: 5 6 }", layout.Edges{Top: 5, Right: 6, Bottom: 5, Left: 6}},
		{"div { margin: 5 6 7 }", layout.Edges{Top: 5, Right: 6, Bottom: 7, Left: 6}},
		{"div { margin: -1px 0 0 2px }", layout.Edges{Top: -1, Left: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			doc, err := ParseString(tt.src)
			require.NoError(t, err)
			s, err := doc.Root.Style()
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Margin)
		})
	}
}

func TestBuildTree(t *testing.T) {
	doc, err := ParseString(sample)
	require.NoError(t, err)

	tr, err := doc.Build("assets", tree.WithWorkers(1))
	require.NoError(t, err)
	defer tr.Close()
	assert.Equal(t, 4, tr.Len())

	kids, err := tr.Children(tr.Root())
	require.NoError(t, err)
	require.Len(t, kids, 3)

	el, err := tr.Element(kids[0])
	require.NoError(t, err)
	txt, ok := el.(*element.Text)
	require.True(t, ok)
	assert.Equal(t, "Hello,\nworld", txt.Content())

	el, err = tr.Element(kids[1])
	require.NoError(t, err)
	im, ok := el.(*element.Image)
	require.True(t, ok)
	assert.Equal(t, float32(0.5), im.Opacity)

	el, err = tr.Element(kids[2])
	require.NoError(t, err)
	assert.IsType(t, &element.Div{}, el)
}

func TestAppendSubtree(t *testing.T) {
	tr, err := tree.New(element.NewDiv(element.Style{}), tree.WithWorkers(1))
	require.NoError(t, err)
	defer tr.Close()

	doc, err := ParseString(`div { text "a" ; text "b" }`)
	require.NoError(t, err)
	id, err := Append(tr, tr.Root(), doc.Root, "")
	require.NoError(t, err)

	kids, err := tr.Children(id)
	require.NoError(t, err)
	assert.Len(t, kids, 2)
}

func TestLoadResolvesImagesAgainstFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.ui")
	require.NoError(t, os.WriteFile(path, []byte(`div { image "missing.png" { width: 10 } }`), 0o600))

	tr, err := Load(path, tree.WithWorkers(1))
	require.NoError(t, err)
	defer tr.Close()
	assert.Equal(t, 2, tr.Len())

	_, err = Load(filepath.Join(dir, "nope.ui"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"unknown property", `div { colour: red }`, ErrUnknownProperty},
		{"bad size", `div { width: wide }`, ErrBadValue},
		{"bad color", `div { background: blurple }`, ErrBadValue},
		{"bad position", `div { position: sticky }`, ErrBadValue},
		{"two values", `div { width: 1 2 }`, ErrBadValue},
		{"opacity range", `image "x.png" { opacity: 2 }`, ErrBadValue},
		{"bad z-index", `div { z-index: 1.5 }`, ErrBadValue},
		{"div argument", `div "x"`, ErrBadNode},
		{"text without content", `div { text }`, ErrBadNode},
		{"image without path", `image ""`, ErrBadNode},
		{"text children", `text "a" { div }`, ErrBadNode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseString(tt.src)
			require.NoError(t, err)
			_, err = doc.Build("")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSyntaxErrors(t *testing.T) {
	for _, src := range []string{
		``,
		`span {}`,
		`div {`,
		`div { width 10 }`,
		`div {} div {}`,
	} {
		_, err := ParseString(src)
		assert.Error(t, err, "%q", src)
	}
}
