package element

import (
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/text/unicode/norm"

	"github.com/gogpu/ui/buffer"
	"github.com/gogpu/ui/fragment"
	"github.com/gogpu/ui/geom"
	"github.com/gogpu/ui/glyph"
	"github.com/gogpu/ui/layout"
	"github.com/gogpu/ui/tree"
)

// ErrNoGlyphs is returned when a frame has no glyph cache or atlas.
var ErrNoGlyphs = errors.New("element: frame has no glyph cache or atlas")

// glyphInstanceSize is the byte size of one record in the instance buffer:
//
//	struct GlyphInstance {
//	    bounds: vec4<f32>,      // min.xy, max.xy relative to the pen
//	    first_contour: u32,
//	    contour_count: u32,
//	    _pad: vec2<u32>,
//	}
const glyphInstanceSize = 32

// baselineRatio places the baseline at this fraction of the font size
// below the top of the em box.
const baselineRatio = 0.8

// Text is a run of glyphs. Each character becomes one atom; a newline
// becomes a zero-width atom that forces a line break.
type Text struct {
	base
	content []rune

	instances *buffer.FrameBuffered
	atlas     *glyph.Atlas
}

// NewText returns a Text showing content. The content is normalized to NFC.
func NewText(content string, style Style) *Text {
	t := &Text{base: base{style: style}}
	t.SetContent(content)
	return t
}

// SetContent replaces the text; it takes effect on the next frame.
func (t *Text) SetContent(s string) {
	t.content = []rune(norm.NFC.String(s))
}

// Content returns the normalized text.
func (t *Text) Content() string { return string(t.content) }

// Kind implements tree.Element.
func (t *Text) Kind() fragment.Kind { return fragment.KindText }

// Measure implements tree.Element.
func (t *Text) Measure(_ *tree.Env, _ fragment.NodeID, parent geom.Vec2) (fragment.Measured, error) {
	t.parent = parent
	return t.style.measure(parent), nil
}

// Atomize implements tree.Element.
func (t *Text) Atomize(env *tree.Env, _ fragment.Measured) (fragment.Atomized, error) {
	if env.Glyphs == nil || env.Atlas == nil {
		return fragment.Atomized{}, ErrNoGlyphs
	}
	if err := t.storage.ensure(env); err != nil {
		return fragment.Atomized{}, err
	}
	if t.instances == nil {
		fb, err := buffer.NewFrameBuffered(env.Buffers, frames(env), glyphInstanceSize*max(len(t.content), 1))
		if err != nil {
			return fragment.Atomized{}, err
		}
		t.instances = fb
	}
	t.atlas = env.Atlas

	h := t.instances.Handle(env.Frame)
	size, lineHeight := t.style.fontSize(), t.style.lineHeight()
	atoms := make([]fragment.Atom, len(t.content))
	records := make([]byte, 0, glyphInstanceSize*len(t.content))

	for i, r := range t.content {
		atoms[i] = fragment.Atom{
			Buffer: h,
			Offset: i * glyphInstanceSize,
			Length: glyphInstanceSize,
			Height: lineHeight,
		}
		if r == '\n' {
			atoms[i].NewLine = true
			records = append(records, make([]byte, glyphInstanceSize)...)
			continue
		}

		g, err := env.Glyphs.Glyph(t.style.FontFamily, size, r)
		var nf *glyph.NotFoundError
		switch {
		case errors.As(err, &nf):
			if env.Logger != nil {
				env.Logger.Debug("element: missing glyph", slog.String("font", nf.Font), slog.String("char", string(nf.Char)))
			}
			records = append(records, make([]byte, glyphInstanceSize)...)
			continue
		case err != nil:
			return fragment.Atomized{}, fmt.Errorf("element: glyph %q: %w", r, err)
		}

		e, err := env.Atlas.Add(g)
		if err != nil {
			return fragment.Atomized{}, err
		}
		atoms[i].Width = g.Advance
		atoms[i].Glyph = g
		records = append(records, fragment.PackFloats(
			e.Bounds.Min.X, e.Bounds.Min.Y, e.Bounds.Max.X, e.Bounds.Max.Y)...)
		records = append(records, fragment.PackUint32s(e.FirstContour, e.ContourCount, 0, 0)...)
	}

	if len(records) > 0 {
		if err := t.instances.Write(env.Frame, 0, records); err != nil {
			return fragment.Atomized{}, fmt.Errorf("element: write glyph instances: %w", err)
		}
	}
	return fragment.Atomized{Atoms: atoms}, nil
}

// Place implements tree.Element.
func (t *Text) Place(env *tree.Env, _ fragment.Atomized, r layout.Result) (fragment.Placed, error) {
	return t.storage.place(env, r)
}

// Finalize implements tree.Element.
func (t *Text) Finalize(env *tree.Env, s tree.Slots) (fragment.Finalized, error) {
	size, lineHeight := t.style.fontSize(), t.style.lineHeight()
	return t.storage.finalize(env, s, fragment.TextUniforms{
		Color:    t.style.textColor(),
		Viewport: env.Viewport,
		Baseline: (lineHeight-size)/2 + baselineRatio*size,
		Size:     size,
		Font:     t.style.FontFamily,
	})
}

// Encode implements tree.Element. All glyphs of the node are drawn as
// instances of one quad.
func (t *Text) Encode(enc fragment.Encoder, f *fragment.Finalized) error {
	atoms := f.Atomized.Atoms
	if len(atoms) == 0 || t.style.textColor().A == 0 {
		return nil
	}
	points, contours := t.atlas.Buffers()
	return enc.Draw(fragment.DrawCall{
		Node:     f.ID,
		Pipeline: fragment.KindText,
		Bindings: []buffer.Handle{
			f.UniformBuffer,
			f.Placed.Placements[0].Buffer,
			atoms[0].Buffer,
			points,
			contours,
		},
		VertexCount:   fragment.QuadVertices,
		InstanceCount: uint32(len(atoms)),
		Finalized:     f,
	})
}

// Release implements tree.Element.
func (t *Text) Release() error {
	var err error
	if t.instances != nil {
		err = t.instances.Free()
		t.instances = nil
	}
	return errors.Join(err, t.storage.release())
}
