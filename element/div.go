package element

import (
	"github.com/gogpu/ui/buffer"
	"github.com/gogpu/ui/fragment"
	"github.com/gogpu/ui/geom"
	"github.com/gogpu/ui/layout"
	"github.com/gogpu/ui/tree"
)

// Div is a box with a background, a border and rounded corners. It emits
// one quad atom.
type Div struct {
	base
}

// NewDiv returns a Div with the given style.
func NewDiv(style Style) *Div {
	return &Div{base: base{style: style}}
}

// Kind implements tree.Element.
func (d *Div) Kind() fragment.Kind { return fragment.KindDiv }

// Measure implements tree.Element.
func (d *Div) Measure(_ *tree.Env, _ fragment.NodeID, parent geom.Vec2) (fragment.Measured, error) {
	d.parent = parent
	return d.style.measure(parent), nil
}

// Atomize implements tree.Element.
func (d *Div) Atomize(env *tree.Env, m fragment.Measured) (fragment.Atomized, error) {
	return d.storage.quadAtom(env, geom.V2(m.Width, m.Height))
}

// Place implements tree.Element.
func (d *Div) Place(env *tree.Env, _ fragment.Atomized, r layout.Result) (fragment.Placed, error) {
	return d.storage.place(env, r)
}

// Finalize implements tree.Element.
func (d *Div) Finalize(env *tree.Env, s tree.Slots) (fragment.Finalized, error) {
	center, half := boxGeometry(s)
	return d.storage.finalize(env, s, fragment.DivUniforms{
		Color:        d.style.Background,
		BorderColor:  d.style.BorderColor,
		RectCenter:   center,
		HalfExtent:   half,
		CornerRadius: d.style.CornerRadius,
		BorderWidth:  d.style.BorderWidth,
		Viewport:     env.Viewport,
	})
}

// Encode implements tree.Element. Fully transparent boxes draw nothing.
func (d *Div) Encode(enc fragment.Encoder, f *fragment.Finalized) error {
	if d.style.Background.A == 0 && (d.style.BorderWidth == 0 || d.style.BorderColor.A == 0) {
		return nil
	}
	return enc.Draw(fragment.DrawCall{
		Node:          f.ID,
		Pipeline:      fragment.KindDiv,
		Bindings:      []buffer.Handle{f.UniformBuffer, f.Atomized.Atoms[0].Buffer},
		VertexCount:   fragment.QuadVertices,
		InstanceCount: 1,
		Finalized:     f,
	})
}

// Release implements tree.Element.
func (d *Div) Release() error {
	return d.storage.release()
}
