package element

import (
	"errors"
	"fmt"

	"github.com/gogpu/ui/buffer"
	"github.com/gogpu/ui/fragment"
	"github.com/gogpu/ui/geom"
	"github.com/gogpu/ui/layout"
	"github.com/gogpu/ui/tree"
)

// ErrNoAllocator is returned when a frame has no buffer allocator.
var ErrNoAllocator = errors.New("element: frame has no buffer allocator")

const initialBufferBytes = 64

// unitQuad is the local geometry of a box atom: two triangles spanning
// [-1, 1] in both axes, scaled by the shader to the box half extent.
var unitQuad = fragment.PackFloats(
	-1, -1, 1, -1, -1, 1,
	-1, 1, 1, -1, 1, 1,
)

// storage is the frame-buffered storage owned by one element.
type storage struct {
	geometry   *buffer.FrameBuffered
	placements *buffer.FrameBuffered
	uniforms   *buffer.FrameBuffered
}

func frames(env *tree.Env) int {
	return max(env.FramesInFlight, 1)
}

func (s *storage) ensure(env *tree.Env) error {
	if s.uniforms != nil {
		return nil
	}
	if env.Buffers == nil {
		return ErrNoAllocator
	}
	var err error
	if s.geometry, err = buffer.NewFrameBuffered(env.Buffers, frames(env), initialBufferBytes); err != nil {
		return err
	}
	if s.placements, err = buffer.NewFrameBuffered(env.Buffers, frames(env), initialBufferBytes); err != nil {
		return errors.Join(err, s.release())
	}
	if s.uniforms, err = buffer.NewFrameBuffered(env.Buffers, frames(env), fragment.DivUniformsSize); err != nil {
		return errors.Join(err, s.release())
	}
	return nil
}

func (s *storage) release() error {
	var errs []error
	for _, fb := range []**buffer.FrameBuffered{&s.geometry, &s.placements, &s.uniforms} {
		if *fb != nil {
			errs = append(errs, (*fb).Free())
			*fb = nil
		}
	}
	return errors.Join(errs...)
}

// quadAtom writes the unit quad and returns a single box atom of size m.
func (s *storage) quadAtom(env *tree.Env, size geom.Vec2) (fragment.Atomized, error) {
	if err := s.ensure(env); err != nil {
		return fragment.Atomized{}, err
	}
	if err := s.geometry.Write(env.Frame, 0, unitQuad); err != nil {
		return fragment.Atomized{}, fmt.Errorf("element: write geometry: %w", err)
	}
	return fragment.Atomized{Atoms: []fragment.Atom{{
		Buffer: s.geometry.Handle(env.Frame),
		Length: len(unitQuad),
		Width:  size.X,
		Height: size.Y,
	}}}, nil
}

// place writes one vec2 offset per atom.
func (s *storage) place(env *tree.Env, r layout.Result) (fragment.Placed, error) {
	if err := s.ensure(env); err != nil {
		return fragment.Placed{}, err
	}
	h := s.placements.Handle(env.Frame)
	data := make([]float32, 0, 2*len(r.Offsets))
	p := fragment.Placed{Placements: make([]fragment.AtomPlacement, len(r.Offsets))}
	for i, o := range r.Offsets {
		data = append(data, o.X, o.Y)
		p.Placements[i] = fragment.AtomPlacement{Buffer: h, X: o.X, Y: o.Y}
	}
	if len(data) > 0 {
		if err := s.placements.Write(env.Frame, 0, fragment.PackFloats(data...)); err != nil {
			return fragment.Placed{}, fmt.Errorf("element: write placements: %w", err)
		}
	}
	return p, nil
}

// finalize uploads u and assembles the phase result.
func (s *storage) finalize(env *tree.Env, sl tree.Slots, u fragment.Uniforms) (fragment.Finalized, error) {
	if err := s.ensure(env); err != nil {
		return fragment.Finalized{}, err
	}
	if err := s.uniforms.Write(env.Frame, 0, u.Bytes()); err != nil {
		return fragment.Finalized{}, fmt.Errorf("element: write uniforms: %w", err)
	}
	return fragment.Finalized{
		Atomized:      *sl.Atomized,
		Placed:        *sl.Placed,
		Uniforms:      u,
		UniformBuffer: s.uniforms.Handle(env.Frame),
	}, nil
}

// boxGeometry returns the rect centre and half extent of a box drawn from
// the first placement with the node's resolved size.
func boxGeometry(sl tree.Slots) (center, half geom.Vec2) {
	size := sl.Layout.Box.Size()
	origin := sl.Layout.Box.Min
	if len(sl.Placed.Placements) > 0 {
		origin = sl.Placed.Placements[0].Position()
	}
	half = size.Mul(0.5)
	return origin.Add(half), half
}

// base carries what every element shares.
type base struct {
	style   Style
	parent  geom.Vec2
	storage storage
}

// Style returns the element's style.
func (b *base) Style() Style { return b.style }

// SetStyle replaces the style; it takes effect on the next frame.
func (b *base) SetStyle(s Style) { b.style = s }

// LayoutInput implements tree.Element.
func (b *base) LayoutInput(m fragment.Measured) layout.Input {
	return b.style.input(b.parent, m)
}

// ZIndex implements tree.ZIndexer.
func (b *base) ZIndex() (int, bool) {
	return b.style.ZIndex, b.style.HasZIndex
}
