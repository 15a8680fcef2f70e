// Package fragment defines the data passed between pipeline phases.
//
// An Atom says what to draw: a region of a buffer holding unpositioned
// local geometry plus the atom's intrinsic size. An AtomPlacement says where:
// the buffer holding the atom's offset and the literal offset itself.
// Uniforms say how it looks. Phase results (Measured, Atomized, Placed,
// Finalized) carry the owning node's id.
package fragment

import (
	"fmt"

	"github.com/gogpu/ui/buffer"
	"github.com/gogpu/ui/geom"
	"github.com/gogpu/ui/glyph"
)

// NodeID identifies a tree node. IDs increase monotonically in insertion
// order and double as the paint-order tie-break.
type NodeID uint64

// Atom is one indivisible drawable primitive.
type Atom struct {
	// Buffer holds the atom's local geometry at [Offset, Offset+Length).
	Buffer buffer.Handle
	Offset int
	Length int

	Width  float32
	Height float32

	// NewLine forces the inline layout to start a new line before this
	// atom.
	NewLine bool

	// Glyph is the processed glyph for text atoms, nil otherwise.
	Glyph *glyph.Glyph
}

// Size returns the intrinsic size as a vector.
func (a Atom) Size() geom.Vec2 { return geom.V2(a.Width, a.Height) }

// AtomPlacement is the final position of one atom.
type AtomPlacement struct {
	// Buffer holds the placement record written during Place.
	Buffer buffer.Handle
	X, Y   float32
}

// Position returns the placement as a vector.
func (p AtomPlacement) Position() geom.Vec2 { return geom.V2(p.X, p.Y) }

// Measured is the result of the Measure phase.
type Measured struct {
	ID     NodeID
	Width  float32
	Height float32

	// Auto reports which dimensions were left unset by the style and
	// should be derived from atoms during layout.
	AutoWidth  bool
	AutoHeight bool
}

// Atomized is the result of the Atomize phase.
type Atomized struct {
	ID    NodeID
	Atoms []Atom
}

// Placed is the result of the Place phase. Placements has the same length
// and order as the node's atoms.
type Placed struct {
	ID         NodeID
	Placements []AtomPlacement
}

// Finalized is the result of the Finalize phase.
type Finalized struct {
	ID       NodeID
	Atomized Atomized
	Placed   Placed
	Uniforms Uniforms

	// UniformBuffer holds Uniforms.Bytes() for the frame.
	UniformBuffer buffer.Handle
}

// CheckCorrespondence verifies that placements and atoms line up one to one.
func CheckCorrespondence(a Atomized, p Placed) error {
	if a.ID != p.ID {
		return fmt.Errorf("fragment: atoms of node %d placed as node %d", a.ID, p.ID)
	}
	if len(a.Atoms) != len(p.Placements) {
		return fmt.Errorf("fragment: node %d has %d atoms but %d placements",
			a.ID, len(a.Atoms), len(p.Placements))
	}
	return nil
}
