package fragment

import "github.com/gogpu/ui/buffer"

// DrawCall is one paint-ordered draw submitted by an element.
//
// Bindings are bound in order to @group(0) @binding(i) of the pipeline
// selected by Pipeline. The backend draws VertexCount vertices as a
// triangle list, InstanceCount times.
type DrawCall struct {
	Node          NodeID
	Pipeline      Kind
	Bindings      []buffer.Handle
	VertexCount   uint32
	InstanceCount uint32

	// Finalized is the node's final phase result, for encoders that draw
	// on the CPU instead of binding buffers.
	Finalized *Finalized
}

// Encoder consumes draw calls in paint order. Encoders are not safe for
// concurrent use.
type Encoder interface {
	Draw(dc DrawCall) error
}

// EncoderFunc adapts a function to Encoder.
type EncoderFunc func(DrawCall) error

// Draw implements Encoder.
func (f EncoderFunc) Draw(dc DrawCall) error { return f(dc) }

// QuadVertices is the vertex count of one instanced quad (two triangles).
const QuadVertices = 6
