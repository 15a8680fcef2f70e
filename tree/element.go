// Package tree holds the render tree and drives the per-frame pipeline.
//
// A Tree is an arena of nodes addressed by fragment.NodeID. Each node wraps
// an Element and owns one slot per phase. Update runs the five phases over
// the whole tree with a barrier between them:
//
//	Measure   serial, top-down
//	Atomize   parallel
//	Layout    serial, top-down and across siblings, then z-order
//	Place     parallel
//	Finalize  parallel
//
// Paint then encodes every node serially in (z, id) order.
package tree

import (
	"log/slog"

	"github.com/gogpu/ui/buffer"
	"github.com/gogpu/ui/fragment"
	"github.com/gogpu/ui/geom"
	"github.com/gogpu/ui/glyph"
	"github.com/gogpu/ui/layout"
)

// Env is the environment shared by every phase invocation of one frame.
// Elements must treat it as read-only.
type Env struct {
	// Frame is the frame counter. Frame-buffered storage uses Frame modulo
	// FramesInFlight.
	Frame          uint64
	FramesInFlight int

	Viewport geom.Vec2

	Buffers buffer.Allocator
	Glyphs  *glyph.Cache
	Atlas   *glyph.Atlas

	Logger *slog.Logger
}

// Element is the behaviour behind a node. Div, Text and Image in package
// element implement it.
//
// Measure and LayoutInput are called from a single goroutine. Atomize, Place
// and Finalize run concurrently for different nodes; an element may only
// touch its own buffers and state in them.
type Element interface {
	Kind() fragment.Kind

	// Measure resolves the element's explicit size. parent is the content
	// size of the parent node, or the viewport for the root.
	Measure(env *Env, id fragment.NodeID, parent geom.Vec2) (fragment.Measured, error)

	// Atomize produces the element's atoms and writes their local geometry.
	Atomize(env *Env, m fragment.Measured) (fragment.Atomized, error)

	// LayoutInput returns the style subset consumed by layout.Resolve.
	LayoutInput(m fragment.Measured) layout.Input

	// Place writes the atom offsets computed by layout.
	Place(env *Env, a fragment.Atomized, r layout.Result) (fragment.Placed, error)

	// Finalize assembles and uploads the uniform payload.
	Finalize(env *Env, s Slots) (fragment.Finalized, error)

	// Encode emits the element's draw calls.
	Encode(enc fragment.Encoder, f *fragment.Finalized) error

	// Release frees the element's buffers. It is called when the node
	// leaves the tree.
	Release() error
}

// ZIndexer is implemented by elements with an explicit z-index. Nodes
// without one paint at their parent's z.
type ZIndexer interface {
	ZIndex() (z int, ok bool)
}

// Slots holds one node's phase results for the current frame. A nil slot
// means the phase has not run yet.
type Slots struct {
	Measured  *fragment.Measured
	Atomized  *fragment.Atomized
	Layout    *layout.Result
	Placed    *fragment.Placed
	Finalized *fragment.Finalized
}

func (s *Slots) reset() { *s = Slots{} }
