package tree

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/gogpu/ui/fragment"
	"github.com/gogpu/ui/geom"
	"github.com/gogpu/ui/layout"
)

// ErrPhase is returned by Run for phases it cannot run on a single node.
var ErrPhase = errors.New("tree: phase cannot run on a single node")

// Update runs Measure, Atomize, Layout, Place and Finalize over the whole
// tree. Every slot is cleared first, so an error leaves the frame partially
// computed and Paint will panic; callers drop the frame instead.
func (t *Tree) Update(env *Env) error {
	start := time.Now()
	order := t.preorder()
	for _, id := range order {
		t.lookup(id).slots.reset()
	}

	var err error
	t.walk(t.root, func(id fragment.NodeID, _ *node) {
		if err == nil {
			err = t.measure(env, id)
		}
	})
	if err != nil {
		return err
	}

	if err := t.parallel(order, func(id fragment.NodeID) error { return t.atomize(env, id) }); err != nil {
		return err
	}

	t.layoutNode(t.root, layout.Root(env.Viewport))
	t.assignZ(t.root, 0)

	if err := t.parallel(order, func(id fragment.NodeID) error { return t.place(env, id) }); err != nil {
		return err
	}
	if err := t.parallel(order, func(id fragment.NodeID) error { return t.finalize(env, id) }); err != nil {
		return err
	}

	t.logger.Debug("tree: frame updated",
		slog.Uint64("frame", env.Frame),
		slog.Int("nodes", len(order)),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

// parallel runs fn for every id with a barrier at the end and joins the
// errors in id order.
func (t *Tree) parallel(ids []fragment.NodeID, fn func(fragment.NodeID) error) error {
	errs := make([]error, len(ids))
	t.pool.ForEach(len(ids), func(i int) {
		errs[i] = fn(ids[i])
	})
	return errors.Join(errs...)
}

// Run executes a single phase for one node. Measure, Atomize, Place and
// Finalize recompute that node only; Layout re-resolves the node under the
// constraints of its last layout without touching its children. Run panics
// with a *PhaseError if a prerequisite slot is empty.
func (t *Tree) Run(env *Env, p Phase, id fragment.NodeID) error {
	n, err := t.mustNode(id)
	if err != nil {
		return err
	}
	switch p {
	case PhaseMeasure:
		return t.measure(env, id)
	case PhaseAtomize:
		return t.atomize(env, id)
	case PhaseLayout:
		c := n.constraints
		if id == t.root || c == (layout.Constraints{}) {
			c = layout.Root(env.Viewport)
		}
		r, _ := t.resolve(id, n, c)
		n.slots.Layout = &r
		return nil
	case PhasePlace:
		return t.place(env, id)
	case PhaseFinalize:
		return t.finalize(env, id)
	default:
		return fmt.Errorf("%w: %s", ErrPhase, p)
	}
}

// contentSize is the size children of id measure percentages against.
func (t *Tree) contentSize(env *Env, id fragment.NodeID) geom.Vec2 {
	n := t.lookup(id)
	if n == nil || n.slots.Measured == nil {
		return env.Viewport
	}
	m := *n.slots.Measured
	pad := n.el.LayoutInput(m).Padding
	return geom.V2(max(m.Width-pad.Horizontal(), 0), max(m.Height-pad.Vertical(), 0))
}

func (t *Tree) measure(env *Env, id fragment.NodeID) error {
	n := t.lookup(id)
	m, err := n.el.Measure(env, id, t.contentSize(env, n.parent))
	if err != nil {
		return fmt.Errorf("tree: measure node %d: %w", id, err)
	}
	m.ID = id
	n.slots.Measured = &m
	return nil
}

func (t *Tree) atomize(env *Env, id fragment.NodeID) error {
	n := t.lookup(id)
	n.slots.require(id, PhaseAtomize)
	a, err := n.el.Atomize(env, *n.slots.Measured)
	if err != nil {
		return fmt.Errorf("tree: atomize node %d: %w", id, err)
	}
	a.ID = id
	n.slots.Atomized = &a
	return nil
}

func (t *Tree) resolve(id fragment.NodeID, n *node, c layout.Constraints) (layout.Result, layout.Input) {
	n.slots.require(id, PhaseLayout)
	n.constraints = c
	in := n.el.LayoutInput(*n.slots.Measured)
	return layout.Resolve(c, in, n.slots.Atomized.Atoms), in
}

// layoutNode lays out id under c, then its children under the child
// constraints it produced, threading the flow cursor across siblings.
func (t *Tree) layoutNode(id fragment.NodeID, c layout.Constraints) layout.Result {
	n := t.lookup(id)
	r, in := t.resolve(id, n, c)

	cc := r.Child
	for _, child := range n.children {
		cr := t.layoutNode(child, cc)
		cc = cr.Sibling(cc)
	}
	if len(n.children) > 0 {
		r = layout.Enclose(r, in, cc.Cursor.Y+cc.LineHeight)
	}
	n.slots.Layout = &r
	return r
}

// assignZ computes global z-indices depth first. A node inherits its
// parent's z unless its element sets one.
func (t *Tree) assignZ(id fragment.NodeID, parentZ int) {
	n := t.lookup(id)
	n.z = parentZ
	if zi, ok := n.el.(ZIndexer); ok {
		if z, set := zi.ZIndex(); set {
			n.z = z
		}
	}
	for _, c := range n.children {
		t.assignZ(c, n.z)
	}
}

func (t *Tree) place(env *Env, id fragment.NodeID) error {
	n := t.lookup(id)
	n.slots.require(id, PhasePlace)
	p, err := n.el.Place(env, *n.slots.Atomized, *n.slots.Layout)
	if err != nil {
		return fmt.Errorf("tree: place node %d: %w", id, err)
	}
	p.ID = id
	if err := fragment.CheckCorrespondence(*n.slots.Atomized, p); err != nil {
		return err
	}
	n.slots.Placed = &p
	return nil
}

func (t *Tree) finalize(env *Env, id fragment.NodeID) error {
	n := t.lookup(id)
	n.slots.require(id, PhaseFinalize)
	f, err := n.el.Finalize(env, n.slots)
	if err != nil {
		return fmt.Errorf("tree: finalize node %d: %w", id, err)
	}
	f.ID = id
	n.slots.Finalized = &f
	return nil
}

// PaintOrder returns every node id sorted by (z, id) ascending.
func (t *Tree) PaintOrder() []fragment.NodeID {
	ids := t.preorder()
	slices.SortFunc(ids, func(a, b fragment.NodeID) int {
		if c := cmp.Compare(t.lookup(a).z, t.lookup(b).z); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return ids
}

// Paint encodes every node in paint order on the calling goroutine. It
// panics with a *PhaseError if a node has not been finalized.
func (t *Tree) Paint(enc fragment.Encoder) error {
	for _, id := range t.PaintOrder() {
		n := t.lookup(id)
		n.slots.require(id, PhasePaint)
		if err := n.el.Encode(enc, n.slots.Finalized); err != nil {
			return fmt.Errorf("tree: encode node %d: %w", id, err)
		}
	}
	return nil
}
