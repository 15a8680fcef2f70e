package tree

import (
	"cmp"
	"slices"

	"github.com/gogpu/ui/fragment"
	"github.com/gogpu/ui/geom"
)

// HitTest returns the topmost node whose laid-out box contains p.
//
// Children are tested before their parent, in descending (z, id) order, so
// the result is the node painted last at p. Nodes that have not been laid
// out are never hit.
func (t *Tree) HitTest(p geom.Vec2) (fragment.NodeID, bool) {
	return t.hit(t.root, p)
}

func (t *Tree) hit(id fragment.NodeID, p geom.Vec2) (fragment.NodeID, bool) {
	n := t.lookup(id)

	kids := slices.Clone(n.children)
	slices.SortFunc(kids, func(a, b fragment.NodeID) int {
		if c := cmp.Compare(t.lookup(b).z, t.lookup(a).z); c != 0 {
			return c
		}
		return cmp.Compare(b, a)
	})
	for _, c := range kids {
		if found, ok := t.hit(c, p); ok {
			return found, true
		}
	}

	if n.slots.Layout != nil && n.slots.Layout.Box.Contains(p) {
		return id, true
	}
	return 0, false
}
