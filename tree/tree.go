package tree

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/ui/fragment"
	"github.com/gogpu/ui/internal/logging"
	"github.com/gogpu/ui/internal/parallel"
	"github.com/gogpu/ui/layout"
)

var (
	// ErrUnknownNode is returned for ids that are not in the tree.
	ErrUnknownNode = errors.New("tree: unknown node")

	// ErrRootNode is returned when an edit would detach the root.
	ErrRootNode = errors.New("tree: cannot detach the root node")

	// ErrCycle is returned when a node would become its own ancestor.
	ErrCycle = errors.New("tree: node would become its own ancestor")

	// ErrNilElement is returned when a nil Element is inserted.
	ErrNilElement = errors.New("tree: nil element")
)

type node struct {
	el       Element
	parent   fragment.NodeID
	children []fragment.NodeID

	// z is the global paint z-index assigned after layout.
	z int

	// constraints are the layout constraints the node was last laid out
	// under.
	constraints layout.Constraints

	slots    Slots
	handlers map[EventType][]Handler
}

// Tree is an arena of nodes. Node ids start at 1 and are never reused, so
// they also record insertion order.
//
// A Tree is not safe for concurrent use; its parallel phases synchronise
// internally.
type Tree struct {
	nodes []*node
	root  fragment.NodeID
	live  int
	focus fragment.NodeID

	pool   *parallel.WorkerPool
	logger *slog.Logger
}

// Option configures a Tree.
type Option func(*Tree)

// WithWorkers sets the number of workers for the parallel phases. Zero uses
// GOMAXPROCS and one runs every phase on the calling goroutine.
func WithWorkers(n int) Option {
	return func(t *Tree) {
		if t.pool != nil {
			t.pool.Close()
		}
		if n == 1 {
			t.pool = nil
			return
		}
		t.pool = parallel.NewWorkerPool(n)
	}
}

// WithLogger sets the tree's logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tree) { t.SetLogger(l) }
}

// New creates a tree whose root node wraps root.
func New(root Element, opts ...Option) (*Tree, error) {
	if root == nil {
		return nil, ErrNilElement
	}
	t := &Tree{logger: logging.Nop()}
	t.pool = parallel.NewWorkerPool(0)
	for _, opt := range opts {
		opt(t)
	}
	t.root = t.insert(root, 0)
	return t, nil
}

// SetLogger sets the logger used for frame diagnostics. Nil silences it.
func (t *Tree) SetLogger(l *slog.Logger) {
	t.logger = logging.OrNop(l)
}

// Close stops the worker pool. The tree stays usable and runs its phases
// serially afterwards.
func (t *Tree) Close() {
	t.pool.Close()
}

func (t *Tree) insert(el Element, parent fragment.NodeID) fragment.NodeID {
	t.nodes = append(t.nodes, &node{el: el, parent: parent})
	t.live++
	return fragment.NodeID(len(t.nodes))
}

// lookup returns the node for id or nil.
func (t *Tree) lookup(id fragment.NodeID) *node {
	if id == 0 || int(id) > len(t.nodes) {
		return nil
	}
	return t.nodes[id-1]
}

func (t *Tree) mustNode(id fragment.NodeID) (*node, error) {
	n := t.lookup(id)
	if n == nil {
		return nil, fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	return n, nil
}

// Root returns the root node id.
func (t *Tree) Root() fragment.NodeID { return t.root }

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int { return t.live }

// Contains reports whether id is in the tree.
func (t *Tree) Contains(id fragment.NodeID) bool { return t.lookup(id) != nil }

// Append adds el as the last child of parent.
func (t *Tree) Append(parent fragment.NodeID, el Element) (fragment.NodeID, error) {
	if el == nil {
		return 0, ErrNilElement
	}
	p, err := t.mustNode(parent)
	if err != nil {
		return 0, err
	}
	id := t.insert(el, parent)
	p.children = append(p.children, id)
	return id, nil
}

// Remove detaches id and its subtree and releases their elements.
func (t *Tree) Remove(id fragment.NodeID) error {
	n, err := t.mustNode(id)
	if err != nil {
		return err
	}
	if id == t.root {
		return ErrRootNode
	}
	t.unlink(id, n.parent)

	var errs []error
	t.walk(id, func(cid fragment.NodeID, c *node) {
		if err := c.el.Release(); err != nil {
			errs = append(errs, fmt.Errorf("tree: release node %d: %w", cid, err))
		}
		if t.focus == cid {
			t.focus = 0
		}
		t.live--
	})
	t.walk(id, func(cid fragment.NodeID, _ *node) {
		t.nodes[cid-1] = nil
	})
	return errors.Join(errs...)
}

// Reparent moves id and its subtree to the end of newParent's children.
func (t *Tree) Reparent(id, newParent fragment.NodeID) error {
	n, err := t.mustNode(id)
	if err != nil {
		return err
	}
	np, err := t.mustNode(newParent)
	if err != nil {
		return err
	}
	if id == t.root {
		return ErrRootNode
	}
	for a := newParent; a != 0; a = t.lookup(a).parent {
		if a == id {
			return ErrCycle
		}
	}
	t.unlink(id, n.parent)
	n.parent = newParent
	np.children = append(np.children, id)
	return nil
}

func (t *Tree) unlink(id, parent fragment.NodeID) {
	p := t.lookup(parent)
	for i, c := range p.children {
		if c == id {
			p.children = append(p.children[:i:i], p.children[i+1:]...)
			return
		}
	}
}

// Parent returns the parent of id, or 0 for the root.
func (t *Tree) Parent(id fragment.NodeID) (fragment.NodeID, error) {
	n, err := t.mustNode(id)
	if err != nil {
		return 0, err
	}
	return n.parent, nil
}

// Children returns a copy of id's children in insertion order.
func (t *Tree) Children(id fragment.NodeID) ([]fragment.NodeID, error) {
	n, err := t.mustNode(id)
	if err != nil {
		return nil, err
	}
	return append([]fragment.NodeID(nil), n.children...), nil
}

// Element returns the element behind id.
func (t *Tree) Element(id fragment.NodeID) (Element, error) {
	n, err := t.mustNode(id)
	if err != nil {
		return nil, err
	}
	return n.el, nil
}

// Slots returns a copy of id's phase slots.
func (t *Tree) Slots(id fragment.NodeID) (Slots, error) {
	n, err := t.mustNode(id)
	if err != nil {
		return Slots{}, err
	}
	return n.slots, nil
}

// ZIndex returns the global z-index assigned to id by the last layout.
func (t *Tree) ZIndex(id fragment.NodeID) (int, error) {
	n, err := t.mustNode(id)
	if err != nil {
		return 0, err
	}
	return n.z, nil
}

// walk visits id and its descendants in pre-order.
func (t *Tree) walk(id fragment.NodeID, fn func(fragment.NodeID, *node)) {
	n := t.lookup(id)
	fn(id, n)
	for _, c := range n.children {
		t.walk(c, fn)
	}
}

// Walk calls fn for every node in pre-order.
func (t *Tree) Walk(fn func(id fragment.NodeID, el Element)) {
	t.walk(t.root, func(id fragment.NodeID, n *node) { fn(id, n.el) })
}

// preorder returns every node id in pre-order.
func (t *Tree) preorder() []fragment.NodeID {
	ids := make([]fragment.NodeID, 0, t.live)
	t.walk(t.root, func(id fragment.NodeID, _ *node) { ids = append(ids, id) })
	return ids
}
