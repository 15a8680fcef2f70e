package tree

import "github.com/gogpu/ui/fragment"

// Builder appends nested children without checking an error at every
// step. The first error stops further edits and is reported by Err.
//
//	b := t.Builder(t.Root())
//	b.Child(header, nil)
//	b.Child(body, func(b *tree.Builder) {
//	    b.Child(label, nil)
//	})
//	if err := b.Err(); err != nil { ... }
type Builder struct {
	t      *Tree
	parent fragment.NodeID
	last   fragment.NodeID
	err    *error
}

// Builder returns a builder appending under parent.
func (t *Tree) Builder(parent fragment.NodeID) *Builder {
	var err error
	return &Builder{t: t, parent: parent, err: &err}
}

// Child appends el and, if fill is non-nil, calls it with a builder for the
// new node.
func (b *Builder) Child(el Element, fill func(*Builder)) *Builder {
	if *b.err != nil {
		return b
	}
	id, err := b.t.Append(b.parent, el)
	if err != nil {
		*b.err = err
		return b
	}
	b.last = id
	if fill != nil {
		fill(&Builder{t: b.t, parent: id, err: b.err})
	}
	return b
}

// Last returns the id of the most recent child appended by this builder.
func (b *Builder) Last() fragment.NodeID { return b.last }

// Err returns the first error encountered by the builder or any nested
// builder.
func (b *Builder) Err() error { return *b.err }
