// Package ui is a retained-mode renderer core for a tree of Div, Text and
// Image elements.
//
// # Overview
//
// Every frame runs five phases over the element tree: Measure and Layout
// walk the tree on one goroutine, while Atomize, Place and Finalize fan out
// over a worker pool with a barrier between phases. Paint then encodes one
// draw call per visible node, sorted by z-index and node id, for a GPU
// backend or a canvas snapshot.
//
// # Quick Start
//
//	root := element.NewDiv(element.Style{Padding: layout.Edges{Top: 8, Left: 8}})
//	c, err := ui.NewContext(root, ui.WithFontSource("go", face))
//	if err != nil { ... }
//	defer c.Close()
//
//	c.Edit(func(t *tree.Tree) error {
//	    _, err := t.Append(t.Root(), element.NewText("Hello", element.Style{}))
//	    return err
//	})
//
//	snap, err := c.Snapshot(ctx)
//	snap.WritePDF(w)
//
// # Frames
//
// A Context bounds the frames that have been begun but not yet finished
// (Config.FramesInFlight). BeginFrame blocks until a slot frees up, and
// element buffers rotate through one copy per slot so a frame still being
// drawn is never overwritten. A frame whose update fails is dropped and its
// slot released.
//
// # Packages
//
//   - geom: float32 vectors and rectangles
//   - tessellate: Bezier sampling and adaptive flattening
//   - glyph: font outlines, contour processing and the glyph cache
//   - buffer: buffer allocators on the host and on a wgpu device
//   - fragment: atoms, phase results and draw calls
//   - layout: the pure flow layout function
//   - tree: the node arena, phase orchestration, hit testing and events
//   - element: Div, Text and Image
//   - gpu: the wgpu backend
//   - snapshot: PDF and raster snapshots
//   - markup: a declarative tree description language
//
// # Logging
//
// ui produces no log output by default. Use SetLogger to enable it.
package ui
