package tree

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/ui/fragment"
	"github.com/gogpu/ui/geom"
)

// EventType selects the payload of an Event and the handlers it reaches.
type EventType uint8

const (
	MouseDown EventType = iota
	MouseUp
	KeyDown
)

// String returns the event type name.
func (e EventType) String() string {
	switch e {
	case MouseDown:
		return "mousedown"
	case MouseUp:
		return "mouseup"
	case KeyDown:
		return "keydown"
	default:
		return "unknown"
	}
}

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	ButtonLeft MouseButton = iota
	ButtonRight
	ButtonMiddle
)

// MouseEvent is the payload of MouseDown and MouseUp.
type MouseEvent struct {
	Position geom.Vec2
	Button   MouseButton
}

// KeyEvent is the payload of KeyDown.
type KeyEvent struct {
	Key  gpucontext.Key
	Mods gpucontext.Modifiers
}

// Event is delivered to handlers while it bubbles from its target towards
// the root.
type Event struct {
	Type EventType

	// Target is the node the event was dispatched to; Current is the node
	// whose handler is running.
	Target  fragment.NodeID
	Current fragment.NodeID

	Mouse MouseEvent
	Key   KeyEvent

	stopped bool
}

// StopPropagation prevents the event from reaching further ancestors.
// Remaining handlers on the current node still run.
func (e *Event) StopPropagation() { e.stopped = true }

// Stopped reports whether StopPropagation was called.
func (e *Event) Stopped() bool { return e.stopped }

// Handler handles one event.
type Handler func(e *Event)

// On registers h for events of type typ on node id.
func (t *Tree) On(id fragment.NodeID, typ EventType, h Handler) error {
	n, err := t.mustNode(id)
	if err != nil {
		return err
	}
	if n.handlers == nil {
		n.handlers = make(map[EventType][]Handler)
	}
	n.handlers[typ] = append(n.handlers[typ], h)
	return nil
}

// Focus returns the node keyboard events are sent to.
func (t *Tree) Focus() fragment.NodeID {
	if t.focus == 0 {
		return t.root
	}
	return t.focus
}

// SetFocus sends subsequent keyboard events to id.
func (t *Tree) SetFocus(id fragment.NodeID) error {
	if _, err := t.mustNode(id); err != nil {
		return err
	}
	t.focus = id
	return nil
}

// DispatchMouse hit-tests the event position and bubbles the event from
// the hit node. A MouseDown also moves keyboard focus to the hit node. It
// reports the target and whether any node was hit.
func (t *Tree) DispatchMouse(typ EventType, ev MouseEvent) (fragment.NodeID, bool) {
	target, ok := t.HitTest(ev.Position)
	if !ok {
		return 0, false
	}
	if typ == MouseDown {
		t.focus = target
	}
	t.bubble(&Event{Type: typ, Target: target, Mouse: ev})
	return target, true
}

// DispatchKey delivers a KeyDown to the focused node and its ancestors.
func (t *Tree) DispatchKey(ev KeyEvent) fragment.NodeID {
	target := t.Focus()
	t.bubble(&Event{Type: KeyDown, Target: target, Key: ev})
	return target
}

func (t *Tree) bubble(e *Event) {
	for id := e.Target; id != 0 && !e.stopped; {
		n := t.lookup(id)
		e.Current = id
		for _, h := range n.handlers[e.Type] {
			h(e)
		}
		id = n.parent
	}
}
