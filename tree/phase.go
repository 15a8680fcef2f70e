package tree

import (
	"fmt"

	"github.com/gogpu/ui/fragment"
)

// Phase is one step of the per-frame pipeline.
type Phase uint8

const (
	PhaseMeasure Phase = iota
	PhaseAtomize
	PhaseLayout
	PhasePlace
	PhaseFinalize
	PhasePaint
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseMeasure:
		return "measure"
	case PhaseAtomize:
		return "atomize"
	case PhaseLayout:
		return "layout"
	case PhasePlace:
		return "place"
	case PhaseFinalize:
		return "finalize"
	case PhasePaint:
		return "paint"
	default:
		return fmt.Sprintf("Phase(%d)", uint8(p))
	}
}

// PhaseError is the panic value raised when a phase runs on a node whose
// prerequisite slot is empty. It signals a broken pipeline, not a runtime
// condition, and is never returned as an error.
type PhaseError struct {
	Node    fragment.NodeID
	Phase   Phase
	Missing Phase
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("tree: %s on node %d before %s", e.Phase, e.Node, e.Missing)
}

// require panics unless every slot that phase p depends on is filled.
func (s *Slots) require(id fragment.NodeID, p Phase) {
	missing := func(m Phase) {
		panic(&PhaseError{Node: id, Phase: p, Missing: m})
	}
	if p > PhaseMeasure && s.Measured == nil {
		missing(PhaseMeasure)
	}
	if p > PhaseAtomize && s.Atomized == nil {
		missing(PhaseAtomize)
	}
	if p > PhaseLayout && s.Layout == nil {
		missing(PhaseLayout)
	}
	if p > PhasePlace && s.Placed == nil {
		missing(PhasePlace)
	}
	if p > PhaseFinalize && s.Finalized == nil {
		missing(PhaseFinalize)
	}
}
