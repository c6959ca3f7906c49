package mvc

import (
	"slices"

	"github.com/agentstation/waypoint/pkg/errors"
)

// Phase is a request's position in the pipeline.
type Phase int

// Phases.
const (
	PhaseNew Phase = iota
	PhaseRouting
	PhaseDispatching
	PhaseErroring
	PhaseRendering
	PhaseRenderErroring
	PhaseFinishing
	PhaseDone
)

var phaseNames = [...]string{
	PhaseNew:            "new",
	PhaseRouting:        "routing",
	PhaseDispatching:    "dispatching",
	PhaseErroring:       "erroring",
	PhaseRendering:      "rendering",
	PhaseRenderErroring: "render-erroring",
	PhaseFinishing:      "finishing",
	PhaseDone:           "done",
}

// String returns the phase name.
func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

var phaseOf = map[string]Phase{
	EventRoute:         PhaseRouting,
	EventDispatch:      PhaseDispatching,
	EventDispatchError: PhaseErroring,
	EventRender:        PhaseRendering,
	EventRenderError:   PhaseRenderErroring,
	EventFinish:        PhaseFinishing,
}

// transitions lists the allowed successors of each phase. An error phase
// never follows itself, which bounds error recovery to one hop.
var transitions = map[Phase][]Phase{
	PhaseNew:            {PhaseRouting, PhaseDispatching, PhaseErroring, PhaseRendering, PhaseRenderErroring, PhaseFinishing},
	PhaseRouting:        {PhaseDispatching, PhaseErroring, PhaseRendering, PhaseFinishing},
	PhaseDispatching:    {PhaseErroring, PhaseRendering, PhaseFinishing},
	PhaseErroring:       {PhaseRendering, PhaseFinishing},
	PhaseRendering:      {PhaseRenderErroring, PhaseFinishing},
	PhaseRenderErroring: {PhaseFinishing},
	PhaseFinishing:      {PhaseDone},
}

// CanEnter reports whether next may follow p.
func (p Phase) CanEnter(next Phase) bool {
	return slices.Contains(transitions[p], next)
}

func (p Phase) check(next Phase) error {
	if !p.CanEnter(next) {
		return errors.NewTransitionError(p.String(), next.String())
	}
	return nil
}
