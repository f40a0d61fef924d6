package driver

import (
	"context"
	"fmt"

	"github.com/specialistvlad/bundlefn/internal/ctxlog"
)

// Phase selects what the driver does.
type Phase string

const (
	// PhaseLoadResources runs the configured resource loaders.
	PhaseLoadResources Phase = "load_resources"
	// PhaseApplyMutators runs the configured mutators over the resources
	// already present in the configuration.
	PhaseApplyMutators Phase = "apply_mutators"
)

// ParsePhase validates a phase name.
func ParsePhase(s string) (Phase, error) {
	switch Phase(s) {
	case PhaseLoadResources, PhaseApplyMutators:
		return Phase(s), nil
	}
	return "", fmt.Errorf("unknown phase '%s': must be '%s' or '%s'", s, PhaseLoadResources, PhaseApplyMutators)
}

// section returns the `experimental.functions` key that lists the phase's
// references.
func (p Phase) section() string {
	if p == PhaseLoadResources {
		return "resources"
	}
	return "mutators"
}

// State is a step of a run.
type State int

const (
	StateParsingArgs State = iota
	StateParsingInput
	StateLoadingReferences
	StateExecutingPhase
	StateWritingOutput
	StateDone
)

var stateNames = [...]string{
	StateParsingArgs:       "ParsingArgs",
	StateParsingInput:      "ParsingInput",
	StateLoadingReferences: "LoadingReferences",
	StateExecutingPhase:    "ExecutingPhase",
	StateWritingOutput:     "WritingOutput",
	StateDone:              "Done",
}

func (s State) String() string {
	if int(s) < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

func (r *run) enter(ctx context.Context, next State) {
	ctxlog.FromContext(ctx).Debug("Driver state changed.", "from", r.state, "to", next)
	r.state = next
}
