// Package lifecycle implements the resource lifecycle engine: a uniform
// state machine with a transition table, a path planner that expands a
// single operator signal into an ordered run of transitions, and the typed
// payload those transitions carry.
package lifecycle

// State is one of the seven lifecycle states a resource moves through, plus
// the NoState sentinel used only inside the transition table.
type State int

const (
	// NoState terminates path expansion; it never appears in a run-list.
	NoState State = iota
	Creating
	Initializing
	Configuring
	Running
	Pausing
	Finalizing
	Deleting
)

// String renders a state for logs and diagnostics.
func (s State) String() string {
	switch s {
	case NoState:
		return "no-state"
	case Creating:
		return "creating"
	case Initializing:
		return "initializing"
	case Configuring:
		return "configuring"
	case Running:
		return "running"
	case Pausing:
		return "pausing"
	case Finalizing:
		return "finalizing"
	case Deleting:
		return "deleting"
	default:
		return "unknown-state"
	}
}

// Tag returns the single-byte wire tag for the state, per §6 of the spec.
// NoState has no wire representation and returns ok=false.
func (s State) Tag() (byte, bool) {
	switch s {
	case Creating:
		return 0x40, true
	case Initializing:
		return 0x41, true
	case Configuring:
		return 0x42, true
	case Running:
		return 0x43, true
	case Pausing:
		return 0x44, true
	case Finalizing:
		return 0x45, true
	case Deleting:
		return 0x46, true
	default:
		return 0, false
	}
}
