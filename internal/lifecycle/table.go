package lifecycle

// table is the static, read-only (state × signal) → (state ∪ NoState)
// mapping defined in §4.A of the spec. It is a design constant: no code path
// ever mutates it.
var table = map[State]map[Signal]State{
	Creating: {
		Run:       Initializing,
		Pause:     Initializing,
		Stop:      Initializing,
		Configure: Initializing,
		Reboot:    Initializing,
	},
	Initializing: {
		Run:       Configuring,
		Pause:     Configuring,
		Stop:      Configuring,
		Configure: Configuring,
		Reboot:    NoState,
	},
	Configuring: {
		Run:       Running,
		Pause:     Pausing,
		Stop:      Pausing,
		Configure: NoState,
		Reboot:    Pausing,
	},
	Running: {
		Run:       NoState,
		Pause:     Pausing,
		Stop:      Pausing,
		Configure: Configuring,
		Reboot:    Pausing,
	},
	Pausing: {
		Run:       Running,
		Pause:     NoState,
		Stop:      Finalizing,
		Configure: Configuring,
		Reboot:    Finalizing,
	},
	Finalizing: {
		Run:       Initializing,
		Pause:     Initializing,
		Stop:      Deleting,
		Configure: Initializing,
		Reboot:    Initializing,
	},
	Deleting: {
		Run:       NoState,
		Pause:     NoState,
		Stop:      NoState,
		Configure: NoState,
		Reboot:    NoState,
	},
}

// Lookup returns the next state for (current, signal). It never panics: any
// state/signal pair not present in the table (there are none, by
// construction) resolves to NoState.
func Lookup(current State, signal Signal) State {
	row, ok := table[current]
	if !ok {
		return NoState
	}
	next, ok := row[signal]
	if !ok {
		return NoState
	}
	return next
}
