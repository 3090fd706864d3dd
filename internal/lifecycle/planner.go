package lifecycle

// Expand implements §4.B's path-planner algorithm: given the current state
// and a signal, it walks the transition table until it hits NoState,
// producing transitions in execution order (first to run at index 0 —
// callers that want execution order should range over the returned slice
// directly, and callers assembling an actor's RunList should push it in
// reverse so the first state to run ends on top).
//
// Expand never walks more than MaxRunListDepth steps: the table has no
// cycle reachable by any single signal (verified by the property tests in
// planner_test.go), so this is a safety net rather than a load-bearing
// mechanism — if the bound is hit the expansion stops early rather than
// looping forever.
func Expand(current State, signal Signal) []Transition {
	next := Lookup(current, signal)
	if next == NoState {
		return nil
	}

	var out []Transition
	for next != NoState && len(out) < MaxRunListDepth {
		out = append(out, Transition{State: next, Payload: EmptyPayload()})
		next = Lookup(next, signal)
	}
	return out
}

// ExpandInto builds the initial RunList for an actor: the planner's
// expansion for (bootstrap.State, signal) is pushed first (so it sits
// beneath, in pop order, everything pushed after it), then the bootstrap
// transition itself is pushed last, landing on top so it is the first
// thing the dispatcher pops and runs — per §4.B: "the planner's expansion
// ... is then pushed beneath it so the bootstrap runs first".
func ExpandInto(bootstrap Transition, signal Signal) (*RunList, error) {
	rl := NewRunList()
	expansion := Expand(bootstrap.State, signal)
	// Reverse expansion order when pushing so that, among the expanded
	// transitions alone, the first one the planner would execute ends up
	// closest to the top (it will run immediately after the bootstrap).
	for i := len(expansion) - 1; i >= 0; i-- {
		if err := rl.Push(expansion[i]); err != nil {
			return nil, err
		}
	}
	if err := rl.Push(bootstrap); err != nil {
		return nil, err
	}
	return rl, nil
}
