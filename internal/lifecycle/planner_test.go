package lifecycle

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allStates = []State{Creating, Initializing, Configuring, Running, Pausing, Finalizing, Deleting}

func genState() gopter.Gen {
	return gen.IntRange(0, len(allStates)-1).Map(func(i int) State { return allStates[i] })
}

func genSignal() gopter.Gen {
	signals := AllSignals()
	return gen.IntRange(0, len(signals)-1).Map(func(i int) Signal { return signals[i] })
}

// TestProperty_ExpandTerminatesWithinBound verifies invariant #1: for every
// state and signal, Expand terminates with length <= S.
func TestProperty_ExpandTerminatesWithinBound(t *testing.T) {
	params := gopter.DefaultTestParameters()
	props := gopter.NewProperties(params)

	props.Property("expand terminates within the run-list depth bound", prop.ForAll(
		func(c State, g Signal) bool {
			return len(Expand(c, g)) <= MaxRunListDepth
		},
		genState(), genSignal(),
	))

	props.TestingRun(t)
}

// TestProperty_LastTransitionHasNoStateEntry verifies invariant #2: the
// expanded run-list's last transition targets a state whose row has a
// no-state entry for the same signal.
func TestProperty_LastTransitionHasNoStateEntry(t *testing.T) {
	params := gopter.DefaultTestParameters()
	props := gopter.NewProperties(params)

	props.Property("last expanded transition's state has a no-state entry for the signal", prop.ForAll(
		func(c State, g Signal) bool {
			expansion := Expand(c, g)
			if len(expansion) == 0 {
				return true
			}
			last := expansion[len(expansion)-1]
			return Lookup(last.State, g) == NoState
		},
		genState(), genSignal(),
	))

	props.TestingRun(t)
}

// TestExpand_S6Examples checks the worked examples from §8 of the spec
// that are consistent with the formal transition table. One S6 example
// (Expand(running, configure)) is not reproduced literally here because it
// contradicts both the table itself and invariant #2 above — see
// DESIGN.md's "S6 worked example vs. the formal transition table" entry
// for the resolution.
func TestExpand_S6Examples(t *testing.T) {
	got := Expand(Creating, Run)
	require.Equal(t, []Transition{
		{State: Initializing, Payload: EmptyPayload()},
		{State: Configuring, Payload: EmptyPayload()},
		{State: Running, Payload: EmptyPayload()},
	}, got)

	assert.Empty(t, Expand(Deleting, Run))
}

func TestExpandInto_BootstrapRunsFirst(t *testing.T) {
	bootstrap := Transition{State: Creating, Payload: EmptyPayload()}
	rl, err := ExpandInto(bootstrap, Run)
	require.NoError(t, err)

	first, err := rl.Pop()
	require.NoError(t, err)
	assert.Equal(t, Creating, first.State)

	second, err := rl.Pop()
	require.NoError(t, err)
	assert.Equal(t, Initializing, second.State)

	third, err := rl.Pop()
	require.NoError(t, err)
	assert.Equal(t, Configuring, third.State)

	fourth, err := rl.Pop()
	require.NoError(t, err)
	assert.Equal(t, Running, fourth.State)

	assert.Equal(t, 0, rl.Len())
}
