package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunList_PushPopOrderAndBounds(t *testing.T) {
	rl := NewRunList()
	for i := 0; i < MaxRunListDepth; i++ {
		require.NoError(t, rl.Push(Transition{State: Running}))
	}
	assert.Equal(t, MaxRunListDepth, rl.Len())

	err := rl.Push(Transition{State: Pausing})
	assert.Error(t, err)

	for i := 0; i < MaxRunListDepth; i++ {
		_, err := rl.Pop()
		require.NoError(t, err)
	}
	_, err = rl.Pop()
	assert.Error(t, err)
}

func TestPayload_PositionalAccess(t *testing.T) {
	p := NewPayload([]string{"a", "b"}, []any{1, "two"})
	assert.Equal(t, 2, p.Len())
	v0, ok := p.At(0)
	require.True(t, ok)
	assert.Equal(t, 1, v0)
	v1, ok := p.At(1)
	require.True(t, ok)
	assert.Equal(t, "two", v1)
	_, ok = p.At(2)
	assert.False(t, ok)
	assert.Equal(t, "a", p.NameAt(0))
}

func TestPayload_OverflowPanics(t *testing.T) {
	names := make([]string, MaxPayloadItems+1)
	values := make([]any, MaxPayloadItems+1)
	assert.Panics(t, func() { NewPayload(names, values) })
}

func TestTable_Lookup(t *testing.T) {
	assert.Equal(t, Initializing, Lookup(Creating, Run))
	assert.Equal(t, NoState, Lookup(Deleting, Stop))
	assert.Equal(t, NoState, Lookup(Configuring, Configure))
}
