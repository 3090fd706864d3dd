package resource

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maccradar/picknpack/internal/config"
	"github.com/maccradar/picknpack/internal/lifecycle"
	"github.com/maccradar/picknpack/internal/transport"
)

// fakeDealer is an in-memory transport.Dealer that never receives
// anything, used to exercise the actor's lifecycle without a real socket.
type fakeDealer struct {
	sent   chan [][]byte
	closed bool
}

func newFakeDealer() *fakeDealer { return &fakeDealer{sent: make(chan [][]byte, 16)} }

func (d *fakeDealer) Send(_ context.Context, frames [][]byte) error {
	d.sent <- frames
	return nil
}

func (d *fakeDealer) Recv(ctx context.Context, timeout time.Duration) ([][]byte, bool, error) {
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case <-time.After(timeout):
		return nil, false, nil
	}
}

func (d *fakeDealer) Close() error {
	d.closed = true
	return nil
}

type fakeDialer struct {
	dealer *fakeDealer
}

func (f *fakeDialer) Dial(context.Context, string) (transport.Dealer, error) {
	return f.dealer, nil
}

func TestActorRun_BootstrapsToRunningAndStopsOnCancel(t *testing.T) {
	dealer := newFakeDealer()
	role := config.RoleConfig{
		SymbolicID:       8,
		UpstreamEndpoint: "fake:1",
	}
	timing := config.Timing{
		Liveness:          3,
		HeartbeatInterval: 20 * time.Millisecond,
		ReconnectInitial:  10 * time.Millisecond,
		ReconnectMax:      100 * time.Millisecond,
	}
	r := New("test-node", role, timing, &fakeDialer{dealer: dealer}, nil, nil, nil, nil)
	a := NewActor(r)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx, lifecycle.Run) }()

	select {
	case <-r.Ready():
	case <-time.After(time.Second):
		t.Fatal("resource never became ready")
	}
	// Ready closes inside the initializing handler; configuring and running
	// follow on the actor goroutine, so wait for the state to reach Running.
	require.Eventually(t, func() bool { return r.CurrentState == lifecycle.Running }, time.Second, 5*time.Millisecond)

	// The initializing handler must have announced upstream.
	select {
	case frames := <-dealer.sent:
		require.Len(t, frames, 2)
		assert.Equal(t, byte(8), frames[0][0])
		assert.Equal(t, byte(0x01), frames[1][0])
	case <-time.After(time.Second):
		t.Fatal("no upstream announce observed")
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("actor did not exit after cancel")
	}
	assert.Equal(t, lifecycle.Deleting, r.CurrentState)
	assert.True(t, dealer.closed)
}

func TestActorRun_ControlStopUnwinds(t *testing.T) {
	dealer := newFakeDealer()
	role := config.RoleConfig{SymbolicID: 8, UpstreamEndpoint: "fake:1"}
	timing := config.Timing{
		Liveness:          3,
		HeartbeatInterval: 10 * time.Millisecond,
		ReconnectInitial:  10 * time.Millisecond,
		ReconnectMax:      50 * time.Millisecond,
	}
	r := New("stop-node", role, timing, &fakeDialer{dealer: dealer}, nil, nil, nil, nil)
	a := NewActor(r)

	ctx := context.Background()
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx, lifecycle.Run) }()

	<-r.Ready()
	r.Control.Send(ControlMessage{Kind: ControlStop})

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("actor did not exit after stop signal")
	}
	assert.Equal(t, lifecycle.Deleting, r.CurrentState)
}
