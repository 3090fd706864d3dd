package transport

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTCP_DealerRouterRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tr := NewTCP()
	router, err := tr.Bind(ctx, "127.0.0.1:0")
	require.NoError(t, err)
	defer router.Close()

	addr := router.(*tcpRouter).ln.Addr().String()
	dealer, err := tr.Dial(ctx, addr)
	require.NoError(t, err)
	defer dealer.Close()

	require.NoError(t, dealer.Send(ctx, [][]byte{{0x08}, {0x01}}))

	id, frames, ok, err := router.Recv(ctx, time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, frames, 2)
	assert.Equal(t, byte(0x08), frames[0][0])
	assert.NotEmpty(t, id)

	require.NoError(t, router.SendTo(ctx, id, [][]byte{{0x02}}))

	reply, ok, err := dealer.Recv(ctx, time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, reply, 1)
	assert.Equal(t, byte(0x02), reply[0][0])
}

func TestTCP_RecvTimeout(t *testing.T) {
	ctx := context.Background()
	tr := NewTCP()
	router, err := tr.Bind(ctx, "127.0.0.1:0")
	require.NoError(t, err)
	defer router.Close()

	_, _, ok, err := router.Recv(ctx, 50*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok)
}
