package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maccradar/picknpack/internal/lifecycle"
)

func TestUpstreamAnnounce(t *testing.T) {
	msg := UpstreamAnnounce(QAS)
	require.Len(t, msg, 2)
	assert.Equal(t, byte(QAS), msg[0][0])
	assert.Equal(t, ReadyTag, msg[1][0])
	assert.Equal(t, UpstreamReady, ClassifyUpstream(msg))
}

func TestUpstreamHeartbeat(t *testing.T) {
	msg, err := UpstreamHeartbeat(QAS, lifecycle.Running, lifecycle.Run)
	require.NoError(t, err)
	require.Len(t, msg, 3)
	assert.Equal(t, byte(QAS), msg[0][0])
	assert.Equal(t, byte(0x43), msg[1][0])
	assert.Equal(t, byte(0x48), msg[2][0])

	_, err = UpstreamHeartbeat(QAS, lifecycle.NoState, lifecycle.Run)
	assert.Error(t, err)
}

func TestClassifyDownstream(t *testing.T) {
	assert.Equal(t, DownstreamStatus, ClassifyDownstream(Message{{1}, {2}}))
	assert.Equal(t, DownstreamPeerHeartbeat, ClassifyDownstream(Message{{1}, {2}, {3}}))
	assert.Equal(t, DownstreamReply, ClassifyDownstream(Message{{1}, {2}, {3}, {4}}))
}

func TestParseHelpers(t *testing.T) {
	msg := Message{{byte(Line)}, {0x43}, {0x48}}
	id, ok := ParseSymbolicID(msg)
	require.True(t, ok)
	assert.Equal(t, Line, id)

	st, ok := ParseStateTag(msg)
	require.True(t, ok)
	assert.Equal(t, byte(0x43), st)

	sg, ok := ParseSignalTag(msg)
	require.True(t, ok)
	assert.Equal(t, byte(0x48), sg)

	_, ok = ParseSymbolicID(Message{})
	assert.False(t, ok)
}

func TestIsReadyStatus(t *testing.T) {
	assert.True(t, IsReadyStatus(Message{{byte(Line)}, {ReadyTag}}))
	assert.False(t, IsReadyStatus(Message{{byte(Line)}, {HeartbeatTag}}))
}

func TestSymbolicIDString(t *testing.T) {
	assert.Equal(t, "QAS", QAS.String())
	assert.Equal(t, "unknown", SymbolicID(0xFF).String())
}
