package wire

import (
	"fmt"

	"github.com/maccradar/picknpack/internal/lifecycle"
)

// Message is a multipart frame sequence as delivered by the transport. On a
// router-side receive, the transport has already stripped and supplied the
// sender's identity separately (see internal/transport); Message here is
// the content frames only.
type Message [][]byte

// UpstreamAnnounce builds the 2-frame {symbolic-ID, READY} message a node
// sends upstream once initializing completes (§4.D, §6).
func UpstreamAnnounce(id SymbolicID) Message {
	return Message{{byte(id)}, {ReadyTag}}
}

// UpstreamHeartbeat builds the 3-frame {symbolic-ID, state-tag, signal-tag}
// status heartbeat a node sends upstream every heartbeat interval (§4.D).
func UpstreamHeartbeat(id SymbolicID, state lifecycle.State, signal lifecycle.Signal) (Message, error) {
	st, ok := state.Tag()
	if !ok {
		return nil, fmt.Errorf("wire: state %s has no wire tag", state)
	}
	sg, ok := signal.Tag()
	if !ok {
		return nil, fmt.Errorf("wire: signal %s has no wire tag", signal)
	}
	return Message{{byte(id)}, {st}, {sg}}, nil
}

// DownstreamHeartbeat builds the 1-frame {HEARTBEAT} content a router sends
// to each registered peer every heartbeat interval; the peer's identity is
// prepended by the transport layer on send, not carried in this content.
func DownstreamHeartbeat() Message {
	return Message{{HeartbeatTag}}
}

// UpstreamKind classifies a 1-frame upstream message as described in §4.D:
// "a 1-frame message is classified as an upstream heartbeat (ready or
// heartbeat tag)".
type UpstreamKind int

const (
	// UpstreamRequest is any upstream payload that is not a 1-frame tag —
	// treated as a request to forward downstream.
	UpstreamRequest UpstreamKind = iota
	UpstreamReady
	UpstreamHeartbeatTag
)

// ClassifyUpstream classifies a message received on a node's upstream
// socket (used by router roles forwarding from above, and leaves are not
// expected to receive anything meaningful on their own upstream beyond
// replies). Malformed (empty) messages classify as UpstreamRequest; the
// running handlers do not filter them out, so a router forwards an empty
// message downstream and a leaf echoes it upstream like any request.
func ClassifyUpstream(msg Message) UpstreamKind {
	if len(msg) != 1 || len(msg[0]) != 1 {
		return UpstreamRequest
	}
	switch msg[0][0] {
	case ReadyTag:
		return UpstreamReady
	case HeartbeatTag:
		return UpstreamHeartbeatTag
	default:
		return UpstreamRequest
	}
}

// DownstreamKind classifies a message received on a node's downstream
// (router) socket from a peer, per §4.D.
type DownstreamKind int

const (
	// DownstreamReply is anything that is not a 2- or 3-frame status
	// message — forwarded upstream unchanged.
	DownstreamReply DownstreamKind = iota
	// DownstreamStatus is a 2-frame {ID, tag} status/ready message.
	DownstreamStatus
	// DownstreamPeerHeartbeat is a 3-frame {ID, state, signal} heartbeat
	// carrying the peer's self-reported state and last signal.
	DownstreamPeerHeartbeat
)

// ClassifyDownstream classifies downstream activity by frame count, per
// §4.D's bullet list.
func ClassifyDownstream(msg Message) DownstreamKind {
	switch len(msg) {
	case 2:
		return DownstreamStatus
	case 3:
		return DownstreamPeerHeartbeat
	default:
		return DownstreamReply
	}
}

// ParseSymbolicID reads the first frame of a downstream status/heartbeat
// message as a symbolic ID. Returns ok=false for malformed frames (§7:
// malformed peer messages are logged and dropped).
func ParseSymbolicID(msg Message) (SymbolicID, bool) {
	if len(msg) == 0 || len(msg[0]) != 1 {
		return 0, false
	}
	return SymbolicID(msg[0][0]), true
}

// ParseStateTag reads the state tag out of a 3-frame peer heartbeat. It
// returns the raw tag byte since downstream peer state is recorded for
// diagnostics only (§4.D) and is never fed back into this node's own
// transition table.
func ParseStateTag(msg Message) (byte, bool) {
	if len(msg) < 2 || len(msg[1]) != 1 {
		return 0, false
	}
	return msg[1][0], true
}

// ParseSignalTag reads the signal tag out of a 3-frame peer heartbeat.
func ParseSignalTag(msg Message) (byte, bool) {
	if len(msg) < 3 || len(msg[2]) != 1 {
		return 0, false
	}
	return msg[2][0], true
}

// IsReadyStatus reports whether a 2-frame downstream status message carries
// the READY tag (vs. an ordinary status refresh).
func IsReadyStatus(msg Message) bool {
	return len(msg) == 2 && len(msg[1]) == 1 && msg[1][0] == ReadyTag
}
