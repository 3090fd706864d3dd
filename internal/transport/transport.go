// Package transport provides the point-to-point multipart-frame messaging
// substrate the rest of this system treats as an external collaborator
// (§1: "the concrete wire transport ... is out of scope"). No library in
// the reference corpus binds a ZeroMQ-style dealer/router socket pair, so
// this package implements the minimal real equivalent directly over
// net.TCPConn and the standard encoding/binary framing used throughout the
// corpus's own wire-protocol code — see DESIGN.md for why no third-party
// dependency was substituted here.
package transport

import (
	"context"
	"time"
)

// Identity is the opaque routing token a Router assigns to a connected
// Dealer. It is stable for the lifetime of the underlying connection and
// moves (never copies in the ownership sense) between the registry and the
// wire layer, per §9's "raw pointer ownership" redesign note.
type Identity string

// Dealer is the upstream-facing, point-to-point socket a node uses to
// reach its parent. A Dealer has exactly one peer (the configured upstream
// endpoint) and carries no identity framing on send; on receive it strips
// whatever identity-style framing the peer's Router attached.
type Dealer interface {
	// Send transmits a multipart message to the connected endpoint.
	Send(ctx context.Context, frames [][]byte) error
	// Recv blocks up to timeout for the next multipart message. A zero
	// timeout blocks until ctx is done. ok=false on timeout.
	Recv(ctx context.Context, timeout time.Duration) (frames [][]byte, ok bool, err error)
	// Close releases the underlying connection. Safe to call once.
	Close() error
}

// Router is the downstream-facing socket that accepts connections from any
// number of Dealers and can address a specific one by Identity.
type Router interface {
	// Recv blocks up to timeout for the next inbound message from any
	// connected Dealer, returning its sender Identity alongside the
	// content frames.
	Recv(ctx context.Context, timeout time.Duration) (id Identity, frames [][]byte, ok bool, err error)
	// SendTo transmits frames to the Dealer previously observed as id.
	// Sending to an Identity that has disconnected is a no-op error the
	// caller treats as a transient peer fault (§7), never fatal.
	SendTo(ctx context.Context, id Identity, frames [][]byte) error
	// Close releases the listener and all connected peers.
	Close() error
}

// Dialer opens a Dealer connection to an upstream endpoint.
type Dialer interface {
	Dial(ctx context.Context, endpoint string) (Dealer, error)
}

// Binder opens a Router listening on a downstream endpoint.
type Binder interface {
	Bind(ctx context.Context, endpoint string) (Router, error)
}
