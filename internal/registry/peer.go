// Package registry implements the per-peer liveness registry described in
// §4.E of the spec: an ordered set of downstream peers, each carrying an
// opaque transport identity, a symbolic ID, and an expiry timestamp, with
// admit/next/purge operations maintained in oldest-first order so that
// purge is a cheap prefix scan.
package registry

import (
	"time"

	"github.com/maccradar/picknpack/internal/transport"
	"github.com/maccradar/picknpack/internal/wire"
)

// Peer is a downstream neighbour known to a router node. Expiry is always
// > 0, and no two Peers in a Registry share SymbolicID (Registry.AdmitPeer
// replaces an existing entry with the same SymbolicID).
type Peer struct {
	Identity   transport.Identity
	SymbolicID wire.SymbolicID
	Expiry     time.Time
}

// expired reports whether the peer's expiry has passed as of now.
func (p Peer) expired(now time.Time) bool {
	return !p.Expiry.After(now)
}
