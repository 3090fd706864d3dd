package registry

import "time"

// Registry is the ordered collection of Peers a router node knows about,
// held oldest-first (by refresh time) so that Purge is a prefix scan — the
// correctness of Purge depends entirely on Admit maintaining this
// ordering invariant (§4.E).
type Registry struct {
	peers []Peer
}

// New constructs an empty peer registry.
func New() *Registry {
	return &Registry{}
}

// Len reports the number of peers currently registered.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.peers)
}

// Peers returns a snapshot of the current registry contents, oldest first.
// Callers must not mutate the returned slice.
func (r *Registry) Peers() []Peer {
	if r == nil {
		return nil
	}
	return r.peers
}

// AdmitPeer implements the "ready" operation from §4.E: an O(n) scan for an
// existing peer with the same symbolic ID; any match is removed, then p is
// appended at the tail. Unlike plant.c's s_line_ready, which dedupes by
// identity, the key here is the symbolic ID (see DESIGN.md). Tail
// insertion is what keeps the registry ordered oldest-first by refresh
// time.
func (r *Registry) AdmitPeer(p Peer) {
	out := r.peers[:0:0]
	for _, existing := range r.peers {
		if existing.SymbolicID == p.SymbolicID {
			continue
		}
		out = append(out, existing)
	}
	r.peers = append(out, p)
}

// Next implements the "next" operation from §4.E: pop the head peer for
// load-balancing a forwarded request. The explicit non-goal preserved from
// the source's TODO ("not all lines have the same capabilities...") is
// that Next performs no capability-aware selection — any peer is
// acceptable for any request.
func (r *Registry) Next() (Peer, bool) {
	if len(r.peers) == 0 {
		return Peer{}, false
	}
	p := r.peers[0]
	r.peers = r.peers[1:]
	return p, true
}

// Purge removes every peer whose expiry has passed, stopping at the first
// un-expired peer — correct only because Admit preserves oldest-first
// ordering (§4.E). Returns the removed peers, oldest first, for the caller
// to log.
func (r *Registry) Purge(now time.Time) []Peer {
	i := 0
	for i < len(r.peers) && r.peers[i].expired(now) {
		i++
	}
	if i == 0 {
		return nil
	}
	removed := append([]Peer(nil), r.peers[:i]...)
	r.peers = r.peers[i:]
	return removed
}
