package registry

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maccradar/picknpack/internal/transport"
	"github.com/maccradar/picknpack/internal/wire"
)

var allSymbolicIDs = []wire.SymbolicID{
	wire.Line, wire.Thermoformer, wire.RobotCell, wire.QAS, wire.Ceiling, wire.Printing,
}

func TestAdmitNextPurge_Basic(t *testing.T) {
	r := New()
	now := time.Now()

	r.AdmitPeer(Peer{Identity: "a", SymbolicID: wire.Line, Expiry: now.Add(time.Second)})
	r.AdmitPeer(Peer{Identity: "b", SymbolicID: wire.QAS, Expiry: now.Add(2 * time.Second)})
	require.Equal(t, 2, r.Len())

	// Re-admitting the same symbolic ID replaces, not duplicates.
	r.AdmitPeer(Peer{Identity: "a2", SymbolicID: wire.Line, Expiry: now.Add(3 * time.Second)})
	require.Equal(t, 2, r.Len())

	p, ok := r.Next()
	require.True(t, ok)
	assert.Equal(t, wire.QAS, p.SymbolicID)
	require.Equal(t, 1, r.Len())

	_, ok = r.Next()
	require.True(t, ok)
	_, ok = r.Next()
	require.False(t, ok)
}

func TestPurge_RemovesOnlyExpired(t *testing.T) {
	r := New()
	base := time.Now()
	r.AdmitPeer(Peer{Identity: "a", SymbolicID: wire.Line, Expiry: base.Add(-time.Second)})
	r.AdmitPeer(Peer{Identity: "b", SymbolicID: wire.QAS, Expiry: base.Add(time.Hour)})

	removed := r.Purge(base)
	require.Len(t, removed, 1)
	assert.Equal(t, wire.Line, removed[0].SymbolicID)
	require.Equal(t, 1, r.Len())

	// Idempotent: purging again removes nothing more.
	again := r.Purge(base)
	assert.Empty(t, again)
}

// genPeerSeq builds a pseudo-random sequence of Admit operations with
// distinct identities but a bounded set of symbolic IDs, so duplicates are
// exercised.
func genPeerSeq() gopter.Gen {
	return gen.SliceOfN(30, gen.IntRange(0, len(allSymbolicIDs)-1)).Map(func(idxs []int) []wire.SymbolicID {
		out := make([]wire.SymbolicID, len(idxs))
		for i, idx := range idxs {
			out[i] = allSymbolicIDs[idx]
		}
		return out
	})
}

// TestProperty_OrderingAndUniqueness verifies invariants #3 and #4 from §8:
// after any sequence of Admit operations, the registry is ordered by
// non-decreasing expiry and no two entries share a symbolic ID.
func TestProperty_OrderingAndUniqueness(t *testing.T) {
	params := gopter.DefaultTestParameters()
	props := gopter.NewProperties(params)

	props.Property("ordering and uniqueness survive any admit sequence", prop.ForAll(
		func(ids []wire.SymbolicID) bool {
			r := New()
			base := time.Now()
			for i, id := range ids {
				r.AdmitPeer(Peer{
					Identity:   transport.Identity(string(rune('a' + i))),
					SymbolicID: id,
					Expiry:     base.Add(time.Duration(i+1) * time.Millisecond),
				})
			}

			seen := map[wire.SymbolicID]bool{}
			var lastExpiry time.Time
			for i, p := range r.Peers() {
				if seen[p.SymbolicID] {
					return false
				}
				seen[p.SymbolicID] = true
				if i > 0 && p.Expiry.Before(lastExpiry) {
					return false
				}
				lastExpiry = p.Expiry
			}
			return true
		},
		genPeerSeq(),
	))

	props.TestingRun(t)
}

// TestProperty_PurgeIdempotentAndCorrect verifies invariant #5: purge never
// removes an un-expired peer, purge removes all peers with expiry <= now,
// and purge(purge(R)) == purge(R).
func TestProperty_PurgeIdempotentAndCorrect(t *testing.T) {
	params := gopter.DefaultTestParameters()
	props := gopter.NewProperties(params)

	props.Property("purge is idempotent and exact", prop.ForAll(
		func(offsetsMs []int) bool {
			r := New()
			now := time.Now()
			for i, off := range offsetsMs {
				r.AdmitPeer(Peer{
					Identity:   transport.Identity(string(rune('a' + i%26))),
					SymbolicID: allSymbolicIDs[i%len(allSymbolicIDs)],
					Expiry:     now.Add(time.Duration(off) * time.Millisecond),
				})
			}

			before := append([]Peer(nil), r.Peers()...)
			r.Purge(now)
			after := r.Peers()

			for _, p := range after {
				if !p.Expiry.After(now) {
					return false
				}
			}
			var expectRemaining int
			for _, p := range before {
				if p.Expiry.After(now) {
					expectRemaining++
				}
			}
			if expectRemaining != len(after) {
				return false
			}

			// Idempotence.
			second := r.Purge(now)
			return len(second) == 0
		},
		gen.SliceOfN(20, gen.IntRange(-1000, 1000)),
	))

	props.TestingRun(t)
}
