package resource

import (
	"context"
	"time"
)

// reconnectUpstream implements §4.D's failure branch and the reconnect
// monotonicity invariant (§8 #6): destroy and reopen the upstream socket,
// double the backoff interval up to Iₘₐₓ, and reset liveness to L. Errors
// dialing are logged and swallowed — per §7, a transient upstream fault is
// never surfaced, only retried on the next idle cycle.
//
// ReconnectInterval is an actual delay, not just a monotonically growing
// value: once a redial is attempted, NextReconnectAttempt is pushed out by
// the new backoff, and a liveness-exhausted caller within that window has
// its liveness reset without a further dial attempt (§5's "reconnect delay
// = current backoff interval").
func reconnectUpstream(ctx context.Context, r *Resource) {
	if now := time.Now(); !r.NextReconnectAttempt.IsZero() && now.Before(r.NextReconnectAttempt) {
		r.Liveness = r.Timing.Liveness
		return
	}

	r.Log.Warn(ctx, "upstream liveness exhausted, reconnecting",
		"node", r.SymbolicName, "endpoint", r.UpstreamEndpoint, "backoff", r.ReconnectInterval)
	r.Metrics.IncCounter("picknpack.reconnect", 1, "node", r.SymbolicName)

	if r.Upstream != nil {
		_ = r.Upstream.Close()
		r.Upstream = nil
	}
	if r.Dialer != nil && r.UpstreamEndpoint != "" {
		dealer, err := r.Dialer.Dial(ctx, r.UpstreamEndpoint)
		if err != nil {
			r.Log.Warn(ctx, "reconnect dial failed, will retry next cycle", "error", err)
		} else {
			r.Upstream = dealer
		}
	}

	r.ReconnectInterval = nextBackoff(r.ReconnectInterval, r.Timing.ReconnectMax)
	r.NextReconnectAttempt = time.Now().Add(r.ReconnectInterval)
	r.Liveness = r.Timing.Liveness
}

// nextBackoff implements Iₙ₊₁ = min(2·Iₙ, Iₘₐₓ).
func nextBackoff(current, max time.Duration) time.Duration {
	doubled := current * 2
	if doubled > max {
		return max
	}
	return doubled
}
