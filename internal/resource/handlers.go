package resource

import (
	"context"
	"time"

	"github.com/maccradar/picknpack/internal/lifecycle"
	"github.com/maccradar/picknpack/internal/registry"
	"github.com/maccradar/picknpack/internal/wire"
)

// StateFn is a single lifecycle state handler, per §4.D. A return value < 0
// signals handler abort and triggers the pausing→finalizing→deleting
// unwind (§4.F, §7); 0 is success.
type StateFn func(ctx context.Context, r *Resource, payload lifecycle.Payload) int

// HandlerTable maps each lifecycle state to its handler, shared by every
// Actor regardless of role.
var HandlerTable = map[lifecycle.State]StateFn{
	lifecycle.Creating:     handleCreating,
	lifecycle.Initializing: handleInitializing,
	lifecycle.Configuring:  handleConfiguring,
	lifecycle.Running:      handleRunning,
	lifecycle.Pausing:      handlePausing,
	lifecycle.Finalizing:   handleFinalizing,
	lifecycle.Deleting:     handleDeleting,
}

// handleCreating implements §4.D's creating contract: open the upstream
// dealer (if the role has one), leave downstream unset unless the role
// supplies an endpoint, and initialize an empty peer registry. Per §4.C,
// payload[0] and payload[1] (self-control-channel, symbolic-name) are
// accepted but the Resource already carries both from construction; they
// are consulted here only to let a caller override the name at bootstrap
// time, matching the spec's payload-carries-bootstrap-arguments framing
// without re-deriving state the Go constructor already owns. Returns -1
// if dialing the upstream endpoint or binding the downstream or external
// endpoint fails, 0 otherwise.
func handleCreating(ctx context.Context, r *Resource, payload lifecycle.Payload) int {
	if name, ok := payload.At(1); ok {
		if s, ok := name.(string); ok && s != "" {
			r.SymbolicName = s
		}
	}
	r.Registry = registry.New()
	r.CurrentState = lifecycle.Creating

	if r.UpstreamEndpoint != "" && r.Dialer != nil {
		dealer, err := r.Dialer.Dial(ctx, r.UpstreamEndpoint)
		if err != nil {
			r.Log.Error(ctx, "creating: dial upstream failed", "endpoint", r.UpstreamEndpoint, "error", err)
			return -1
		}
		r.Upstream = dealer
	}
	if r.DownstreamEndpoint != "" && r.Binder != nil {
		router, err := r.Binder.Bind(ctx, r.DownstreamEndpoint)
		if err != nil {
			r.Log.Error(ctx, "creating: bind downstream failed", "endpoint", r.DownstreamEndpoint, "error", err)
			return -1
		}
		r.Downstream = router
	}
	if r.ExternalEndpoint != "" && r.Binder != nil {
		router, err := r.Binder.Bind(ctx, r.ExternalEndpoint)
		if err != nil {
			r.Log.Error(ctx, "creating: bind external failed", "endpoint", r.ExternalEndpoint, "error", err)
			return -1
		}
		r.External = router
	}

	r.Log.Info(ctx, "resource created", "name", r.SymbolicName, "symbolic_id", r.SymbolicID.String())
	r.Metrics.IncCounter("picknpack.lifecycle.created", 1, "node", r.SymbolicName)
	return 0
}

// handleInitializing implements §4.D: signal readiness on the self-control
// channel and emit the two-frame upstream announcement. Always succeeds.
func handleInitializing(ctx context.Context, r *Resource, _ lifecycle.Payload) int {
	r.CurrentState = lifecycle.Initializing
	r.markReady()

	if r.Upstream != nil {
		msg := wire.UpstreamAnnounce(r.SymbolicID)
		if err := r.Upstream.Send(ctx, msg); err != nil {
			r.Log.Warn(ctx, "initializing: upstream announce failed", "error", err)
		}
	}
	r.Log.Info(ctx, "resource initialized", "name", r.SymbolicName)
	return 0
}

// handleConfiguring implements §4.D: reset liveness, reconnect interval,
// and the next heartbeat deadline. Always succeeds.
func handleConfiguring(ctx context.Context, r *Resource, _ lifecycle.Payload) int {
	r.CurrentState = lifecycle.Configuring
	r.Liveness = r.Timing.Liveness
	r.ReconnectInterval = r.Timing.ReconnectInitial
	r.NextHeartbeatDue = time.Now().Add(r.Timing.HeartbeatInterval)
	r.Log.Info(ctx, "resource configured", "name", r.SymbolicName, "required_peers", len(r.RequiredPeers))
	return 0
}

// handleRunning implements §4.D's running contract: one poll-and-service
// iteration, re-entered by the actor's inner loop (§4.F). The concrete
// polling strategy differs for router roles (Plant/Line/Module, which own
// a Downstream and/or External router) versus the leaf Device role (which
// owns only an Upstream dealer) — see router.go and leaf.go.
func handleRunning(ctx context.Context, r *Resource, _ lifecycle.Payload) int {
	r.CurrentState = lifecycle.Running
	if r.Downstream != nil || r.External != nil {
		return runRouterOnce(ctx, r)
	}
	return runLeafOnce(ctx, r)
}

// handlePausing implements §4.D: idempotent, logs, always succeeds.
func handlePausing(ctx context.Context, r *Resource, _ lifecycle.Payload) int {
	r.CurrentState = lifecycle.Pausing
	r.Log.Info(ctx, "resource pausing", "name", r.SymbolicName)
	return 0
}

// handleFinalizing implements §4.D: drain and destroy the peer registry,
// destroy both transports. Always succeeds.
func handleFinalizing(ctx context.Context, r *Resource, _ lifecycle.Payload) int {
	r.CurrentState = lifecycle.Finalizing
	if r.Registry != nil {
		removed := r.Registry.Purge(farFuture())
		if len(removed) > 0 {
			r.Log.Info(ctx, "finalizing: drained peer registry", "count", len(removed))
		}
	}
	if r.Upstream != nil {
		if err := r.Upstream.Close(); err != nil {
			r.Log.Warn(ctx, "finalizing: close upstream failed", "error", err)
		}
	}
	if r.Downstream != nil {
		if err := r.Downstream.Close(); err != nil {
			r.Log.Warn(ctx, "finalizing: close downstream failed", "error", err)
		}
	}
	if r.External != nil {
		if err := r.External.Close(); err != nil {
			r.Log.Warn(ctx, "finalizing: close external failed", "error", err)
		}
	}
	r.Log.Info(ctx, "resource finalized", "name", r.SymbolicName)
	return 0
}

// handleDeleting implements §4.D: null out transport handles (ownership
// already released by finalizing). Always succeeds.
func handleDeleting(ctx context.Context, r *Resource, _ lifecycle.Payload) int {
	r.CurrentState = lifecycle.Deleting
	r.Upstream = nil
	r.Downstream = nil
	r.External = nil
	r.Log.Info(ctx, "resource deleted", "name", r.SymbolicName)
	return 0
}

// farFuture is used by finalizing to purge every peer unconditionally,
// regardless of individual expiry.
func farFuture() time.Time {
	return time.Now().Add(24 * 365 * time.Hour)
}
