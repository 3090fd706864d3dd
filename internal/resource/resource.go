// Package resource implements the Resource Lifecycle Engine's node-level
// half: the Resource struct (§3's "Resource (node state)"), the seven
// state handler functions (§4.D), and the single-goroutine Actor dispatcher
// that drives a resource through its run-list (§4.F).
package resource

import (
	"sync"
	"time"

	"github.com/maccradar/picknpack/internal/config"
	"github.com/maccradar/picknpack/internal/lifecycle"
	"github.com/maccradar/picknpack/internal/registry"
	"github.com/maccradar/picknpack/internal/telemetry"
	"github.com/maccradar/picknpack/internal/transport"
	"github.com/maccradar/picknpack/internal/wire"
)

// Resource is the node state owned exclusively by the actor task that
// created it (§3). Every field here is mutated only from the dispatcher
// goroutine; nothing else may touch it, matching §5's "Shared resources"
// rule.
type Resource struct {
	SymbolicName string
	SymbolicID   wire.SymbolicID

	UpstreamEndpoint   string
	DownstreamEndpoint string
	ExternalEndpoint   string

	Upstream   transport.Dealer
	Downstream transport.Router
	// External is the second router socket Plant alone binds, accepting
	// the demo client on port 9000 (§6) rather than subordinate nodes.
	External transport.Router

	Dialer transport.Dialer
	Binder transport.Binder

	Control *Controller

	Liveness          int
	ReconnectInterval time.Duration
	// NextReconnectAttempt gates reconnectUpstream's actual redial: once set,
	// a liveness-exhausted node waits out ReconnectInterval before dialing
	// again, rather than redialing on every liveness-exhausted idle cycle.
	NextReconnectAttempt time.Time
	NextHeartbeatDue     time.Time

	Registry      *registry.Registry
	RequiredPeers []wire.SymbolicID

	// pendingExternalClient tracks, for Plant only, the identity of the
	// external client whose request is currently in flight to a Line, so
	// the eventual reply can be routed back out the external router
	// (§6's S5 scenario). This models a single in-flight request; a
	// production gateway would key this by correlation ID instead.
	pendingExternalClient     transport.Identity
	havePendingExternalClient bool

	CurrentState lifecycle.State
	LastSignal   lifecycle.Signal

	Timing config.Timing

	Log     telemetry.Logger
	Metrics telemetry.Metrics
	Tracer  telemetry.Tracer

	readyOnce sync.Once
	readyCh   chan struct{}
}

// Ready returns a channel that closes once this resource's initializing
// handler has run, mirroring the self-pipe readiness signal the original
// actor framework's caller blocks on before considering the node started.
func (r *Resource) Ready() <-chan struct{} {
	return r.readyCh
}

// markReady closes the readiness channel exactly once. Safe to call from
// the initializing handler every time it runs (reconfigure paths re-enter
// initializing without issue).
func (r *Resource) markReady() {
	r.readyOnce.Do(func() { close(r.readyCh) })
}

// New constructs a Resource bound to the given role configuration, ready
// to be handed to an Actor. It does not open any transport — that happens
// in the creating handler (§4.D), which aborts the lifecycle if a dial or
// bind fails.
func New(name string, role config.RoleConfig, timing config.Timing, dialer transport.Dialer, binder transport.Binder, log telemetry.Logger, metrics telemetry.Metrics, tracer telemetry.Tracer) *Resource {
	if log == nil {
		log = telemetry.NewNoopLogger()
	}
	if metrics == nil {
		metrics = telemetry.NewNoopMetrics()
	}
	if tracer == nil {
		tracer = telemetry.NewNoopTracer()
	}
	return &Resource{
		SymbolicName:       name,
		SymbolicID:         role.SymbolicID,
		UpstreamEndpoint:   role.UpstreamEndpoint,
		DownstreamEndpoint: role.DownstreamEndpoint,
		ExternalEndpoint:   role.ExternalEndpoint,
		RequiredPeers:      role.RequiredPeers,
		Dialer:             dialer,
		Binder:             binder,
		Control:            NewController(),
		Timing:             timing,
		Log:                log,
		Metrics:            metrics,
		Tracer:             tracer,
		CurrentState:       lifecycle.NoState,
		readyCh:            make(chan struct{}),
	}
}
