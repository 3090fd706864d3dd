package resource

import (
	"context"
	"time"

	"github.com/maccradar/picknpack/internal/registry"
	"github.com/maccradar/picknpack/internal/transport"
	"github.com/maccradar/picknpack/internal/wire"
)

// pollResult is whichever single source answered first out of a node's
// upstream dealer, downstream router, and (Plant only) external router,
// mirroring a single zmq_poll-style wakeup across several sockets.
type pollResult struct {
	source string // "upstream", "downstream", "external"
	id     transport.Identity
	frames [][]byte
}

// pollSources fans the available sockets' Recv calls out into goroutines
// and returns whichever produces a message first, or ok=false if none
// does within timeout — the Go equivalent of polling several sockets with
// one shared timeout, since transport.Dealer/Router each only expose a
// single blocking Recv.
func pollSources(ctx context.Context, r *Resource, timeout time.Duration) (pollResult, bool) {
	pollCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		pollResult
		ok bool
	}
	resultCh := make(chan result, 3)
	active := 0

	if r.Upstream != nil {
		active++
		go func() {
			frames, ok, err := r.Upstream.Recv(pollCtx, timeout)
			if err != nil || !ok {
				resultCh <- result{}
				return
			}
			resultCh <- result{pollResult: pollResult{source: "upstream", frames: frames}, ok: true}
		}()
	}
	if r.Downstream != nil {
		active++
		go func() {
			id, frames, ok, err := r.Downstream.Recv(pollCtx, timeout)
			if err != nil || !ok {
				resultCh <- result{}
				return
			}
			resultCh <- result{pollResult: pollResult{source: "downstream", id: id, frames: frames}, ok: true}
		}()
	}
	if r.External != nil {
		active++
		go func() {
			id, frames, ok, err := r.External.Recv(pollCtx, timeout)
			if err != nil || !ok {
				resultCh <- result{}
				return
			}
			resultCh <- result{pollResult: pollResult{source: "external", id: id, frames: frames}, ok: true}
		}()
	}

	for i := 0; i < active; i++ {
		res := <-resultCh
		if res.ok {
			return res.pollResult, true
		}
	}
	return pollResult{}, false
}

// runRouterOnce implements the router half of §4.D's running contract for
// Plant, Line, and Module: poll both sockets with the heartbeat interval
// as timeout, classify and react to whichever activity arrives, then — at
// the heartbeat deadline — emit heartbeats and purge expired peers.
func runRouterOnce(ctx context.Context, r *Resource) int {
	timeout := r.Timing.HeartbeatInterval
	res, ok := pollSources(ctx, r, timeout)
	if !ok {
		return onRouterIdle(ctx, r)
	}

	switch res.source {
	case "upstream":
		handleUpstreamActivity(ctx, r, res.frames, nil)
	case "external":
		handleUpstreamActivity(ctx, r, res.frames, &res.id)
	case "downstream":
		handleDownstreamActivity(ctx, r, res.id, res.frames)
	}

	r.Liveness = r.Timing.Liveness
	if maybeEmitHeartbeats(ctx, r) {
		return 0
	}
	return 0
}

// handleUpstreamActivity implements §4.D's "on upstream activity" bullet.
// For Plant, externalID is the requesting client's identity observed on
// the external router (Plant has no upstream dealer); for Line/Module it
// is nil, since the message truly arrived on a Dealer with no identity
// framing.
func handleUpstreamActivity(ctx context.Context, r *Resource, frames [][]byte, externalID *transport.Identity) {
	msg := wire.Message(frames)
	if wire.ClassifyUpstream(msg) != wire.UpstreamRequest {
		return // 1-frame heartbeat/ready tag from the parent; nothing to do
	}
	peer, ok := r.Registry.Next()
	if !ok {
		r.Log.Warn(ctx, "no downstream peer available to forward request", "node", r.SymbolicName)
		return
	}
	if err := r.Downstream.SendTo(ctx, peer.Identity, frames); err != nil {
		r.Log.Warn(ctx, "forward request downstream failed", "peer", peer.Identity, "error", err)
		return
	}
	if externalID != nil {
		r.pendingExternalClient = *externalID
		r.havePendingExternalClient = true
	}
}

// handleDownstreamActivity implements §4.D's "on downstream activity"
// bullet: refresh the peer's registry position, then classify by frame
// count.
func handleDownstreamActivity(ctx context.Context, r *Resource, id transport.Identity, frames [][]byte) {
	msg := wire.Message(frames)
	switch wire.ClassifyDownstream(msg) {
	case wire.DownstreamStatus:
		symbolicID, ok := wire.ParseSymbolicID(msg)
		if !ok {
			r.Log.Warn(ctx, "malformed downstream status frame", "identity", id)
			return
		}
		r.Registry.AdmitPeer(peerFor(r, id, symbolicID))
		if wire.IsReadyStatus(msg) {
			r.Log.Info(ctx, "peer ready", "identity", id, "symbolic_id", symbolicID.String())
		}
	case wire.DownstreamPeerHeartbeat:
		symbolicID, _ := wire.ParseSymbolicID(msg)
		r.Registry.AdmitPeer(peerFor(r, id, symbolicID))
		stateTag, _ := wire.ParseStateTag(msg)
		signalTag, _ := wire.ParseSignalTag(msg)
		r.Log.Debug(ctx, "peer heartbeat", "identity", id, "state_tag", stateTag, "signal_tag", signalTag)
	default:
		forwardReplyUpstream(ctx, r, frames)
	}
}

// forwardReplyUpstream sends reply content back towards the parent — via
// the upstream dealer for Line/Module, or back out the external router to
// the pending client for Plant (§6's S5 scenario).
func forwardReplyUpstream(ctx context.Context, r *Resource, frames [][]byte) {
	if r.Upstream != nil {
		if err := r.Upstream.Send(ctx, frames); err != nil {
			r.Log.Warn(ctx, "forward reply upstream failed", "error", err)
		}
		return
	}
	if r.External != nil && r.havePendingExternalClient {
		if err := r.External.SendTo(ctx, r.pendingExternalClient, frames); err != nil {
			r.Log.Warn(ctx, "forward reply to external client failed", "error", err)
		}
		r.havePendingExternalClient = false
	}
}

func peerFor(r *Resource, id transport.Identity, symbolicID wire.SymbolicID) registry.Peer {
	return registry.Peer{
		Identity:   id,
		SymbolicID: symbolicID,
		Expiry:     time.Now().Add(time.Duration(r.Timing.Liveness) * r.Timing.HeartbeatInterval),
	}
}

// onRouterIdle implements the no-upstream-activity branch of §4.D: if the
// liveness counter decrements to zero, reconnect with backoff; otherwise
// just check whether a heartbeat is due.
func onRouterIdle(ctx context.Context, r *Resource) int {
	if r.Upstream != nil {
		r.Liveness--
		if r.Liveness <= 0 {
			reconnectUpstream(ctx, r)
		}
	}
	maybeEmitHeartbeats(ctx, r)
	return 0
}

// maybeEmitHeartbeats implements §4.D's periodic bullet: once per
// heartbeat interval, emit a heartbeat to every registered downstream peer
// and a status heartbeat upstream, then purge expired peers.
func maybeEmitHeartbeats(ctx context.Context, r *Resource) bool {
	now := time.Now()
	if now.Before(r.NextHeartbeatDue) {
		return false
	}
	r.NextHeartbeatDue = now.Add(r.Timing.HeartbeatInterval)

	if r.Downstream != nil {
		hb := wire.DownstreamHeartbeat()
		for _, p := range r.Registry.Peers() {
			if err := r.Downstream.SendTo(ctx, p.Identity, hb); err != nil {
				r.Log.Debug(ctx, "downstream heartbeat send failed", "peer", p.Identity, "error", err)
			}
		}
	}
	if r.Upstream != nil {
		hb, err := wire.UpstreamHeartbeat(r.SymbolicID, r.CurrentState, r.LastSignal)
		if err == nil {
			if err := r.Upstream.Send(ctx, hb); err != nil {
				r.Log.Debug(ctx, "upstream heartbeat send failed", "error", err)
			}
		}
	}
	removed := r.Registry.Purge(now)
	for _, p := range removed {
		r.Log.Info(ctx, "removing expired backend resource", "symbolic_id", p.SymbolicID.String(), "identity", p.Identity)
	}
	r.Metrics.RecordGauge("picknpack.registry.size", float64(r.Registry.Len()), "node", r.SymbolicName)
	return true
}
