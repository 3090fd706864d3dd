package resource

import (
	"context"

	"github.com/maccradar/picknpack/internal/wire"
)

// runLeafOnce implements the running contract for the Device role, the
// one leaf in the tree (§6: Device has an upstream dealer and no
// downstream). It polls only its upstream socket; a forwarded request has
// nowhere further to go, so the device acts on it in place and echoes a
// reply upstream — this is where a real implementation would drive the
// physical actuator.
func runLeafOnce(ctx context.Context, r *Resource) int {
	frames, ok, err := r.Upstream.Recv(ctx, r.Timing.HeartbeatInterval)
	if err != nil {
		r.Log.Warn(ctx, "leaf upstream recv failed", "error", err)
		return onLeafIdle(ctx, r)
	}
	if !ok {
		return onLeafIdle(ctx, r)
	}

	r.Liveness = r.Timing.Liveness
	msg := wire.Message(frames)
	if wire.ClassifyUpstream(msg) == wire.UpstreamRequest {
		if err := r.Upstream.Send(ctx, frames); err != nil {
			r.Log.Warn(ctx, "leaf reply send failed", "error", err)
		}
	}
	maybeEmitHeartbeats(ctx, r)
	return 0
}

func onLeafIdle(ctx context.Context, r *Resource) int {
	r.Liveness--
	if r.Liveness <= 0 {
		reconnectUpstream(ctx, r)
	}
	maybeEmitHeartbeats(ctx, r)
	return 0
}
