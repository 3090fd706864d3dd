package resource

import "github.com/maccradar/picknpack/internal/lifecycle"

// ControlKind distinguishes the two messages a resource's owning task can
// deliver on its self-pipe: a request to stop, or a new signal to
// re-expand into the run-list mid-dispatch.
type ControlKind int

const (
	ControlInjectSignal ControlKind = iota
	ControlStop
)

// ControlMessage is what flows over a Resource's control channel. The
// shape mirrors the teacher's interrupt.Controller pause/resume requests
// (runtime/agent/interrupt/controller.go), narrowed from Temporal signal
// channels to a plain buffered Go channel since this actor is not a
// workflow.
type ControlMessage struct {
	Kind   ControlKind
	Signal lifecycle.Signal
}

// Controller owns a resource's control channel: the dispatcher drains it
// between run-list steps (§4.F), and external callers (a CLI signal
// handler, a test) push onto it.
type Controller struct {
	ch chan ControlMessage
}

// NewController builds a Controller with reasonable buffering so a caller
// is never blocked delivering a stop or signal injection.
func NewController() *Controller {
	return &Controller{ch: make(chan ControlMessage, 8)}
}

// Send enqueues a control message, blocking only if the buffer is full
// (pathological: nobody is draining). Blocking rather than dropping is
// deliberate — losing a stop request silently would be worse.
func (c *Controller) Send(msg ControlMessage) {
	if c == nil {
		return
	}
	c.ch <- msg
}

// PollSignal attempts to dequeue the next control message without
// blocking, mirroring interrupt.Controller.PollPause's non-blocking drain.
func (c *Controller) PollSignal() (ControlMessage, bool) {
	if c == nil {
		return ControlMessage{}, false
	}
	select {
	case msg := <-c.ch:
		return msg, true
	default:
		return ControlMessage{}, false
	}
}
