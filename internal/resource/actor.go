package resource

import (
	"context"
	"fmt"

	"github.com/maccradar/picknpack/internal/lifecycle"
)

// Actor is the single cooperative task per node that owns a Resource and
// drives its dispatcher loop (§4.F).
type Actor struct {
	Resource *Resource
}

// NewActor binds an Actor to a Resource.
func NewActor(r *Resource) *Actor {
	return &Actor{Resource: r}
}

// Run drives the dispatcher: bootstrap into Creating, expand the boot
// signal into the initial run-list, then pop and execute transitions
// until the list is empty or the context is cancelled, consulting the
// control channel for new signals between steps. A handler returning
// status < 0 triggers the pausing→finalizing→deleting unwind exactly
// once each (§8 invariant #8) before Run returns. If the aborting handler
// is creating (a transport dial or bind failed at startup), Run returns an
// error after the unwind so the role binary exits non-zero; every other
// abort, and cancellation, returns nil.
func (a *Actor) Run(ctx context.Context, bootSignal lifecycle.Signal) error {
	r := a.Resource
	bootstrap := lifecycle.Transition{
		State: lifecycle.Creating,
		Payload: lifecycle.NewPayload(
			[]string{"self-control-channel", "symbolic-name"},
			[]any{r.Control, r.SymbolicName},
		),
	}
	runList, err := lifecycle.ExpandInto(bootstrap, bootSignal)
	if err != nil {
		return fmt.Errorf("resource: build initial run-list: %w", err)
	}

	for runList.Len() > 0 {
		select {
		case <-ctx.Done():
			return a.unwind(ctx)
		default:
		}

		t, err := runList.Pop()
		if err != nil {
			return fmt.Errorf("resource: dispatch: %w", err)
		}

		fn, ok := HandlerTable[t.State]
		if !ok {
			return fmt.Errorf("resource: no handler registered for state %s", t.State)
		}
		status := fn(ctx, r, t.Payload)
		if status < 0 {
			if err := a.unwind(ctx); err != nil {
				return err
			}
			if t.State == lifecycle.Creating {
				return fmt.Errorf("resource: %s: creating failed to open its transports", r.SymbolicName)
			}
			return nil
		}

		if msg, ok := r.Control.PollSignal(); ok {
			if err := a.react(runList, t.State, msg); err != nil {
				r.Log.Warn(ctx, "resource: control message rejected", "error", err)
			}
		}

		// running and pausing persist: once popped, if the run-list is now
		// empty and the resource is in one of those two states, keep
		// re-entering the same handler until an external signal arrives
		// and advances the state machine (§4.F: "the handler body is
		// wrapped in an inner loop so the state persists until
		// interrupted").
		if runList.Len() == 0 && (t.State == lifecycle.Running || t.State == lifecycle.Pausing) {
			if err := runList.Push(t); err != nil {
				return fmt.Errorf("resource: re-enter persistent state: %w", err)
			}
		}
	}
	return nil
}

// react applies a control-channel message to the in-flight run-list: a
// stop request re-expands as the stop signal; an injected signal
// re-expands from the resource's current state.
func (a *Actor) react(runList *lifecycle.RunList, current lifecycle.State, msg ControlMessage) error {
	signal := msg.Signal
	if msg.Kind == ControlStop {
		signal = lifecycle.Stop
	}
	a.Resource.LastSignal = signal
	// Expand returns transitions in execution order (first-to-run first);
	// push in reverse so the first one ends on top of the LIFO run-list,
	// mirroring lifecycle.ExpandInto.
	expansion := lifecycle.Expand(current, signal)
	for i := len(expansion) - 1; i >= 0; i-- {
		if err := runList.Push(expansion[i]); err != nil {
			return err
		}
	}
	return nil
}

// unwind implements §7's handler-abort propagation policy and §8's
// lifecycle-unwind invariant: exactly one call each to pausing,
// finalizing, deleting, in that order.
func (a *Actor) unwind(ctx context.Context) error {
	r := a.Resource
	for _, state := range []lifecycle.State{lifecycle.Pausing, lifecycle.Finalizing, lifecycle.Deleting} {
		fn := HandlerTable[state]
		_ = fn(ctx, r, lifecycle.EmptyPayload())
	}
	return nil
}
