package domain

import (
	"context"
	"time"
)

// CommandEvent describes one command application.
type CommandEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	WorkpadID string        `json:"workpad_id"`
	Kind      CommandKind   `json:"kind"`
	Noop      bool          `json:"noop,omitempty"` // The command left the workpad unchanged.
	Duration  time.Duration `json:"duration"`
	Err       error         `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnCommandApplied func(context.Context, *CommandEvent)
	OnCommandFailed  func(context.Context, *CommandEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnCommandApplied: chain(h.OnCommandApplied, other.OnCommandApplied),
		OnCommandFailed:  chain(h.OnCommandFailed, other.OnCommandFailed),
	}
}

func chain(a, b func(context.Context, *CommandEvent)) func(context.Context, *CommandEvent) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *CommandEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
