package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/workpad/internal/logging"
	"github.com/aretw0/workpad/pkg/domain"
)

// Engine applies edit commands to workpad snapshots.
// It holds no document state; every call is a pure function of its inputs,
// wrapped with logging and lifecycle hooks.
type Engine struct {
	logger *slog.Logger
	hooks  domain.LifecycleHooks
	now    func() time.Time
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger. A nil logger keeps the no-op default.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// NewEngine creates a new engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply produces the workpad that results from applying cmd to wp.
// wp is never modified. On error the input snapshot is returned with it.
func (e *Engine) Apply(ctx context.Context, wp *domain.Workpad, cmd domain.Command) (*domain.Workpad, error) {
	start := e.now()
	next, err := Reduce(wp, cmd)

	event := &domain.CommandEvent{
		Timestamp: start,
		Kind:      kindOf(cmd),
		Duration:  e.now().Sub(start),
	}
	if wp != nil {
		event.WorkpadID = wp.ID
	}

	if err != nil {
		event.Err = err
		e.logger.Debug("command rejected",
			"workpad_id", event.WorkpadID,
			"kind", event.Kind,
			"err", err,
		)
		if e.hooks.OnCommandFailed != nil {
			e.hooks.OnCommandFailed(ctx, event)
		}
		return wp, err
	}

	event.Noop = next == wp
	e.logger.Debug("command applied",
		"workpad_id", event.WorkpadID,
		"kind", event.Kind,
		"noop", event.Noop,
	)
	if e.hooks.OnCommandApplied != nil {
		e.hooks.OnCommandApplied(ctx, event)
	}
	return next, nil
}

// ApplyAll folds cmds over wp in order. It stops at the first error and
// returns the last successfully produced snapshot alongside it.
func (e *Engine) ApplyAll(ctx context.Context, wp *domain.Workpad, cmds ...domain.Command) (*domain.Workpad, error) {
	current := wp
	for i, cmd := range cmds {
		next, err := e.Apply(ctx, current, cmd)
		if err != nil {
			return current, fmt.Errorf("command %d (%s): %w", i, kindOf(cmd), err)
		}
		current = next
	}
	return current, nil
}

// Reduce is the pure transition function behind Apply.
// Unresolvable page or node references are no-ops that return wp itself.
func Reduce(wp *domain.Workpad, cmd domain.Command) (*domain.Workpad, error) {
	switch c := cmd.(type) {
	case domain.SetExpression:
		return assignNodeProperties(wp, c.PageID, c.ElementID, domain.ExpressionPatch{Expression: c.Expression}), nil

	case domain.SetFilter:
		return assignNodeProperties(wp, c.PageID, c.ElementID, domain.FilterPatch{Filter: c.Filter}), nil

	case domain.SetMultiplePositions:
		current := wp
		for _, entry := range c.RepositionedElements {
			current = assignNodeProperties(current, entry.PageID, entry.ElementID, domain.PositionPatch{Position: entry.Position})
		}
		return current, nil

	case domain.ElementLayer:
		loc := wp.LocationOf(c.PageID, c.ElementID)
		return moveNodeLayer(wp, c.PageID, c.ElementID, c.Movement, loc)

	case domain.AddElement:
		return appendNode(wp, c.PageID, c.Element), nil

	case domain.DuplicateElement:
		return appendNode(wp, c.PageID, c.Element), nil

	case domain.RemoveElements:
		return removeNodes(wp, c.PageID, c.ElementIDs), nil
	}

	return wp, fmt.Errorf("%w: %T", domain.ErrUnknownCommand, cmd)
}

func kindOf(cmd domain.Command) domain.CommandKind {
	if cmd == nil {
		return ""
	}
	return cmd.Kind()
}
