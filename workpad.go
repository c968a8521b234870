package workpad

import (
	"context"
	"io"
	"log/slog"

	"github.com/aretw0/workpad/internal/runtime"
	"github.com/aretw0/workpad/pkg/codec"
	"github.com/aretw0/workpad/pkg/domain"
)

// Engine is the high-level entry point for the workpad library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Engine struct {
	runtime *runtime.Engine
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
// Calling it more than once chains the hooks in registration order.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New initializes a new Engine.
func New(opts ...Option) *Engine {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	// Ensure logger is initialized (so we don't pass nil to runtime)
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	eng.runtime = runtime.NewEngine(
		runtime.WithLogger(eng.logger),
		runtime.WithLifecycleHooks(eng.hooks),
	)
	return eng
}

// Apply returns the workpad produced by applying cmd to wp.
// wp is never modified; no-op commands return wp itself.
func (e *Engine) Apply(ctx context.Context, wp *domain.Workpad, cmd domain.Command) (*domain.Workpad, error) {
	return e.runtime.Apply(ctx, wp, cmd)
}

// ApplyAll applies cmds in order, stopping at the first error.
// On error it returns the last snapshot that was produced successfully.
func (e *Engine) ApplyAll(ctx context.Context, wp *domain.Workpad, cmds ...domain.Command) (*domain.Workpad, error) {
	return e.runtime.ApplyAll(ctx, wp, cmds...)
}

// Decode converts a wire envelope into a typed command.
func (e *Engine) Decode(env codec.Envelope) (domain.Command, error) {
	return codec.DecodeCommand(env)
}

// ApplyEnvelope decodes env and applies it to wp.
func (e *Engine) ApplyEnvelope(ctx context.Context, wp *domain.Workpad, env codec.Envelope) (*domain.Workpad, error) {
	cmd, err := e.Decode(env)
	if err != nil {
		return wp, err
	}
	return e.Apply(ctx, wp, cmd)
}
