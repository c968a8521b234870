package ports

import (
	"context"

	"github.com/aretw0/workpad/pkg/domain"
)

// Applier defines the state transition used by adapters (session manager, HTTP, MCP).
// Implementations must be pure: the input snapshot is never mutated and a
// no-op returns the same pointer.
type Applier interface {
	// Apply runs a single command.
	Apply(ctx context.Context, wp *domain.Workpad, cmd domain.Command) (*domain.Workpad, error)

	// ApplyAll folds commands in order, stopping at the first error.
	// The last good snapshot is returned alongside the error.
	ApplyAll(ctx context.Context, wp *domain.Workpad, cmds ...domain.Command) (*domain.Workpad, error)
}
