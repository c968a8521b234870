package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/workpad/pkg/codec"
	"github.com/aretw0/workpad/pkg/domain"
	"github.com/aretw0/workpad/pkg/session"
)

// ApplyScript decodes the command script at path (YAML or JSON by extension)
// and applies it to the workpad as one batch.
func ApplyScript(ctx context.Context, mgr *session.Manager, id, path string) (*domain.Workpad, *domain.WorkpadDiff, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read script: %w", err)
	}
	cmds, err := codec.DecodeScriptCommands(data, codec.FormatFromPath(path))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return mgr.Apply(ctx, id, cmds...)
}
