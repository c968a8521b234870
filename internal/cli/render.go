package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/workpad/internal/presentation/tui"
	"github.com/aretw0/workpad/pkg/domain"
)

// Render converts markdown into terminal output.
type Render func(markdown string) (string, error)

// PrintMarkdown renders markdown to w, falling back to the raw text.
func PrintMarkdown(w io.Writer, render Render, markdown string) {
	out, err := render(markdown)
	if err != nil {
		out = markdown
	}
	fmt.Fprint(w, out)
}

// PrintWorkpad writes the outline of wp.
func PrintWorkpad(w io.Writer, render Render, wp *domain.Workpad, updated time.Time) {
	PrintMarkdown(w, render, tui.WorkpadMarkdown(wp, updated))
}

// WatchWorkpad prints the workpad and prints it again every time the watcher
// reports a change to it, until ctx is cancelled.
func WatchWorkpad(ctx context.Context, w io.Writer, render Render, watcher Watcher, id string,
	load func(ctx context.Context, id string) (*domain.Workpad, error), logger *slog.Logger) error {
	events, err := watcher.Watch(ctx)
	if err != nil {
		return err
	}

	show := func() {
		wp, err := load(ctx, id)
		if err != nil {
			logger.Warn("Reload failed", "workpad_id", id, "err", err)
			return
		}
		PrintWorkpad(w, render, wp, time.Time{})
	}
	show()

	for {
		select {
		case <-ctx.Done():
			return nil
		case changed, ok := <-events:
			if !ok {
				return nil
			}
			if changed != id {
				continue
			}
			logger.Info("Change detected", "workpad_id", id)
			show()
		}
	}
}
