// Package backup copies every workpad of one store into another, once or on a cron schedule.
package backup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/workpad/internal/logging"
	"github.com/aretw0/workpad/pkg/domain"
	"github.com/aretw0/workpad/pkg/ports"
	"github.com/robfig/cron/v3"
)

// Snapshot copies every workpad listed by src into dst and returns how many
// were copied. Workpads deleted between List and Load are skipped.
func Snapshot(ctx context.Context, src, dst ports.WorkpadStore) (int, error) {
	ids, err := src.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list source: %w", err)
	}

	copied := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return copied, err
		}
		wp, err := src.Load(ctx, id)
		if errors.Is(err, domain.ErrWorkpadNotFound) {
			continue
		}
		if err != nil {
			return copied, fmt.Errorf("load %s: %w", id, err)
		}
		if err := dst.Save(ctx, wp); err != nil {
			return copied, fmt.Errorf("save %s: %w", id, err)
		}
		copied++
	}
	return copied, nil
}

// Scheduler runs Snapshot on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	src    ports.WorkpadStore
	dst    ports.WorkpadStore
	logger *slog.Logger
}

// NewScheduler validates spec (standard five-field cron or a descriptor such
// as "@hourly") and prepares a scheduler. Call Start to begin.
func NewScheduler(spec string, src, dst ports.WorkpadStore, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Scheduler{cron: cron.New(), src: src, dst: dst, logger: logger}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("invalid backup schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	start := time.Now()
	n, err := Snapshot(ctx, s.src, s.dst)
	if err != nil {
		s.logger.Error("Backup failed", "copied", n, "err", err)
		return
	}
	s.logger.Info("Backup completed", "copied", n, "duration", time.Since(start))
}

// Start runs the schedule in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running backup to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}
