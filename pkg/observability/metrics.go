package observability

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/aretw0/workpad/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by engine lifecycle hooks.
type Metrics struct {
	commands *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workpad_commands_total",
				Help: "Commands applied, by kind and whether they changed the workpad.",
			},
			[]string{"kind", "noop"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workpad_command_failures_total",
				Help: "Commands rejected by the engine, by kind.",
			},
			[]string{"kind"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "workpad_command_duration_seconds",
				Help:    "Duration of command application.",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
			},
			[]string{"kind"},
		),
	}

	for _, c := range []prometheus.Collector{m.commands, m.failures, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record every command event.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCommandApplied: func(_ context.Context, e *domain.CommandEvent) {
			kind := string(e.Kind)
			m.commands.WithLabelValues(kind, strconv.FormatBool(e.Noop)).Inc()
			m.duration.WithLabelValues(kind).Observe(e.Duration.Seconds())
		},
		OnCommandFailed: func(_ context.Context, e *domain.CommandEvent) {
			m.failures.WithLabelValues(string(e.Kind)).Inc()
		},
	}
}

// AuditHooks logs every applied command at info level and every rejection at warn.
func AuditHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCommandApplied: func(ctx context.Context, e *domain.CommandEvent) {
			logger.InfoContext(ctx, "command applied",
				"workpad_id", e.WorkpadID,
				"kind", e.Kind,
				"noop", e.Noop,
				"duration", e.Duration,
			)
		},
		OnCommandFailed: func(ctx context.Context, e *domain.CommandEvent) {
			logger.WarnContext(ctx, "command rejected",
				"workpad_id", e.WorkpadID,
				"kind", e.Kind,
				"err", e.Err,
			)
		},
	}
}
