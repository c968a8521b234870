package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/workpad/pkg/domain"
	"github.com/aretw0/workpad/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result labels of workpad_store_operations_total.
const (
	resultOK       = "ok"
	resultNotFound = "not_found"
	resultError    = "error"
)

type storeMetrics struct {
	ops      *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

type metricsMiddleware struct {
	next    ports.WorkpadStore
	metrics *storeMetrics
}

// NewMetricsMiddleware records operation counts and latencies of the wrapped
// store on reg, labelled by backend name.
func NewMetricsMiddleware(reg prometheus.Registerer, backend string) Middleware {
	factory := promauto.With(reg)
	m := &storeMetrics{
		ops: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "workpad_store_operations_total",
			Help:        "Workpad store operations by operation and result.",
			ConstLabels: prometheus.Labels{"backend": backend},
		}, []string{"op", "result"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "workpad_store_operation_duration_seconds",
			Help:        "Latency of workpad store operations.",
			ConstLabels: prometheus.Labels{"backend": backend},
			Buckets:     prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"op"}),
	}

	return func(next ports.WorkpadStore) ports.WorkpadStore {
		return &metricsMiddleware{next: next, metrics: m}
	}
}

func (m *metricsMiddleware) observe(op string, start time.Time, err error) {
	m.metrics.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	result := resultOK
	switch {
	case errors.Is(err, domain.ErrWorkpadNotFound):
		result = resultNotFound
	case err != nil:
		result = resultError
	}
	m.metrics.ops.WithLabelValues(op, result).Inc()
}

func (m *metricsMiddleware) Save(ctx context.Context, wp *domain.Workpad) (err error) {
	defer func(start time.Time) { m.observe("save", start, err) }(time.Now())
	return m.next.Save(ctx, wp)
}

func (m *metricsMiddleware) Load(ctx context.Context, id string) (wp *domain.Workpad, err error) {
	defer func(start time.Time) { m.observe("load", start, err) }(time.Now())
	return m.next.Load(ctx, id)
}

func (m *metricsMiddleware) Delete(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { m.observe("delete", start, err) }(time.Now())
	return m.next.Delete(ctx, id)
}

func (m *metricsMiddleware) List(ctx context.Context) (ids []string, err error) {
	defer func(start time.Time) { m.observe("list", start, err) }(time.Now())
	return m.next.List(ctx)
}
