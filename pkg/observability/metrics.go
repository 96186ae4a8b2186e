package observability

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/pagecraft/pkg/domain"
	"github.com/aretw0/pagecraft/pkg/persistence/middleware"
	"github.com/aretw0/pagecraft/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors. Create one per registry.
type Metrics struct {
	Mutations   *prometheus.CounterVec
	Diagnostics *prometheus.CounterVec
	TreeSize    prometheus.Histogram
	StoreOps    *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg skips registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pagecraft_mutations_total",
				Help: "Committed tree mutations by event type.",
			},
			[]string{"type"},
		),
		Diagnostics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pagecraft_diagnostics_total",
				Help: "Skipped or repaired operations by kind and operation.",
			},
			[]string{"kind", "op"},
		),
		TreeSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pagecraft_tree_nodes",
				Help:    "Node count of a tree after each mutation.",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
		StoreOps: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pagecraft_store_operation_duration_seconds",
				Help:    "Document store call latency by operation and outcome.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op", "outcome"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Mutations, m.Diagnostics, m.TreeSize, m.StoreOps)
	}
	return m
}

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnMutation: func(e *domain.MutationEvent) {
			m.Mutations.WithLabelValues(string(e.Type)).Inc()
			m.TreeSize.Observe(float64(e.Size))
		},
		OnDiagnostic: func(d *domain.Diagnostic) {
			m.Diagnostics.WithLabelValues(string(d.Kind), d.Op).Inc()
		},
	}
}

// StoreMiddleware times every call to the wrapped store.
func (m *Metrics) StoreMiddleware() middleware.Middleware {
	return func(next ports.DocumentStore) ports.DocumentStore {
		return &instrumentedStore{next: next, ops: m.StoreOps}
	}
}

type instrumentedStore struct {
	next ports.DocumentStore
	ops  *prometheus.HistogramVec
}

func (s *instrumentedStore) observe(op string, start time.Time, err error) {
	outcome := "ok"
	switch {
	case errors.Is(err, ports.ErrDocumentNotFound):
		outcome = "not_found"
	case err != nil:
		outcome = "error"
	}
	s.ops.WithLabelValues(op, outcome).Observe(time.Since(start).Seconds())
}

func (s *instrumentedStore) Save(ctx context.Context, docID string, data []byte) (err error) {
	start := time.Now()
	defer func() { s.observe("save", start, err) }()
	return s.next.Save(ctx, docID, data)
}

func (s *instrumentedStore) Load(ctx context.Context, docID string) (data []byte, err error) {
	start := time.Now()
	defer func() { s.observe("load", start, err) }()
	return s.next.Load(ctx, docID)
}

func (s *instrumentedStore) Delete(ctx context.Context, docID string) (err error) {
	start := time.Now()
	defer func() { s.observe("delete", start, err) }()
	return s.next.Delete(ctx, docID)
}

func (s *instrumentedStore) List(ctx context.Context) (ids []string, err error) {
	start := time.Now()
	defer func() { s.observe("list", start, err) }()
	return s.next.List(ctx)
}
