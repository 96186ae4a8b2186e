package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/pagecraft/internal/logging"
	"github.com/aretw0/pagecraft/pkg/ports"
	"github.com/sony/gobreaker/v2"
)

// BreakerConfig tunes the circuit breaker around a store.
type BreakerConfig struct {
	Name string
	// MaxFailures is the number of consecutive failures that opens the circuit.
	MaxFailures int
	// Timeout is how long the circuit stays open before probing again.
	Timeout time.Duration
	// HalfOpenLimit caps the probe requests while half-open.
	HalfOpenLimit int
	Logger        *slog.Logger
}

type breakerMiddleware struct {
	next ports.DocumentStore
	cb   *gobreaker.CircuitBreaker[[]byte]
}

// NewBreakerMiddleware stops calling a failing backend once MaxFailures
// consecutive calls have failed. Not-found and invalid-id results count as success.
// Calls rejected by an open circuit return gobreaker.ErrOpenState.
func NewBreakerMiddleware(cfg BreakerConfig) Middleware {
	if cfg.Name == "" {
		cfg.Name = "document-store"
	}
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.HalfOpenLimit <= 0 {
		cfg.HalfOpenLimit = 1
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	return func(next ports.DocumentStore) ports.DocumentStore {
		cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name:        cfg.Name,
			MaxRequests: uint32(cfg.HalfOpenLimit),
			Timeout:     cfg.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return int(counts.ConsecutiveFailures) >= cfg.MaxFailures
			},
			IsSuccessful: func(err error) bool {
				return err == nil ||
					errors.Is(err, ports.ErrDocumentNotFound) ||
					errors.Is(err, ports.ErrInvalidDocumentID)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit breaker state change",
					slog.String("breaker", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()))
			},
		})
		return &breakerMiddleware{next: next, cb: cb}
	}
}

func (m *breakerMiddleware) Save(ctx context.Context, docID string, data []byte) error {
	_, err := m.cb.Execute(func() ([]byte, error) {
		return nil, m.next.Save(ctx, docID, data)
	})
	return err
}

func (m *breakerMiddleware) Load(ctx context.Context, docID string) ([]byte, error) {
	return m.cb.Execute(func() ([]byte, error) {
		return m.next.Load(ctx, docID)
	})
}

func (m *breakerMiddleware) Delete(ctx context.Context, docID string) error {
	_, err := m.cb.Execute(func() ([]byte, error) {
		return nil, m.next.Delete(ctx, docID)
	})
	return err
}

func (m *breakerMiddleware) List(ctx context.Context) ([]string, error) {
	var ids []string
	_, err := m.cb.Execute(func() ([]byte, error) {
		var err error
		ids, err = m.next.List(ctx)
		return nil, err
	})
	return ids, err
}
