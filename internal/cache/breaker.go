package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	apperrors "github.com/AdrielSA/backend-test/pkg/errors"
)

// BreakerConfig tunes the circuit breaker around a Store.
type BreakerConfig struct {
	Name string
	// ConsecutiveFailures trips the breaker once reached.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration
	// HalfOpenRequests is the number of probes allowed while half-open.
	HalfOpenRequests uint32
}

// DefaultBreakerConfig returns the breaker settings used when none are set.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:                "redis-cache",
		ConsecutiveFailures: 5,
		OpenTimeout:         30 * time.Second,
		HalfOpenRequests:    1,
	}
}

// BreakerStore guards a Store with a circuit breaker. While open every call
// fails fast with an infrastructure error instead of waiting on the backend.
type BreakerStore struct {
	next Store
	cb   *gobreaker.CircuitBreaker[[]byte]
}

// NewBreakerStore wraps next. Cancelled or expired contexts do not count as
// backend failures.
func NewBreakerStore(next Store, cfg BreakerConfig, metrics *Metrics, logger *slog.Logger) *BreakerStore {
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = DefaultBreakerConfig().ConsecutiveFailures
	}
	if cfg.Name == "" {
		cfg.Name = DefaultBreakerConfig().Name
	}
	metrics.setBreakerState(cfg.Name, gobreaker.StateClosed)

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.HalfOpenRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.setBreakerState(name, to)
			if logger != nil {
				logger.Warn("cache circuit breaker state changed",
					slog.String("breaker", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()),
				)
			}
		},
	}

	return &BreakerStore{next: next, cb: gobreaker.NewCircuitBreaker[[]byte](settings)}
}

// State reports the current breaker state.
func (b *BreakerStore) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerStore) run(fn func() ([]byte, error)) ([]byte, error) {
	val, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, apperrors.Infrastructure("cache", fmt.Errorf("circuit %s: %w", b.cb.Name(), err))
	}
	return val, err
}

func (b *BreakerStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := b.run(func() ([]byte, error) {
		v, ok, err := b.next.Get(ctx, key)
		if !ok {
			return nil, err
		}
		return v, err
	})
	if err != nil {
		return nil, false, err
	}
	return val, len(val) > 0, nil
}

func (b *BreakerStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := b.run(func() ([]byte, error) {
		return nil, b.next.Set(ctx, key, value, ttl)
	})
	return err
}

func (b *BreakerStore) Remove(ctx context.Context, key string) error {
	_, err := b.run(func() ([]byte, error) {
		return nil, b.next.Remove(ctx, key)
	})
	return err
}

func (b *BreakerStore) RemoveByPattern(ctx context.Context, pattern string) error {
	_, err := b.run(func() ([]byte, error) {
		return nil, b.next.RemoveByPattern(ctx, pattern)
	})
	return err
}
