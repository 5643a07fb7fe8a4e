// Package service holds the catalog use cases. Each operation validates its
// input, serves reads cache-aside and invalidates the affected cache entries
// once the store write has succeeded.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/AdrielSA/backend-test/internal/cache"
	"github.com/AdrielSA/backend-test/internal/domain"
	"github.com/AdrielSA/backend-test/pkg/logger"
)

// EventPublisher publishes catalog domain events. Failures are logged by the
// services and never fail the operation.
type EventPublisher interface {
	PublishMovieCreated(ctx context.Context, m *domain.Movie) error
	PublishMovieDisabled(ctx context.Context, m *domain.Movie) error
	PublishReviewCreated(ctx context.Context, r *domain.Review) error
}

// Options tunes cache behaviour shared by the services.
type Options struct {
	// ReadFallback turns cache read and populate failures into warnings and
	// serves the request from the store. When false they fail the request.
	ReadFallback bool
}

// cacheAside is the read-through and invalidation logic shared by the
// services.
type cacheAside struct {
	store    cache.Store
	fallback bool
	logger   *slog.Logger
}

func (c cacheAside) log(ctx context.Context) *slog.Logger {
	return logger.WithContext(ctx, c.logger)
}

// readThrough returns the cached value of key or computes it with load and
// stores it for ttl. Nothing is cached when load fails.
func readThrough[T any](ctx context.Context, c cacheAside, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var zero T

	v, hit, err := cache.Get[T](ctx, c.store, key)
	switch {
	case err != nil && !c.fallback:
		return zero, err
	case err != nil:
		c.log(ctx).WarnContext(ctx, "cache read failed, serving from store",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	case hit:
		c.log(ctx).DebugContext(ctx, "cache hit", slog.String("key", key))
		return v, nil
	default:
		c.log(ctx).DebugContext(ctx, "cache miss", slog.String("key", key))
	}

	v, err = load(ctx)
	if err != nil {
		return zero, err
	}

	if err := cache.Set(ctx, c.store, key, v, ttl); err != nil {
		if !c.fallback {
			return zero, err
		}
		c.log(ctx).WarnContext(ctx, "cache populate failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
	return v, nil
}

// remove deletes exact keys in order, stopping at the first failure.
func (c cacheAside) remove(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if err := c.store.Remove(ctx, key); err != nil {
			c.log(ctx).ErrorContext(ctx, "cache invalidation failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
			return err
		}
	}
	return nil
}

// removeLists deletes every cached movie listing.
func (c cacheAside) removeLists(ctx context.Context) error {
	if err := c.store.RemoveByPattern(ctx, cache.MovieListPattern); err != nil {
		c.log(ctx).ErrorContext(ctx, "cache invalidation failed",
			slog.String("pattern", cache.MovieListPattern),
			slog.String("error", err.Error()),
		)
		return err
	}
	return nil
}
