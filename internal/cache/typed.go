package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/AdrielSA/backend-test/pkg/logger"
)

var jsonNull = []byte("null")

// Get reads key and decodes it as JSON into T. Absent, empty, null or
// undecodable values are all reported as a miss; an undecodable entry is also
// evicted so the next read repopulates it. Only backend failures return an
// error.
func Get[T any](ctx context.Context, s Store, key string) (T, bool, error) {
	var zero T

	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return zero, false, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, jsonNull) {
		return zero, false, nil
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		l := logger.WithContext(ctx, logger.FromContext(ctx))
		l.WarnContext(ctx, "discarding undecodable cache entry", slog.String("key", key), slog.String("error", err.Error()))
		if rmErr := s.Remove(ctx, key); rmErr != nil {
			l.WarnContext(ctx, "evict undecodable cache entry", slog.String("key", key), slog.String("error", rmErr.Error()))
		}
		return zero, false, nil
	}
	return v, true, nil
}

// Set encodes v as JSON and stores it under key for ttl.
func Set[T any](ctx context.Context, s Store, key string, v T, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cache value %q: %w", key, err)
	}
	return s.Set(ctx, key, raw, ttl)
}
