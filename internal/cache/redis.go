package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/AdrielSA/backend-test/pkg/errors"
)

// DefaultScanCount is the SCAN page size used by RemoveByPattern.
const DefaultScanCount = 100

// RedisStore is a Store over a single-node or cluster Redis client.
type RedisStore struct {
	client    redis.UniversalClient
	scanCount int64
	metrics   *Metrics
}

// NewRedisStore wraps client. A non-positive scanCount uses DefaultScanCount;
// metrics may be nil.
func NewRedisStore(client redis.UniversalClient, scanCount int, metrics *Metrics) *RedisStore {
	if scanCount <= 0 {
		scanCount = DefaultScanCount
	}
	return &RedisStore{client: client, scanCount: int64(scanCount), metrics: metrics}
}

func cacheErr(op, key string, err error) error {
	return apperrors.Infrastructure("cache", fmt.Errorf("redis %s %q: %w", op, key, err))
}

// Get returns the raw value of key. Empty values count as misses.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		s.metrics.record("get", resultMiss)
		return nil, false, nil
	case err != nil:
		s.metrics.record("get", resultError)
		return nil, false, cacheErr("GET", key, err)
	case len(val) == 0:
		s.metrics.record("get", resultMiss)
		return nil, false, nil
	}
	s.metrics.record("get", resultHit)
	return val, true, nil
}

// Set stores value under key for ttl.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := s.client.Set(ctx, key, value, ttl).Err()
	s.metrics.recordErr("set", err)
	if err != nil {
		return cacheErr("SET", key, err)
	}
	return nil
}

// Remove deletes key. Removing an absent key is not an error.
func (s *RedisStore) Remove(ctx context.Context, key string) error {
	err := s.client.Del(ctx, key).Err()
	s.metrics.recordErr("remove", err)
	if err != nil {
		return cacheErr("DEL", key, err)
	}
	return nil
}

// RemoveByPattern walks the keyspace with SCAN MATCH pattern COUNT scanCount
// and deletes each page as it arrives. On a cluster every master is scanned.
// Cancellation is checked between pages.
func (s *RedisStore) RemoveByPattern(ctx context.Context, pattern string) error {
	var err error
	if cluster, ok := s.client.(*redis.ClusterClient); ok {
		err = cluster.ForEachMaster(ctx, func(ctx context.Context, node *redis.Client) error {
			return s.scanDelete(ctx, node, pattern, true)
		})
	} else {
		err = s.scanDelete(ctx, s.client, pattern, false)
	}
	s.metrics.recordErr("remove_pattern", err)
	if err != nil {
		return cacheErr("SCAN", pattern, err)
	}
	return nil
}

// scanDelete removes one node's matches. Keys on a cluster node can span hash
// slots, so they are deleted one per command in a pipeline instead of a
// single multi-key DEL.
func (s *RedisStore) scanDelete(ctx context.Context, c redis.Cmdable, pattern string, perKey bool) error {
	var cursor uint64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		keys, next, err := c.Scan(ctx, cursor, pattern, s.scanCount).Result()
		if err != nil {
			return err
		}

		if len(keys) > 0 {
			if perKey {
				_, err = c.Pipelined(ctx, func(p redis.Pipeliner) error {
					for _, k := range keys {
						p.Del(ctx, k)
					}
					return nil
				})
			} else {
				err = c.Del(ctx, keys...).Err()
			}
			if err != nil {
				return err
			}
		}

		if next == 0 {
			return nil
		}
		cursor = next
	}
}
