package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds Redis connection configuration. When ClusterAddrs is set
// a cluster client is created and Addr/DB are ignored.
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	ClusterAddrs []string
}

// DefaultRedisConfig returns defaults for a local single-node Redis.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{Addr: "localhost:6379"}
}

// IsCluster reports whether the config targets a Redis Cluster.
func (c RedisConfig) IsCluster() bool {
	return len(c.ClusterAddrs) > 0
}

// NewRedisClient creates a Redis client (single node or cluster) and verifies
// the connection, retrying with backoff.
func NewRedisClient(ctx context.Context, cfg RedisConfig, logger *slog.Logger) (redis.UniversalClient, error) {
	var client redis.UniversalClient
	if cfg.IsCluster() {
		client = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:    cfg.ClusterAddrs,
			Password: cfg.Password,
		})
	} else {
		client = redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	}

	err := connectWithRetry(ctx, "redis", logger, func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}
