package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
	assert.Equal(t, 100, cfg.CacheScanCount)
	assert.False(t, cfg.CacheReadFallback)
	assert.True(t, cfg.EventsEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThreshold())
	assert.Zero(t, cfg.RateLimitRPS)
}

func TestLoad_Overrides(t *testing.T) {
	setEnvs(t, map[string]string{
		"CATALOG_HTTP_PORT":          "9090",
		"STORE_DRIVER":               "memory",
		"REDIS_CLUSTER_ADDRS":        "r1:7000,r2:7001",
		"CACHE_READ_FALLBACK":        "true",
		"CACHE_BREAKER_FAILURES":     "3",
		"CACHE_BREAKER_OPEN_TIMEOUT": "5s",
		"OTEL_SAMPLE_RATE":           "0.25",
		"CATALOG_DB_NAME":            "movies",
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	assert.True(t, cfg.CacheReadFallback)
	assert.True(t, cfg.Redis().IsCluster())
	assert.Equal(t, []string{"r1:7000", "r2:7001"}, cfg.Redis().ClusterAddrs)

	breaker := cfg.Breaker()
	assert.Equal(t, uint32(3), breaker.ConsecutiveFailures)
	assert.Equal(t, 5*time.Second, breaker.OpenTimeout)
	assert.Equal(t, "redis-cache", breaker.Name)

	assert.Equal(t, 0.25, cfg.Tracing("catalog", "1.0.0").SampleRate)
	assert.Equal(t, "movies", cfg.Postgres().DBName)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		envs map[string]string
		want string
	}{
		{"port out of range", map[string]string{"CATALOG_HTTP_PORT": "70000"}, "invalid HTTP port"},
		{"unknown store driver", map[string]string{"STORE_DRIVER": "sqlite"}, "invalid STORE_DRIVER"},
		{"min conns above max", map[string]string{"DB_MIN_CONNS": "30", "DB_MAX_CONNS": "10"}, "DB_MIN_CONNS"},
		{"zero scan count", map[string]string{"CACHE_SCAN_COUNT": "0"}, "CACHE_SCAN_COUNT"},
		{"zero breaker failures", map[string]string{"CACHE_BREAKER_FAILURES": "0"}, "CACHE_BREAKER_FAILURES"},
		{"sample rate above one", map[string]string{"OTEL_SAMPLE_RATE": "1.5"}, "OTEL_SAMPLE_RATE"},
		{"negative rate limit", map[string]string{"RATE_LIMIT_RPS": "-1"}, "RATE_LIMIT_RPS"},
		{"zero burst", map[string]string{"RATE_LIMIT_RPS": "5", "RATE_LIMIT_BURST": "0"}, "RATE_LIMIT_BURST"},
		{"bad pprof cidr", map[string]string{"PPROF_ALLOWED_CIDRS": "localhost"}, "PPROF_ALLOWED_CIDRS"},
		{"unparsable duration", map[string]string{"SHUTDOWN_TIMEOUT": "soon"}, "load catalog config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnvs(t, tt.envs)

			cfg, err := Load()

			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_MemoryDriverSkipsPoolChecks(t *testing.T) {
	setEnvs(t, map[string]string{
		"STORE_DRIVER": "memory",
		"DB_MIN_CONNS": "30",
		"DB_MAX_CONNS": "10",
	})

	_, err := Load()
	require.NoError(t, err)
}
