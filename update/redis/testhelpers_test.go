//go:build integration

package redis_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/marcelsud/telegram-ragbot/update/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	testcontainersredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// RedisContainer holds the Redis testcontainer and connection details
type RedisContainer struct {
	Container *testcontainersredis.RedisContainer
	Addr      string
}

// SetupRedisContainer creates and starts a Redis testcontainer
func SetupRedisContainer(t *testing.T, ctx context.Context) (*RedisContainer, func()) {
	t.Helper()

	redisContainer, err := testcontainersredis.Run(ctx,
		"redis:7-alpine",
		testcontainersredis.WithLogLevel(testcontainersredis.LogLevelVerbose),
	)
	require.NoError(t, err, "failed to start Redis container")

	addr, err := redisContainer.ConnectionString(ctx)
	require.NoError(t, err, "failed to get Redis connection string")
	addr = strings.TrimPrefix(addr, "redis://")

	rc := &RedisContainer{
		Container: redisContainer,
		Addr:      addr,
	}

	cleanup := func() {
		if err := redisContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Redis container: %v", err)
		}
	}

	return rc, cleanup
}

// CreateTestStore creates a dedup store connected to the test container
func CreateTestStore(t *testing.T, addr string, ttl time.Duration) *redis.Store {
	t.Helper()

	store, err := redis.NewStore(addr, "", 0, ttl)
	require.NoError(t, err, "failed to create Redis store")
	t.Cleanup(func() { _ = store.Close() })

	return store
}

// GetKeyTTL returns the TTL of a Redis key
func GetKeyTTL(t *testing.T, addr string, key string) time.Duration {
	t.Helper()

	client := goredis.NewClient(&goredis.Options{Addr: addr})
	defer client.Close()

	ttl, err := client.TTL(context.Background(), key).Result()
	require.NoError(t, err)

	return ttl
}
