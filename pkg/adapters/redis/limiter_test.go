package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/actionhost/pkg/adapters/redis"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_RejectsBeyondMax(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	limiter := redis.NewLimiter(client, "test:", time.Minute)
	ctx := context.Background()

	release1, ok, err := limiter.TryAcquire(ctx, "greet", 2)
	require.NoError(t, err)
	assert.True(t, ok)

	release2, ok, err := limiter.TryAcquire(ctx, "greet", 2)
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = limiter.TryAcquire(ctx, "greet", 2)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, release1(ctx))

	release3, ok, err := limiter.TryAcquire(ctx, "greet", 2)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, release2(ctx))
	require.NoError(t, release3(ctx))
}

func TestLimiter_IndependentKeys(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	limiter := redis.NewLimiter(client, "test:", time.Minute)
	ctx := context.Background()

	_, ok, err := limiter.TryAcquire(ctx, "greet", 1)
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = limiter.TryAcquire(ctx, "report", 1)
	require.NoError(t, err)
	assert.True(t, ok)
}
