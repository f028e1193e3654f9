package redis_test

import (
	"context"
	"testing"
	"time"

	"webhook-dispatch-service/internal/adapter/storage/redis"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepLock_AcquireAndRelease(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	lock := redis.NewSweepLock(client)
	ctx := context.Background()

	token, acquired, err := lock.Acquire(ctx, time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired)
	assert.NotEmpty(t, token)

	// A second acquire while held must fail.
	_, acquired2, err := lock.Acquire(ctx, time.Minute)
	require.NoError(t, err)
	assert.False(t, acquired2)

	require.NoError(t, lock.Release(ctx, token))

	_, acquired3, err := lock.Acquire(ctx, time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired3)
}

func TestSweepLock_ReleaseWithStaleTokenKeepsLease(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	lock := redis.NewSweepLock(client)
	ctx := context.Background()

	_, acquired, err := lock.Acquire(ctx, time.Minute)
	require.NoError(t, err)
	require.True(t, acquired)

	// A stale owner's token must not release the current lease.
	require.NoError(t, lock.Release(ctx, "stale-token"))

	_, acquired2, err := lock.Acquire(ctx, time.Minute)
	require.NoError(t, err)
	assert.False(t, acquired2)
}

func TestSweepLock_ExpiresAfterTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	lock := redis.NewSweepLock(client)
	ctx := context.Background()

	_, acquired, err := lock.Acquire(ctx, time.Minute)
	require.NoError(t, err)
	require.True(t, acquired)

	mr.FastForward(2 * time.Minute)

	_, acquired2, err := lock.Acquire(ctx, time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired2, "lease must expire with its TTL")
}
