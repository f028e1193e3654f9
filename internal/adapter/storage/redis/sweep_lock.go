package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const sweepLeaseKey = "webhook:retry-sweep:lease"

// releaseScript deletes the lease only if the caller still owns it, so a
// sweep that outlives its TTL cannot release a lease taken by another
// instance.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SweepLock implements ports.SweepLock using Redis SET NX.
type SweepLock struct {
	client *goredis.Client
	key    string
}

// NewSweepLock creates a new Redis-backed sweep lease.
func NewSweepLock(client *goredis.Client) *SweepLock {
	return &SweepLock{client: client, key: sweepLeaseKey}
}

// Acquire takes the sweep lease for ttl. Returns the release token and
// whether the lease was obtained.
func (l *SweepLock) Acquire(ctx context.Context, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("redis sweep lease acquire: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release gives up the lease if the token still owns it.
func (l *SweepLock) Release(ctx context.Context, token string) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Err(); err != nil {
		return fmt.Errorf("redis sweep lease release: %w", err)
	}
	return nil
}
