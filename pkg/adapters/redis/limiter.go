package redis

import (
	"fmt"
	"time"

	"context"

	"github.com/aretw0/actionhost/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// acquireScript atomically increments the counter at KEYS[1], rejecting
// (and rolling the increment back) once it would exceed ARGV[1]. A TTL
// safety net (ARGV[2]) bounds how long a crashed holder's slot can be
// stuck occupied, mirroring Locker's "expire via TTL" fallback.
const acquireScript = `
local count = redis.call("INCR", KEYS[1])
if count > tonumber(ARGV[1]) then
	redis.call("DECR", KEYS[1])
	return 0
end
if count == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[2])
end
return count
`

// Limiter implements ports.DistributedLimiter using a Redis counter per key.
type Limiter struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// NewLimiter creates a Redis-backed DistributedLimiter. ttl bounds how
// long a held slot survives if its holder crashes without releasing.
func NewLimiter(client *backend.Client, prefix string, ttl time.Duration) *Limiter {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Limiter{client: client, prefix: prefix, ttl: ttl}
}

// TryAcquire attempts to take one of max concurrent slots for key.
func (l *Limiter) TryAcquire(ctx context.Context, key string, max int) (ports.ReleaseFunc, bool, error) {
	counterKey := l.prefix + "limit:" + key
	count, err := l.client.Eval(ctx, acquireScript, []string{counterKey}, max, int(l.ttl.Seconds())).Int64()
	if err != nil {
		return nil, false, fmt.Errorf("redis error acquiring limiter slot: %w", err)
	}
	if count == 0 {
		return nil, false, nil
	}
	release := func(ctx context.Context) error {
		return l.client.Decr(ctx, counterKey).Err()
	}
	return release, true, nil
}
