package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the key holding the draw lock.
const DefaultRedisKey = "raffle:draw:lock"

const defaultRetryInterval = 50 * time.Millisecond

// releaseScript deletes the key only if it still holds this holder's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisGate is a Gate shared by every instance using the same Redis. The lock expires after ttl
// so a crashed holder cannot block draws forever.
type RedisGate struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
	retry  time.Duration
}

// NewRedisGate returns a gate on key. An empty key selects DefaultRedisKey.
func NewRedisGate(client redis.UniversalClient, key string, ttl time.Duration) *RedisGate {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisGate{client: client, key: key, ttl: ttl, retry: defaultRetryInterval}
}

// Acquire polls SET NX PX until it wins the lock or ctx is done.
func (g *RedisGate) Acquire(ctx context.Context) (func(), error) {
	token := uuid.NewString()
	ticker := time.NewTicker(g.retry)
	defer ticker.Stop()
	for {
		ok, err := g.client.SetNX(ctx, g.key, token, g.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire draw lock: %w", err)
		}
		if ok {
			return g.releaser(token), nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrNotAcquired, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (g *RedisGate) releaser(token string) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(ctx, g.client, []string{g.key}, token).Err()
	}
}
