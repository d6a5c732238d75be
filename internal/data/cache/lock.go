package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/dailylesson-backend/internal/data/store"
)

const lockPrefix = "lesson:lock:"

// Compare-and-delete so a holder whose lease expired cannot release a lock
// that has since been taken by someone else.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lease is a held lock. Release is safe to call more than once.
type Lease struct {
	rdb   goredis.UniversalClient
	key   string
	token string
}

func (l *Lease) Release(ctx context.Context) error {
	if l == nil {
		return nil
	}
	if err := releaseScript.Run(ctx, l.rdb, []string{l.key}, l.token).Err(); err != nil && !errors.Is(err, goredis.Nil) {
		return fmt.Errorf("release lock %s: %w", l.key, err)
	}
	return nil
}

type RedisLocker struct {
	rdb goredis.UniversalClient
}

func NewRedisLocker(rdb goredis.UniversalClient) *RedisLocker {
	return &RedisLocker{rdb: rdb}
}

var _ store.Locker = (*RedisLocker)(nil)

// TryAcquire takes the lock for name if it is free. A nil lease with a nil
// error means someone else holds it.
func (l *RedisLocker) TryAcquire(ctx context.Context, name string, ttl time.Duration) (store.Lease, error) {
	key := lockPrefix + name
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, nil
	}
	return &Lease{rdb: l.rdb, key: key, token: token}, nil
}
