package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript удаляет ключ, только если он принадлежит владельцу.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Redis — Locker на SET NX PX.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

// NewRedis создаёт Redis locker. Ключи блокировок: "{prefix}:lock:{name}".
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

// TryLock выполняет SET key token NX PX ttl.
func (r *Redis) TryLock(ctx context.Context, name string, ttl time.Duration) (Lock, bool, error) {
	key := r.prefix + ":lock:" + name
	token := uuid.NewString()

	err := r.client.SetArgs(ctx, key, token, redis.SetArgs{Mode: "NX", TTL: ttl}).Err()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: set nx: %v", ErrLockUnavailable, err)
	}

	return &redisLock{client: r.client, key: key, token: token}, true, nil
}

type redisLock struct {
	client redis.UniversalClient
	key    string
	token  string
}

// Release удаляет ключ блокировки, если токен совпадает.
func (l *redisLock) Release(ctx context.Context) error {
	deleted, err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release %s: %w", l.key, err)
	}
	if deleted == 0 {
		return fmt.Errorf("release %s: %w", l.key, ErrLockNotHeld)
	}
	return nil
}
