package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockHeld is returned when another process holds the lock
var ErrLockHeld = errors.New("lock is held by another process")

// releaseScript deletes the key only when the token still matches
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lock is a single-writer lock backed by SET NX with a TTL
// ⭐ SSOT: 배치 재계산은 이 락을 통해서만 직렬화
type Lock struct {
	client *Client
	key    string
	ttl    time.Duration
	token  string
}

// NewLock creates a lock for the given name.
// When Redis is disabled, Acquire and Release always succeed.
func NewLock(client *Client, name string, ttl time.Duration) *Lock {
	return &Lock{
		client: client,
		key:    LockKey(name),
		ttl:    ttl,
	}
}

// LockKey returns the Redis key for a named lock
func LockKey(name string) string {
	return fmt.Sprintf("cohesion:lock:%s", name)
}

// Key returns the Redis key guarded by this lock
func (l *Lock) Key() string {
	return l.key
}

// Acquire takes the lock or returns ErrLockHeld
func (l *Lock) Acquire(ctx context.Context) error {
	rdb := l.client.Redis()
	if rdb == nil {
		return nil
	}

	token := uuid.NewString()
	ok, err := rdb.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", l.key, err)
	}
	if !ok {
		return ErrLockHeld
	}

	l.token = token
	return nil
}

// Release drops the lock if this holder still owns it
func (l *Lock) Release(ctx context.Context) error {
	rdb := l.client.Redis()
	if rdb == nil || l.token == "" {
		return nil
	}

	err := releaseScript.Run(ctx, rdb, []string{l.key}, l.token).Err()
	l.token = ""
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release lock %s: %w", l.key, err)
	}
	return nil
}
