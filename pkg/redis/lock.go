package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrLocked is returned when another holder owns the lock
var ErrLocked = errors.New("lock held by another run")

// releaseScript deletes the key only if it still holds our token
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// Lock is a single-holder lock so that scheduled and on-demand
// validations of one batch never overlap across processes
// ⭐ SSOT: cross-process locking lives here only
type Lock struct {
	client *Client
	key    string
	ttl    time.Duration
}

// NewLock creates a lock on prefix:lock:name
func NewLock(client *Client, prefix, name string, ttl time.Duration) *Lock {
	return &Lock{
		client: client,
		key:    fmt.Sprintf("%s:lock:%s", prefix, name),
		ttl:    ttl,
	}
}

// Acquire takes the lock and returns a release func. With Redis
// disabled the lock is always granted.
func (l *Lock) Acquire(ctx context.Context) (func(context.Context) error, error) {
	if !l.client.Enabled() {
		return func(context.Context) error { return nil }, nil
	}

	token := uuid.NewString()
	ok, err := l.client.Redis().SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire %s: %w", l.key, err)
	}
	if !ok {
		return nil, ErrLocked
	}

	release := func(ctx context.Context) error {
		return l.client.Redis().Eval(ctx, releaseScript, []string{l.key}, token).Err()
	}
	return release, nil
}
