package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dealerdesk/dealerdesk/internal/shared"
)

// Locker takes short-lived redis locks so that settlement on the same order
// cannot run twice across terminals pointing at different server instances.
type Locker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLocker constructs a Locker. ttl bounds how long a crashed holder can
// block other settlements.
func NewLocker(client *redis.Client, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Locker{client: client, ttl: ttl}
}

// Acquire takes the lock for key. Returns a release func, or ErrConflict when
// another holder owns the key.
func (l *Locker) Acquire(ctx context.Context, key string) (func(), error) {
	ok, err := l.client.SetNX(ctx, key, "1", l.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, shared.ErrConflict
	}
	return func() {
		_ = l.client.Del(context.Background(), key).Err()
	}, nil
}
