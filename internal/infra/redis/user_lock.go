package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"quiz-progress-service/internal/domain"
)

// ErrLockTimeout is returned when a user lock could not be acquired in time.
var ErrLockTimeout = fmt.Errorf("%w: user lock wait timed out", domain.ErrConflict)

// releaseScript deletes the lock only while it still carries the caller's token, so a holder
// whose lock expired cannot release someone else's.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// UserLocker is an app.UserLocker shared by every instance pointing at the same Redis.
// Locks are SET NX with a TTL so a crashed holder cannot block a user forever.
type UserLocker struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
}

func NewUserLocker(client *redis.Client, ttl, wait time.Duration) *UserLocker {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	if wait <= 0 {
		wait = ttl
	}
	return &UserLocker{client: client, ttl: ttl, wait: wait, retry: 25 * time.Millisecond}
}

func (l *UserLocker) Lock(ctx context.Context, userID string) (func(), error) {
	key := l.key(userID)
	token := uuid.NewString()
	deadline := time.NewTimer(l.wait)
	defer deadline.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire user lock: %w", err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, ErrLockTimeout
		case <-time.After(l.retry):
		}
	}

	return func() {
		_ = releaseScript.Run(context.Background(), l.client, []string{key}, token).Err()
	}, nil
}

func (l *UserLocker) key(userID string) string {
	return "activity:lock:" + userID
}
