package redis

import (
	"context"
	"fmt"
	"time"

	"exam-quiz-service/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const lockKeyPrefix = "quiz:lock:"

// releaseScript deletes the lock only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// AttemptLocker is a Redis implementation of app.AttemptLocker, shared by every
// service instance. Keys expire after the TTL so a crashed holder cannot block a user.
type AttemptLocker struct {
	client *redis.Client
}

func NewAttemptLocker(client *redis.Client) *AttemptLocker {
	return &AttemptLocker{client: client}
}

func (l *AttemptLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, lockKeyPrefix+key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire attempt lock: %w", err)
	}
	if !ok {
		return nil, domain.ErrSubmissionInProgress
	}
	return func() {
		_ = releaseScript.Run(context.Background(), l.client, []string{lockKeyPrefix + key}, token).Err()
	}, nil
}
