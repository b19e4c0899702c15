package memory

import (
	"context"
	"sync"
	"time"

	"exam-quiz-service/internal/domain"
	"github.com/google/uuid"
)

// AttemptLocker is an in-process implementation of app.AttemptLocker.
// Locks expire after their TTL so a crashed holder cannot block a user forever.
type AttemptLocker struct {
	mu    sync.Mutex
	clock func() time.Time
	held  map[string]heldLock
}

type heldLock struct {
	token     string
	expiresAt time.Time
}

func NewAttemptLocker() *AttemptLocker {
	return &AttemptLocker{
		clock: time.Now,
		held:  make(map[string]heldLock),
	}
}

func (l *AttemptLocker) TryLock(_ context.Context, key string, ttl time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if h, ok := l.held[key]; ok && h.expiresAt.After(now) {
		return nil, domain.ErrSubmissionInProgress
	}
	token := uuid.NewString()
	l.held[key] = heldLock{token: token, expiresAt: now.Add(ttl)}

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if h, ok := l.held[key]; ok && h.token == token {
			delete(l.held, key)
		}
	}, nil
}
