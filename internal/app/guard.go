package app

import (
	"context"
	"time"

	"exam-quiz-service/internal/domain"
)

// AttemptGuard enforces at most one successful attempt per user. The hard
// guarantee comes from the store's conditional writes; the locker only keeps
// two concurrent submits for one user from both doing the grading work.
type AttemptGuard struct {
	locker AttemptLocker
	ttl    time.Duration
}

func NewAttemptGuard(locker AttemptLocker, ttl time.Duration) *AttemptGuard {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &AttemptGuard{locker: locker, ttl: ttl}
}

// Acquire takes the per-user submit lock. A nil guard or locker is a no-op.
func (g *AttemptGuard) Acquire(ctx context.Context, userID string) (func(), error) {
	if g == nil || g.locker == nil {
		return func() {}, nil
	}
	return g.locker.TryLock(ctx, "submit:"+userID, g.ttl)
}

// Check reports domain.ErrAlreadyAttempted for users that already completed the quiz.
func (g *AttemptGuard) Check(u domain.User) error {
	if u.HasAttempted {
		return domain.ErrAlreadyAttempted
	}
	return nil
}
