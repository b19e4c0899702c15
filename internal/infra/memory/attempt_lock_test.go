package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"exam-quiz-service/internal/domain"
)

func TestAttemptLocker(t *testing.T) {
	ctx := context.Background()
	l := NewAttemptLocker()
	now := time.Now()
	l.clock = func() time.Time { return now }

	unlock, err := l.TryLock(ctx, "submit:u1", time.Minute)
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	if _, err := l.TryLock(ctx, "submit:u1", time.Minute); !errors.Is(err, domain.ErrSubmissionInProgress) {
		t.Fatalf("expected in progress, got %v", err)
	}
	if _, err := l.TryLock(ctx, "submit:u2", time.Minute); err != nil {
		t.Fatalf("other keys must not block: %v", err)
	}
	unlock()
	relock, err := l.TryLock(ctx, "submit:u1", time.Minute)
	if err != nil {
		t.Fatalf("lock after release: %v", err)
	}

	// an expired lock can be taken over and the stale unlock must not release it
	now = now.Add(2 * time.Minute)
	if _, err := l.TryLock(ctx, "submit:u1", time.Minute); err != nil {
		t.Fatalf("expected expired lock to be reclaimed: %v", err)
	}
	relock()
	if _, err := l.TryLock(ctx, "submit:u1", time.Minute); !errors.Is(err, domain.ErrSubmissionInProgress) {
		t.Fatalf("stale unlock released the new holder's lock: %v", err)
	}
}
