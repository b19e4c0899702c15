package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"exam-quiz-service/internal/domain"
)

func TestAttemptLockerSetsAndReleasesKey(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestClient(t)
	l := NewAttemptLocker(client)

	unlock, err := l.TryLock(ctx, "submit:u1", 30*time.Second)
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	if !mr.Exists("quiz:lock:submit:u1") {
		t.Fatalf("expected redis key to be set")
	}
	if _, err := l.TryLock(ctx, "submit:u1", 30*time.Second); !errors.Is(err, domain.ErrSubmissionInProgress) {
		t.Fatalf("expected in progress, got %v", err)
	}

	unlock()
	if mr.Exists("quiz:lock:submit:u1") {
		t.Fatalf("expected redis key to be removed")
	}
}

func TestAttemptLockerStaleUnlockKeepsNewHolder(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestClient(t)
	l := NewAttemptLocker(client)

	stale, err := l.TryLock(ctx, "submit:u1", time.Second)
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	mr.FastForward(2 * time.Second)
	if _, err := l.TryLock(ctx, "submit:u1", time.Minute); err != nil {
		t.Fatalf("expected expired lock to be reclaimed: %v", err)
	}
	stale()
	if !mr.Exists("quiz:lock:submit:u1") {
		t.Fatalf("stale unlock released the new holder's lock")
	}
}
