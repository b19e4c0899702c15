package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"exam-quiz-service/internal/domain"
)

// finish records a completed attempt straight in the store.
func finish(t *testing.T, f *fixture, user domain.User, score int) {
	t.Helper()
	now := f.clock.Now()
	err := f.store.CompleteAttempt(context.Background(), user.ID,
		domain.AttemptResult{Score: score, SubmittedAt: now},
		domain.LeaderboardEntry{UserID: user.ID, Name: user.Name, RegisterNo: user.RegisterNo, Score: score, SubmittedAt: now},
	)
	if err != nil {
		t.Fatalf("complete attempt: %v", err)
	}
	f.clock.Advance(time.Second)
}

func TestLeaderboardOrdersByScoreThenSubmission(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.configure(t, true, 3, 600)
	a := f.register(t, "A", "R1")
	b := f.register(t, "B", "R2")
	c := f.register(t, "C", "R3")
	finish(t, f, a, 3)
	finish(t, f, b, 5)
	finish(t, f, c, 3)

	board, err := f.board.TopN(ctx, 10)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	want := []string{b.ID, a.ID, c.ID}
	if len(board.Entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(board.Entries))
	}
	for i, id := range want {
		if board.Entries[i].UserID != id || board.Entries[i].Rank != i+1 {
			t.Fatalf("position %d: expected %s rank %d, got %+v", i, id, i+1, board.Entries[i])
		}
	}

	top, _ := f.board.TopN(ctx, 2)
	if len(top.Entries) != 2 {
		t.Fatalf("expected limit to apply, got %d", len(top.Entries))
	}
}

func TestResetLetsUserRetake(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.configure(t, true, 3, 600)
	f.seedScenario(t)
	user := startQuiz(t, f, "R1")
	if _, err := f.quiz.Submit(ctx, user.ID, correctAnswers()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := f.admin.ResetUser(ctx, user.ID); err != nil {
		t.Fatalf("reset: %v", err)
	}
	stored, _ := f.store.GetUser(ctx, user.ID)
	if stored.HasAttempted || stored.Score != 0 || stored.QuizStartedAt != nil || len(stored.AssignedQuestions) != 0 {
		t.Fatalf("reset left attempt state behind: %+v", stored)
	}
	board, _ := f.board.TopN(ctx, 10)
	if len(board.Entries) != 0 {
		t.Fatalf("reset should remove leaderboard entries, got %+v", board.Entries)
	}
	if _, err := f.quiz.Assign(ctx, user.ID, false); err != nil {
		t.Fatalf("assign after reset: %v", err)
	}
	if err := f.admin.ResetUser(ctx, "missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
}

func TestWipeAllRemovesUsersAndEntries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.configure(t, true, 3, 600)
	finish(t, f, f.register(t, "A", "R1"), 2)
	f.register(t, "B", "R2")

	n, err := f.admin.WipeAllUsers(ctx)
	if err != nil {
		t.Fatalf("wipe: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 users wiped, got %d", n)
	}
	users, _ := f.store.ListUsers(ctx)
	board, _ := f.board.TopN(ctx, 10)
	if len(users) != 0 || len(board.Entries) != 0 {
		t.Fatalf("wipe left %d users and %d entries", len(users), len(board.Entries))
	}
	// the same registerNo may sign up again
	f.register(t, "A", "R1")
}

func TestSubscribeReceivesUpdates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.configure(t, true, 3, 600)
	f.seedScenario(t)
	user := startQuiz(t, f, "R1")

	ch, cancel, err := f.board.Subscribe(ctx)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	initial := <-ch
	if len(initial.Entries) != 0 {
		t.Fatalf("expected empty initial snapshot, got %+v", initial.Entries)
	}
	if _, err := f.quiz.Submit(ctx, user.ID, correctAnswers()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	select {
	case update := <-ch:
		if len(update.Entries) != 1 || update.Entries[0].Score != 6 {
			t.Fatalf("expected updated score 6, got %+v", update.Entries)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no leaderboard update received")
	}
}

func TestSubscribeCancelClosesChannel(t *testing.T) {
	f := newFixture(t)
	ch, cancel, err := f.board.Subscribe(context.Background())
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	<-ch
	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel after cancel")
	}
}

func TestPublishDropsStaleSnapshotsForSlowSubscribers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.configure(t, true, 3, 600)
	ch, cancel, err := f.board.Subscribe(ctx)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	for i := 0; i < 20; i++ {
		finish(t, f, f.register(t, "U", "R"+string(rune('a'+i))), i)
		f.board.Publish(ctx)
	}

	var last int
	for {
		select {
		case lb := <-ch:
			last = len(lb.Entries)
			continue
		default:
		}
		break
	}
	if last != 20 {
		t.Fatalf("expected the newest snapshot to survive, got %d entries", last)
	}
}
