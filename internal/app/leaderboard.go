package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"exam-quiz-service/internal/domain"
	"go.uber.org/zap"
)

// LiveLeaderboardSize is the number of entries pushed to live subscribers.
const LiveLeaderboardSize = 50

type leaderboardStore interface {
	LeaderboardRepository
	AttemptRepository
	GetUser(ctx context.Context, id string) (domain.User, error)
}

// Leaderboard serves ranked reads, admin resets and live updates.
type Leaderboard struct {
	store leaderboardStore
	log   *zap.Logger
	now   func() time.Time

	mu          sync.Mutex
	subscribers map[chan domain.Leaderboard]struct{}
}

func NewLeaderboard(store leaderboardStore, log *zap.Logger) *Leaderboard {
	if log == nil {
		log = zap.NewNop()
	}
	return &Leaderboard{
		store:       store,
		log:         log,
		now:         time.Now,
		subscribers: make(map[chan domain.Leaderboard]struct{}),
	}
}

// TopN returns the n best entries by score, earlier submissions first on ties, ranked from 1.
func (b *Leaderboard) TopN(ctx context.Context, n int) (domain.Leaderboard, error) {
	if n <= 0 {
		return domain.Leaderboard{Entries: []domain.RankedEntry{}, UpdatedAt: b.now()}, nil
	}
	entries, err := b.store.TopEntries(ctx, n)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	ranked := make([]domain.RankedEntry, 0, len(entries))
	for i, e := range entries {
		ranked = append(ranked, domain.RankedEntry{Rank: i + 1, LeaderboardEntry: e})
	}
	return domain.Leaderboard{Entries: ranked, UpdatedAt: b.now()}, nil
}

// Reset lets a user retake the quiz: their leaderboard entry is removed and
// their attempt state rolled back.
func (b *Leaderboard) Reset(ctx context.Context, userID string) error {
	if _, err := b.store.GetUser(ctx, userID); err != nil {
		return err
	}
	if err := b.store.ResetAttempt(ctx, userID); err != nil {
		return err
	}
	b.log.Warn("user attempt reset", zap.String("userId", userID))
	b.Publish(ctx)
	return nil
}

// WipeAll deletes every user and leaderboard entry. Destructive and irreversible.
func (b *Leaderboard) WipeAll(ctx context.Context) (int, error) {
	n, err := b.store.WipeAll(ctx)
	if err != nil {
		return 0, err
	}
	b.log.Warn("wiped all users and leaderboard", zap.Int("users", n))
	b.Publish(ctx)
	return n, nil
}

// Subscribe returns a channel that receives leaderboard snapshots, starting
// with the current one. The caller must invoke cancel to avoid leaks.
func (b *Leaderboard) Subscribe(ctx context.Context) (<-chan domain.Leaderboard, func(), error) {
	initial, err := b.TopN(ctx, LiveLeaderboardSize)
	if err != nil {
		return nil, nil, err
	}
	ch := make(chan domain.Leaderboard, 8)
	ch <- initial

	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subscribers[ch]; ok {
			delete(b.subscribers, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel, nil
}

// Publish pushes a fresh snapshot to every subscriber. Slow subscribers lose
// their oldest pending snapshot rather than blocking the publisher.
func (b *Leaderboard) Publish(ctx context.Context) {
	b.mu.Lock()
	empty := len(b.subscribers) == 0
	b.mu.Unlock()
	if empty {
		return
	}

	lb, err := b.TopN(ctx, LiveLeaderboardSize)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			b.log.Error("leaderboard snapshot failed", zap.Error(err))
		}
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subscribers {
		select {
		case ch <- lb:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- lb:
			default:
			}
		}
	}
}
