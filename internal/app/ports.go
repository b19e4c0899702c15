package app

import (
	"context"
	"time"

	"exam-quiz-service/internal/domain"
)

// QuestionRepository gives typed access to the question pool.
type QuestionRepository interface {
	ListQuestions(ctx context.Context) ([]domain.Question, error)
	// GetQuestions returns the questions that exist among ids, keyed by id.
	GetQuestions(ctx context.Context, ids []string) (map[string]domain.Question, error)
	GetQuestion(ctx context.Context, id string) (domain.Question, error)
	CreateQuestion(ctx context.Context, q domain.Question) (domain.Question, error)
	UpdateQuestion(ctx context.Context, q domain.Question) error
	DeleteQuestion(ctx context.Context, id string) error
}

// SettingsRepository stores the settings singleton. GetSettings returns
// domain.DefaultSettings when nothing was saved.
type SettingsRepository interface {
	GetSettings(ctx context.Context) (domain.Settings, error)
	SaveSettings(ctx context.Context, s domain.Settings) error
}

// UserRepository exposes and updates per-user attempt state.
type UserRepository interface {
	// CreateUser stores a new user and returns it with its id. It fails with
	// domain.ErrUserExists when registerNo or email is taken.
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)
	GetUser(ctx context.Context, id string) (domain.User, error)
	FindUserByRegisterNo(ctx context.Context, registerNo string) (domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	// SaveAssignment persists the assignment only while hasAttempted is false,
	// otherwise it fails with domain.ErrAlreadyAttempted.
	SaveAssignment(ctx context.Context, userID string, a domain.Assignment) error
}

// AttemptRepository owns the writes that must keep users and leaderboard entries in sync.
type AttemptRepository interface {
	// CompleteAttempt atomically flips hasAttempted false->true, records the result
	// and appends the leaderboard entry. A user that already attempted yields
	// domain.ErrAlreadyAttempted, and a user whose assignment no longer matches the
	// graded one yields domain.ErrAssignmentChanged; in both cases nothing is written.
	CompleteAttempt(ctx context.Context, userID string, result domain.AttemptResult, entry domain.LeaderboardEntry) error
	// ResetAttempt rolls the user back and deletes their leaderboard entries in one batch.
	ResetAttempt(ctx context.Context, userID string) error
	// WipeAll deletes every user and every leaderboard entry in one batch.
	WipeAll(ctx context.Context) (int, error)
}

// LeaderboardRepository serves ranked reads. Entries are ordered by score
// descending, then by insertion order.
type LeaderboardRepository interface {
	TopEntries(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}

// Store bundles every collection the engine needs.
type Store interface {
	QuestionRepository
	SettingsRepository
	UserRepository
	AttemptRepository
	LeaderboardRepository
}

// AttemptLocker serializes the submit path per user. TryLock returns
// domain.ErrSubmissionInProgress when the key is already held.
type AttemptLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
}

// WithQuestionSource returns a Store whose question methods are served by questions,
// typically a cache in front of the same store.
func WithQuestionSource(store Store, questions QuestionRepository) Store {
	return questionOverride{Store: store, questions: questions}
}

type questionOverride struct {
	Store
	questions QuestionRepository
}

func (o questionOverride) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	return o.questions.ListQuestions(ctx)
}

func (o questionOverride) GetQuestions(ctx context.Context, ids []string) (map[string]domain.Question, error) {
	return o.questions.GetQuestions(ctx, ids)
}

func (o questionOverride) GetQuestion(ctx context.Context, id string) (domain.Question, error) {
	return o.questions.GetQuestion(ctx, id)
}

func (o questionOverride) CreateQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	return o.questions.CreateQuestion(ctx, q)
}

func (o questionOverride) UpdateQuestion(ctx context.Context, q domain.Question) error {
	return o.questions.UpdateQuestion(ctx, q)
}

func (o questionOverride) DeleteQuestion(ctx context.Context, id string) error {
	return o.questions.DeleteQuestion(ctx, id)
}
