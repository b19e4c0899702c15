package app

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"exam-quiz-service/internal/domain"
	"exam-quiz-service/internal/metrics"
	"go.uber.org/zap"
)

const (
	defaultQuestionsPerUser = 20
	defaultDurationSeconds  = 1200
)

// QuizService contains the quiz-taker use cases: registration, assignment, submission and results.
type QuizService struct {
	store   Store
	guard   *AttemptGuard
	board   *Leaderboard
	log     *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	rndMu sync.Mutex
	rnd   *rand.Rand

	enforceTimer bool
	grace        time.Duration
}

// Option configures a QuizService.
type Option func(*QuizService)

// WithClock replaces time.Now, mainly for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *QuizService) { s.now = now }
}

// WithRand replaces the random source used for shuffling.
func WithRand(rnd *rand.Rand) Option {
	return func(s *QuizService) { s.rnd = rnd }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *QuizService) { s.log = log }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *QuizService) { s.metrics = m }
}

// WithGuard installs the per-user submit lock.
func WithGuard(g *AttemptGuard) Option {
	return func(s *QuizService) { s.guard = g }
}

// WithLeaderboard makes accepted submissions push a fresh snapshot to live subscribers.
func WithLeaderboard(b *Leaderboard) Option {
	return func(s *QuizService) { s.board = b }
}

// WithTimer turns on the server-side deadline check at submit time.
func WithTimer(enforce bool, grace time.Duration) Option {
	return func(s *QuizService) {
		s.enforceTimer = enforce
		s.grace = grace
	}
}

func NewQuizService(store Store, opts ...Option) *QuizService {
	s := &QuizService{
		store: store,
		log:   zap.NewNop(),
		now:   time.Now,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// shuffle applies a Fisher-Yates permutation in place.
func (s *QuizService) shuffle(pool []domain.Question) {
	s.rndMu.Lock()
	defer s.rndMu.Unlock()
	for i := len(pool) - 1; i > 0; i-- {
		j := s.rnd.Intn(i + 1)
		pool[i], pool[j] = pool[j], pool[i]
	}
}

func durationSeconds(settings domain.Settings) int {
	if settings.QuizDurationSeconds <= 0 {
		return defaultDurationSeconds
	}
	return settings.QuizDurationSeconds
}

// outcome turns an engine error into a metrics label.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrAlreadyAttempted):
		return "already_attempted"
	case errors.Is(err, domain.ErrQuizInactive):
		return "inactive"
	case errors.Is(err, domain.ErrNoQuestions):
		return "no_questions"
	case errors.Is(err, domain.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, domain.ErrTimeExpired):
		return "time_expired"
	case errors.Is(err, domain.ErrSubmissionInProgress):
		return "in_progress"
	case errors.Is(err, domain.ErrAssignmentChanged):
		return "assignment_changed"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	default:
		return "error"
	}
}
