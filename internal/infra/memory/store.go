package memory

import (
	"context"
	"sort"
	"sync"

	"exam-quiz-service/internal/domain"
	"github.com/google/uuid"
)

// Store is an in-process implementation of app.Store. Every write that spans
// users and leaderboard entries happens under one lock, so it is all-or-nothing.
type Store struct {
	mu           sync.RWMutex
	users        map[string]domain.User
	byRegisterNo map[string]string
	byEmail      map[string]string
	questions    map[string]domain.Question
	questionIDs  []string
	leaderboard  []domain.LeaderboardEntry
	seq          int64
	settings     *domain.Settings
	newID        func() string
}

func NewStore() *Store {
	return &Store{
		users:        make(map[string]domain.User),
		byRegisterNo: make(map[string]string),
		byEmail:      make(map[string]string),
		questions:    make(map[string]domain.Question),
		newID:        uuid.NewString,
	}
}

// ListQuestions returns the pool in creation order.
func (s *Store) ListQuestions(_ context.Context) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Question, 0, len(s.questionIDs))
	for _, id := range s.questionIDs {
		out = append(out, cloneQuestion(s.questions[id]))
	}
	return out, nil
}

func (s *Store) GetQuestions(_ context.Context, ids []string) (map[string]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]domain.Question, len(ids))
	for _, id := range ids {
		if q, ok := s.questions[id]; ok {
			out[id] = cloneQuestion(q)
		}
	}
	return out, nil
}

func (s *Store) GetQuestion(_ context.Context, id string) (domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.questions[id]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return cloneQuestion(q), nil
}

func (s *Store) CreateQuestion(_ context.Context, q domain.Question) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if q.ID == "" {
		q.ID = s.newID()
	}
	if _, exists := s.questions[q.ID]; !exists {
		s.questionIDs = append(s.questionIDs, q.ID)
	}
	s.questions[q.ID] = cloneQuestion(q)
	return cloneQuestion(q), nil
}

func (s *Store) UpdateQuestion(_ context.Context, q domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[q.ID]; !ok {
		return domain.ErrQuestionNotFound
	}
	s.questions[q.ID] = cloneQuestion(q)
	return nil
}

func (s *Store) DeleteQuestion(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[id]; !ok {
		return domain.ErrQuestionNotFound
	}
	delete(s.questions, id)
	for i, qid := range s.questionIDs {
		if qid == id {
			s.questionIDs = append(s.questionIDs[:i], s.questionIDs[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) GetSettings(_ context.Context) (domain.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings == nil {
		return domain.DefaultSettings(), nil
	}
	return *s.settings, nil
}

func (s *Store) SaveSettings(_ context.Context, settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = &settings
	return nil
}

func (s *Store) CreateUser(_ context.Context, u domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byRegisterNo[u.RegisterNo]; taken {
		return domain.User{}, domain.ErrUserExists
	}
	if _, taken := s.byEmail[u.Email]; taken {
		return domain.User{}, domain.ErrUserExists
	}
	if u.ID == "" {
		u.ID = s.newID()
	}
	s.users[u.ID] = cloneUser(u)
	s.byRegisterNo[u.RegisterNo] = u.ID
	s.byEmail[u.Email] = u.ID
	return cloneUser(u), nil
}

func (s *Store) GetUser(_ context.Context, id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (s *Store) FindUserByRegisterNo(ctx context.Context, registerNo string) (domain.User, error) {
	s.mu.RLock()
	id, ok := s.byRegisterNo[registerNo]
	s.mu.RUnlock()
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return s.GetUser(ctx, id)
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (domain.User, error) {
	s.mu.RLock()
	id, ok := s.byEmail[email]
	s.mu.RUnlock()
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return s.GetUser(ctx, id)
}

// ListUsers returns users in registration order.
func (s *Store) ListUsers(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RegisteredAt.Equal(out[j].RegisteredAt) {
			return out[i].RegisteredAt.Before(out[j].RegisteredAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) SaveAssignment(_ context.Context, userID string, a domain.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	if u.HasAttempted {
		return domain.ErrAlreadyAttempted
	}
	a.Apply(&u)
	s.users[userID] = u
	return nil
}

func (s *Store) CompleteAttempt(_ context.Context, userID string, result domain.AttemptResult, entry domain.LeaderboardEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	if u.HasAttempted {
		return domain.ErrAlreadyAttempted
	}
	if !result.GradedAgainst(u) {
		return domain.ErrAssignmentChanged
	}
	result.Responses = cloneResponses(result.Responses)
	result.Apply(&u)
	s.users[userID] = u

	s.seq++
	entry.Seq = s.seq
	s.leaderboard = append(s.leaderboard, entry)
	return nil
}

func (s *Store) ResetAttempt(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	domain.ResetAttempt(&u)
	s.users[userID] = u

	kept := s.leaderboard[:0]
	for _, e := range s.leaderboard {
		if e.UserID != userID {
			kept = append(kept, e)
		}
	}
	s.leaderboard = kept
	return nil
}

func (s *Store) WipeAll(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.users)
	s.users = make(map[string]domain.User)
	s.byRegisterNo = make(map[string]string)
	s.byEmail = make(map[string]string)
	s.leaderboard = nil
	return n, nil
}

// TopEntries orders by score descending, then by insertion sequence.
func (s *Store) TopEntries(_ context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	s.mu.RLock()
	entries := append([]domain.LeaderboardEntry(nil), s.leaderboard...)
	s.mu.RUnlock()

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Seq < entries[j].Seq
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func cloneQuestion(q domain.Question) domain.Question {
	q.Options = append([]domain.Option(nil), q.Options...)
	return q
}

func cloneUser(u domain.User) domain.User {
	u.AssignedQuestions = append([]string{}, u.AssignedQuestions...)
	if u.QuizStartedAt != nil {
		t := *u.QuizStartedAt
		u.QuizStartedAt = &t
	}
	if u.SubmittedAt != nil {
		t := *u.SubmittedAt
		u.SubmittedAt = &t
	}
	u.Responses = cloneResponses(u.Responses)
	return u
}

func cloneResponses(in []domain.Response) []domain.Response {
	out := make([]domain.Response, 0, len(in))
	for _, r := range in {
		r.CorrectAnswer = append([]string{}, r.CorrectAnswer...)
		r.UserAnswer.Options = append([]string(nil), r.UserAnswer.Options...)
		out = append(out, r)
	}
	return out
}
