package app_test

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"exam-quiz-service/internal/app"
	"exam-quiz-service/internal/domain"
	"exam-quiz-service/internal/infra/memory"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	store *memory.Store
	clock *fakeClock
	board *app.Leaderboard
	quiz  *app.QuizService
	admin *app.AdminService
}

func newFixture(t *testing.T, opts ...app.Option) *fixture {
	t.Helper()
	store := memory.NewStore()
	clock := newFakeClock()
	board := app.NewLeaderboard(store, nil)
	base := []app.Option{
		app.WithClock(clock.Now),
		app.WithRand(rand.New(rand.NewSource(7))),
		app.WithGuard(app.NewAttemptGuard(memory.NewAttemptLocker(), time.Minute)),
		app.WithLeaderboard(board),
	}
	return &fixture{
		store: store,
		clock: clock,
		board: board,
		quiz:  app.NewQuizService(store, append(base, opts...)...),
		admin: app.NewAdminService(store, board, nil),
	}
}

func (f *fixture) configure(t *testing.T, active bool, perUser, duration int) {
	t.Helper()
	err := f.store.SaveSettings(context.Background(), domain.Settings{
		IsActive:            active,
		QuizDurationSeconds: duration,
		QuestionsPerUser:    perUser,
		Title:               "Quiz",
	})
	if err != nil {
		t.Fatalf("save settings: %v", err)
	}
}

func (f *fixture) addQuestion(t *testing.T, q domain.Question) domain.Question {
	t.Helper()
	created, err := f.store.CreateQuestion(context.Background(), q)
	if err != nil {
		t.Fatalf("create question: %v", err)
	}
	return created
}

// seedScenario adds the three-question pool worth 6 marks.
func (f *fixture) seedScenario(t *testing.T) {
	t.Helper()
	for _, q := range scenarioQuestions() {
		f.addQuestion(t, q)
	}
}

func (f *fixture) register(t *testing.T, name, registerNo string) domain.User {
	t.Helper()
	reg, err := f.quiz.Register(context.Background(), app.RegisterInput{
		Name:       name,
		RegisterNo: registerNo,
		Email:      registerNo + "@example.com",
	})
	if err != nil {
		t.Fatalf("register %s: %v", registerNo, err)
	}
	return reg.User
}

func scenarioQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:    "q1",
			Text:  "Pick the first option",
			Type:  domain.QuestionSingle,
			Marks: 1,
			Options: []domain.Option{
				{ID: "opt1", Text: "first", IsCorrect: true},
				{ID: "opt2", Text: "second"},
				{ID: "opt3", Text: "third"},
			},
		},
		{
			ID:    "q2",
			Text:  "Pick the first two options",
			Type:  domain.QuestionMultiple,
			Marks: 2,
			Options: []domain.Option{
				{ID: "opt1", Text: "first", IsCorrect: true},
				{ID: "opt2", Text: "second", IsCorrect: true},
				{ID: "opt3", Text: "third"},
			},
		},
		{
			ID:    "q3",
			Text:  "Pick the second option",
			Type:  domain.QuestionSingle,
			Marks: 3,
			Options: []domain.Option{
				{ID: "opt1", Text: "first"},
				{ID: "opt2", Text: "second", IsCorrect: true},
			},
		},
	}
}

func correctAnswers() []domain.SubmittedAnswer {
	return []domain.SubmittedAnswer{
		{QuestionID: "q1", SelectedOption: "opt1"},
		{QuestionID: "q2", SelectedOptions: []string{"opt2", "opt1"}},
		{QuestionID: "q3", SelectedOption: "opt2"},
	}
}
