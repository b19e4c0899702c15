package app

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"exam-quiz-service/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// AdminService backs the admin console: question management, settings and reporting.
type AdminService struct {
	store Store
	board *Leaderboard
	log   *zap.Logger
	now   func() time.Time
}

func NewAdminService(store Store, board *Leaderboard, log *zap.Logger) *AdminService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminService{store: store, board: board, log: log, now: time.Now}
}

// OptionInput is an option as typed by an admin; ids are assigned positionally.
type OptionInput struct {
	Text      string `json:"text" validate:"required"`
	IsCorrect bool   `json:"isCorrect"`
}

// QuestionInput is the admin form for creating or replacing a question.
type QuestionInput struct {
	Question string        `json:"question" validate:"required"`
	Type     string        `json:"type" validate:"required,oneof=single multiple"`
	Marks    int           `json:"marks" validate:"gte=0"`
	Category string        `json:"category"`
	Options  []OptionInput `json:"options" validate:"required,min=2,dive"`
}

func (in QuestionInput) toQuestion() domain.Question {
	opts := make([]domain.Option, 0, len(in.Options))
	for _, o := range in.Options {
		opts = append(opts, domain.Option{Text: o.Text, IsCorrect: o.IsCorrect})
	}
	return domain.NormalizeQuestion(domain.Question{
		Text:     in.Question,
		Type:     domain.QuestionType(in.Type),
		Marks:    in.Marks,
		Category: in.Category,
		Options:  opts,
	})
}

func (a *AdminService) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	return a.store.ListQuestions(ctx)
}

// CreateQuestion validates and stores a new question.
func (a *AdminService) CreateQuestion(ctx context.Context, in QuestionInput) (domain.Question, error) {
	q, err := a.buildQuestion(in)
	if err != nil {
		return domain.Question{}, err
	}
	q.CreatedAt = a.now()
	created, err := a.store.CreateQuestion(ctx, q)
	if err != nil {
		return domain.Question{}, err
	}
	a.log.Info("question added", zap.String("questionId", created.ID), zap.String("type", string(created.Type)))
	return created, nil
}

// UpdateQuestion replaces a question. Once a question is assigned to any user
// its type, marks and options are frozen; only text and category may change.
func (a *AdminService) UpdateQuestion(ctx context.Context, id string, in QuestionInput) (domain.Question, error) {
	current, err := a.store.GetQuestion(ctx, id)
	if err != nil {
		return domain.Question{}, err
	}
	next, err := a.buildQuestion(in)
	if err != nil {
		return domain.Question{}, err
	}
	next.ID = current.ID
	next.CreatedAt = current.CreatedAt

	if !sameAnswerKey(current, next) {
		inUse, err := a.questionInUse(ctx, id)
		if err != nil {
			return domain.Question{}, err
		}
		if inUse {
			return domain.Question{}, domain.Invalid("Question is already assigned; only its text and category can change")
		}
	}
	if err := a.store.UpdateQuestion(ctx, next); err != nil {
		return domain.Question{}, err
	}
	a.log.Info("question updated", zap.String("questionId", id))
	return next, nil
}

func (a *AdminService) DeleteQuestion(ctx context.Context, id string) error {
	if err := a.store.DeleteQuestion(ctx, id); err != nil {
		return err
	}
	a.log.Info("question deleted", zap.String("questionId", id))
	return nil
}

func (a *AdminService) buildQuestion(in QuestionInput) (domain.Question, error) {
	if err := validate.Struct(in); err != nil {
		return domain.Question{}, domain.Invalid("Missing required fields")
	}
	q := in.toQuestion()
	if err := domain.ValidateQuestion(q); err != nil {
		return domain.Question{}, err
	}
	return q, nil
}

func (a *AdminService) questionInUse(ctx context.Context, id string) (bool, error) {
	users, err := a.store.ListUsers(ctx)
	if err != nil {
		return false, err
	}
	for _, u := range users {
		for _, assigned := range u.AssignedQuestions {
			if assigned == id {
				return true, nil
			}
		}
	}
	return false, nil
}

func sameAnswerKey(a, b domain.Question) bool {
	if a.Type != b.Type || a.MarksOrDefault() != b.MarksOrDefault() || len(a.Options) != len(b.Options) {
		return false
	}
	for i := range a.Options {
		if a.Options[i] != b.Options[i] {
			return false
		}
	}
	return true
}

// SettingsPatch carries the fields an admin wants to change; nil fields keep their value.
type SettingsPatch struct {
	IsActive         *bool   `json:"isActive"`
	QuizDuration     *int    `json:"quizDuration" validate:"omitempty,gt=0"`
	QuestionsPerUser *int    `json:"questionsPerUser" validate:"omitempty,gt=0"`
	Title            *string `json:"title"`
	Description      *string `json:"description"`
}

func (a *AdminService) GetSettings(ctx context.Context) (domain.Settings, error) {
	return a.store.GetSettings(ctx)
}

// UpdateSettings merges the patch into the stored settings. Applying the same patch twice is a no-op.
func (a *AdminService) UpdateSettings(ctx context.Context, patch SettingsPatch) (domain.Settings, error) {
	if err := validate.Struct(patch); err != nil {
		return domain.Settings{}, domain.Invalid("quizDuration and questionsPerUser must be positive")
	}
	settings, err := a.store.GetSettings(ctx)
	if err != nil {
		return domain.Settings{}, err
	}
	if patch.IsActive != nil {
		settings.IsActive = *patch.IsActive
	}
	if patch.QuizDuration != nil {
		settings.QuizDurationSeconds = *patch.QuizDuration
	}
	if patch.QuestionsPerUser != nil {
		settings.QuestionsPerUser = *patch.QuestionsPerUser
	}
	if patch.Title != nil {
		settings.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		settings.Description = strings.TrimSpace(*patch.Description)
	}
	settings.UpdatedAt = a.now()
	if err := a.store.SaveSettings(ctx, settings); err != nil {
		return domain.Settings{}, err
	}
	a.log.Info("settings updated",
		zap.Bool("isActive", settings.IsActive),
		zap.Int("quizDuration", settings.QuizDurationSeconds),
		zap.Int("questionsPerUser", settings.QuestionsPerUser),
	)
	return settings, nil
}

// Activate opens the quiz.
func (a *AdminService) Activate(ctx context.Context) (domain.Settings, error) {
	active := true
	return a.UpdateSettings(ctx, SettingsPatch{IsActive: &active})
}

// Statistics are the dashboard aggregates.
type Statistics struct {
	TotalUsers     int     `json:"totalUsers"`
	AttemptedUsers int     `json:"attemptedUsers"`
	PendingUsers   int     `json:"pendingUsers"`
	AverageScore   float64 `json:"averageScore"`
	CompletionRate float64 `json:"completionRate"`
}

// Dashboard is the admin overview.
type Dashboard struct {
	Statistics  Statistics           `json:"statistics"`
	Leaderboard []domain.RankedEntry `json:"leaderboard"`
	Settings    domain.Settings      `json:"settings"`
}

// Dashboard loads users, the top of the leaderboard and settings in parallel.
func (a *AdminService) Dashboard(ctx context.Context) (Dashboard, error) {
	var (
		users    []domain.User
		top      domain.Leaderboard
		settings domain.Settings
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = a.store.ListUsers(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		top, err = a.board.TopN(gctx, 10)
		return err
	})
	g.Go(func() error {
		var err error
		settings, err = a.store.GetSettings(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, fmt.Errorf("load dashboard: %w", err)
	}
	return Dashboard{
		Statistics:  aggregate(users),
		Leaderboard: top.Entries,
		Settings:    settings,
	}, nil
}

func aggregate(users []domain.User) Statistics {
	stats := Statistics{TotalUsers: len(users)}
	total := 0
	for _, u := range users {
		if u.HasAttempted {
			stats.AttemptedUsers++
			total += u.Score
		}
	}
	stats.PendingUsers = stats.TotalUsers - stats.AttemptedUsers
	if stats.AttemptedUsers > 0 {
		stats.AverageScore = round2(float64(total) / float64(stats.AttemptedUsers))
	}
	if stats.TotalUsers > 0 {
		stats.CompletionRate = round2(float64(stats.AttemptedUsers) / float64(stats.TotalUsers) * 100)
	}
	return stats
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// DetailedResponse is a response with the full live question attached, for admins.
type DetailedResponse struct {
	domain.Response
	Question string              `json:"question"`
	Type     domain.QuestionType `json:"type"`
	Options  []domain.Option     `json:"options"`
}

// UserDetails is the admin view of one user.
type UserDetails struct {
	User      domain.User        `json:"user"`
	Responses []DetailedResponse `json:"responses"`
}

func (a *AdminService) UserDetails(ctx context.Context, userID string) (UserDetails, error) {
	user, err := a.store.GetUser(ctx, userID)
	if err != nil {
		return UserDetails{}, err
	}
	details := UserDetails{User: user, Responses: []DetailedResponse{}}
	if len(user.Responses) == 0 {
		return details, nil
	}
	ids := make([]string, 0, len(user.Responses))
	for _, r := range user.Responses {
		ids = append(ids, r.QuestionID)
	}
	questions, err := a.store.GetQuestions(ctx, ids)
	if err != nil {
		return UserDetails{}, err
	}
	for _, r := range user.Responses {
		d := DetailedResponse{Response: r, Question: "Unknown Question", Type: domain.QuestionSingle, Options: []domain.Option{}}
		if q, ok := questions[r.QuestionID]; ok {
			d.Question = q.Text
			d.Type = q.Type
			d.Options = q.Options
		}
		details.Responses = append(details.Responses, d)
	}
	return details, nil
}

// ResetUser lets a single user retake the quiz.
func (a *AdminService) ResetUser(ctx context.Context, userID string) error {
	return a.board.Reset(ctx, userID)
}

// WipeAllUsers deletes every user and leaderboard entry.
func (a *AdminService) WipeAllUsers(ctx context.Context) (int, error) {
	return a.board.WipeAll(ctx)
}
