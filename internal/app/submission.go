package app

import (
	"context"
	"fmt"
	"time"

	"exam-quiz-service/internal/domain"
	"go.uber.org/zap"
)

// SubmitResult is returned to the quiz taker after grading.
type SubmitResult struct {
	Score            int               `json:"score"`
	CorrectAnswers   int               `json:"correctAnswers"`
	TotalQuestions   int               `json:"totalQuestions"`
	TimeTakenSeconds int64             `json:"timeTaken"`
	Responses        []domain.Response `json:"responses"`
}

// Submit grades the user's answers against their assignment and records the
// attempt exactly once. It must not be blindly retried by callers.
func (s *QuizService) Submit(ctx context.Context, userID string, answers []domain.SubmittedAnswer) (SubmitResult, error) {
	res, err := s.submit(ctx, userID, answers)
	s.metrics.ObserveSubmission(outcome(err), res.Score)
	return res, err
}

func (s *QuizService) submit(ctx context.Context, userID string, answers []domain.SubmittedAnswer) (SubmitResult, error) {
	if userID == "" || len(answers) == 0 {
		return SubmitResult{}, domain.Invalid("Invalid submission data")
	}

	unlock, err := s.guard.Acquire(ctx, userID)
	if err != nil {
		return SubmitResult{}, err
	}
	defer unlock()

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return SubmitResult{}, err
	}
	if err := s.guard.Check(user); err != nil {
		return SubmitResult{}, err
	}
	if len(user.AssignedQuestions) == 0 {
		return SubmitResult{}, domain.ErrInvalidState
	}

	now := s.now()
	if s.enforceTimer && user.QuizStartedAt != nil {
		settings, err := s.store.GetSettings(ctx)
		if err != nil {
			return SubmitResult{}, fmt.Errorf("load settings: %w", err)
		}
		deadline := user.QuizStartedAt.Add(time.Duration(durationSeconds(settings))*time.Second + s.grace)
		if now.After(deadline) {
			return SubmitResult{}, domain.ErrTimeExpired
		}
	}

	questions, err := s.store.GetQuestions(ctx, user.AssignedQuestions)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("load assigned questions: %w", err)
	}
	report := Grade(user.AssignedQuestions, questions, answers)
	timeTaken := timeTakenSeconds(user.QuizStartedAt, now)

	result := domain.AttemptResult{
		Score:             report.Score,
		CorrectAnswers:    report.CorrectAnswers,
		TotalQuestions:    report.TotalQuestions,
		SubmittedAt:       now,
		Responses:         report.Responses,
		AssignedQuestions: user.AssignedQuestions,
		QuizStartedAt:     user.QuizStartedAt,
	}
	entry := domain.LeaderboardEntry{
		UserID:           user.ID,
		Name:             user.Name,
		RegisterNo:       user.RegisterNo,
		Score:            report.Score,
		CorrectAnswers:   report.CorrectAnswers,
		TotalQuestions:   report.TotalQuestions,
		TimeTakenSeconds: timeTaken,
		SubmittedAt:      now,
	}
	if err := s.store.CompleteAttempt(ctx, userID, result, entry); err != nil {
		return SubmitResult{}, err
	}

	s.log.Info("submission graded",
		zap.String("userId", userID),
		zap.Int("score", report.Score),
		zap.Int("correct", report.CorrectAnswers),
		zap.Int("total", report.TotalQuestions),
		zap.Int64("timeTaken", timeTaken),
	)
	if s.board != nil {
		s.board.Publish(ctx)
	}

	return SubmitResult{
		Score:            report.Score,
		CorrectAnswers:   report.CorrectAnswers,
		TotalQuestions:   report.TotalQuestions,
		TimeTakenSeconds: timeTaken,
		Responses:        report.Responses,
	}, nil
}

// timeTakenSeconds floors the elapsed time, clamping to zero when the start is unknown or in the future.
func timeTakenSeconds(startedAt *time.Time, submittedAt time.Time) int64 {
	if startedAt == nil {
		return 0
	}
	elapsed := submittedAt.Sub(*startedAt)
	if elapsed <= 0 {
		return 0
	}
	return int64(elapsed / time.Second)
}
