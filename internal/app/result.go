package app

import (
	"context"
	"fmt"
	"math"
	"time"

	"exam-quiz-service/internal/domain"
)

// ReviewedResponse is a graded response with its question re-attached for review.
type ReviewedResponse struct {
	domain.Response
	Question string                `json:"question"`
	Type     domain.QuestionType   `json:"type"`
	Options  []domain.PublicOption `json:"options"`
}

// ResultView is the enriched result of a completed attempt.
type ResultView struct {
	Name               string             `json:"name"`
	RegisterNo         string             `json:"registerNo"`
	Score              int                `json:"score"`
	CorrectAnswers     int                `json:"correctAnswers"`
	TotalQuestions     int                `json:"totalQuestions"`
	TotalPossibleMarks int                `json:"totalPossibleMarks"`
	Percentage         float64            `json:"percentage"`
	SubmittedAt        *time.Time         `json:"submittedAt"`
	Responses          []ReviewedResponse `json:"responses"`
}

// Result returns the user's graded attempt. Correctness comes from the
// snapshot stored at grading time, never from the live question.
func (s *QuizService) Result(ctx context.Context, userID string) (ResultView, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return ResultView{}, err
	}
	if !user.HasAttempted {
		return ResultView{}, domain.ErrNotAttempted
	}

	ids := make([]string, 0, len(user.Responses))
	for _, r := range user.Responses {
		ids = append(ids, r.QuestionID)
	}
	questions, err := s.store.GetQuestions(ctx, ids)
	if err != nil {
		return ResultView{}, fmt.Errorf("load questions for review: %w", err)
	}

	view := ResultView{
		Name:               user.Name,
		RegisterNo:         user.RegisterNo,
		Score:              user.Score,
		CorrectAnswers:     user.CorrectAnswers,
		TotalQuestions:     user.TotalQuestions,
		TotalPossibleMarks: user.TotalPossibleMarks,
		Percentage:         percentage(user),
		SubmittedAt:        user.SubmittedAt,
		Responses:          make([]ReviewedResponse, 0, len(user.Responses)),
	}
	for _, r := range user.Responses {
		reviewed := ReviewedResponse{Response: r, Question: "Unknown Question", Type: domain.QuestionSingle}
		if q, ok := questions[r.QuestionID]; ok {
			pub := q.Sanitize()
			reviewed.Question = pub.Text
			reviewed.Type = pub.Type
			reviewed.Options = pub.Options
		}
		view.Responses = append(view.Responses, reviewed)
	}
	return view, nil
}

func percentage(u domain.User) float64 {
	total := u.TotalPossibleMarks
	if total == 0 {
		total = u.TotalQuestions
	}
	if total <= 0 {
		return 0
	}
	return math.Round(float64(u.Score)/float64(total)*10000) / 100
}
