package app

import (
	"context"
	"fmt"

	"exam-quiz-service/internal/domain"
	"go.uber.org/zap"
)

// AssignmentView is what a quiz taker receives: sanitized questions, the timer and the marks on offer.
type AssignmentView struct {
	Questions    []domain.PublicQuestion `json:"questions"`
	TimerSeconds int                     `json:"timer"`
	TotalMarks   int                     `json:"totalMarks"`
	Resumed      bool                    `json:"resumed"`
}

// Assign binds a random subset of the question pool to the user and starts the clock.
// Once an assignment exists it is returned unchanged unless restart is set.
func (s *QuizService) Assign(ctx context.Context, userID string, restart bool) (AssignmentView, error) {
	view, err := s.assign(ctx, userID, restart)
	s.metrics.ObserveAssignment(outcome(err))
	return view, err
}

func (s *QuizService) assign(ctx context.Context, userID string, restart bool) (AssignmentView, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return AssignmentView{}, err
	}
	if err := s.guard.Check(user); err != nil {
		return AssignmentView{}, err
	}

	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return AssignmentView{}, fmt.Errorf("load settings: %w", err)
	}
	if !settings.IsActive {
		return AssignmentView{}, domain.ErrQuizInactive
	}

	if !restart && user.QuizStartedAt != nil && len(user.AssignedQuestions) > 0 {
		view, ok, err := s.resume(ctx, user, settings)
		if err != nil {
			return AssignmentView{}, err
		}
		if ok {
			return view, nil
		}
	}

	pool, err := s.store.ListQuestions(ctx)
	if err != nil {
		return AssignmentView{}, fmt.Errorf("load question pool: %w", err)
	}
	if len(pool) == 0 {
		return AssignmentView{}, domain.ErrNoQuestions
	}

	count := settings.QuestionsPerUser
	if count <= 0 {
		count = defaultQuestionsPerUser
	}
	s.shuffle(pool)
	if count < len(pool) {
		pool = pool[:count]
	}

	assignment := domain.Assignment{
		QuestionIDs: make([]string, 0, len(pool)),
		StartedAt:   s.now(),
	}
	view := AssignmentView{
		Questions:    make([]domain.PublicQuestion, 0, len(pool)),
		TimerSeconds: durationSeconds(settings),
	}
	for _, q := range pool {
		assignment.QuestionIDs = append(assignment.QuestionIDs, q.ID)
		assignment.TotalPossibleMarks += q.MarksOrDefault()
		view.Questions = append(view.Questions, q.Sanitize())
	}
	view.TotalMarks = assignment.TotalPossibleMarks

	if err := s.store.SaveAssignment(ctx, userID, assignment); err != nil {
		return AssignmentView{}, err
	}

	s.log.Info("questions assigned",
		zap.String("userId", userID),
		zap.Int("count", len(assignment.QuestionIDs)),
		zap.Int("totalMarks", assignment.TotalPossibleMarks),
		zap.Bool("restart", restart),
	)
	return view, nil
}

// resume rebuilds the persisted assignment in its stored order. ok is false when
// none of the assigned questions survive, in which case a fresh assignment is made.
func (s *QuizService) resume(ctx context.Context, user domain.User, settings domain.Settings) (AssignmentView, bool, error) {
	found, err := s.store.GetQuestions(ctx, user.AssignedQuestions)
	if err != nil {
		return AssignmentView{}, false, fmt.Errorf("load assigned questions: %w", err)
	}
	view := AssignmentView{
		Questions:  make([]domain.PublicQuestion, 0, len(user.AssignedQuestions)),
		TotalMarks: user.TotalPossibleMarks,
		Resumed:    true,
	}
	for _, id := range user.AssignedQuestions {
		if q, ok := found[id]; ok {
			view.Questions = append(view.Questions, q.Sanitize())
		}
	}
	if len(view.Questions) == 0 {
		return AssignmentView{}, false, nil
	}

	elapsed := int(s.now().Sub(*user.QuizStartedAt).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}
	view.TimerSeconds = durationSeconds(settings) - elapsed
	if view.TimerSeconds < 0 {
		view.TimerSeconds = 0
	}
	return view, true, nil
}
