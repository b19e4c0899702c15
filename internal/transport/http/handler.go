package http

import (
	"exam-quiz-service/internal/app"
	"go.uber.org/zap"
)

// Handler serves the quiz-taker and admin JSON endpoints.
type Handler struct {
	quiz     *app.QuizService
	admin    *app.AdminService
	board    *app.Leaderboard
	log      *zap.Logger
	adminKey string
}

func NewHandler(quiz *app.QuizService, admin *app.AdminService, board *app.Leaderboard, adminKey string, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{quiz: quiz, admin: admin, board: board, log: log, adminKey: adminKey}
}
