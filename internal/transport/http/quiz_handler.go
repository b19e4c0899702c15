package http

import (
	"errors"
	"net/http"
	"strconv"

	"exam-quiz-service/internal/app"
	"exam-quiz-service/internal/domain"
	"github.com/gin-gonic/gin"
)

const (
	defaultLeaderboardLimit = 100
	maxLeaderboardLimit     = 1000
)

type registerResponse struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	IsExisting bool        `json:"isExisting"`
	UserID     string      `json:"userId"`
	UserData   domain.User `json:"userData"`
}

func (h *Handler) Register(c *gin.Context) {
	var in app.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Name, Register Number and Email are required"})
		return
	}
	reg, err := h.quiz.Register(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err, "Registration failed. Please try again.")
		return
	}
	resp := registerResponse{
		Success:    true,
		IsExisting: reg.IsExisting,
		UserID:     reg.User.ID,
		UserData:   reg.User,
	}
	if reg.IsExisting {
		resp.Message = "Login successful"
		c.JSON(http.StatusOK, resp)
		return
	}
	resp.Message = "Registration successful"
	c.JSON(http.StatusCreated, resp)
}

type contactCard struct {
	Name       string `json:"name"`
	RegisterNo string `json:"registerNo"`
	Email      string `json:"email"`
}

func (h *Handler) Check(c *gin.Context) {
	user, err := h.quiz.Check(c.Request.Context(), c.Param("registerNo"))
	if errors.Is(err, domain.ErrAlreadyAttempted) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You have already attempted the quiz", "attempted": true})
		return
	}
	if err != nil {
		h.fail(c, err, "Failed to check user")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"canAttempt": true,
		"userId":     user.ID,
		"user":       contactCard{Name: user.Name, RegisterNo: user.RegisterNo, Email: user.Email},
	})
}

func (h *Handler) Questions(c *gin.Context) {
	restart, _ := strconv.ParseBool(c.Query("restart"))
	view, err := h.quiz.Assign(c.Request.Context(), c.Param("userId"), restart)
	if err != nil {
		h.fail(c, err, "Failed to get questions")
		return
	}
	c.JSON(http.StatusOK, view)
}

type submitRequest struct {
	UserID  string                   `json:"userId"`
	Answers []domain.SubmittedAnswer `json:"answers"`
}

type submitResponse struct {
	Success bool `json:"success"`
	app.SubmitResult
}

func (h *Handler) Submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid submission data"})
		return
	}
	res, err := h.quiz.Submit(c.Request.Context(), req.UserID, req.Answers)
	if errors.Is(err, domain.ErrAlreadyAttempted) {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Quiz already submitted"})
		return
	}
	if err != nil {
		h.fail(c, err, "Submission failed")
		return
	}
	c.JSON(http.StatusOK, submitResponse{Success: true, SubmitResult: res})
}

func (h *Handler) Result(c *gin.Context) {
	view, err := h.quiz.Result(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.fail(c, err, "Failed to get result")
		return
	}
	c.JSON(http.StatusOK, view)
}

// Leaderboard is unauthenticated, so entries carry no userId.
func (h *Handler) Leaderboard(c *gin.Context) {
	board, err := h.board.TopN(c.Request.Context(), leaderboardLimit(c.Query("limit")))
	if err != nil {
		h.fail(c, err, "Failed to get leaderboard")
		return
	}
	c.JSON(http.StatusOK, toPublic(board))
}

// publicEntry is a leaderboard row without the user id.
type publicEntry struct {
	Rank           int    `json:"rank"`
	Name           string `json:"name"`
	RegisterNo     string `json:"registerNo"`
	Score          int    `json:"score"`
	CorrectAnswers int    `json:"correctAnswers"`
	TotalQuestions int    `json:"totalQuestions"`
	TimeTaken      int64  `json:"timeTaken"`
}

type publicBoard struct {
	Entries []publicEntry `json:"leaderboard"`
}

func toPublic(board domain.Leaderboard) publicBoard {
	out := publicBoard{Entries: make([]publicEntry, 0, len(board.Entries))}
	for _, e := range board.Entries {
		out.Entries = append(out.Entries, publicEntry{
			Rank:           e.Rank,
			Name:           e.Name,
			RegisterNo:     e.RegisterNo,
			Score:          e.Score,
			CorrectAnswers: e.CorrectAnswers,
			TotalQuestions: e.TotalQuestions,
			TimeTaken:      e.TimeTakenSeconds,
		})
	}
	return out
}

func (h *Handler) PublicLeaderboard(c *gin.Context) {
	board, err := h.board.TopN(c.Request.Context(), app.LiveLeaderboardSize)
	if err != nil {
		h.fail(c, err, "Failed to get leaderboard")
		return
	}
	c.JSON(http.StatusOK, toPublic(board))
}

func leaderboardLimit(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return defaultLeaderboardLimit
	}
	if n > maxLeaderboardLimit {
		return maxLeaderboardLimit
	}
	return n
}
