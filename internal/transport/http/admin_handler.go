package http

import (
	"crypto/subtle"
	"net/http"

	"exam-quiz-service/internal/app"
	"exam-quiz-service/internal/domain"
	"github.com/gin-gonic/gin"
)

func (h *Handler) keyMatches(key string) bool {
	if key == "" || h.adminKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(h.adminKey)) == 1
}

func adminKeyFrom(c *gin.Context) string {
	if key := c.GetHeader("X-Admin-Key"); key != "" {
		return key
	}
	return c.Query("adminKey")
}

// RequireAdmin rejects requests without the shared admin key.
func (h *Handler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.keyMatches(adminKeyFrom(c)) {
			h.fail(c, domain.ErrUnauthorized, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (h *Handler) ValidateKey(c *gin.Context) {
	key := adminKeyFrom(c)
	if key == "" {
		var body struct {
			AdminKey string `json:"adminKey"`
		}
		_ = c.ShouldBindJSON(&body)
		key = body.AdminKey
	}
	if !h.keyMatches(key) {
		c.JSON(http.StatusUnauthorized, gin.H{"valid": false, "error": "Invalid admin key"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true, "message": "Admin key valid"})
}

func (h *Handler) Dashboard(c *gin.Context) {
	dash, err := h.admin.Dashboard(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Failed to get dashboard data")
		return
	}
	c.JSON(http.StatusOK, dash)
}

func (h *Handler) GetSettings(c *gin.Context) {
	settings, err := h.admin.GetSettings(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Failed to get settings")
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	var patch app.SettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid settings payload"})
		return
	}
	settings, err := h.admin.UpdateSettings(c.Request.Context(), patch)
	if err != nil {
		h.fail(c, err, "Failed to update settings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Settings updated successfully", "settings": settings})
}

func (h *Handler) Activate(c *gin.Context) {
	settings, err := h.admin.Activate(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Failed to update settings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Quiz activated", "settings": settings})
}

func (h *Handler) ListQuestions(c *gin.Context) {
	questions, err := h.admin.ListQuestions(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Failed to get questions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions})
}

func (h *Handler) CreateQuestion(c *gin.Context) {
	var in app.QuestionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Missing required fields"})
		return
	}
	q, err := h.admin.CreateQuestion(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err, "Failed to add question")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Question added successfully", "questionId": q.ID, "question": q})
}

func (h *Handler) UpdateQuestion(c *gin.Context) {
	var in app.QuestionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Missing required fields"})
		return
	}
	q, err := h.admin.UpdateQuestion(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.fail(c, err, "Failed to update question")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Question updated successfully", "question": q})
}

func (h *Handler) DeleteQuestion(c *gin.Context) {
	if err := h.admin.DeleteQuestion(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err, "Failed to delete question")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Question deleted successfully"})
}

func (h *Handler) AdminLeaderboard(c *gin.Context) {
	board, err := h.board.TopN(c.Request.Context(), defaultLeaderboardLimit)
	if err != nil {
		h.fail(c, err, "Failed to get leaderboard")
		return
	}
	c.JSON(http.StatusOK, board)
}

func (h *Handler) UserDetails(c *gin.Context) {
	details, err := h.admin.UserDetails(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.fail(c, err, "Failed to get user details")
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *Handler) ResetUser(c *gin.Context) {
	if err := h.admin.ResetUser(c.Request.Context(), c.Param("userId")); err != nil {
		h.fail(c, err, "Failed to reset user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User quiz reset successfully"})
}

// WipeAllUsers is destructive: every user and leaderboard entry is deleted.
func (h *Handler) WipeAllUsers(c *gin.Context) {
	n, err := h.admin.WipeAllUsers(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Failed to wipe users")
		return
	}
	if n == 0 {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "No users to delete", "deleted": 0})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "All users and leaderboard data wiped successfully.", "deleted": n})
}
