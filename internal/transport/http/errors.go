package http

import (
	"errors"
	"net/http"

	"exam-quiz-service/internal/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusFor maps engine errors to a status code and a stable message.
// Anything unrecognised is an infrastructure failure and maps to 500.
func statusFor(err error) (int, string) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Msg
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, domain.ErrQuestionNotFound):
		return http.StatusNotFound, "Question not found"
	case errors.Is(err, domain.ErrNoQuestions):
		return http.StatusNotFound, "No questions available"
	case errors.Is(err, domain.ErrAlreadyAttempted):
		return http.StatusBadRequest, "Quiz already attempted"
	case errors.Is(err, domain.ErrQuizInactive):
		return http.StatusBadRequest, "Quiz is not active"
	case errors.Is(err, domain.ErrInvalidState):
		return http.StatusBadRequest, "Quiz was not started"
	case errors.Is(err, domain.ErrNotAttempted):
		return http.StatusBadRequest, "Quiz not attempted yet"
	case errors.Is(err, domain.ErrTimeExpired):
		return http.StatusBadRequest, "Quiz time has expired"
	case errors.Is(err, domain.ErrSubmissionInProgress):
		return http.StatusConflict, "Submission already in progress"
	case errors.Is(err, domain.ErrAssignmentChanged):
		return http.StatusConflict, "Quiz was restarted, please submit again"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "Unauthorized: Invalid admin key"
	default:
		return http.StatusInternalServerError, ""
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// fail writes err as JSON. Internal failures are logged and answered with
// fallback so store details never reach the client.
func (h *Handler) fail(c *gin.Context, err error, fallback string) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error(fallback, zap.Error(err), zap.String("route", c.FullPath()))
		msg = fallback
	}
	c.JSON(status, errorResponse{Error: msg})
}
