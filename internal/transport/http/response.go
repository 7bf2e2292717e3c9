package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"quizcraft-service/internal/domain"
)

func respondError(c *gin.Context, status int, message string, err error) {
	body := gin.H{"success": false, "message": message}
	if err != nil {
		body["error"] = err.Error()
	}
	c.JSON(status, body)
}

// respondServiceError translates domain errors into the uniform response
// taxonomy: validation 400, not-found 404, bad credentials 401, everything
// else an opaque 500 with the original message attached for diagnostics.
func respondServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, domain.ErrQuizNotFound),
		errors.Is(err, domain.ErrAttemptNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		respondError(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, domain.ErrEmailTaken):
		respondError(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, domain.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, err.Error(), nil)
	default:
		respondError(c, http.StatusInternalServerError, fallback, err)
	}
}
