package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"quizcraft-service/internal/app"
	"quizcraft-service/internal/domain"
)

type AttemptHandler struct {
	attempts *app.AttemptService
}

func NewAttemptHandler(attempts *app.AttemptService) *AttemptHandler {
	return &AttemptHandler{attempts: attempts}
}

// Submit scores and records a quiz attempt for the caller.
func (h *AttemptHandler) Submit(c *gin.Context) {
	quizID, ok := parseID(c, "quizId", "invalid quiz id")
	if !ok {
		return
	}
	var req struct {
		UserAnswers       []app.SubmittedAnswer `json:"userAnswers"`
		TimeSpent         int                   `json:"timeSpent"`
		TimeLimitExceeded bool                  `json:"timeLimitExceeded"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	id := identityFrom(c)
	attempt, quiz, err := h.attempts.Submit(c.Request.Context(), id.UserID, quizID, app.SubmitInput{
		Answers:           req.UserAnswers,
		TimeSpent:         req.TimeSpent,
		TimeLimitExceeded: req.TimeLimitExceeded,
	})
	if err != nil {
		respondServiceError(c, err, "failed to submit quiz attempt")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Quiz attempt submitted successfully!",
		"result": gin.H{
			"attemptId":      attempt.ID,
			"score":          attempt.Score,
			"correctAnswers": attempt.CorrectAnswers,
			"totalQuestions": attempt.TotalQuestions,
			"percentage":     attempt.Percentage(),
			"timeSpent":      attempt.TimeSpent,
			"attemptNumber":  attempt.AttemptNumber,
			"quiz": gin.H{
				"id":       quiz.ID,
				"title":    quiz.Title,
				"category": quiz.Category,
				"duration": quiz.Duration,
			},
			"completedAt": attempt.CompletedAt,
		},
	})
}

// Result returns one attempt, owner-scoped.
func (h *AttemptHandler) Result(c *gin.Context) {
	attemptID, ok := parseID(c, "attemptId", "invalid attempt id")
	if !ok {
		return
	}
	id := identityFrom(c)
	detail, err := h.attempts.Result(c.Request.Context(), id.UserID, attemptID)
	if err != nil {
		respondServiceError(c, err, "failed to get quiz result")
		return
	}
	attempt := detail.Attempt
	quiz := gin.H{}
	if detail.Quiz != nil {
		quiz = gin.H{
			"title":       detail.Quiz.Title,
			"category":    detail.Quiz.Category,
			"description": detail.Quiz.Description,
			"duration":    detail.Quiz.Duration,
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result": gin.H{
			"attemptId":         attempt.ID,
			"quiz":              quiz,
			"score":             attempt.Score,
			"correctAnswers":    attempt.CorrectAnswers,
			"totalQuestions":    attempt.TotalQuestions,
			"percentage":        attempt.Percentage(),
			"timeSpent":         attempt.TimeSpent,
			"timeLimitExceeded": attempt.TimeLimitExceeded,
			"attemptNumber":     attempt.AttemptNumber,
			"completedAt":       attempt.CompletedAt,
			"detailedResults":   detail.Details,
		},
	})
}

// History lists the caller's attempts across quizzes with paging.
func (h *AttemptHandler) History(c *gin.Context) {
	page := intQuery(c, "page", 1)
	limit := intQuery(c, "limit", 10)
	id := identityFrom(c)
	history, err := h.attempts.History(c.Request.Context(), id.UserID, page, limit)
	if err != nil {
		respondServiceError(c, err, "failed to get quiz history")
		return
	}
	out := make([]gin.H, 0, len(history.Attempts))
	for i := range history.Attempts {
		attempt := &history.Attempts[i]
		entry := gin.H{
			"attemptId":     attempt.ID,
			"score":         attempt.Score,
			"percentage":    attempt.Percentage(),
			"timeSpent":     attempt.TimeSpent,
			"attemptNumber": attempt.AttemptNumber,
			"completedAt":   attempt.CompletedAt,
		}
		if attempt.Quiz != nil {
			entry["quiz"] = gin.H{
				"id":       attempt.Quiz.ID,
				"title":    attempt.Quiz.Title,
				"category": attempt.Quiz.Category,
				"image":    attempt.Quiz.Image,
			}
		}
		out = append(out, entry)
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"attempts":   out,
		"pagination": history.Pagination,
	})
}

// ForQuiz lists the caller's attempts on a single quiz.
func (h *AttemptHandler) ForQuiz(c *gin.Context) {
	quizID, ok := parseID(c, "quizId", "invalid quiz id")
	if !ok {
		return
	}
	id := identityFrom(c)
	view, err := h.attempts.ForQuiz(c.Request.Context(), id.UserID, quizID)
	if err != nil {
		respondServiceError(c, err, "failed to get quiz attempts")
		return
	}
	out := make([]gin.H, 0, len(view.Attempts))
	for i := range view.Attempts {
		attempt := &view.Attempts[i]
		out = append(out, gin.H{
			"attemptId":     attempt.ID,
			"score":         attempt.Score,
			"percentage":    attempt.Percentage(),
			"timeSpent":     attempt.TimeSpent,
			"attemptNumber": attempt.AttemptNumber,
			"completedAt":   attempt.CompletedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"attempts":      out,
		"totalAttempts": view.TotalAttempts,
		"bestScore":     view.BestScore,
		"canRetake":     true,
	})
}

// Leaderboard returns the quiz-wide ranked standing.
func (h *AttemptHandler) Leaderboard(c *gin.Context) {
	quizID, ok := parseID(c, "quizId", "invalid quiz id")
	if !ok {
		return
	}
	limit := intQuery(c, "limit", 10)
	rows, err := h.attempts.Leaderboard(c.Request.Context(), quizID, limit)
	if err != nil {
		respondServiceError(c, err, "failed to get quiz leaderboard")
		return
	}
	if rows == nil {
		rows = []domain.LeaderboardRow{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "leaderboard": rows})
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
