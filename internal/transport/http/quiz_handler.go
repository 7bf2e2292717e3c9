package http

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"quizcraft-service/internal/app"
	"quizcraft-service/internal/domain"
)

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
}

type QuizHandler struct {
	quizzes       *app.QuizService
	maxImageBytes int64
}

func NewQuizHandler(quizzes *app.QuizService, maxImageBytes int64) *QuizHandler {
	return &QuizHandler{quizzes: quizzes, maxImageBytes: maxImageBytes}
}

type quizRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Category    string            `json:"category"`
	Tags        []string          `json:"tags"`
	Duration    int               `json:"duration"`
	Difficulty  string            `json:"difficulty"`
	Questions   []domain.Question `json:"questions"`
}

func (r quizRequest) input() app.QuizInput {
	return app.QuizInput{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Tags:        r.Tags,
		Duration:    r.Duration,
		Difficulty:  r.Difficulty,
		Questions:   r.Questions,
	}
}

func (h *QuizHandler) Create(c *gin.Context) {
	var req quizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	quiz, err := h.quizzes.Create(c.Request.Context(), req.input())
	if err != nil {
		respondServiceError(c, err, "failed to create quiz")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Quiz created successfully!",
		"quiz":    quiz,
	})
}

func (h *QuizHandler) List(c *gin.Context) {
	quizzes, err := h.quizzes.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "failed to fetch quizzes")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "quizzes": quizzes})
}

func (h *QuizHandler) Get(c *gin.Context) {
	quizID, ok := parseID(c, "quizId", "invalid quiz id")
	if !ok {
		return
	}
	quiz, err := h.quizzes.Get(c.Request.Context(), quizID)
	if err != nil {
		respondServiceError(c, err, "failed to fetch quiz")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "quiz": quiz})
}

func (h *QuizHandler) Update(c *gin.Context) {
	quizID, ok := parseID(c, "quizId", "invalid quiz id")
	if !ok {
		return
	}
	var req quizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	quiz, err := h.quizzes.Update(c.Request.Context(), quizID, req.input())
	if err != nil {
		respondServiceError(c, err, "failed to update quiz")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Quiz updated successfully!",
		"quiz":    quiz,
	})
}

func (h *QuizHandler) Delete(c *gin.Context) {
	quizID, ok := parseID(c, "quizId", "invalid quiz id")
	if !ok {
		return
	}
	if err := h.quizzes.Delete(c.Request.Context(), quizID); err != nil {
		respondServiceError(c, err, "failed to delete quiz")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Quiz deleted successfully!"})
}

// UploadImage replaces the quiz's optional image from a multipart form. The
// MIME type comes from content sniffing, not the client header.
func (h *QuizHandler) UploadImage(c *gin.Context) {
	quizID, ok := parseID(c, "quizId", "invalid quiz id")
	if !ok {
		return
	}
	fileHeader, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "no image file provided", nil)
		return
	}
	if fileHeader.Size > h.maxImageBytes {
		respondError(c, http.StatusBadRequest,
			fmt.Sprintf("file too large, maximum size is %dMB", h.maxImageBytes/(1024*1024)), nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to read image", err)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, h.maxImageBytes))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to read image", err)
		return
	}
	mimeType := http.DetectContentType(data)
	if _, ok := allowedImageTypes[mimeType]; !ok {
		respondError(c, http.StatusBadRequest,
			"only image files (JPEG, PNG, GIF, WebP) are allowed", nil)
		return
	}
	quiz, err := h.quizzes.AttachImage(c.Request.Context(), quizID, domain.QuizImage{
		Data:     "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data),
		MIMEType: mimeType,
	})
	if err != nil {
		respondServiceError(c, err, "failed to attach image")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "quiz": quiz})
}

func (h *QuizHandler) RemoveImage(c *gin.Context) {
	quizID, ok := parseID(c, "quizId", "invalid quiz id")
	if !ok {
		return
	}
	quiz, err := h.quizzes.RemoveImage(c.Request.Context(), quizID)
	if err != nil {
		respondServiceError(c, err, "failed to remove image")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "quiz": quiz})
}

func parseID(c *gin.Context, param, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		respondError(c, http.StatusBadRequest, message, nil)
		return uuid.Nil, false
	}
	return id, true
}
