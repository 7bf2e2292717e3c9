package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quizcraft-service/internal/app"
	"quizcraft-service/internal/domain"
)

type AuthHandler struct {
	auth *app.AuthService
}

func NewAuthHandler(auth *app.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func userJSON(user *domain.User) gin.H {
	return gin.H{
		"id":        user.ID,
		"firstName": user.FirstName,
		"lastName":  user.LastName,
		"email":     user.Email,
	}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
		Password  string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	user, token, err := h.auth.Signup(c.Request.Context(), app.SignupInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		respondServiceError(c, err, "internal server error")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Account created successfully!",
		"user":    userJSON(user),
		"token":   token,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	user, token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err, "internal server error")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful!",
		"user":    userJSON(user),
		"token":   token,
	})
}

// Me returns the caller profile with the admin flag resolved at auth time.
func (h *AuthHandler) Me(c *gin.Context) {
	id := identityFrom(c)
	user, err := h.auth.Profile(c.Request.Context(), id.UserID)
	if err != nil {
		respondServiceError(c, err, "failed to fetch user profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user": gin.H{
			"id":        user.ID,
			"firstName": user.FirstName,
			"lastName":  user.LastName,
			"email":     user.Email,
			"createdAt": user.CreatedAt,
			"isAdmin":   id.IsAdmin,
		},
	})
}

func (h *AuthHandler) AdminStatus(c *gin.Context) {
	id := identityFrom(c)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"isAdmin": id.IsAdmin,
		"email":   id.Email,
	})
}
