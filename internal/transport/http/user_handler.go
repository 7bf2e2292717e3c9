package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quizcraft-service/internal/app"
)

// UserHandler exposes the admin-only account operations.
type UserHandler struct {
	users *app.UserService
}

func NewUserHandler(users *app.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "failed to fetch users")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": users})
}

func (h *UserHandler) Update(c *gin.Context) {
	userID, ok := parseID(c, "userId", "invalid user id")
	if !ok {
		return
	}
	var req struct {
		FirstName *string `json:"firstName"`
		LastName  *string `json:"lastName"`
		Email     *string `json:"email"`
		IsActive  *bool   `json:"isActive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	user, err := h.users.Update(c.Request.Context(), userID, app.UpdateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		IsActive:  req.IsActive,
	})
	if err != nil {
		respondServiceError(c, err, "failed to update user")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User updated successfully!",
		"user":    user,
	})
}

func (h *UserHandler) Delete(c *gin.Context) {
	userID, ok := parseID(c, "userId", "invalid user id")
	if !ok {
		return
	}
	user, err := h.users.Delete(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "failed to delete user")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User deleted successfully!",
		"user":    user,
	})
}
