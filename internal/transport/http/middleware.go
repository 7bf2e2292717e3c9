package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"quizcraft-service/internal/app"
	"quizcraft-service/internal/domain"
	"quizcraft-service/internal/logger"
)

// AuthMiddleware verifies bearer tokens and attaches the caller identity.
type AuthMiddleware struct {
	auth        *app.AuthService
	adminEmails map[string]struct{}
	log         *logger.Logger
}

// NewAuthMiddleware builds the middleware. adminEmails is the single
// configured allowlist; it is normalized once here and consulted nowhere
// else in the codebase.
func NewAuthMiddleware(auth *app.AuthService, adminEmails []string, log *logger.Logger) *AuthMiddleware {
	set := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		set[app.NormalizeEmail(email)] = struct{}{}
	}
	return &AuthMiddleware{auth: auth, adminEmails: set, log: log}
}

// RequireAuth rejects requests without a valid token and loads the caller.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false, "message": "access token is required",
			})
			return
		}
		userID, err := m.auth.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false, "message": "invalid or expired token",
			})
			return
		}
		user, err := m.auth.Profile(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false, "message": "invalid token - user not found",
			})
			return
		}
		setIdentity(c, Identity{
			UserID:    user.ID,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			IsAdmin:   m.isAdmin(user),
		})
		c.Next()
	}
}

// RequireAdmin gates admin-only routes; it assumes RequireAuth ran first.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := identityFrom(c)
		if !id.IsAdmin {
			m.log.Warn("admin access denied", "email", id.Email)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "admin access denied",
			})
			return
		}
		c.Next()
	}
}

func (m *AuthMiddleware) isAdmin(user *domain.User) bool {
	if user.Role == domain.RoleAdmin {
		return true
	}
	_, ok := m.adminEmails[user.Email]
	return ok
}

// extractToken takes a bearer header, falling back to a token query
// parameter for websocket clients that cannot set headers.
func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return header[7:]
	}
	return c.Query("token")
}
