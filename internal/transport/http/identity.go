package http

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity is the authenticated caller attached to the request by the auth
// middleware. IsAdmin is resolved there exactly once, from the configured
// allowlist and the stored role; handlers only read the flag.
type Identity struct {
	UserID    uuid.UUID
	Email     string
	FirstName string
	LastName  string
	IsAdmin   bool
}

const identityKey = "quizcraft/identity"

func setIdentity(c *gin.Context, id Identity) {
	c.Set(identityKey, id)
}

// identityFrom returns the caller identity; the zero value means the route
// was reached without RequireAuth, which is a wiring bug.
func identityFrom(c *gin.Context) Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(Identity); ok {
			return id
		}
	}
	return Identity{}
}
