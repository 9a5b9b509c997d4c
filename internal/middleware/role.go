package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/csr-bridge/backend/internal/models"
	"github.com/csr-bridge/backend/pkg/response"
)

// RequireRole returns a middleware that allows only the given roles.
// It must run after Authenticate.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{})
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		if _, ok := allowed[user.Role]; !ok {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}
