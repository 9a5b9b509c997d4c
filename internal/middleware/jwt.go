package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/csr-bridge/backend/internal/models"
	"github.com/csr-bridge/backend/pkg/response"
)

const (
	// ContextUser is the key for the authenticated *models.User in gin context.
	ContextUser = "user"
)

// UserResolver maps a bearer token to the user it names.
type UserResolver interface {
	UserFromToken(ctx context.Context, token string) (*models.User, error)
}

// Authenticate returns a middleware that resolves the bearer token to a
// stored user and sets it in context.
func Authenticate(resolver UserResolver, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		user, err := resolver.UserFromToken(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			response.Error(c, err, logger)
			c.Abort()
			return
		}
		c.Set(ContextUser, user)
		c.Next()
	}
}

// CurrentUser returns the user set by Authenticate, or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}
