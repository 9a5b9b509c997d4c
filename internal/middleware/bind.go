package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/csr-bridge/backend/internal/apperr"
	"github.com/csr-bridge/backend/pkg/response"
)

const contextBody = "body"

// Validator is implemented by request bodies with checks beyond their
// binding tags.
type Validator interface {
	Validate() error
}

// BindJSON returns a middleware that decodes the request body into a T,
// runs its binding tags and Validate, and stores it for Body. Mounted ahead
// of Authenticate, malformed input is rejected before any token or store
// access.
func BindJSON[T any, PT interface {
	*T
	Validator
}]() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body T
		if err := c.ShouldBindJSON(&body); err != nil {
			response.BadRequest(c, "invalid request: "+err.Error())
			c.Abort()
			return
		}
		if err := PT(&body).Validate(); err != nil {
			response.BadRequest(c, apperr.Message(err))
			c.Abort()
			return
		}
		c.Set(contextBody, &body)
		c.Next()
	}
}

// Body returns the request body decoded by BindJSON[T]. It panics when the
// route was not mounted behind BindJSON[T].
func Body[T any](c *gin.Context) *T {
	return c.MustGet(contextBody).(*T)
}
