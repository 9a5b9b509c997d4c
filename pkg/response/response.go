package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/csr-bridge/backend/internal/apperr"
)

// TruncatedHeader is set on listing responses cut short by the listing bound.
const TruncatedHeader = "X-Result-Truncated"

// Body is the standard API response envelope.
type Body struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// listBody keeps data present for empty listings.
type listBody struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

// OK sends a 200 JSON response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Body{Success: true, Data: data})
}

// List sends a 200 listing. items must be non-nil so it encodes as [].
func List(c *gin.Context, items interface{}, truncated bool) {
	if truncated {
		c.Header(TruncatedHeader, "true")
	}
	c.JSON(http.StatusOK, listBody{Success: true, Data: items})
}

// Created sends a 201 JSON response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Body{Success: true, Data: data})
}

// BadRequest sends 400 with error message.
func BadRequest(c *gin.Context, err string) {
	c.JSON(http.StatusBadRequest, Body{Success: false, Error: err})
}

// Unauthorized sends 401.
func Unauthorized(c *gin.Context, err string) {
	c.JSON(http.StatusUnauthorized, Body{Success: false, Error: err})
}

// Forbidden sends 403.
func Forbidden(c *gin.Context, err string) {
	c.JSON(http.StatusForbidden, Body{Success: false, Error: err})
}

// NotFound sends 404.
func NotFound(c *gin.Context, err string) {
	c.JSON(http.StatusNotFound, Body{Success: false, Error: err})
}

// Conflict sends 409.
func Conflict(c *gin.Context, err string) {
	c.JSON(http.StatusConflict, Body{Success: false, Error: err})
}

// ServiceUnavailable sends 503.
func ServiceUnavailable(c *gin.Context, err string) {
	c.JSON(http.StatusServiceUnavailable, Body{Success: false, Error: err})
}

// Internal sends 500.
func Internal(c *gin.Context, err string) {
	c.JSON(http.StatusInternalServerError, Body{Success: false, Error: err})
}

// Error maps err onto the envelope by its apperr kind. Errors of no known
// kind are logged and reported as a bare 500.
func Error(c *gin.Context, err error, logger *zap.Logger) {
	msg := apperr.Message(err)
	switch {
	case errors.Is(err, apperr.ErrValidation):
		BadRequest(c, msg)
	case errors.Is(err, apperr.ErrUnauthenticated):
		Unauthorized(c, msg)
	case errors.Is(err, apperr.ErrForbidden):
		Forbidden(c, msg)
	case errors.Is(err, apperr.ErrNotFound):
		NotFound(c, msg)
	case errors.Is(err, apperr.ErrConflict):
		Conflict(c, msg)
	default:
		if logger != nil {
			logger.Error("request failed",
				zap.String("method", c.Request.Method),
				zap.String("path", c.FullPath()),
				zap.Error(err),
			)
		}
		Internal(c, "internal server error")
	}
}
