package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/csr-bridge/backend/internal/apperr"
)

func init() { gin.SetMode(gin.TestMode) }

func serve(t *testing.T, h gin.HandlerFunc) (*httptest.ResponseRecorder, Body) {
	t.Helper()
	r := gin.New()
	r.GET("/x", h)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	var body Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{apperr.Invalid("name is required"), http.StatusBadRequest, "name is required"},
		{apperr.Unauthenticated("invalid token"), http.StatusUnauthorized, "invalid token"},
		{apperr.Forbidden("only corporates can create connections"), http.StatusForbidden, "only corporates can create connections"},
		{fmt.Errorf("get event: %w", apperr.NotFound("event not found")), http.StatusNotFound, "event not found"},
		{apperr.Conflict("email already registered"), http.StatusConflict, "email already registered"},
	}
	for _, tc := range cases {
		w, body := serve(t, func(c *gin.Context) { Error(c, tc.err, zap.NewNop()) })
		assert.Equal(t, tc.status, w.Code)
		assert.False(t, body.Success)
		assert.Equal(t, tc.msg, body.Error)
	}
}

func TestErrorHidesInternalDetail(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	w, body := serve(t, func(c *gin.Context) {
		Error(c, errors.New("dial tcp 10.0.0.5:27017: connection refused"), zap.New(core))
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", body.Error)
	require.Equal(t, 1, logs.Len())
	assert.Contains(t, logs.All()[0].ContextMap()["error"], "connection refused")
}

func TestListTruncatedHeader(t *testing.T) {
	w, body := serve(t, func(c *gin.Context) { List(c, []string{"a"}, true) })
	assert.Equal(t, "true", w.Header().Get(TruncatedHeader))
	assert.True(t, body.Success)

	w, body = serve(t, func(c *gin.Context) { List(c, []string{}, false) })
	assert.Empty(t, w.Header().Get(TruncatedHeader))
	assert.Equal(t, []interface{}{}, body.Data)
}
