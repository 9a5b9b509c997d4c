package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/csr-bridge/backend/internal/apperr"
	"github.com/csr-bridge/backend/internal/models"
)

func init() { gin.SetMode(gin.TestMode) }

type staticResolver map[string]*models.User

func (r staticResolver) UserFromToken(_ context.Context, token string) (*models.User, error) {
	if token == "broken" {
		return nil, errors.New("store down")
	}
	if u, ok := r[token]; ok {
		return u, nil
	}
	return nil, apperr.Unauthenticated("user not found")
}

type nameBody struct {
	Name string `json:"name" binding:"required"`
}

func (b *nameBody) Validate() error {
	if strings.ContainsAny(b.Name, "0123456789") {
		return apperr.Invalid("name must not contain digits")
	}
	return nil
}

func newRouter() *gin.Engine {
	resolver := staticResolver{
		"ngo": {ID: "priya", Role: models.RoleNGO},
		"biz": {ID: "meera", Role: models.RoleBusinessOwner},
	}
	r := gin.New()
	r.Use(CORS("http://localhost:3000"))
	r.POST("/things", BindJSON[nameBody](), Authenticate(resolver, zap.NewNop()), RequireRole(models.RoleNGO),
		func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"user": CurrentUser(c).ID, "name": Body[nameBody](c).Name})
		})
	return r
}

func send(r *gin.Engine, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/things", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMiddlewareChain(t *testing.T) {
	r := newRouter()

	cases := []struct {
		name, auth, body string
		status           int
	}{
		{"malformed json", "Bearer ngo", `{`, http.StatusBadRequest},
		{"missing field", "Bearer ngo", `{}`, http.StatusBadRequest},
		{"validate fails", "Bearer ngo", `{"name":"r2d2"}`, http.StatusBadRequest},
		{"no header", "", `{"name":"x"}`, http.StatusUnauthorized},
		{"wrong scheme", "Basic ngo", `{"name":"x"}`, http.StatusUnauthorized},
		{"unknown token", "Bearer nope", `{"name":"x"}`, http.StatusUnauthorized},
		{"resolver failure", "Bearer broken", `{"name":"x"}`, http.StatusInternalServerError},
		{"wrong role", "Bearer biz", `{"name":"x"}`, http.StatusForbidden},
		{"ok", "bearer ngo", `{"name":"x"}`, http.StatusOK},
	}
	for _, tc := range cases {
		w := send(r, tc.auth, tc.body)
		assert.Equal(t, tc.status, w.Code, tc.name)
	}

	w := send(r, "Bearer ngo", `{"name":"Showcase"}`)
	assert.JSONEq(t, `{"user":"priya","name":"Showcase"}`, w.Body.String())
}

func TestCORS(t *testing.T) {
	r := newRouter()

	req := httptest.NewRequest(http.MethodOptions, "/things", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/things", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequireRoleWithoutUser(t *testing.T) {
	r := gin.New()
	r.GET("/x", RequireRole(models.RoleNGO), func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoggerLevels(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(Logger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) {
		c.Set(ContextUser, &models.User{ID: "priya", Role: models.RoleNGO})
		c.Status(http.StatusOK)
	})
	r.GET("/fail", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, p := range []string{"/ok", "/fail"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
		assert.Equal(t, "priya", entries[0].ContextMap()["user_id"])
		assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	}
}
