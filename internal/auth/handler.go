package auth

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/csr-bridge/backend/internal/apperr"
	"github.com/csr-bridge/backend/internal/middleware"
	"github.com/csr-bridge/backend/internal/models"
	"github.com/csr-bridge/backend/internal/store"
	"github.com/csr-bridge/backend/pkg/response"
	"github.com/csr-bridge/backend/pkg/utils"
)

const tokenType = "bearer"

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	Email        string  `json:"email" binding:"required,email"`
	Password     string  `json:"password" binding:"required"`
	Name         string  `json:"name" binding:"required"`
	Role         string  `json:"role" binding:"required"`
	Organization *string `json:"organization"`
	Phone        *string `json:"phone"`
}

func (r *RegisterRequest) params() models.NewUserParams {
	return models.NewUserParams{
		Email:        r.Email,
		Name:         r.Name,
		Role:         r.Role,
		Organization: r.Organization,
		Phone:        r.Phone,
	}
}

// Validate checks the password bounds and the user fields.
func (r *RegisterRequest) Validate() error {
	if err := utils.ValidatePassword(r.Password); err != nil {
		return apperr.Invalid("%s", err.Error())
	}
	_, err := r.params().Clean()
	return err
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Validate is a no-op; presence is checked by the binding tags.
func (r *LoginRequest) Validate() error { return nil }

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	AccessToken string            `json:"access_token"`
	TokenType   string            `json:"token_type"`
	User        models.UserPublic `json:"user"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	users  store.Users
	tokens *TokenService
	logger *zap.Logger
	now    func() time.Time
}

// NewHandler creates an auth handler.
func NewHandler(users store.Users, tokens *TokenService, logger *zap.Logger) *Handler {
	return &Handler{users: users, tokens: tokens, logger: logger, now: time.Now}
}

// Register handles POST /auth/register.
func (h *Handler) Register(c *gin.Context) {
	req := middleware.Body[RegisterRequest](c)
	ctx := c.Request.Context()

	if _, err := h.users.GetUserByEmail(ctx, req.Email); err == nil {
		response.Conflict(c, "email already registered")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		response.Error(c, err, h.logger)
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Error(c, err, h.logger)
		return
	}
	p := req.params()
	p.PasswordHash = hash
	user, err := models.NewUser(p, h.now())
	if err != nil {
		response.Error(c, err, h.logger)
		return
	}

	// The unique index catches registrations racing past the lookup above.
	if err := h.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			response.Conflict(c, "email already registered")
			return
		}
		response.Error(c, err, h.logger)
		return
	}

	h.respondWithToken(c, user, true)
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	req := middleware.Body[LoginRequest](c)

	user, err := h.users.GetUserByEmail(c.Request.Context(), req.Email)
	if errors.Is(err, store.ErrNotFound) {
		response.Unauthorized(c, "invalid email or password")
		return
	}
	if err != nil {
		response.Error(c, err, h.logger)
		return
	}

	if !utils.CheckPassword(req.Password, user.PasswordHash) {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	h.respondWithToken(c, user, false)
}

func (h *Handler) respondWithToken(c *gin.Context, user *models.User, created bool) {
	token, err := h.tokens.Issue(user.ID, h.now())
	if err != nil {
		h.logger.Error("failed to sign token", zap.String("user_id", user.ID), zap.Error(err))
		response.Internal(c, "failed to generate token")
		return
	}
	body := TokenResponse{AccessToken: token, TokenType: tokenType, User: user.ToPublic()}
	if created {
		response.Created(c, body)
		return
	}
	response.OK(c, body)
}
