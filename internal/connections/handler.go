package connections

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/csr-bridge/backend/internal/access"
	"github.com/csr-bridge/backend/internal/apperr"
	"github.com/csr-bridge/backend/internal/middleware"
	"github.com/csr-bridge/backend/internal/models"
	"github.com/csr-bridge/backend/internal/store"
	"github.com/csr-bridge/backend/pkg/queue"
	"github.com/csr-bridge/backend/pkg/response"
)

// CreateRequest is the body for POST /connections.
type CreateRequest struct {
	EventID    string  `json:"event_id" binding:"required"`
	BusinessID string  `json:"business_id" binding:"required"`
	Notes      *string `json:"notes"`
}

func (r *CreateRequest) input() models.ConnectionInput {
	return models.ConnectionInput{EventID: r.EventID, BusinessID: r.BusinessID, Notes: r.Notes}
}

// Validate runs the model checks.
func (r *CreateRequest) Validate() error {
	_, err := r.input().Clean()
	return err
}

// Enqueuer schedules repair of connections whose event summary was not written.
type Enqueuer interface {
	EnqueueConnectionSummary(ctx context.Context, payload queue.ConnectionSummaryPayload) error
}

// Handler handles connection HTTP endpoints.
type Handler struct {
	store   store.Store
	policy  *access.Policy
	repairs Enqueuer
	limit   int
	logger  *zap.Logger
	now     func() time.Time
}

// NewHandler creates a connection handler. repairs may be nil, in which case
// partial writes are only logged.
func NewHandler(s store.Store, policy *access.Policy, repairs Enqueuer, limit int, logger *zap.Logger) *Handler {
	return &Handler{store: s, policy: policy, repairs: repairs, limit: limit, logger: logger, now: time.Now}
}

// Create handles POST /connections (corporates only).
func (h *Handler) Create(c *gin.Context) {
	req := middleware.Body[CreateRequest](c)
	user := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	if err := access.Authorize(user, access.CreateConnection); err != nil {
		response.Error(c, err, h.logger)
		return
	}
	in, err := req.input().Clean()
	if err != nil {
		response.Error(c, err, h.logger)
		return
	}
	if err := h.mustExist(ctx, in); err != nil {
		response.Error(c, err, h.logger)
		return
	}

	conn, err := models.NewConnection(user, in, h.now())
	if err != nil {
		response.Error(c, err, h.logger)
		return
	}

	if err := h.store.CreateConnection(ctx, conn); err != nil {
		var partial *store.PartialWriteError
		if errors.As(err, &partial) {
			h.repair(ctx, partial)
			response.Internal(c, "internal server error")
			return
		}
		response.Error(c, err, h.logger)
		return
	}
	response.Created(c, conn)
}

func (h *Handler) mustExist(ctx context.Context, in models.ConnectionInput) error {
	if _, err := h.store.GetEvent(ctx, in.EventID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("event not found")
		}
		return err
	}
	if _, err := h.store.GetBusiness(ctx, in.BusinessID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("business not found")
		}
		return err
	}
	return nil
}

// repair logs a partial write and, when a queue is configured, schedules the
// missing event summary. The request may already be cancelled, so the
// enqueue runs on a detached context.
func (h *Handler) repair(ctx context.Context, partial *store.PartialWriteError) {
	conn := partial.Connection
	fields := []zap.Field{
		zap.String("connection_id", conn.ID),
		zap.String("event_id", conn.EventID),
		zap.Error(partial.Err),
	}
	if h.repairs == nil {
		h.logger.Error("connection stored without event summary; no repair queue configured", fields...)
		return
	}
	h.logger.Error("connection stored without event summary; scheduling repair", fields...)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	payload := queue.ConnectionSummaryPayload{EventID: conn.EventID, Summary: conn.Summary()}
	if err := h.repairs.EnqueueConnectionSummary(ctx, payload); err != nil {
		h.logger.Error("failed to enqueue connection summary repair", append(fields, zap.NamedError("enqueue_error", err))...)
	}
}

// List handles GET /connections. Visibility depends on the role.
func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()
	f, err := h.policy.Connections(ctx, middleware.CurrentUser(c))
	if err != nil {
		response.Error(c, err, h.logger)
		return
	}
	page, err := h.store.ListConnections(ctx, f, h.limit)
	if err != nil {
		response.Error(c, err, h.logger)
		return
	}
	response.List(c, page.Items, page.Truncated)
}
