package events

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/csr-bridge/backend/internal/access"
	"github.com/csr-bridge/backend/internal/middleware"
	"github.com/csr-bridge/backend/internal/models"
	"github.com/csr-bridge/backend/internal/store"
	"github.com/csr-bridge/backend/pkg/response"
)

// CreateRequest is the body for POST /events.
type CreateRequest struct {
	Title                   string                 `json:"title" binding:"required"`
	Description             string                 `json:"description" binding:"required"`
	InitiativeType          string                 `json:"initiative_type" binding:"required"`
	Date                    Timestamp              `json:"date"`
	Location                string                 `json:"location" binding:"required"`
	TargetAudience          string                 `json:"target_audience" binding:"required"`
	ParticipatingBusinesses []models.EventBusiness `json:"participating_businesses"`
	InvitedCorporates       []string               `json:"invited_corporates"`
}

func (r *CreateRequest) input() models.EventInput {
	return models.EventInput{
		Title:                   r.Title,
		Description:             r.Description,
		InitiativeType:          r.InitiativeType,
		Date:                    r.Date.Time,
		Location:                r.Location,
		TargetAudience:          r.TargetAudience,
		ParticipatingBusinesses: r.ParticipatingBusinesses,
		InvitedCorporates:       r.InvitedCorporates,
	}
}

// Validate runs the model checks.
func (r *CreateRequest) Validate() error {
	_, err := r.input().Clean()
	return err
}

// Handler handles event HTTP endpoints.
type Handler struct {
	store  store.Events
	policy *access.Policy
	limit  int
	logger *zap.Logger
	now    func() time.Time
}

// NewHandler creates an event handler.
func NewHandler(s store.Events, policy *access.Policy, limit int, logger *zap.Logger) *Handler {
	return &Handler{store: s, policy: policy, limit: limit, logger: logger, now: time.Now}
}

// Create handles POST /events (NGOs only).
func (h *Handler) Create(c *gin.Context) {
	req := middleware.Body[CreateRequest](c)
	user := middleware.CurrentUser(c)

	if err := access.Authorize(user, access.CreateEvent); err != nil {
		response.Error(c, err, h.logger)
		return
	}
	e, err := models.NewEvent(user, req.input(), h.now())
	if err != nil {
		response.Error(c, err, h.logger)
		return
	}
	if err := h.store.CreateEvent(c.Request.Context(), e); err != nil {
		response.Error(c, err, h.logger)
		return
	}
	response.Created(c, e)
}

// List handles GET /events (public).
func (h *Handler) List(c *gin.Context) {
	h.list(c, store.AllEvents())
}

// ListMine handles GET /events/my. What "mine" means depends on the role.
func (h *Handler) ListMine(c *gin.Context) {
	f, err := h.policy.MyEvents(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		response.Error(c, err, h.logger)
		return
	}
	h.list(c, f)
}

// GetByID handles GET /events/:id (public).
func (h *Handler) GetByID(c *gin.Context) {
	e, err := h.store.GetEvent(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		response.NotFound(c, "event not found")
		return
	}
	if err != nil {
		response.Error(c, err, h.logger)
		return
	}
	response.OK(c, e)
}

func (h *Handler) list(c *gin.Context, f store.EventFilter) {
	page, err := h.store.ListEvents(c.Request.Context(), f, h.limit)
	if err != nil {
		response.Error(c, err, h.logger)
		return
	}
	response.List(c, page.Items, page.Truncated)
}
