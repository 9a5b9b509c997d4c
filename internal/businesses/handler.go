package businesses

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/csr-bridge/backend/internal/access"
	"github.com/csr-bridge/backend/internal/apperr"
	"github.com/csr-bridge/backend/internal/middleware"
	"github.com/csr-bridge/backend/internal/models"
	"github.com/csr-bridge/backend/internal/store"
	"github.com/csr-bridge/backend/pkg/response"
	"github.com/csr-bridge/backend/pkg/storage"
)

// CreateRequest is the body for POST /businesses.
type CreateRequest struct {
	Name           string   `json:"name" binding:"required"`
	Description    string   `json:"description" binding:"required"`
	Category       string   `json:"category" binding:"required"`
	Location       string   `json:"location" binding:"required"`
	RevenueRange   *string  `json:"revenue_range"`
	EmployeesCount *int     `json:"employees_count"`
	Products       []string `json:"products"`
	ImageURL       *string  `json:"image_url"`
}

func (r *CreateRequest) input() models.BusinessInput {
	return models.BusinessInput{
		Name:           r.Name,
		Description:    r.Description,
		Category:       r.Category,
		Location:       r.Location,
		RevenueRange:   r.RevenueRange,
		EmployeesCount: r.EmployeesCount,
		Products:       r.Products,
		ImageURL:       r.ImageURL,
	}
}

// Validate runs the model checks.
func (r *CreateRequest) Validate() error {
	_, err := r.input().Clean()
	return err
}

// ImageUploadRequest is the body for POST /businesses/image-upload-url.
type ImageUploadRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type"`
}

// Validate checks the image type.
func (r *ImageUploadRequest) Validate() error {
	if _, err := storage.ImageContentType(r.ContentType, r.Filename); err != nil {
		return apperr.Invalid("image must be jpeg, png, webp or gif")
	}
	return nil
}

// ImagePresigner presigns business image uploads.
type ImagePresigner interface {
	PresignImageUpload(ctx context.Context, key, contentType string, now time.Time) (*storage.Upload, error)
}

// Handler handles business HTTP endpoints.
type Handler struct {
	store  store.Businesses
	policy *access.Policy
	images ImagePresigner
	limit  int
	logger *zap.Logger
	now    func() time.Time
}

// NewHandler creates a business handler. images may be nil when S3 is not
// configured.
func NewHandler(s store.Businesses, policy *access.Policy, images ImagePresigner, limit int, logger *zap.Logger) *Handler {
	return &Handler{store: s, policy: policy, images: images, limit: limit, logger: logger, now: time.Now}
}

// Create handles POST /businesses (business owners only).
func (h *Handler) Create(c *gin.Context) {
	req := middleware.Body[CreateRequest](c)
	user := middleware.CurrentUser(c)

	if err := access.Authorize(user, access.CreateBusiness); err != nil {
		response.Error(c, err, h.logger)
		return
	}
	b, err := models.NewBusiness(user, req.input(), h.now())
	if err != nil {
		response.Error(c, err, h.logger)
		return
	}
	if err := h.store.CreateBusiness(c.Request.Context(), b); err != nil {
		response.Error(c, err, h.logger)
		return
	}
	response.Created(c, b)
}

// List handles GET /businesses (public).
func (h *Handler) List(c *gin.Context) {
	h.list(c, store.AllBusinesses())
}

// ListMine handles GET /businesses/my.
func (h *Handler) ListMine(c *gin.Context) {
	f, err := h.policy.MyBusinesses(middleware.CurrentUser(c))
	if err != nil {
		response.Error(c, err, h.logger)
		return
	}
	h.list(c, f)
}

func (h *Handler) list(c *gin.Context, f store.BusinessFilter) {
	page, err := h.store.ListBusinesses(c.Request.Context(), f, h.limit)
	if err != nil {
		response.Error(c, err, h.logger)
		return
	}
	response.List(c, page.Items, page.Truncated)
}

// ImageUploadURL handles POST /businesses/image-upload-url (business owners only).
// The returned image_url is meant for the image_url field of a later
// POST /businesses.
func (h *Handler) ImageUploadURL(c *gin.Context) {
	req := middleware.Body[ImageUploadRequest](c)
	user := middleware.CurrentUser(c)

	if err := access.Authorize(user, access.RequestImageUpload); err != nil {
		response.Error(c, err, h.logger)
		return
	}
	if h.images == nil {
		response.ServiceUnavailable(c, "image uploads are not configured")
		return
	}
	ct, err := storage.ImageContentType(req.ContentType, req.Filename)
	if err != nil {
		response.BadRequest(c, "image must be jpeg, png, webp or gif")
		return
	}
	up, err := h.images.PresignImageUpload(c.Request.Context(), storage.ImageKey(user.ID, ct), ct, h.now())
	if err != nil {
		response.Error(c, err, h.logger)
		return
	}
	response.OK(c, up)
}
