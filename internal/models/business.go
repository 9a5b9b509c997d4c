package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/csr-bridge/backend/internal/apperr"
	"github.com/csr-bridge/backend/pkg/utils"
)

// Business is a small-business profile owned by a business_owner user.
type Business struct {
	ID             string    `json:"id" bson:"_id"`
	OwnerID        string    `json:"owner_id" bson:"owner_id"`
	Name           string    `json:"name" bson:"name"`
	Description    string    `json:"description" bson:"description"`
	Category       string    `json:"category" bson:"category"` // achar, papad, handicrafts, ...
	Location       string    `json:"location" bson:"location"`
	RevenueRange   *string   `json:"revenue_range" bson:"revenue_range,omitempty"`
	EmployeesCount *int      `json:"employees_count" bson:"employees_count,omitempty"`
	Products       []string  `json:"products" bson:"products"`
	ImageURL       *string   `json:"image_url" bson:"image_url,omitempty"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
}

// BusinessInput holds the caller-supplied Business fields.
type BusinessInput struct {
	Name           string
	Description    string
	Category       string
	Location       string
	RevenueRange   *string
	EmployeesCount *int
	Products       []string
	ImageURL       *string
}

// Clean strips markup from every text field and checks required values.
func (in BusinessInput) Clean() (BusinessInput, error) {
	out := BusinessInput{
		Name:           utils.CleanText(in.Name),
		Description:    utils.CleanText(in.Description),
		Category:       utils.CleanText(in.Category),
		Location:       utils.CleanText(in.Location),
		RevenueRange:   utils.CleanOptional(in.RevenueRange),
		EmployeesCount: in.EmployeesCount,
		Products:       utils.CleanList(in.Products),
		ImageURL:       utils.CleanOptional(in.ImageURL),
	}
	if err := requireFields(
		field{"name", out.Name},
		field{"description", out.Description},
		field{"category", out.Category},
		field{"location", out.Location},
	); err != nil {
		return BusinessInput{}, err
	}
	if out.EmployeesCount != nil && *out.EmployeesCount < 0 {
		return BusinessInput{}, apperr.Invalid("employees_count must not be negative")
	}
	return out, nil
}

// NewBusiness validates in and builds a Business owned by owner. The owner
// must hold the business_owner role.
func NewBusiness(owner *User, in BusinessInput, now time.Time) (*Business, error) {
	if owner == nil || owner.Role != RoleBusinessOwner {
		return nil, apperr.Forbidden("only business owners can create businesses")
	}
	in, err := in.Clean()
	if err != nil {
		return nil, err
	}
	return &Business{
		ID:             uuid.NewString(),
		OwnerID:        owner.ID,
		Name:           in.Name,
		Description:    in.Description,
		Category:       in.Category,
		Location:       in.Location,
		RevenueRange:   in.RevenueRange,
		EmployeesCount: in.EmployeesCount,
		Products:       in.Products,
		ImageURL:       in.ImageURL,
		CreatedAt:      now.UTC(),
	}, nil
}

type field struct {
	name  string
	value string
}

// requireFields fails on the first empty field.
func requireFields(fields ...field) error {
	for _, f := range fields {
		if f.value == "" {
			return apperr.Invalid("%s is required", f.name)
		}
	}
	return nil
}
