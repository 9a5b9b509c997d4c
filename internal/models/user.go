package models

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/csr-bridge/backend/internal/apperr"
	"github.com/csr-bridge/backend/pkg/utils"
)

// Role represents user role in the platform.
type Role string

const (
	RoleNGO           Role = "ngo"
	RoleBusinessOwner Role = "business_owner"
	RoleCorporate     Role = "corporate"
)

// Roles lists every role. Switches over Role must handle each of these.
var Roles = []Role{RoleNGO, RoleBusinessOwner, RoleCorporate}

// ParseRole returns the Role named by s.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.TrimSpace(s)); r {
	case RoleNGO, RoleBusinessOwner, RoleCorporate:
		return r, nil
	default:
		return "", apperr.Invalid("role must be one of ngo, business_owner, corporate")
	}
}

// Valid reports whether r is exactly one of the known roles. Unlike
// ParseRole it does not trim, so a stored " ngo" is not a role.
func (r Role) Valid() bool {
	switch r {
	case RoleNGO, RoleBusinessOwner, RoleCorporate:
		return true
	}
	return false
}

// User represents a platform user. PasswordHash never leaves the store layer
// in a response: it has no JSON name.
type User struct {
	ID           string    `json:"id" bson:"_id"`
	Email        string    `json:"email" bson:"email"`
	Name         string    `json:"name" bson:"name"`
	Role         Role      `json:"role" bson:"role"`
	Organization *string   `json:"organization" bson:"organization,omitempty"`
	Phone        *string   `json:"phone" bson:"phone,omitempty"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	PasswordHash string    `json:"-" bson:"hashed_password"`
}

// UserPublic is User without sensitive fields for API responses.
type UserPublic struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	Organization *string   `json:"organization"`
	Phone        *string   `json:"phone"`
	CreatedAt    time.Time `json:"created_at"`
}

// ToPublic converts User to UserPublic.
func (u *User) ToPublic() UserPublic {
	return UserPublic{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         u.Role,
		Organization: u.Organization,
		Phone:        u.Phone,
		CreatedAt:    u.CreatedAt,
	}
}

// NewUserParams holds the registration fields for NewUser.
type NewUserParams struct {
	Email        string
	Name         string
	Role         string
	Organization *string
	Phone        *string
	PasswordHash string
}

// NormalizeEmail lowercases and trims an address so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Clean normalizes the email, strips markup from text fields and checks
// email, name and role. PasswordHash is left untouched.
func (p NewUserParams) Clean() (NewUserParams, error) {
	out := NewUserParams{
		Email:        NormalizeEmail(p.Email),
		Name:         utils.CleanText(p.Name),
		Role:         strings.TrimSpace(p.Role),
		Organization: utils.CleanOptional(p.Organization),
		Phone:        utils.CleanOptional(p.Phone),
		PasswordHash: p.PasswordHash,
	}
	if addr, err := mail.ParseAddress(out.Email); err != nil || addr.Address != out.Email {
		return NewUserParams{}, apperr.Invalid("email is invalid")
	}
	if out.Name == "" {
		return NewUserParams{}, apperr.Invalid("name is required")
	}
	if _, err := ParseRole(out.Role); err != nil {
		return NewUserParams{}, err
	}
	return out, nil
}

// NewUser validates p and builds a User with a fresh id and creation time.
func NewUser(p NewUserParams, now time.Time) (*User, error) {
	p, err := p.Clean()
	if err != nil {
		return nil, err
	}
	if p.PasswordHash == "" {
		return nil, apperr.Invalid("password is required")
	}
	return &User{
		ID:           uuid.NewString(),
		Email:        p.Email,
		Name:         p.Name,
		Role:         Role(p.Role),
		Organization: p.Organization,
		Phone:        p.Phone,
		CreatedAt:    now.UTC(),
		PasswordHash: p.PasswordHash,
	}, nil
}
