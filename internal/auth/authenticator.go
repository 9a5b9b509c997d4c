package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/csr-bridge/backend/internal/apperr"
	"github.com/csr-bridge/backend/internal/models"
	"github.com/csr-bridge/backend/internal/store"
)

// Authenticator resolves bearer tokens to stored users.
type Authenticator struct {
	tokens *TokenService
	users  store.Users
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(tokens *TokenService, users store.Users) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// UserFromToken returns the user named by the token's subject. A bad
// signature, a missing subject and an unknown user are all authentication
// errors.
func (a *Authenticator) UserFromToken(ctx context.Context, token string) (*models.User, error) {
	id, err := a.tokens.Subject(token)
	if err != nil {
		return nil, apperr.Unauthenticated("invalid authentication credentials")
	}
	u, err := a.users.GetUserByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Unauthenticated("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load token subject: %w", err)
	}
	return u, nil
}
