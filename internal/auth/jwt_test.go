package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csr-bridge/backend/internal/apperr"
	"github.com/csr-bridge/backend/internal/models"
	"github.com/csr-bridge/backend/internal/store/memory"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("secret")
	tok, err := svc.Issue("user-1", time.Now())
	require.NoError(t, err)

	sub, err := svc.Subject(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub)
}

func TestTokenHasNoExpiry(t *testing.T) {
	svc := NewTokenService("secret")
	tok, err := svc.Issue("user-1", time.Now().Add(-10*365*24*time.Hour))
	require.NoError(t, err)

	var claims jwt.RegisteredClaims
	_, _, err = jwt.NewParser().ParseUnverified(tok, &claims)
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)

	_, err = svc.Subject(tok)
	assert.NoError(t, err)
}

func TestSubjectRejects(t *testing.T) {
	svc := NewTokenService("secret")

	other, err := NewTokenService("other").Issue("user-1", time.Now())
	require.NoError(t, err)

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{IssuedAt: jwt.NewNumericDate(time.Now())}).
		SignedString([]byte("secret"))
	require.NoError(t, err)

	hs384, err := jwt.NewWithClaims(jwt.SigningMethodHS384, jwt.RegisteredClaims{Subject: "user-1"}).
		SignedString([]byte("secret"))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "user-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"wrong secret": other,
		"no subject":   noSub,
		"other alg":    hs384,
		"alg none":     unsigned,
		"garbage":      "a.b.c",
	} {
		_, err := svc.Subject(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, name)
	}
}

func TestAuthenticator(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	require.NoError(t, s.CreateUser(ctx, &models.User{ID: "u1", Email: "priya@ngo.org", Role: models.RoleNGO}))
	svc := NewTokenService("secret")
	a := NewAuthenticator(svc, s)

	tok, err := svc.Issue("u1", time.Now())
	require.NoError(t, err)
	u, err := a.UserFromToken(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, models.RoleNGO, u.Role)

	ghost, err := svc.Issue("u2", time.Now())
	require.NoError(t, err)
	_, err = a.UserFromToken(ctx, ghost)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	_, err = a.UserFromToken(ctx, "junk")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}
