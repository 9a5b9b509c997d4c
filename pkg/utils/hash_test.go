package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hashed, err := HashPassword("SecurePass123!")
	require.NoError(t, err)
	assert.NotEqual(t, "SecurePass123!", hashed)
	assert.True(t, CheckPassword("SecurePass123!", hashed))
	assert.False(t, CheckPassword("wrong-password", hashed))
}

func TestHashPasswordSalted(t *testing.T) {
	a, err := HashPassword("SecurePass123!")
	require.NoError(t, err)
	b, err := HashPassword("SecurePass123!")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashPasswordLengthBounds(t *testing.T) {
	_, err := HashPassword("short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = HashPassword(strings.Repeat("x", MaxPasswordLen+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestCheckPasswordEmptyHash(t *testing.T) {
	assert.False(t, CheckPassword("anything", ""))
}
