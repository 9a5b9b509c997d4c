package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestImageContentType(t *testing.T) {
	ct, err := ImageContentType("image/PNG", "logo.gif")
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)

	ct, err = ImageContentType("image/jpg", "")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", ct)

	ct, err = ImageContentType("", "Shop.JPEG")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", ct)

	_, err = ImageContentType("video/mp4", "clip.png")
	assert.ErrorIs(t, err, ErrUnsupportedImage)
	_, err = ImageContentType("", "notes.txt")
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestImageKey(t *testing.T) {
	key := ImageKey("owner-1", "image/webp")
	assert.True(t, strings.HasPrefix(key, "businesses/owner-1/"), key)
	assert.True(t, strings.HasSuffix(key, ".webp"), key)
	assert.NotEqual(t, key, ImageKey("owner-1", "image/webp"))
}

func TestPresignImageUpload(t *testing.T) {
	cfg := S3Config{
		Region: "ap-south-1", AccessKeyID: "AKIDEXAMPLE", SecretAccessKey: "secret",
		ImagesBucket: "csr-images", PresignExpireMinutes: 5,
	}
	assert.True(t, cfg.Enabled())
	s, err := NewS3(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	up, err := s.PresignImageUpload(context.Background(), "businesses/o/x.png", "image/png", now)
	require.NoError(t, err)
	assert.Contains(t, up.UploadURL, "csr-images")
	assert.Contains(t, up.UploadURL, "X-Amz-Signature=")
	assert.Equal(t, "https://csr-images.s3.ap-south-1.amazonaws.com/businesses/o/x.png", up.ImageURL)
	assert.Equal(t, now.Add(5*time.Minute), up.ExpiresAt)
}
