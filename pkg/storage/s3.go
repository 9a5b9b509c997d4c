package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FolderBusinesses is the S3 prefix for business images.
const FolderBusinesses = "businesses"

// ErrUnsupportedImage is returned for uploads that are not an allowed image type.
var ErrUnsupportedImage = errors.New("unsupported image type")

// Allowed image MIME types and extensions.
var (
	AllowedImageTypes = map[string]string{
		"image/jpeg": ".jpg",
		"image/jpg":  ".jpg",
		"image/png":  ".png",
		"image/webp": ".webp",
		"image/gif":  ".gif",
	}
	AllowedImageExtensions = map[string]string{
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
		".webp": "image/webp",
		".gif":  "image/gif",
	}
)

// S3Config holds S3 client configuration.
type S3Config struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	ImagesBucket         string
	PresignExpireMinutes int
}

// Enabled reports whether enough is configured to presign uploads.
func (c S3Config) Enabled() bool {
	return c.Region != "" && c.ImagesBucket != ""
}

// S3 presigns direct uploads of business images.
type S3 struct {
	presign *s3.PresignClient
	cfg     S3Config
	logger  *zap.Logger
}

// NewS3 creates an S3 client. Static credentials are used when both keys
// are configured, otherwise the default AWS credential chain.
func NewS3(ctx context.Context, cfg S3Config, logger *zap.Logger) (*S3, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.SecretAccessKey, "",
		)))
		logger.Info("S3 client using static credentials", zap.String("region", cfg.Region), zap.String("images_bucket", cfg.ImagesBucket))
	} else {
		logger.Warn("S3 client using default credential chain (AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY not set)")
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &S3{
		presign: s3.NewPresignClient(s3.NewFromConfig(awsCfg)),
		cfg:     cfg,
		logger:  logger,
	}, nil
}

// ImageContentType returns the MIME type for an upload, preferring the
// declared content type and falling back to the filename extension.
func ImageContentType(contentType, filename string) (string, error) {
	if ct := strings.ToLower(strings.TrimSpace(contentType)); ct != "" {
		if _, ok := AllowedImageTypes[ct]; ok {
			if ct == "image/jpg" {
				return "image/jpeg", nil
			}
			return ct, nil
		}
		return "", ErrUnsupportedImage
	}
	if ct, ok := AllowedImageExtensions[strings.ToLower(path.Ext(filename))]; ok {
		return ct, nil
	}
	return "", ErrUnsupportedImage
}

// ImageKey returns a fresh object key: businesses/{owner_id}/{uuid}{ext}.
func ImageKey(ownerID, contentType string) string {
	return path.Join(FolderBusinesses, ownerID, uuid.NewString()+AllowedImageTypes[contentType])
}

// Upload is a presigned direct upload.
type Upload struct {
	UploadURL string    `json:"upload_url"`
	ImageURL  string    `json:"image_url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PresignImageUpload returns a pre-signed PUT URL for key in the images
// bucket along with the object's public URL.
func (s *S3) PresignImageUpload(ctx context.Context, key, contentType string, now time.Time) (*Upload, error) {
	expires := s.PresignExpire()
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.ImagesBucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expires
	})
	if err != nil {
		return nil, fmt.Errorf("presign put: %w", err)
	}
	return &Upload{
		UploadURL: req.URL,
		ImageURL:  s.PublicObjectURL(key),
		Key:       key,
		ExpiresAt: now.Add(expires).UTC(),
	}, nil
}

// PresignExpire returns the configured presign duration.
func (s *S3) PresignExpire() time.Duration {
	if s.cfg.PresignExpireMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(s.cfg.PresignExpireMinutes) * time.Minute
}

// PublicObjectURL returns the public URL for an object in the images bucket.
func (s *S3) PublicObjectURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.ImagesBucket, s.cfg.Region, key)
}
