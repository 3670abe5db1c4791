// Package storage provides the S3-compatible object store holding
// observation photos.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Allowed MIME types for observation photos
const (
	MIMEImageJPEG = "image/jpeg"
	MIMEImagePNG  = "image/png"
	MIMEImageHEIC = "image/heic"
	MIMEImageWebP = "image/webp"
)

// Validation errors
var (
	ErrUnsupportedType = errors.New("unsupported content type")
	ErrFileTooLarge    = errors.New("file size exceeds maximum allowed")
	ErrEmptyKey        = errors.New("object key is empty")
)

// AllowedMIMETypes maps allowed photo MIME types to their file extensions
var AllowedMIMETypes = map[string]string{
	MIMEImageJPEG: ".jpg",
	MIMEImagePNG:  ".png",
	MIMEImageHEIC: ".heic",
	MIMEImageWebP: ".webp",
}

// CacheControl is applied to every stored photo. Observation photos are
// immutable once written, so a day of caching is safe.
const CacheControl = "max-age=86400"

// Store uploads photos to an S3-compatible bucket and resolves their public
// retrieval URLs. Writes are conditional: uploading to an existing key fails
// instead of silently replacing the object.
type Store struct {
	s3Client      *s3.Client
	bucketName    string
	publicBaseURL string
	maxSizeBytes  int64
}

// StoreConfig holds configuration for the photo store.
type StoreConfig struct {
	BucketName      string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	PublicBaseURL   string
	MaxSizeMB       int
}

// NewStore creates a new photo store with the given configuration.
func NewStore(cfg StoreConfig) (*Store, error) {
	if cfg.BucketName == "" {
		return nil, errors.New("bucket name is required")
	}
	if cfg.AccessKeyID == "" {
		return nil, errors.New("access key ID is required")
	}
	if cfg.SecretAccessKey == "" {
		return nil, errors.New("secret access key is required")
	}
	if cfg.Endpoint == "" {
		return nil, errors.New("endpoint is required")
	}
	if cfg.PublicBaseURL == "" {
		return nil, errors.New("public base URL is required")
	}

	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 15
	}

	// R2-compatible client configuration; path-style addressing is
	// required by R2 and harmless against MinIO or AWS.
	s3Client := s3.New(s3.Options{
		Region: "auto",
		Credentials: aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
		BaseEndpoint: aws.String(cfg.Endpoint),
		UsePathStyle: true,
	})

	return &Store{
		s3Client:      s3Client,
		bucketName:    cfg.BucketName,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		maxSizeBytes:  int64(cfg.MaxSizeMB) * 1024 * 1024,
	}, nil
}

// ValidateContentType checks if the content type is an allowed photo type.
func ValidateContentType(contentType string) error {
	if _, ok := AllowedMIMETypes[contentType]; !ok {
		return ErrUnsupportedType
	}
	return nil
}

// ValidateSize checks if a photo's size is within limits.
func (s *Store) ValidateSize(sizeBytes int64) error {
	if sizeBytes > s.maxSizeBytes {
		return ErrFileTooLarge
	}
	if sizeBytes <= 0 {
		return errors.New("file size must be positive")
	}
	return nil
}

// Put uploads body to key with the photo cache policy. The write is
// conditional on the key not existing: a second upload to the same key
// fails rather than replacing the first object.
func (s *Store) Put(ctx context.Context, key string, body []byte, contentType string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := s.ValidateSize(int64(len(body))); err != nil {
		return err
	}

	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucketName),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(CacheControl),
		IfNoneMatch:  aws.String("*"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload object %s: %w", key, err)
	}
	return nil
}

// PublicURL returns the public retrieval URL for a stored key.
func (s *Store) PublicURL(key string) string {
	return s.publicBaseURL + "/" + strings.TrimLeft(key, "/")
}

// HealthCheck verifies the bucket is reachable. Used by the readiness probe.
func (s *Store) HealthCheck(ctx context.Context) error {
	_, err := s.s3Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucketName),
	})
	if err != nil {
		return fmt.Errorf("bucket %s is not reachable: %w", s.bucketName, err)
	}
	return nil
}
