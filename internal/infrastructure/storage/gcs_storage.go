package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/storeadmin/backend/internal/domain/shared"
	infraconfig "github.com/storeadmin/backend/internal/infrastructure/config"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

var _ shared.ObjectStorage = (*GCSObjectStorage)(nil)

// GCSObjectStorage implements ObjectStorage on a Google Cloud Storage bucket
type GCSObjectStorage struct {
	client            *storage.Client
	bucket            *storage.BucketHandle
	bucketName        string
	publicBaseURL     string
	presignExpiration time.Duration
	logger            *zap.Logger
}

// NewGCSObjectStorage creates a GCS backend from configuration
func NewGCSObjectStorage(ctx context.Context, cfg *infraconfig.StorageConfig, opts ...Option) (*GCSObjectStorage, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}

	var clientOpts []option.ClientOption
	if cfg.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	o := applyOptions(cfg, opts)
	return &GCSObjectStorage{
		client:            client,
		bucket:            client.Bucket(cfg.Bucket),
		bucketName:        cfg.Bucket,
		publicBaseURL:     strings.TrimRight(cfg.PublicBaseURL, "/"),
		presignExpiration: o.presignExpiration,
		logger:            o.logger,
	}, nil
}

// Upload streams the body to the object key
func (s *GCSObjectStorage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if key == "" {
		return errors.New("storage key is required")
	}

	writer := s.bucket.Object(key).NewWriter(ctx)
	writer.ContentType = contentType
	if _, err := io.Copy(writer, body); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write object %s: %w", key, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize object %s: %w", key, err)
	}
	return nil
}

// Delete removes an object
func (s *GCSObjectStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	err := s.bucket.Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

// URL returns the public URL when a public base is configured, a signed GET URL otherwise
func (s *GCSObjectStorage) URL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + key, nil
	}

	signed, err := s.bucket.SignedURL(key, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(s.presignExpiration),
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign download URL: %w", err)
	}
	return signed, nil
}

// List returns the keys under prefix
func (s *GCSObjectStorage) List(ctx context.Context, prefix string) ([]string, error) {
	keys := make([]string, 0)
	it := s.bucket.Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects under %s: %w", prefix, err)
		}
		keys = append(keys, attrs.Name)
	}
	return keys, nil
}

// Exists checks if an object exists
func (s *GCSObjectStorage) Exists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, errors.New("storage key is required")
	}
	_, err := s.bucket.Object(key).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check object existence: %w", err)
	}
	return true, nil
}

// Close releases the client
func (s *GCSObjectStorage) Close() error {
	return s.client.Close()
}
