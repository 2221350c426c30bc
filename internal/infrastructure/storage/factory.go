package storage

import (
	"context"
	"fmt"

	"github.com/storeadmin/backend/internal/domain/shared"
	infraconfig "github.com/storeadmin/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// New creates the object storage selected by cfg.Driver
func New(ctx context.Context, cfg *infraconfig.StorageConfig, logger *zap.Logger) (shared.ObjectStorage, error) {
	switch cfg.Driver {
	case "s3":
		s, err := NewS3ObjectStorage(cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		logger.Info("S3 object storage initialized", zap.String("bucket", s.Bucket()))
		return s, nil
	case "gcs":
		s, err := NewGCSObjectStorage(ctx, cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		logger.Info("GCS object storage initialized", zap.String("bucket", cfg.Bucket))
		return s, nil
	case "", "memory":
		logger.Warn("Using in-memory object storage; uploads are lost on restart")
		return NewMemoryObjectStorage(cfg.PublicBaseURL), nil
	}
	return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
}
