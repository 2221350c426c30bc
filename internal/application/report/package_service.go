package report

import (
	"context"
	"fmt"

	"github.com/storeadmin/backend/internal/domain/report"
	"github.com/storeadmin/backend/internal/domain/shared"
	"github.com/storeadmin/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// PackageContentType is stored with uploaded app packages
const PackageContentType = "application/vnd.android.package-archive"

// PackageResponse describes the published mobile app package
type PackageResponse struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Link string `json:"link"`
}

// PackageService publishes the mobile app package. The file lives under
// package/ in object storage and its download link in package/package.
type PackageService struct {
	objects     shared.ObjectStorage
	packageRepo report.PackageRepository
	logger      *zap.Logger
}

// NewPackageService creates a new PackageService
func NewPackageService(objects shared.ObjectStorage, packageRepo report.PackageRepository, logger *zap.Logger) *PackageService {
	return &PackageService{
		objects:     objects,
		packageRepo: packageRepo,
		logger:      logger,
	}
}

// Current returns the published package, or nil when there is none
func (s *PackageService) Current(ctx context.Context) (*PackageResponse, error) {
	key, ok, err := s.currentKey(ctx)
	if err != nil || !ok {
		return nil, err
	}
	link, err := s.packageRepo.Link(ctx)
	if err != nil {
		return nil, err
	}
	return &PackageResponse{Key: key, Name: key[len(report.PackagePrefix):], Link: link}, nil
}

func (s *PackageService) currentKey(ctx context.Context) (string, bool, error) {
	keys, err := s.objects.List(ctx, report.PackagePrefix)
	if err != nil {
		return "", false, fmt.Errorf("failed to list packages: %w", err)
	}
	key, ok := report.CurrentPackage(keys)
	return key, ok, nil
}

// Upload stores the package, publishes its download link and then removes
// a previously published package with another name.
func (s *PackageService) Upload(ctx context.Context, file shared.FileUpload) (*PackageResponse, error) {
	key, err := report.PackagePath(file.Filename)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "package", "upload", telemetry.SpanAttrObjectKey, key)
	defer span.End()

	previous, hadPrevious, err := s.currentKey(ctx)
	if err != nil {
		return nil, err
	}

	contentType := file.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = PackageContentType
	}
	if err := s.objects.Upload(ctx, key, file.Body, file.Size, contentType); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to upload package: %w", err)
	}

	link, err := s.objects.URL(ctx, key)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, shared.NewPartialFailure("Package uploaded but its download link could not be created", err)
	}
	if err := s.packageRepo.SetLink(ctx, link); err != nil {
		telemetry.RecordError(span, err)
		return nil, shared.NewPartialFailure("Package uploaded but the download link could not be saved", err)
	}

	if hadPrevious && previous != key {
		if err := s.objects.Delete(ctx, previous); err != nil {
			telemetry.RecordError(span, err)
			return nil, shared.NewPartialFailure("Package published but the previous package could not be removed", err)
		}
	}

	s.logger.Info("Package published", zap.String("key", key))
	return &PackageResponse{Key: key, Name: key[len(report.PackagePrefix):], Link: link}, nil
}

// Remove deletes the published package and clears the download link
func (s *PackageService) Remove(ctx context.Context) error {
	key, ok, err := s.currentKey(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return shared.NewDomainError("NOT_FOUND", "No package has been uploaded")
	}
	if err := s.objects.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to remove package: %w", err)
	}
	if err := s.packageRepo.SetLink(ctx, ""); err != nil {
		return shared.NewPartialFailure("Package removed but the download link could not be cleared", err)
	}
	return nil
}
