package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"marketplace_admin/internal/domain/models"
	"marketplace_admin/internal/lib/logger/sl"
	"marketplace_admin/internal/storage"

	"github.com/gabriel-vasile/mimetype"
)

const (
	DefaultMaxFiles  = 10
	DefaultMaxSizeMB = 5
)

// AssetUploader exchanges files for hosted assets on the backend.
type AssetUploader interface {
	UploadImage(ctx context.Context, file models.UploadFile) (*models.Asset, error)
	UploadImages(ctx context.Context, files []models.UploadFile) ([]models.Asset, error)
	DeleteUpload(ctx context.Context, publicID string) error
}

type UploadService struct {
	log       *slog.Logger
	uploader  AssetUploader
	maxFiles  int
	maxSizeMB int
}

// NewUploadService builds the service; non-positive limits fall back to the
// defaults (10 files, 5 MB each).
func NewUploadService(log *slog.Logger, uploader AssetUploader, maxFiles, maxSizeMB int) *UploadService {
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}
	if maxSizeMB <= 0 {
		maxSizeMB = DefaultMaxSizeMB
	}

	return &UploadService{
		log:       log,
		uploader:  uploader,
		maxFiles:  maxFiles,
		maxSizeMB: maxSizeMB,
	}
}

func (s *UploadService) MaxFiles() int  { return s.maxFiles }
func (s *UploadService) MaxSizeMB() int { return s.maxSizeMB }

// contentType returns the declared type, sniffing the bytes when the client
// sent none.
func contentType(file models.UploadFile) string {
	ct := strings.TrimSpace(file.ContentType)
	if ct == "" || ct == "application/octet-stream" {
		if len(file.Data) == 0 {
			return ct
		}
		ct = mimetype.Detect(file.Data).String()
	}

	return strings.ToLower(ct)
}

// ValidateOne checks that file is an image no larger than maxSizeMB.
func ValidateOne(file models.UploadFile, maxSizeMB int) error {
	if !strings.HasPrefix(contentType(file), "image/") {
		return &models.ValidationError{
			Errors: []string{fmt.Sprintf("%s: file must be a valid image", file.Name)},
			Cause:  storage.ErrInvalidFileType,
		}
	}

	size := file.Size
	if size == 0 {
		size = int64(len(file.Data))
	}

	maxBytes := int64(maxSizeMB) * 1024 * 1024
	if size > maxBytes {
		return &models.ValidationError{
			Errors: []string{fmt.Sprintf("%s: image exceeds the %dMB limit", file.Name, maxSizeMB)},
			Cause:  storage.ErrFileTooLarge,
		}
	}

	return nil
}

// ValidateMany checks the batch size, then every file, stopping at the first
// failure.
func ValidateMany(files []models.UploadFile, maxCount, maxSizeMB int) error {
	if len(files) == 0 {
		return &models.ValidationError{
			Errors: []string{"no images selected"},
			Cause:  storage.ErrNoFiles,
		}
	}

	if len(files) > maxCount {
		return &models.ValidationError{
			Errors: []string{fmt.Sprintf("too many images: max %d, got %d", maxCount, len(files))},
			Cause:  storage.ErrTooManyFiles,
		}
	}

	for _, f := range files {
		if err := ValidateOne(f, maxSizeMB); err != nil {
			return err
		}
	}

	return nil
}

func (s *UploadService) ValidateOne(file models.UploadFile) error {
	return ValidateOne(file, s.maxSizeMB)
}

func (s *UploadService) ValidateMany(files []models.UploadFile) error {
	return ValidateMany(files, s.maxFiles, s.maxSizeMB)
}

// UploadOne is not idempotent: every successful call creates a new asset.
func (s *UploadService) UploadOne(ctx context.Context, file models.UploadFile) (*models.Asset, error) {
	const op = "upload_service.UploadOne"

	log := s.log.With(
		slog.String("op", op),
		slog.String("file", file.Name),
	)

	if err := s.ValidateOne(file); err != nil {
		log.Debug("file rejected", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	asset, err := s.uploader.UploadImage(ctx, file)
	if err != nil {
		log.Error("failed to upload image", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("image uploaded", slog.String("public_id", asset.PublicID))

	return asset, nil
}

// UploadMany sends the batch as a single request. Returned assets follow the
// input order.
func (s *UploadService) UploadMany(ctx context.Context, files []models.UploadFile) ([]models.Asset, error) {
	const op = "upload_service.UploadMany"

	log := s.log.With(
		slog.String("op", op),
		slog.Int("count", len(files)),
	)

	if err := s.ValidateMany(files); err != nil {
		log.Debug("batch rejected", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	assets, err := s.uploader.UploadImages(ctx, files)
	if err != nil {
		log.Error("failed to upload images", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("images uploaded", slog.Int("assets", len(assets)))

	return assets, nil
}

func (s *UploadService) DeleteAsset(ctx context.Context, publicID string) error {
	const op = "upload_service.DeleteAsset"

	log := s.log.With(
		slog.String("op", op),
		slog.String("public_id", publicID),
	)

	if strings.TrimSpace(publicID) == "" {
		return fmt.Errorf("%s: %w", op, models.NewValidationError("publicId is required"))
	}

	if err := s.uploader.DeleteUpload(ctx, publicID); err != nil {
		log.Error("failed to delete asset", sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("asset deleted")

	return nil
}
