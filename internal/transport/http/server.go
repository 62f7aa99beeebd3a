package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"marketplace_admin/internal/client/marketplace"
	"marketplace_admin/internal/domain/models"
	"marketplace_admin/internal/lib/logger/sl"
	"marketplace_admin/internal/storage"
	"marketplace_admin/internal/storage/overlay"
	"marketplace_admin/internal/transport/http/dto"
	"marketplace_admin/internal/transport/http/dto/response"

	"github.com/labstack/echo/v4"
)

type PublicationService interface {
	GetAll(ctx context.Context, q dto.ListPublicationsQuery) ([]models.Publication, error)
	GetByID(ctx context.Context, id string) (*models.Publication, error)
	Create(ctx context.Context, req dto.CreatePublicationRequest) (*models.Publication, error)
	Update(ctx context.Context, id string, req dto.UpdatePublicationRequest) (*models.Publication, error)
	ChangeStatus(ctx context.Context, id string, status models.Status) (*models.Publication, error)
	Delete(ctx context.Context, id string) (*models.Publication, error)
	Restore(ctx context.Context, id string) (*models.Publication, error)
	AddMedia(ctx context.Context, id string, req dto.AddMediaRequest) (*models.Media, error)
	MarkMediaDeletedLocally(ctx context.Context, mediaID, cascadePubID string) error
	RestoreMediaLocally(ctx context.Context, mediaID string) error
	MarkPublicationDeletedLocally(ctx context.Context, pubID string) error
	RestorePublicationLocally(ctx context.Context, pubID string) error
	SetOrderLocally(ctx context.Context, pubID string, mediaIDs []string) error
	SetCoverLocally(ctx context.Context, pubID, mediaID string) error
	SetExtrasLocally(ctx context.Context, pubID string, extras models.Extras) error
	GetModeration(ctx context.Context, id string) ([]models.ModerationRecord, error)
	RejectionReason(ctx context.Context, id string) (dto.RejectionResponse, error)
	Subscribe() (<-chan overlay.ChangeEvent, func())
}

type CategoryService interface {
	GetAll(ctx context.Context) ([]models.Category, error)
	GetActive(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id string) (*models.Category, error)
}

type UploadService interface {
	UploadOne(ctx context.Context, file models.UploadFile) (*models.Asset, error)
	UploadMany(ctx context.Context, files []models.UploadFile) ([]models.Asset, error)
	DeleteAsset(ctx context.Context, publicID string) error
}

type Routers struct {
	log                *slog.Logger
	PublicationService PublicationService
	CategoryService    CategoryService
	UploadService      UploadService

	// keepAlive период комментариев в SSE потоке, чтобы прокси не рвали соединение
	keepAlive time.Duration
	health    func(ctx context.Context) error
}

func NewRouter(log *slog.Logger, publications PublicationService, categories CategoryService, uploads UploadService) *Routers {
	return &Routers{
		log:                log,
		PublicationService: publications,
		CategoryService:    categories,
		UploadService:      uploads,
		keepAlive:          25 * time.Second,
	}
}

// SetKeepAlive changes the SSE keep-alive period.
func (r *Routers) SetKeepAlive(d time.Duration) {
	if d > 0 {
		r.keepAlive = d
	}
}

// SetHealthCheck registers the overlay substrate check used by /health.
func (r *Routers) SetHealthCheck(check func(ctx context.Context) error) {
	r.health = check
}

var ErrUnknownField = errors.New("unknown field")

// bindStrict decodes a JSON body rejecting fields the DTO does not declare.
func bindStrict(c echo.Context, dst any) error {
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if strings.HasPrefix(err.Error(), "json: unknown field") {
			return fmt.Errorf("%w: %s", ErrUnknownField, strings.TrimPrefix(err.Error(), "json: unknown field "))
		}
		return err
	}

	return nil
}

// fail maps service errors to HTTP answers: validation 400, transition 409,
// backend errors keep their status (5xx becomes 502), the rest is 500.
func (r *Routers) fail(c echo.Context, op string, err error) error {
	log := r.log.With(slog.String("op", op))

	var ve *models.ValidationError
	if errors.As(err, &ve) {
		log.Debug("validation failed", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrValidationFailed.WithDetails(strings.Join(ve.Errors, "; ")))
	}

	var te *models.TransitionError
	if errors.As(err, &te) {
		log.Debug("transition rejected", sl.Err(err))
		return c.JSON(http.StatusConflict, response.ErrInvalidTransition.WithDetails(te.Error()))
	}

	var apiErr *marketplace.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.StatusCode
		if status >= http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
		log.Warn("backend error", slog.Int("backend_status", apiErr.StatusCode), sl.Err(err))
		return c.JSON(status, response.ErrBackend.WithDetails(apiErr.Message))
	}

	if errors.Is(err, storage.ErrPublicationNotFound) || errors.Is(err, storage.ErrCategoryNotFound) {
		return c.JSON(http.StatusNotFound, response.ErrNotFound)
	}

	if errors.Is(err, context.Canceled) {
		log.Debug("request cancelled")
		return nil
	}

	log.Error("request failed", sl.Err(err))

	return c.JSON(http.StatusInternalServerError, response.ErrInternal)
}

// Health godoc
// @Summary Проверка доступности сервиса
// @Tags system
// @Produce json
// @Success 200 {object} response.Response
// @Failure 503 {object} response.ErrorResponse
// @Router /health [get]
func (r *Routers) Health(c echo.Context) error {
	const op = "http.routers.Health"

	if r.health != nil {
		if err := r.health(c.Request().Context()); err != nil {
			r.log.Warn("overlay storage unhealthy", slog.String("op", op), sl.Err(err))

			return c.JSON(http.StatusServiceUnavailable, response.ErrorResponseWithDetails("unhealthy", err.Error()))
		}
	}

	return c.JSON(http.StatusOK, response.Response{
		Status:  "success",
		Message: "ok",
	})
}
