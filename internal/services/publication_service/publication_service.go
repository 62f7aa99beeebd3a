package services

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/url"
	"strings"

	"marketplace_admin/internal/client/marketplace"
	"marketplace_admin/internal/domain/models"
	"marketplace_admin/internal/lib/logger/sl"
	"marketplace_admin/internal/storage/overlay"
	"marketplace_admin/internal/transport/http/dto"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

// Backend is the marketplace API as the reconciliation layer consumes it.
type Backend interface {
	ListPublications(ctx context.Context, query url.Values) ([]models.Publication, error)
	GetPublication(ctx context.Context, id string) (*models.Publication, error)
	CreatePublication(ctx context.Context, in marketplace.CreatePublicationInput) (*models.Publication, error)
	UpdatePublication(ctx context.Context, id string, in marketplace.UpdatePublicationInput) (*models.Publication, error)
	ChangeStatus(ctx context.Context, id string, status models.Status) (*models.Publication, error)
	AddMedia(ctx context.Context, id string, in marketplace.MediaInput) (*models.Media, error)
	GetModeration(ctx context.Context, id string) ([]models.ModerationRecord, error)
}

// PublicationService is the single source of truth the seller UI renders
// from: backend records with the local overlays applied. Backend failures are
// returned to the caller; overlay failures never are.
type PublicationService struct {
	log      *slog.Logger
	backend  Backend
	overlay  *overlay.Store
	validate *validator.Validate
	policy   *bluemonday.Policy
}

func NewPublicationService(log *slog.Logger, backend Backend, store *overlay.Store) *PublicationService {
	return &PublicationService{
		log:      log,
		backend:  backend,
		overlay:  store,
		validate: newValidator(),
		policy:   bluemonday.StrictPolicy(),
	}
}

// maxCleanPasses bounds sanitize/decode rounds of nested or entity-encoded markup.
const maxCleanPasses = 8

// clean strips markup from seller input and trims it. The backend stores
// plain text, so entities are decoded and the result sanitized again until
// nothing changes; decoded text never carries a tag.
func (s *PublicationService) clean(v string) string {
	for i := 0; i < maxCleanPasses; i++ {
		next := html.UnescapeString(s.policy.Sanitize(v))
		if next == v {
			return strings.TrimSpace(v)
		}
		v = next
	}

	// не сошлось: отдаём экранированный текст
	return strings.TrimSpace(s.policy.Sanitize(v))
}

func (s *PublicationService) GetAll(ctx context.Context, q dto.ListPublicationsQuery) ([]models.Publication, error) {
	const op = "publication_service.GetAll"

	log := s.log.With(
		slog.String("op", op),
		slog.Bool("include_deleted", q.IncludeDeleted),
	)

	pubs, err := s.backend.ListPublications(ctx, url.Values(q.Filters))
	if err != nil {
		log.Error("failed to list publications", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ov := loadOverlays(ctx, s.overlay)
	for i := range pubs {
		reconcile(&pubs[i], ov)
	}

	if q.IncludeDeleted {
		if pubs == nil {
			pubs = []models.Publication{}
		}
		return pubs, nil
	}

	return visible(pubs), nil
}

func (s *PublicationService) GetByID(ctx context.Context, id string) (*models.Publication, error) {
	const op = "publication_service.GetByID"

	pub, err := s.backend.GetPublication(ctx, id)
	if err != nil {
		s.log.Error("failed to get publication", slog.String("op", op), slog.String("id", id), sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	reconcile(pub, loadOverlays(ctx, s.overlay))

	return pub, nil
}

// refetch returns the reconciled record after a mutation. Backends that
// answer a mutation with an empty body are asked for the record again.
func (s *PublicationService) refetch(ctx context.Context, id string, pub *models.Publication) (*models.Publication, error) {
	if pub == nil || pub.ID == "" {
		return s.GetByID(ctx, id)
	}

	reconcile(pub, loadOverlays(ctx, s.overlay))

	return pub, nil
}

func (s *PublicationService) Create(ctx context.Context, req dto.CreatePublicationRequest) (*models.Publication, error) {
	const op = "publication_service.Create"

	log := s.log.With(slog.String("op", op))

	req.Title = s.clean(req.Title)
	req.Description = s.clean(req.Description)

	if err := s.validateCreate(req); err != nil {
		log.Debug("create rejected", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	status := req.Status.Normalize()
	if status == "" {
		status = models.StatusInReview
	}

	in := marketplace.CreatePublicationInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Status:      status,
		SellerID:    req.SellerID,
		ProductID:   req.ProductID,
		StoreID:     req.StoreID,
	}
	for _, m := range req.Media {
		in.Media = append(in.Media, mediaInput(m))
	}

	pub, err := s.backend.CreatePublication(ctx, in)
	if err != nil {
		log.Error("failed to create publication", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if req.Extras != nil && pub.ID != "" {
		s.overlay.SetExtras(ctx, pub.ID, *req.Extras)
	}

	s.overlay.SignalChanged(ctx)

	log.Info("publication created", slog.String("id", pub.ID), slog.String("status", string(pub.Status)))

	reconcile(pub, loadOverlays(ctx, s.overlay))

	return pub, nil
}

func (s *PublicationService) validateCreate(req dto.CreatePublicationRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return toValidationError(err)
	}

	var msgs []string
	if req.Price != nil && req.Price.IsNegative() {
		msgs = append(msgs, "precio must not be negative")
	}
	if req.Status != "" && !req.Status.IsKnown() {
		msgs = append(msgs, fmt.Sprintf("estado %q is unknown", req.Status))
	}
	if len(msgs) > 0 {
		return models.NewValidationError(msgs...)
	}

	if req.Extras != nil {
		return toValidationError(req.Extras.Validate())
	}

	return nil
}

// Update applies a partial update. Backend fields go to PATCH
// /publicaciones/:id, extras go to the overlay only.
func (s *PublicationService) Update(ctx context.Context, id string, req dto.UpdatePublicationRequest) (*models.Publication, error) {
	const op = "publication_service.Update"

	log := s.log.With(
		slog.String("op", op),
		slog.String("id", id),
	)

	if req.Title != nil {
		v := s.clean(*req.Title)
		req.Title = &v
	}
	if req.Description != nil {
		v := s.clean(*req.Description)
		req.Description = &v
	}

	if err := s.validateUpdate(req); err != nil {
		log.Debug("update rejected", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var pub *models.Publication
	if req.Title != nil || req.Description != nil || req.Price != nil {
		var err error
		pub, err = s.backend.UpdatePublication(ctx, id, marketplace.UpdatePublicationInput{
			Title:       req.Title,
			Description: req.Description,
			Price:       req.Price,
		})
		if err != nil {
			log.Error("failed to update publication", sl.Err(err))

			return nil, fmt.Errorf("%s: %w", op, err)
		}
	} else {
		// только extras: оверлей пишется лишь для существующей публикации
		var err error
		pub, err = s.backend.GetPublication(ctx, id)
		if err != nil {
			log.Error("failed to get publication", sl.Err(err))

			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if req.Extras != nil {
		s.overlay.SetExtras(ctx, id, *req.Extras)
	}

	s.overlay.SignalChanged(ctx)

	log.Info("publication updated")

	pub, err := s.refetch(ctx, id, pub)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return pub, nil
}

func (s *PublicationService) validateUpdate(req dto.UpdatePublicationRequest) error {
	if req.Title == nil && req.Description == nil && req.Price == nil && req.Extras == nil {
		return models.NewValidationError("nothing to update")
	}

	if err := s.validate.Struct(req); err != nil {
		return toValidationError(err)
	}

	if req.Price != nil && req.Price.IsNegative() {
		return models.NewValidationError("precio must not be negative")
	}

	if req.Extras != nil {
		return toValidationError(req.Extras.Validate())
	}

	return nil
}

// ChangeStatus moves a publication through the status machine. The transition
// is checked against the status the seller sees, overrides included, and a
// successful change drops the local override.
func (s *PublicationService) ChangeStatus(ctx context.Context, id string, status models.Status) (*models.Publication, error) {
	const op = "publication_service.ChangeStatus"

	log := s.log.With(
		slog.String("op", op),
		slog.String("id", id),
		slog.String("status", string(status)),
	)

	target := status.Normalize()
	if !target.IsKnown() {
		return nil, fmt.Errorf("%s: %w", op, models.NewValidationError(fmt.Sprintf("estado %q is unknown", status)))
	}

	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !models.CanTransition(current.Status, target) {
		err := &models.TransitionError{From: current.Status, To: target}
		log.Warn("transition rejected", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pub, err := s.backend.ChangeStatus(ctx, id, target)
	if err != nil {
		log.Error("failed to change status", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.overlay.ClearStatusOverride(ctx, id)
	s.overlay.SignalChanged(ctx)

	log.Info("status changed", slog.String("from", string(current.Status)))

	pub, err = s.refetch(ctx, id, pub)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return pub, nil
}

// Delete is ChangeStatus(eliminado).
func (s *PublicationService) Delete(ctx context.Context, id string) (*models.Publication, error) {
	return s.ChangeStatus(ctx, id, models.StatusDeleted)
}

// Restore is ChangeStatus(activo).
func (s *PublicationService) Restore(ctx context.Context, id string) (*models.Publication, error) {
	return s.ChangeStatus(ctx, id, models.StatusActive)
}

func mediaInput(m dto.MediaRequest) marketplace.MediaInput {
	t := m.Type
	if t == "" {
		t = models.MediaTypeImage
	}

	return marketplace.MediaInput{
		URL:   strings.TrimSpace(m.URL),
		Type:  t,
		Order: m.Order,
	}
}

// AddMedia appends one media on the backend. Overlays are left alone.
func (s *PublicationService) AddMedia(ctx context.Context, id string, req dto.AddMediaRequest) (*models.Media, error) {
	const op = "publication_service.AddMedia"

	log := s.log.With(
		slog.String("op", op),
		slog.String("id", id),
	)

	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", op, toValidationError(err))
	}

	media, err := s.backend.AddMedia(ctx, id, mediaInput(req))
	if err != nil {
		log.Error("failed to add media", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.overlay.SignalChanged(ctx)

	log.Info("media added", slog.String("media_id", media.ID))

	return media, nil
}

func requireID(name, v string) error {
	if strings.TrimSpace(v) == "" {
		return models.NewValidationError(name + " is required")
	}
	return nil
}

// MarkMediaDeletedLocally flags a media as deleted without calling the
// backend. A non-empty cascadePubID also marks that publication deleted
// through the status override.
func (s *PublicationService) MarkMediaDeletedLocally(ctx context.Context, mediaID, cascadePubID string) error {
	const op = "publication_service.MarkMediaDeletedLocally"

	if err := requireID("media_id", mediaID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.overlay.MarkMediaDeleted(ctx, mediaID)
	if cascadePubID != "" {
		s.overlay.SetStatusOverride(ctx, cascadePubID, models.StatusDeleted)
	}
	s.overlay.SignalChanged(ctx)

	s.log.Info("media marked deleted",
		slog.String("op", op),
		slog.String("media_id", mediaID),
		slog.String("cascade", cascadePubID),
	)

	return nil
}

func (s *PublicationService) RestoreMediaLocally(ctx context.Context, mediaID string) error {
	const op = "publication_service.RestoreMediaLocally"

	if err := requireID("media_id", mediaID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.overlay.RestoreMedia(ctx, mediaID)
	s.overlay.SignalChanged(ctx)

	return nil
}

// MarkPublicationDeletedLocally hides a publication behind a status override
// while the backend record stays as it is.
func (s *PublicationService) MarkPublicationDeletedLocally(ctx context.Context, pubID string) error {
	const op = "publication_service.MarkPublicationDeletedLocally"

	if err := requireID("id", pubID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.overlay.SetStatusOverride(ctx, pubID, models.StatusDeleted)
	s.overlay.SignalChanged(ctx)

	return nil
}

func (s *PublicationService) RestorePublicationLocally(ctx context.Context, pubID string) error {
	const op = "publication_service.RestorePublicationLocally"

	if err := requireID("id", pubID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.overlay.ClearStatusOverride(ctx, pubID)
	s.overlay.SignalChanged(ctx)

	return nil
}

// SetOrderLocally stores the media display order; an empty list resets it.
func (s *PublicationService) SetOrderLocally(ctx context.Context, pubID string, mediaIDs []string) error {
	const op = "publication_service.SetOrderLocally"

	if err := requireID("id", pubID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for _, id := range mediaIDs {
		if err := requireID("media_ids", id); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	s.overlay.SetOrder(ctx, pubID, mediaIDs)
	s.overlay.SignalChanged(ctx)

	return nil
}

// SetCoverLocally pins mediaID as the first media; an empty id removes the pin.
func (s *PublicationService) SetCoverLocally(ctx context.Context, pubID, mediaID string) error {
	const op = "publication_service.SetCoverLocally"

	if err := requireID("id", pubID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.overlay.SetCover(ctx, pubID, mediaID)
	s.overlay.SignalChanged(ctx)

	return nil
}

func (s *PublicationService) SetExtrasLocally(ctx context.Context, pubID string, extras models.Extras) error {
	const op = "publication_service.SetExtrasLocally"

	if err := requireID("id", pubID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := extras.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, toValidationError(err))
	}

	s.overlay.SetExtras(ctx, pubID, extras)
	s.overlay.SignalChanged(ctx)

	return nil
}

func (s *PublicationService) GetModeration(ctx context.Context, id string) ([]models.ModerationRecord, error) {
	const op = "publication_service.GetModeration"

	records, err := s.backend.GetModeration(ctx, id)
	if err != nil {
		s.log.Error("failed to get moderation", slog.String("op", op), slog.String("id", id), sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if records == nil {
		records = []models.ModerationRecord{}
	}

	return records, nil
}

// RejectionReason returns the effective status and, for rejected
// publications, the reason of the first moderation record.
func (s *PublicationService) RejectionReason(ctx context.Context, id string) (dto.RejectionResponse, error) {
	const op = "publication_service.RejectionReason"

	pub, err := s.GetByID(ctx, id)
	if err != nil {
		return dto.RejectionResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	resp := dto.RejectionResponse{Status: pub.Status}
	if pub.Status.Normalize() != models.StatusRejected {
		return resp, nil
	}

	records, err := s.GetModeration(ctx, id)
	if err != nil {
		return dto.RejectionResponse{}, fmt.Errorf("%s: %w", op, err)
	}
	if len(records) > 0 {
		resp.Reason = records[0].Reason
	}

	return resp, nil
}

// Subscribe streams change signals so views know when to refetch.
func (s *PublicationService) Subscribe() (<-chan overlay.ChangeEvent, func()) {
	return s.overlay.Subscribe()
}
