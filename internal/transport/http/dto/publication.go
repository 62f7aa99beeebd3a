package dto

import (
	"marketplace_admin/internal/domain/models"

	"github.com/shopspring/decimal"
)

type MediaRequest struct {
	URL   string           `json:"url" validate:"required,url"`
	Type  models.MediaType `json:"tipo,omitempty" validate:"omitempty,oneof=imagen video"`
	Order *int             `json:"orden,omitempty" validate:"omitempty,min=0"`
}

type CreatePublicationRequest struct {
	Title       string           `json:"titulo" validate:"required,min=5,max=150"`
	Description string           `json:"descripcion" validate:"required,min=10,max=5000"`
	Price       *decimal.Decimal `json:"precio,omitempty"`
	Status      models.Status    `json:"estado,omitempty"`
	SellerID    string           `json:"id_vendedor,omitempty" validate:"omitempty,max=64"`
	ProductID   string           `json:"id_producto,omitempty" validate:"omitempty,max=64"`
	StoreID     string           `json:"id_tienda,omitempty" validate:"omitempty,max=64"`
	Media       []MediaRequest   `json:"multimedia,omitempty" validate:"omitempty,max=10,dive"`

	// Extras сохраняются в оверлей после того, как бэкенд вернул id
	Extras *models.Extras `json:"extras,omitempty"`
}

// UpdatePublicationRequest partial update: only non-nil fields reach the backend.
type UpdatePublicationRequest struct {
	Title       *string          `json:"titulo,omitempty" validate:"omitempty,min=5,max=150"`
	Description *string          `json:"descripcion,omitempty" validate:"omitempty,min=10,max=5000"`
	Price       *decimal.Decimal `json:"precio,omitempty"`
	Extras      *models.Extras   `json:"extras,omitempty"`
}

type ChangeStatusRequest struct {
	Status models.Status `json:"estado" validate:"required"`
}

type AddMediaRequest = MediaRequest

type SetOrderRequest struct {
	MediaIDs []string `json:"media_ids" validate:"dive,required"`
}

type SetCoverRequest struct {
	MediaID string `json:"media_id"`
}

// ListPublicationsQuery options of the reconciled list.
type ListPublicationsQuery struct {
	IncludeDeleted bool
	// Filters are passed to the backend as query parameters
	Filters map[string][]string
}

type RejectionResponse struct {
	Status models.Status `json:"estado"`
	Reason string        `json:"motivo,omitempty"`
}
