package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type MediaType string

const (
	MediaTypeImage MediaType = "imagen"
	MediaTypeVideo MediaType = "video"
)

// Publication публикация продавца в том виде, в каком её отдаёт бэкенд,
// после наложения локальных оверлеев
type Publication struct {
	ID          string             `json:"id"`
	Title       string             `json:"titulo"`
	Description string             `json:"descripcion"`
	Price       *decimal.Decimal   `json:"precio,omitempty"`
	Status      Status             `json:"estado"`
	SellerID    string             `json:"id_vendedor,omitempty"`
	ProductID   string             `json:"id_producto,omitempty"`
	StoreID     string             `json:"id_tienda,omitempty"`
	CreatedAt   *time.Time         `json:"fecha_creacion,omitempty"`
	UpdatedAt   *time.Time         `json:"fecha_actualizacion,omitempty"`
	Media       []Media            `json:"multimedia"`
	Moderation  []ModerationRecord `json:"moderacion,omitempty"`

	// Extras заполняется только из локального оверлея, бэкенд этих полей не знает
	Extras *Extras `json:"extras,omitempty"`
}

// Media одно изображение или видео публикации
type Media struct {
	ID    string    `json:"id,omitempty"`
	URL   string    `json:"url"`
	Order int       `json:"orden"`
	Type  MediaType `json:"tipo"`

	// Deleted вычисляется при чтении из локального набора удалённых медиа
	Deleted bool `json:"eliminado"`
}

// ModerationRecord запись истории модерации
type ModerationRecord struct {
	ID        string     `json:"id,omitempty"`
	Decision  string     `json:"decision,omitempty"`
	Reason    string     `json:"motivo"`
	CreatedAt *time.Time `json:"fecha,omitempty"`
}

// MediaIDs returns the identifiers of the media collection in its current order.
func (p *Publication) MediaIDs() []string {
	ids := make([]string, 0, len(p.Media))
	for _, m := range p.Media {
		ids = append(ids, m.ID)
	}

	return ids
}

// VisibleMedia returns the media not flagged as deleted.
func (p *Publication) VisibleMedia() []Media {
	visible := make([]Media, 0, len(p.Media))
	for _, m := range p.Media {
		if !m.Deleted {
			visible = append(visible, m)
		}
	}

	return visible
}

// Cover returns the first non-deleted media, if any.
func (p *Publication) Cover() (Media, bool) {
	visible := p.VisibleMedia()
	if len(visible) == 0 {
		return Media{}, false
	}

	return visible[0], true
}
