package marketplace

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"marketplace_admin/internal/domain/models"
	"marketplace_admin/internal/storage"

	"github.com/shopspring/decimal"
)

// MediaInput media item as the backend accepts it on create and add.
type MediaInput struct {
	URL   string           `json:"url"`
	Type  models.MediaType `json:"tipo"`
	Order *int             `json:"orden,omitempty"`
}

type CreatePublicationInput struct {
	Title       string           `json:"titulo"`
	Description string           `json:"descripcion"`
	Price       *decimal.Decimal `json:"precio,omitempty"`
	Status      models.Status    `json:"estado"`
	SellerID    string           `json:"id_vendedor,omitempty"`
	ProductID   string           `json:"id_producto,omitempty"`
	StoreID     string           `json:"id_tienda,omitempty"`
	Media       []MediaInput     `json:"multimedia,omitempty"`
}

// UpdatePublicationInput is a partial update: nil fields are not sent.
type UpdatePublicationInput struct {
	Title       *string          `json:"titulo,omitempty"`
	Description *string          `json:"descripcion,omitempty"`
	Price       *decimal.Decimal `json:"precio,omitempty"`
}

func publicationPath(id string, rest ...string) string {
	p := "/publicaciones/" + url.PathEscape(id)
	for _, r := range rest {
		p += "/" + r
	}
	return p
}

func (c *Client) ListPublications(ctx context.Context, query url.Values) ([]models.Publication, error) {
	const op = "marketplace.Client.ListPublications"

	var pubs []models.Publication
	err := c.do(ctx, request{
		method: http.MethodGet,
		route:  "/publicaciones",
		path:   "/publicaciones",
		query:  query,
	}, &pubs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return pubs, nil
}

func (c *Client) GetPublication(ctx context.Context, id string) (*models.Publication, error) {
	const op = "marketplace.Client.GetPublication"

	var pub models.Publication
	err := c.do(ctx, request{
		method:   http.MethodGet,
		route:    "/publicaciones/:id",
		path:     publicationPath(id),
		notFound: storage.ErrPublicationNotFound,
	}, &pub)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &pub, nil
}

func (c *Client) CreatePublication(ctx context.Context, in CreatePublicationInput) (*models.Publication, error) {
	const op = "marketplace.Client.CreatePublication"

	body, err := jsonBody(in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var pub models.Publication
	err = c.do(ctx, request{
		method: http.MethodPost,
		route:  "/publicaciones",
		path:   "/publicaciones",
		body:   body,
	}, &pub)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &pub, nil
}

func (c *Client) UpdatePublication(ctx context.Context, id string, in UpdatePublicationInput) (*models.Publication, error) {
	const op = "marketplace.Client.UpdatePublication"

	body, err := jsonBody(in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var pub models.Publication
	err = c.do(ctx, request{
		method:   http.MethodPatch,
		route:    "/publicaciones/:id",
		path:     publicationPath(id),
		body:     body,
		notFound: storage.ErrPublicationNotFound,
	}, &pub)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &pub, nil
}

func (c *Client) ChangeStatus(ctx context.Context, id string, status models.Status) (*models.Publication, error) {
	const op = "marketplace.Client.ChangeStatus"

	body, err := jsonBody(map[string]models.Status{"estado": status})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var pub models.Publication
	err = c.do(ctx, request{
		method:   http.MethodPatch,
		route:    "/publicaciones/:id/estado",
		path:     publicationPath(id, "estado"),
		body:     body,
		notFound: storage.ErrPublicationNotFound,
	}, &pub)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &pub, nil
}

// DeletePublication removes the record on the backend. The admin flow deletes
// through the eliminado status instead.
func (c *Client) DeletePublication(ctx context.Context, id string) error {
	const op = "marketplace.Client.DeletePublication"

	err := c.do(ctx, request{
		method:   http.MethodDelete,
		route:    "/publicaciones/:id",
		path:     publicationPath(id),
		notFound: storage.ErrPublicationNotFound,
	}, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *Client) AddMedia(ctx context.Context, id string, in MediaInput) (*models.Media, error) {
	const op = "marketplace.Client.AddMedia"

	body, err := jsonBody(in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var media models.Media
	err = c.do(ctx, request{
		method:   http.MethodPost,
		route:    "/publicaciones/:id/multimedia",
		path:     publicationPath(id, "multimedia"),
		body:     body,
		notFound: storage.ErrPublicationNotFound,
	}, &media)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &media, nil
}

// DeleteMedia removes one media on the backend. Media deletion in the admin
// flow stays local, see overlay.Store.MarkMediaDeleted.
func (c *Client) DeleteMedia(ctx context.Context, mediaID string) error {
	const op = "marketplace.Client.DeleteMedia"

	err := c.do(ctx, request{
		method: http.MethodDelete,
		route:  "/publicaciones/multimedia/:mediaId",
		path:   "/publicaciones/multimedia/" + url.PathEscape(mediaID),
	}, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *Client) GetModeration(ctx context.Context, id string) ([]models.ModerationRecord, error) {
	const op = "marketplace.Client.GetModeration"

	var records []models.ModerationRecord
	err := c.do(ctx, request{
		method:   http.MethodGet,
		route:    "/publicaciones/:id/moderacion",
		path:     publicationPath(id, "moderacion"),
		notFound: storage.ErrPublicationNotFound,
	}, &records)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return records, nil
}
