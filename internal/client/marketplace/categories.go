package marketplace

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"marketplace_admin/internal/domain/models"
	"marketplace_admin/internal/storage"
)

func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	const op = "marketplace.Client.ListCategories"

	var cats []models.Category
	err := c.do(ctx, request{
		method: http.MethodGet,
		route:  "/categorias",
		path:   "/categorias",
	}, &cats)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return cats, nil
}

// ListActiveCategories calls /categorias/activas. Some backend deployments
// answer 404 on it; callers fall back to ListCategories.
func (c *Client) ListActiveCategories(ctx context.Context) ([]models.Category, error) {
	const op = "marketplace.Client.ListActiveCategories"

	var cats []models.Category
	err := c.do(ctx, request{
		method: http.MethodGet,
		route:  "/categorias/activas",
		path:   "/categorias/activas",
	}, &cats)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return cats, nil
}

func (c *Client) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	const op = "marketplace.Client.GetCategory"

	var cat models.Category
	err := c.do(ctx, request{
		method:   http.MethodGet,
		route:    "/categorias/:id",
		path:     "/categorias/" + url.PathEscape(id),
		notFound: storage.ErrCategoryNotFound,
	}, &cat)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cat, nil
}
