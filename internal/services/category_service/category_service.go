package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"marketplace_admin/internal/domain/models"
	"marketplace_admin/internal/lib/logger/sl"

	"github.com/patrickmn/go-cache"
)

// CategorySource is the backend side of categories.
type CategorySource interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListActiveCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id string) (*models.Category, error)
}

const (
	cacheKeyAll    = "all"
	cacheKeyActive = "active"
	cacheKeyByID   = "id:"
)

type CategoryService struct {
	log        *slog.Logger
	source     CategorySource
	isNotFound func(error) bool
	cache      *cache.Cache
}

// NewCategoryService builds the service. isNotFound decides when the active
// endpoint is missing and the full list must be filtered instead; ttl <= 0
// disables caching.
func NewCategoryService(log *slog.Logger, source CategorySource, isNotFound func(error) bool, ttl time.Duration) *CategoryService {
	var c *cache.Cache
	if ttl > 0 {
		c = cache.New(ttl, 2*ttl)
	}

	return &CategoryService{
		log:        log,
		source:     source,
		isNotFound: isNotFound,
		cache:      c,
	}
}

func (s *CategoryService) cached(key string) ([]models.Category, bool) {
	if s.cache == nil {
		return nil, false
	}

	v, ok := s.cache.Get(key)
	if !ok {
		return nil, false
	}
	cats, ok := v.([]models.Category)
	if !ok {
		return nil, false
	}

	// вызывающий может менять срез, кэш отдаёт копию
	return slices.Clone(cats), true
}

func (s *CategoryService) remember(key string, cats []models.Category) {
	if s.cache == nil {
		return
	}
	s.cache.SetDefault(key, slices.Clone(cats))
}

func (s *CategoryService) GetAll(ctx context.Context) ([]models.Category, error) {
	const op = "category_service.GetAll"

	if cats, ok := s.cached(cacheKeyAll); ok {
		return cats, nil
	}

	cats, err := s.source.ListCategories(ctx)
	if err != nil {
		s.log.Error("failed to list categories", slog.String("op", op), sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.remember(cacheKeyAll, cats)

	return cats, nil
}

// GetActive returns active categories. When the backend has no
// /categorias/activas route the full list is fetched once and filtered.
func (s *CategoryService) GetActive(ctx context.Context) ([]models.Category, error) {
	const op = "category_service.GetActive"

	log := s.log.With(slog.String("op", op))

	if cats, ok := s.cached(cacheKeyActive); ok {
		return cats, nil
	}

	cats, err := s.source.ListActiveCategories(ctx)
	if err != nil {
		if s.isNotFound == nil || !s.isNotFound(err) {
			log.Error("failed to list active categories", sl.Err(err))

			return nil, fmt.Errorf("%s: %w", op, err)
		}

		log.Warn("active categories endpoint missing, filtering full list", sl.Err(err))

		all, err := s.source.ListCategories(ctx)
		if err != nil {
			log.Error("failed to list categories", sl.Err(err))

			return nil, fmt.Errorf("%s: %w", op, err)
		}

		cats = make([]models.Category, 0, len(all))
		for _, c := range all {
			if c.Active {
				cats = append(cats, c)
			}
		}
	}

	s.remember(cacheKeyActive, cats)

	return cats, nil
}

func (s *CategoryService) GetByID(ctx context.Context, id string) (*models.Category, error) {
	const op = "category_service.GetByID"

	if cats, ok := s.cached(cacheKeyByID + id); ok && len(cats) == 1 {
		c := cats[0]
		return &c, nil
	}

	cat, err := s.source.GetCategory(ctx, id)
	if err != nil {
		s.log.Error("failed to get category", slog.String("op", op), slog.String("id", id), sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.remember(cacheKeyByID+id, []models.Category{*cat})

	return cat, nil
}
