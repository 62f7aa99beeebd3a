package memory

import (
	"context"

	"marketplace_admin/internal/storage"

	"github.com/patrickmn/go-cache"
)

// Storage keeps overlay values in process memory. Nothing survives a restart.
type Storage struct {
	c *cache.Cache
}

func New() *Storage {
	return &Storage{c: cache.New(cache.NoExpiration, 0)}
}

func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v, ok := s.c.Get(key)
	if !ok {
		return nil, storage.ErrKeyNotFound
	}

	raw, ok := v.([]byte)
	if !ok {
		return nil, storage.ErrKeyNotFound
	}

	return append([]byte(nil), raw...), nil
}

func (s *Storage) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.c.Set(key, append([]byte(nil), value...), cache.NoExpiration)

	return nil
}
