package storage

import (
	"context"
	"errors"
	"fmt"

	"marketplace_admin/internal/storage"

	"github.com/redis/go-redis/v9"
)

const DefaultChannel = "pubadmin:publications_changed"

// OverlayStorage keeps overlay values in redis so that every admin instance
// sees the same overlays, and carries change signals over pub/sub.
type OverlayStorage struct {
	client  *Client
	channel string
}

func NewOverlayStorage(client *Client, channel string) *OverlayStorage {
	if channel == "" {
		channel = DefaultChannel
	}

	return &OverlayStorage{client: client, channel: channel}
}

func (s *OverlayStorage) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, storage.ErrKeyNotFound
		}
		return nil, err
	}

	return raw, nil
}

func (s *OverlayStorage) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, key, value, 0).Err()
}

func (s *OverlayStorage) Publish(ctx context.Context, payload []byte) error {
	return s.client.Publish(ctx, s.channel, payload).Err()
}

// Listen blocks delivering every message published on the channel to handle
// until ctx is done.
func (s *OverlayStorage) Listen(ctx context.Context, handle func(payload []byte)) error {
	ps := s.client.Subscribe(ctx, s.channel)
	defer ps.Close()

	// wait for the subscription confirmation so no signal is lost afterwards
	if _, err := ps.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", s.channel, err)
	}

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			handle([]byte(msg.Payload))
		}
	}
}
