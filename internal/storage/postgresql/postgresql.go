package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"marketplace_admin/internal/storage"
)

const (
	// tables
	overlayTable = "overlay_kv"

	DefaultChannel = "publications_changed"
)

// Storage keeps overlay values in postgres and carries change signals with
// LISTEN/NOTIFY.
type Storage struct {
	db      *pgxpool.Pool
	channel string
}

func New(ctx context.Context, storagePath, channel string) (*Storage, error) {
	const op = "storage.postgresql.New"

	db, err := pgxpool.Connect(ctx, storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if channel == "" {
		channel = DefaultChannel
	}

	return &Storage{
		db:      db,
		channel: channel,
	}, nil
}

func (s *Storage) Stop() {
	s.db.Close()
}

func (s *Storage) Ping(ctx context.Context) error {
	const op = "storage.postgresql.Ping"

	if err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Migrate creates the overlay table if it does not exist.
func (s *Storage) Migrate(ctx context.Context) error {
	const op = "storage.postgresql.Migrate"

	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS `+overlayTable+` (
			key        TEXT PRIMARY KEY,
			value      BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	const op = "storage.postgresql.Get"

	query, args, err := sq.Select("value").
		From(overlayTable).
		Where(sq.Eq{"key": key}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	var value []byte
	if err := s.db.QueryRow(ctx, query, args...).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrKeyNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return value, nil
}

// Set upserts the value; concurrent writers to one key resolve to the last one.
func (s *Storage) Set(ctx context.Context, key string, value []byte) error {
	const op = "storage.postgresql.Set"

	query, args, err := sq.Insert(overlayTable).
		Columns("key", "value", "updated_at").
		Values(key, value, time.Now().UTC()).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) Publish(ctx context.Context, payload []byte) error {
	const op = "storage.postgresql.Publish"

	if _, err := s.db.Exec(ctx, "SELECT pg_notify($1, $2)", s.channel, string(payload)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Listen holds one pooled connection in LISTEN mode until ctx is done.
func (s *Storage) Listen(ctx context.Context, handle func(payload []byte)) error {
	const op = "storage.postgresql.Listen"

	conn, err := s.db.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{s.channel}.Sanitize()); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		handle([]byte(n.Payload))
	}
}
