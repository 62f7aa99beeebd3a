// Package overlay keeps client-only annotations layered over backend
// publications: deleted media, media order, cover pins, status overrides and
// mock extras. Every read fails open to an empty map.
package overlay

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"marketplace_admin/internal/lib/logger/sl"
	"marketplace_admin/internal/metrics"
	"marketplace_admin/internal/storage"

	"github.com/google/uuid"
)

const DefaultPrefix = "pubadmin:v1:"

var errListenerClosed = errors.New("change listener closed")

type Key string

const (
	KeyDeletedMedia Key = "media_deleted"
	KeyOrder        Key = "media_order"
	KeyCover        Key = "cover"
	KeyStatus       Key = "status"
	KeyExtras       Key = "extras"
	KeyChangedAt    Key = "changed_at"
)

// Substrate is the raw persistent key-value storage the overlays live in.
// Get must return storage.ErrKeyNotFound for a missing key.
type Substrate interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Publisher is implemented by substrates shared between several instances
// (redis, postgres). Published payloads reach every listening instance,
// including the publisher itself.
type Publisher interface {
	Publish(ctx context.Context, payload []byte) error
	Listen(ctx context.Context, handle func(payload []byte)) error
}

type Store struct {
	log      *slog.Logger
	sub      Substrate
	prefix   string
	origin   string
	notifier *Notifier

	// mu serialises read-modify-write cycles inside one instance. Across
	// instances the last writer wins.
	mu sync.Mutex

	listenMu  sync.RWMutex
	listenErr error
	retryMin  time.Duration
	retryMax  time.Duration
}

func New(log *slog.Logger, sub Substrate, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}

	return &Store{
		log:      log,
		sub:      sub,
		prefix:   prefix,
		origin:   uuid.NewString(),
		notifier: NewNotifier(),
		retryMin: 500 * time.Millisecond,
		retryMax: 30 * time.Second,
	}
}

// Origin identifies this instance in published change signals.
func (s *Store) Origin() string {
	return s.origin
}

func (s *Store) fullKey(key Key) string {
	return s.prefix + string(key)
}

// Read decodes the value stored under key into dst. It reports false when the
// key is missing, unreadable or malformed; dst must then be treated as empty.
func (s *Store) Read(ctx context.Context, key Key, dst any) bool {
	raw, err := s.sub.Get(ctx, s.fullKey(key))
	if err != nil {
		if !errors.Is(err, storage.ErrKeyNotFound) {
			s.fail("read", key, err)
		}
		return false
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		s.fail("decode", key, err)
		return false
	}

	return true
}

// Write encodes v and stores it under key. Failures are logged and dropped.
func (s *Store) Write(ctx context.Context, key Key, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		s.fail("encode", key, err)
		return
	}

	if err := s.sub.Set(ctx, s.fullKey(key), raw); err != nil {
		s.fail("write", key, err)
	}
}

func (s *Store) fail(op string, key Key, err error) {
	metrics.OverlayFailuresTotal.WithLabelValues(op, string(key)).Inc()

	s.log.Warn("overlay degraded to empty",
		slog.String("op", "overlay.Store."+op),
		slog.String("key", string(key)),
		sl.Err(err),
	)
}

// SignalChanged records a fresh timestamp under the changed_at key and tells
// every subscriber, local and remote, that publications changed.
func (s *Store) SignalChanged(ctx context.Context) {
	ev := ChangeEvent{
		At:     time.Now().UTC(),
		Origin: s.origin,
	}

	s.Write(ctx, KeyChangedAt, ev.At.Format(time.RFC3339Nano))

	// writers do not receive their own storage events, so local subscribers
	// are notified directly
	s.notifier.Broadcast(ev)
	metrics.ChangeSignalsTotal.WithLabelValues("local").Inc()

	pub, ok := s.sub.(Publisher)
	if !ok {
		return
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		s.fail("encode", KeyChangedAt, err)
		return
	}
	if err := pub.Publish(ctx, payload); err != nil {
		s.fail("publish", KeyChangedAt, err)
	}
}

// LastChanged returns the timestamp of the latest change signal, if any.
func (s *Store) LastChanged(ctx context.Context) (time.Time, bool) {
	var raw string
	if !s.Read(ctx, KeyChangedAt, &raw) {
		return time.Time{}, false
	}

	at, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		s.fail("decode", KeyChangedAt, err)
		return time.Time{}, false
	}

	return at, true
}

// Subscribe returns a stream of change events and a function releasing it.
func (s *Store) Subscribe() (<-chan ChangeEvent, func()) {
	return s.notifier.Subscribe()
}

// Listen relays change signals published by other instances to the local
// subscribers. It blocks until ctx is done and is a no-op for substrates
// that cannot publish. A dropped subscription is re-established with backoff.
func (s *Store) Listen(ctx context.Context) error {
	const op = "overlay.Store.Listen"

	pub, ok := s.sub.(Publisher)
	if !ok {
		<-ctx.Done()
		return nil
	}

	delay := s.retryMin
	for {
		s.setListenErr(nil)
		s.log.Info("listening for remote change signals", slog.String("op", op), slog.String("origin", s.origin))

		err := pub.Listen(ctx, s.relay)
		if ctx.Err() != nil {
			return nil
		}
		if err == nil {
			err = errListenerClosed
		}

		s.setListenErr(err)
		s.log.Warn("change listener dropped, retrying",
			slog.String("op", op),
			slog.Duration("retry_in", delay),
			sl.Err(err),
		)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}

		delay = min(delay*2, s.retryMax)
	}
}

// ListenErr reports why the change listener is currently disconnected, nil
// while it is subscribed.
func (s *Store) ListenErr() error {
	s.listenMu.RLock()
	defer s.listenMu.RUnlock()

	return s.listenErr
}

func (s *Store) setListenErr(err error) {
	s.listenMu.Lock()
	s.listenErr = err
	s.listenMu.Unlock()
}

func (s *Store) relay(payload []byte) {
	var ev ChangeEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		s.fail("decode", KeyChangedAt, err)
		return
	}
	if ev.Origin == s.origin {
		return
	}

	ev.Remote = true
	s.notifier.Broadcast(ev)
	metrics.ChangeSignalsTotal.WithLabelValues("remote").Inc()
}
