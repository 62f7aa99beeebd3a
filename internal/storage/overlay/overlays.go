package overlay

import (
	"context"
	"sort"

	"marketplace_admin/internal/domain/models"
)

// DeletedMedia returns the set of media ids flagged as deleted locally.
// The set is persisted as a flat JSON list.
func (s *Store) DeletedMedia(ctx context.Context) map[string]struct{} {
	var ids []string
	if !s.Read(ctx, KeyDeletedMedia, &ids) {
		ids = nil
	}

	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	return set
}

// Orders returns publication id -> ordered media ids.
func (s *Store) Orders(ctx context.Context) map[string][]string {
	m := map[string][]string{}
	if !s.Read(ctx, KeyOrder, &m) || m == nil {
		return map[string][]string{}
	}

	return m
}

// Covers returns publication id -> pinned media id.
func (s *Store) Covers(ctx context.Context) map[string]string {
	m := map[string]string{}
	if !s.Read(ctx, KeyCover, &m) || m == nil {
		return map[string]string{}
	}

	return m
}

// StatusOverrides returns publication id -> status shown instead of the backend one.
func (s *Store) StatusOverrides(ctx context.Context) map[string]models.Status {
	m := map[string]models.Status{}
	if !s.Read(ctx, KeyStatus, &m) || m == nil {
		return map[string]models.Status{}
	}

	return m
}

// Extras returns publication id -> mock fields the backend does not model yet.
func (s *Store) Extras(ctx context.Context) map[string]models.Extras {
	m := map[string]models.Extras{}
	if !s.Read(ctx, KeyExtras, &m) || m == nil {
		return map[string]models.Extras{}
	}

	return m
}

func (s *Store) MarkMediaDeleted(ctx context.Context, mediaID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.DeletedMedia(ctx)
	set[mediaID] = struct{}{}
	s.Write(ctx, KeyDeletedMedia, setToList(set))
}

func (s *Store) RestoreMedia(ctx context.Context, mediaID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.DeletedMedia(ctx)
	if _, ok := set[mediaID]; !ok {
		return
	}
	delete(set, mediaID)
	s.Write(ctx, KeyDeletedMedia, setToList(set))
}

// SetOrder stores the media order for a publication; an empty list removes it.
func (s *Store) SetOrder(ctx context.Context, pubID string, mediaIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.Orders(ctx)
	if len(mediaIDs) == 0 {
		delete(m, pubID)
	} else {
		m[pubID] = append([]string(nil), mediaIDs...)
	}
	s.Write(ctx, KeyOrder, m)
}

// SetCover pins a media as cover; an empty mediaID removes the pin.
func (s *Store) SetCover(ctx context.Context, pubID, mediaID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.Covers(ctx)
	if mediaID == "" {
		delete(m, pubID)
	} else {
		m[pubID] = mediaID
	}
	s.Write(ctx, KeyCover, m)
}

func (s *Store) SetStatusOverride(ctx context.Context, pubID string, status models.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.StatusOverrides(ctx)
	m[pubID] = status
	s.Write(ctx, KeyStatus, m)
}

func (s *Store) ClearStatusOverride(ctx context.Context, pubID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.StatusOverrides(ctx)
	if _, ok := m[pubID]; !ok {
		return
	}
	delete(m, pubID)
	s.Write(ctx, KeyStatus, m)
}

func (s *Store) SetExtras(ctx context.Context, pubID string, extras models.Extras) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.Extras(ctx)
	m[pubID] = extras
	s.Write(ctx, KeyExtras, m)
}

func setToList(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}
