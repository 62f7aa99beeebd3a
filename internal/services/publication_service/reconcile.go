package services

import (
	"context"
	"sort"

	"marketplace_admin/internal/domain/models"
	"marketplace_admin/internal/storage/overlay"
)

// overlays is one consistent snapshot of every overlay map, read once per
// request.
type overlays struct {
	deletedMedia map[string]struct{}
	orders       map[string][]string
	covers       map[string]string
	statuses     map[string]models.Status
	extras       map[string]models.Extras
}

func loadOverlays(ctx context.Context, store *overlay.Store) overlays {
	return overlays{
		deletedMedia: store.DeletedMedia(ctx),
		orders:       store.Orders(ctx),
		covers:       store.Covers(ctx),
		statuses:     store.StatusOverrides(ctx),
		extras:       store.Extras(ctx),
	}
}

// reconcile layers the overlays over a backend record in place. The step
// order is fixed: deleted flags, status, order, cover, extras. The cover pin
// works on the already reordered collection.
func reconcile(pub *models.Publication, ov overlays) {
	if pub.Media == nil {
		pub.Media = []models.Media{}
	}

	applyDeletedFlags(pub.Media, ov.deletedMedia)

	if status, ok := ov.statuses[pub.ID]; ok && status != "" {
		pub.Status = status
	}

	if order, ok := ov.orders[pub.ID]; ok {
		applyOrder(pub.Media, order)
	}

	if cover, ok := ov.covers[pub.ID]; ok {
		applyCover(pub.Media, cover)
	}

	if extras, ok := ov.extras[pub.ID]; ok {
		e := extras
		pub.Extras = &e
	}
}

// applyDeletedFlags only flags media; nothing is removed from the collection.
func applyDeletedFlags(media []models.Media, deleted map[string]struct{}) {
	for i := range media {
		_, media[i].Deleted = deleted[media[i].ID]
	}
}

// applyOrder sorts media by their position in order. Media missing from the
// list go after the listed ones and keep their relative order.
func applyOrder(media []models.Media, order []string) {
	if len(order) == 0 {
		return
	}

	pos := make(map[string]int, len(order))
	for i, id := range order {
		if _, seen := pos[id]; !seen {
			pos[id] = i
		}
	}

	rank := func(m models.Media) int {
		if p, ok := pos[m.ID]; ok && m.ID != "" {
			return p
		}
		return len(order)
	}

	sort.SliceStable(media, func(i, j int) bool {
		return rank(media[i]) < rank(media[j])
	})
}

// applyCover moves the pinned media to the front. Unknown ids are ignored.
func applyCover(media []models.Media, mediaID string) {
	if mediaID == "" {
		return
	}

	idx := -1
	for i := range media {
		if media[i].ID == mediaID {
			idx = i
			break
		}
	}
	if idx <= 0 {
		return
	}

	pinned := media[idx]
	copy(media[1:idx+1], media[:idx])
	media[0] = pinned
}

// visible drops publications whose effective status is any spelling of
// "deleted".
func visible(pubs []models.Publication) []models.Publication {
	out := make([]models.Publication, 0, len(pubs))
	for _, p := range pubs {
		if !models.IsDeletedMarker(p.Status) {
			out = append(out, p)
		}
	}

	return out
}
