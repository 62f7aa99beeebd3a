package services

import (
	"testing"

	"marketplace_admin/internal/domain/models"

	"github.com/stretchr/testify/assert"
)

func media(ids ...string) []models.Media {
	out := make([]models.Media, len(ids))
	for i, id := range ids {
		out[i] = models.Media{ID: id, URL: "http://cdn/" + id + ".jpg", Order: i, Type: models.MediaTypeImage}
	}
	return out
}

func ids(m []models.Media) []string {
	out := make([]string, len(m))
	for i := range m {
		out[i] = m[i].ID
	}
	return out
}

func emptyOverlays() overlays {
	return overlays{
		deletedMedia: map[string]struct{}{},
		orders:       map[string][]string{},
		covers:       map[string]string{},
		statuses:     map[string]models.Status{},
		extras:       map[string]models.Extras{},
	}
}

func TestApplyOrder(t *testing.T) {
	tests := []struct {
		name  string
		media []string
		order []string
		want  []string
	}{
		{"full order", []string{"m1", "m2", "m3"}, []string{"m3", "m1", "m2"}, []string{"m3", "m1", "m2"}},
		{"unlisted go last in backend order", []string{"m1", "m2", "m3", "m4"}, []string{"m4", "m2"}, []string{"m4", "m2", "m1", "m3"}},
		{"unknown ids ignored", []string{"m1", "m2"}, []string{"x", "m2"}, []string{"m2", "m1"}},
		{"duplicates use first position", []string{"m1", "m2"}, []string{"m2", "m1", "m2"}, []string{"m2", "m1"}},
		{"empty order", []string{"m1", "m2"}, nil, []string{"m1", "m2"}},
		{"media without id stays after listed", []string{"", "m2"}, []string{"m2"}, []string{"m2", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := media(tt.media...)
			applyOrder(m, tt.order)
			assert.Equal(t, tt.want, ids(m))
		})
	}
}

func TestApplyOrder_Idempotent(t *testing.T) {
	order := []string{"m3", "m1"}

	once := media("m1", "m2", "m3", "m4")
	applyOrder(once, order)

	twice := media("m1", "m2", "m3", "m4")
	applyOrder(twice, order)
	applyOrder(twice, order)

	assert.Equal(t, once, twice)
}

func TestApplyCover(t *testing.T) {
	tests := []struct {
		name  string
		media []string
		cover string
		want  []string
	}{
		{"moves to front", []string{"m3", "m1", "m2"}, "m2", []string{"m2", "m3", "m1"}},
		{"already first", []string{"m1", "m2", "m3"}, "m1", []string{"m1", "m2", "m3"}},
		{"unknown id", []string{"m1", "m2", "m3"}, "nope", []string{"m1", "m2", "m3"}},
		{"empty id", []string{"m1", "m2"}, "", []string{"m1", "m2"}},
		{"empty collection", nil, "m1", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := media(tt.media...)
			before := append([]models.Media(nil), m...)
			applyCover(m, tt.cover)
			assert.Equal(t, tt.want, ids(m))
			assert.ElementsMatch(t, before, m)
		})
	}
}

func TestReconcile_StepOrder(t *testing.T) {
	pub := &models.Publication{ID: "p1", Status: models.StatusActive, Media: media("m1", "m2", "m3")}

	ov := emptyOverlays()
	ov.orders["p1"] = []string{"m3", "m1", "m2"}
	ov.covers["p1"] = "m2"
	ov.deletedMedia["m1"] = struct{}{}
	ov.statuses["p1"] = models.StatusDeleted

	reconcile(pub, ov)

	// cover acts on the reordered list
	assert.Equal(t, []string{"m2", "m3", "m1"}, ids(pub.Media))
	assert.Equal(t, models.StatusDeleted, pub.Status)
	assert.True(t, pub.Media[2].Deleted)
	assert.False(t, pub.Media[0].Deleted)
	assert.Nil(t, pub.Extras)
}

func TestReconcile_NilMedia(t *testing.T) {
	pub := &models.Publication{ID: "p1"}
	reconcile(pub, emptyOverlays())

	assert.NotNil(t, pub.Media)
	assert.Empty(t, pub.Media)
}

func TestReconcile_OtherPublicationsUntouched(t *testing.T) {
	pub := &models.Publication{ID: "p2", Status: models.StatusPaused, Media: media("m1", "m2")}

	ov := emptyOverlays()
	ov.orders["p1"] = []string{"m2", "m1"}
	ov.covers["p1"] = "m2"
	ov.statuses["p1"] = models.StatusDeleted

	reconcile(pub, ov)

	assert.Equal(t, []string{"m1", "m2"}, ids(pub.Media))
	assert.Equal(t, models.StatusPaused, pub.Status)
}

func TestVisible(t *testing.T) {
	pubs := []models.Publication{
		{ID: "a", Status: "activo"},
		{ID: "b", Status: "ELIMINADO"},
		{ID: "c", Status: "eliminado"},
		{ID: "d", Status: "ELIMINADA"},
		{ID: "e", Status: "pausado"},
		{ID: "f", Status: "Eliminada por moderación"},
	}

	got := visible(pubs)

	var kept []string
	for _, p := range got {
		kept = append(kept, p.ID)
	}
	assert.Equal(t, []string{"a", "e"}, kept)
}
