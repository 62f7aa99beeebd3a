package models

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDeletedMarker(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{"eliminado", true},
		{"ELIMINADO", true},
		{"ELIMINADA", true},
		{"Eliminada", true},
		{"pre_eliminado", true},
		{"activo", false},
		{"limpio", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, IsDeletedMarker(tt.status))
		})
	}
}

func TestStatus_Normalize(t *testing.T) {
	tests := []struct {
		in   Status
		want Status
	}{
		{"activo", StatusActive},
		{" ACTIVO ", StatusActive},
		{"En Revision", StatusInReview},
		{"EN_REVISION", StatusInReview},
		{"ELIMINADA", StatusDeleted},
		{"Pausado", StatusPaused},
		{"publicado", "publicado"},
	}

	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}

	assert.True(t, Status("ELIMINADO").IsKnown())
	assert.True(t, Status("En revision").IsKnown())
	assert.False(t, Status("publicado").IsKnown())
	assert.False(t, Status("").IsKnown())
}

func TestCanTransition_AllPairs(t *testing.T) {
	// разрешённые переходы помимо "в тот же статус" и "в eliminado"
	allowed := map[[2]Status]bool{
		{StatusInReview, StatusActive}:   true,
		{StatusInReview, StatusRejected}: true,
		{StatusInReview, StatusPaused}:   true,
		{StatusInReview, StatusDraft}:    true,
		{StatusDraft, StatusInReview}:    true,
		{StatusDraft, StatusSold}:        true,
		{StatusActive, StatusPaused}:     true,
		{StatusActive, StatusSold}:       true,
		{StatusPaused, StatusActive}:     true,
		{StatusPaused, StatusSold}:       true,
		{StatusRejected, StatusInReview}: true,
		{StatusRejected, StatusSold}:     true,
		{StatusDeleted, StatusActive}:    true,
	}

	for _, from := range knownStatuses {
		for _, to := range knownStatuses {
			want := from == to || to == StatusDeleted || allowed[[2]Status{from, to}]

			t.Run(fmt.Sprintf("%s->%s", from, to), func(t *testing.T) {
				assert.Equal(t, want, CanTransition(from, to))
			})
		}
	}
}

func TestCanTransition_LegacyAndUnknown(t *testing.T) {
	tests := []struct {
		name     string
		from, to Status
		want     bool
	}{
		{"legacy deleted restores to activo", "ELIMINADO", "activo", true},
		{"legacy deleted cannot pause", "ELIMINADA", "pausado", false},
		{"legacy spelled target", "En Revision", "ACTIVO", true},
		{"vendido is final", "VENDIDO", "activo", false},
		{"vendido can still be deleted", "vendido", "Eliminado", true},
		{"unknown current status moves anywhere", "publicado", "pausado", true},
		{"unknown target rejected", "activo", "publicado", false},
		{"empty target rejected", "activo", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestTransitionError(t *testing.T) {
	err := fmt.Errorf("change: %w", &TransitionError{From: StatusSold, To: StatusActive})

	assert.True(t, IsTransitionError(err))
	assert.False(t, IsTransitionError(NewValidationError("x")))
	assert.Contains(t, err.Error(), `"vendido" -> "activo"`)
}
