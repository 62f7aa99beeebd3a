package models

import (
	"errors"
	"fmt"
	"strings"
)

// Status жизненный цикл публикации, как его присылает бэкенд (поле estado)
type Status string

const (
	StatusDraft    Status = "borrador"
	StatusInReview Status = "en_revision"
	StatusActive   Status = "activo"
	StatusPaused   Status = "pausado"
	StatusSold     Status = "vendido"
	StatusRejected Status = "rechazado"
	StatusDeleted  Status = "eliminado"
)

// deletedMarker matches every historical spelling: ELIMINADO, eliminado, ELIMINADA.
const deletedMarker = "ELIMIN"

var knownStatuses = []Status{
	StatusDraft,
	StatusInReview,
	StatusActive,
	StatusPaused,
	StatusSold,
	StatusRejected,
	StatusDeleted,
}

// allowedTransitions таблица разрешённых переходов. Переход в eliminado
// разрешён из любого состояния и проверяется отдельно.
var allowedTransitions = map[Status][]Status{
	StatusInReview: {StatusActive, StatusRejected, StatusPaused, StatusDraft},
	StatusDraft:    {StatusInReview, StatusSold},
	StatusActive:   {StatusPaused, StatusSold},
	StatusPaused:   {StatusActive, StatusSold},
	StatusRejected: {StatusInReview, StatusSold},
	StatusDeleted:  {StatusActive},
}

// IsDeletedMarker reports whether s is any spelling of the deleted status.
func IsDeletedMarker(s Status) bool {
	return strings.Contains(strings.ToUpper(string(s)), deletedMarker)
}

// Normalize maps legacy spellings (upper case, spaces, feminine forms) onto
// the canonical lower-case status. Unknown values are returned lower-cased.
func (s Status) Normalize() Status {
	if IsDeletedMarker(s) {
		return StatusDeleted
	}

	v := strings.ToLower(strings.TrimSpace(string(s)))
	v = strings.ReplaceAll(v, " ", "_")

	return Status(v)
}

func (s Status) IsKnown() bool {
	n := s.Normalize()
	for _, k := range knownStatuses {
		if n == k {
			return true
		}
	}

	return false
}

// CanTransition проверяет переход from -> to по таблице состояний.
// Повторная установка текущего статуса считается допустимой.
func CanTransition(from, to Status) bool {
	from, to = from.Normalize(), to.Normalize()

	if !to.IsKnown() {
		return false
	}
	if from == to || to == StatusDeleted {
		return true
	}
	// статус, которого нет в таблице (старые данные бэкенда), не блокирует модерацию
	if !from.IsKnown() {
		return true
	}

	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}

	return false
}

// TransitionError возвращается при попытке недопустимого перехода статуса
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("status transition %q -> %q is not allowed", e.From, e.To)
}

// IsTransitionError проверяет, является ли ошибка ошибкой перехода статуса
func IsTransitionError(err error) bool {
	var te *TransitionError
	return errors.As(err, &te)
}
