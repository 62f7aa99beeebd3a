package models

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError ошибка клиентской валидации: поля формы, DTO, файлы.
// До бэкенда такие запросы не доходят.
type ValidationError struct {
	Errors []string

	// Cause sentinel для errors.Is, может быть nil
	Cause error
}

func NewValidationError(msgs ...string) *ValidationError {
	return &ValidationError{Errors: msgs}
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

// IsValidationError проверяет, является ли ошибка ошибкой валидации
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
