package models

import "time"

type Category struct {
	ID          string     `json:"id"`
	Name        string     `json:"nombre"`
	Description string     `json:"descripcion,omitempty"`
	Icon        string     `json:"icono,omitempty"`
	Active      bool       `json:"activa"`
	CreatedAt   *time.Time `json:"fechaCreacion,omitempty"`
}
