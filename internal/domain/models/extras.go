package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

const (
	DeliveryInPerson = "Presencial"
	DeliveryShipping = "Envío"
)

// Extras поля, которых пока нет в схеме бэкенда: категория, продукт,
// способы доставки, остаток и цена. Хранятся только в оверлее.
type Extras struct {
	Category      string           `json:"categoria,omitempty"`
	Product       string           `json:"producto,omitempty"`
	DeliveryTypes []string         `json:"tipo_entrega,omitempty"`
	Stock         *int             `json:"stock,omitempty"`
	Price         *decimal.Decimal `json:"precio,omitempty"`
}

func (e Extras) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Category, validation.Length(0, 64)),
		validation.Field(&e.Product, validation.Length(0, 64)),
		validation.Field(&e.DeliveryTypes,
			validation.Each(validation.In(DeliveryInPerson, DeliveryShipping).Error("unknown delivery type")),
		),
		validation.Field(&e.Stock, validation.By(nonNegativeInt)),
		validation.Field(&e.Price, validation.By(nonNegativeDecimal)),
	)
}

func nonNegativeInt(value interface{}) error {
	v, ok := value.(*int)
	if !ok || v == nil {
		return nil
	}
	if *v < 0 {
		return validation.NewError("validation_negative", "must not be negative")
	}

	return nil
}

func nonNegativeDecimal(value interface{}) error {
	v, ok := value.(*decimal.Decimal)
	if !ok || v == nil {
		return nil
	}
	if v.IsNegative() {
		return validation.NewError("validation_negative", "must not be negative")
	}

	return nil
}
