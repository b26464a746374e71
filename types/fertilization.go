package types

import "time"

// Fertilization records an application of fertilizer to a crop.
type Fertilization struct {
	ID         ID         `json:"id" db:"id"`
	CropID     ID         `json:"crop_id" db:"crop_id"`
	Date       *time.Time `json:"date" db:"date"`
	Type       *string    `json:"type" db:"type"`
	QuantityKg *float64   `json:"quantity_kg" db:"quantity_kg"`
}
