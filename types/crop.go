package types

import "time"

// Crop lifecycle states.
const (
	CropStatusPlanted   = "planted"
	CropStatusGrowing   = "growing"
	CropStatusHarvested = "harvested"
)

// ValidCropStatus reports whether status is one of the known lifecycle states.
func ValidCropStatus(status string) bool {
	switch status {
	case CropStatusPlanted, CropStatusGrowing, CropStatusHarvested:
		return true
	}
	return false
}

// Crop is a planting on a farm.
type Crop struct {
	ID                  ID         `json:"id" db:"id"`
	FarmID              ID         `json:"farm_id" db:"farm_id"`
	Name                string     `json:"name" db:"name"`
	Variety             *string    `json:"variety" db:"variety"`
	PlantingDate        *time.Time `json:"planting_date" db:"planting_date"`
	ExpectedHarvestDate *time.Time `json:"expected_harvest_date" db:"expected_harvest_date"`
	Status              string     `json:"status" db:"status"`
}
