package types

import "time"

// Equipment condition grades.
const (
	EquipmentConditionNew  = "new"
	EquipmentConditionGood = "good"
	EquipmentConditionFair = "fair"
	EquipmentConditionPoor = "poor"
)

// ValidEquipmentCondition reports whether condition is a known grade.
func ValidEquipmentCondition(condition string) bool {
	switch condition {
	case EquipmentConditionNew, EquipmentConditionGood, EquipmentConditionFair, EquipmentConditionPoor:
		return true
	}
	return false
}

// Equipment is a machine or tool assigned to a farm.
type Equipment struct {
	ID            ID         `json:"id" db:"id"`
	FarmID        ID         `json:"farm_id" db:"farm_id"`
	Name          string     `json:"name" db:"name"`
	PurchaseDate  *time.Time `json:"purchase_date" db:"purchase_date"`
	Condition     *string    `json:"condition" db:"condition"`
	IsOperational bool       `json:"is_operational" db:"is_operational"`
}
