package types

// Farm is a plot of land owned by a farmer.
type Farm struct {
	ID             ID      `json:"id" db:"id"`
	FarmerID       ID      `json:"farmer_id" db:"farmer_id"`
	Name           string  `json:"name" db:"name"`
	Location       string  `json:"location" db:"location"`
	SizeAcres      float64 `json:"size_acres" db:"size_acres"`
	Irrigation     bool    `json:"irrigation" db:"irrigation"`
	GPSCoordinates *string `json:"gps_coordinates" db:"gps_coordinates"`

	// Farmer carries the owning farmer when the query joins it in,
	// so tables can show the owner without a second fetch.
	Farmer *Farmer `json:"farmer,omitempty"`
}
