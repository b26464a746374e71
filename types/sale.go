package types

import "time"

// Sale records produce sold off a farm.
type Sale struct {
	ID           ID         `json:"id" db:"id"`
	FarmID       ID         `json:"farm_id" db:"farm_id"`
	ProductType  string     `json:"product_type" db:"product_type"`
	ProductName  *string    `json:"product_name" db:"product_name"`
	Quantity     *float64   `json:"quantity" db:"quantity"`
	Unit         *string    `json:"unit" db:"unit"`
	PricePerUnit *float64   `json:"price_per_unit" db:"price_per_unit"`
	SaleDate     *time.Time `json:"sale_date" db:"sale_date"`
	BuyerName    *string    `json:"buyer_name" db:"buyer_name"`
}
