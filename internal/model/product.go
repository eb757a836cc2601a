package model

import "time"

type Product struct {
	SystemID       string    `db:"system_id" json:"system_id"`
	UPCID          *string   `db:"upc_id" json:"upc_id"`
	CustomSKU      *string   `db:"custom_sku" json:"custom_sku"`
	EAN            *string   `db:"ean" json:"ean"`
	ManufactureSKU *string   `db:"manufacture_sku" json:"manufacture_sku"`
	Description    *string   `db:"description" json:"description"`
	Price          *float64  `db:"price" json:"price"`
	Category       *string   `db:"category" json:"category"`
	Subcat1        *string   `db:"subcat_1" json:"subcat_1"`
	Subcat2        *string   `db:"subcat_2" json:"subcat_2"`
	Subcat3        *string   `db:"subcat_3" json:"subcat_3"`
	Brand          *string   `db:"brand" json:"brand"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Candidate is one row returned by the resolution query.
type Candidate struct {
	SystemID string `db:"system_id"`
	Exact    bool   `db:"exact"`
}
