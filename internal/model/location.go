package model

// ShelfCoordinate locates a product in physical space.
type ShelfCoordinate struct {
	ShelfID      string `db:"shelf_id" json:"shelf_id"`
	ShelfRow     string `db:"shelf_row" json:"shelf_row"`
	ItemPosition int    `db:"item_position" json:"item_position"`
}

// LocationAssignment places one product on one shelf cell. (system_id,
// shelf_id, shelf_row) is unique.
type LocationAssignment struct {
	SystemID string `db:"system_id" json:"system_id"`
	ShelfCoordinate
}

// CellKey identifies the row an assignment upserts into.
func (a LocationAssignment) CellKey() string {
	return a.SystemID + "\x00" + a.ShelfID + "\x00" + a.ShelfRow
}

// LocationView is one lookup result: a product joined with one of its locations.
type LocationView struct {
	SystemID       string   `db:"system_id" json:"system_id"`
	UPCID          *string  `db:"upc_id" json:"upc_id"`
	CustomSKU      *string  `db:"custom_sku" json:"custom_sku"`
	EAN            *string  `db:"ean" json:"ean"`
	ManufactureSKU *string  `db:"manufacture_sku" json:"manufacture_sku"`
	Description    *string  `db:"description" json:"description"`
	Price          *float64 `db:"price" json:"price"`
	Category       *string  `db:"category" json:"category"`
	Subcat1        *string  `db:"subcat_1" json:"subcat_1"`
	Subcat2        *string  `db:"subcat_2" json:"subcat_2"`
	Subcat3        *string  `db:"subcat_3" json:"subcat_3"`
	Brand          *string  `db:"brand" json:"brand"`
	ShelfCoordinate
}
