package model

// CategoryPath is one distinct category / subcategory combination in the
// catalog with the number of products filed under it.
type CategoryPath struct {
	Category     *string `db:"category"`
	Subcat1      *string `db:"subcat_1"`
	Subcat2      *string `db:"subcat_2"`
	Subcat3      *string `db:"subcat_3"`
	ProductCount int     `db:"product_count"`
}

// Category is a node of the catalog taxonomy. Level 0 is the top category,
// levels 1-3 are subcat_1..subcat_3.
type Category struct {
	Name         string     `json:"name"`
	Level        int        `json:"level"`
	ProductCount int        `json:"product_count"`
	Children     []Category `json:"children,omitempty"`
}
