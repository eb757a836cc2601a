package dto

import "github.com/fekuna/omnipos-shelf-service/internal/model"

type ProductFilters struct {
	Category    string
	Brand       string
	SearchQuery string // description, brand or any identifier
	SortBy      string // description, price, system_id, updated_at
	SortOrder   string // asc, desc
	Page        int
	PageSize    int
}

type ImportResult struct {
	Status    string `json:"status"`
	Processed int    `json:"processed_count"`
	Skipped   int    `json:"skipped_count"`
	Message   string `json:"message"`
}

type ProductList struct {
	Items    []model.Product `json:"items"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}
