package dto

type CategoryFilters struct {
	// Category limits the tree to one top-level category. Empty means all.
	Category string
	// Depth is the number of levels returned, 1 to 4.
	Depth int
}
