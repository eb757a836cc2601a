package repository

import (
	"context"

	"github.com/fekuna/omnipos-shelf-service/internal/category/dto"
	"github.com/fekuna/omnipos-shelf-service/internal/model"
	"github.com/fekuna/omnipos-shelf-service/internal/pkg/postgres"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindPaths(ctx context.Context, f *dto.CategoryFilters) ([]model.CategoryPath, error) {
	query := `
        SELECT category, subcat_1, subcat_2, subcat_3, count(*) AS product_count
        FROM products
        WHERE ($1 = '' OR category = $1)
        GROUP BY category, subcat_1, subcat_2, subcat_3
        ORDER BY category NULLS LAST, subcat_1 NULLS LAST, subcat_2 NULLS LAST, subcat_3 NULLS LAST`

	paths := []model.CategoryPath{}
	if err := r.DB.SelectContext(ctx, &paths, query, f.Category); err != nil {
		return nil, postgres.Classify("category.FindPaths", err)
	}
	return paths, nil
}
