package product

import (
	"context"

	"github.com/fekuna/omnipos-shelf-service/internal/model"
	"github.com/fekuna/omnipos-shelf-service/internal/product/dto"
)

type Repository interface {
	// UpsertBatch inserts or fully replaces products keyed by system_id in
	// one transaction.
	UpsertBatch(ctx context.Context, products []model.Product) (int64, error)
	FindByID(ctx context.Context, systemID string) (*model.Product, error)
	FindAll(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
}
