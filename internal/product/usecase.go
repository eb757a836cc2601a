package product

import (
	"context"

	"github.com/fekuna/omnipos-shelf-service/internal/model"
	"github.com/fekuna/omnipos-shelf-service/internal/product/dto"
)

type UseCase interface {
	ImportProducts(ctx context.Context, records []dto.ProductRecord) (*dto.ImportResult, error)
	GetProduct(ctx context.Context, systemID string) (*model.Product, error)
	ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
}
