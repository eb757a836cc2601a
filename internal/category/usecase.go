package category

import (
	"context"

	"github.com/fekuna/omnipos-shelf-service/internal/category/dto"
	"github.com/fekuna/omnipos-shelf-service/internal/model"
)

type UseCase interface {
	ListCategories(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, error)
}
