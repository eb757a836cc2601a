package category

import (
	"context"

	"github.com/fekuna/omnipos-shelf-service/internal/category/dto"
	"github.com/fekuna/omnipos-shelf-service/internal/model"
)

type Repository interface {
	FindPaths(ctx context.Context, filters *dto.CategoryFilters) ([]model.CategoryPath, error)
}
