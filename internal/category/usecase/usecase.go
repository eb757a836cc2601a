package usecase

import (
	"context"
	"strings"

	"github.com/fekuna/omnipos-shelf-service/internal/category"
	"github.com/fekuna/omnipos-shelf-service/internal/category/dto"
	"github.com/fekuna/omnipos-shelf-service/internal/model"
	"github.com/fekuna/omnipos-shelf-service/internal/pkg/logger"
	"go.uber.org/zap"
)

// Uncategorized names products with no value at a level.
const Uncategorized = "(uncategorized)"

const maxDepth = 4

type categoryUseCase struct {
	repo   category.Repository
	logger logger.ZapLogger
}

func NewCategoryUseCase(repo category.Repository, log logger.ZapLogger) category.UseCase {
	return &categoryUseCase{
		repo:   repo,
		logger: log,
	}
}

// ListCategories folds the flat category paths into a tree, summing product
// counts on every level.
func (uc *categoryUseCase) ListCategories(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, error) {
	if filters.Depth <= 0 || filters.Depth > maxDepth {
		filters.Depth = maxDepth
	}
	filters.Category = strings.TrimSpace(filters.Category)

	paths, err := uc.repo.FindPaths(ctx, filters)
	if err != nil {
		uc.logger.Error("Failed to load category paths", zap.Error(err))
		return nil, err
	}
	return buildTree(paths, filters.Depth), nil
}

func buildTree(paths []model.CategoryPath, depth int) []model.Category {
	roots := []model.Category{}
	for _, p := range paths {
		names := []*string{p.Category, p.Subcat1, p.Subcat2, p.Subcat3}
		level := &roots
		for i := 0; i < depth; i++ {
			name := Uncategorized
			if names[i] != nil && strings.TrimSpace(*names[i]) != "" {
				name = strings.TrimSpace(*names[i])
			} else if i > 0 {
				// A missing subcategory ends the path at its parent.
				break
			}
			node := child(level, name, i)
			node.ProductCount += p.ProductCount
			level = &node.Children
		}
	}
	return roots
}

func child(level *[]model.Category, name string, depth int) *model.Category {
	for i := range *level {
		if (*level)[i].Name == name {
			return &(*level)[i]
		}
	}
	*level = append(*level, model.Category{Name: name, Level: depth})
	return &(*level)[len(*level)-1]
}
