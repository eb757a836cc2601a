package location

import (
	"context"

	"github.com/fekuna/omnipos-shelf-service/internal/location/dto"
	"github.com/fekuna/omnipos-shelf-service/internal/model"
)

type UseCase interface {
	Lookup(ctx context.Context, query string) ([]model.LocationView, error)
	AssignBatch(ctx context.Context, records []dto.ScanRecord) (*dto.BatchResult, error)
	Assign(ctx context.Context, input *dto.AssignInput) (*model.LocationAssignment, error)
}
