package location

import (
	"context"

	"github.com/fekuna/omnipos-shelf-service/internal/identifier"
	"github.com/fekuna/omnipos-shelf-service/internal/model"
	"github.com/fekuna/omnipos-shelf-service/internal/resolver"
)

type Repository interface {
	// Search runs the lookup-path predicate joined against locations, ordered
	// by description then item position.
	Search(ctx context.Context, keys identifier.Keys) ([]model.LocationView, error)

	// WithTx runs fn in one all-or-nothing transaction.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error
}

// TxRepository is the transactional view used by the batch orchestrator:
// resolution reads and the location upsert share one transaction.
type TxRepository interface {
	resolver.Finder

	// UpsertAssignments inserts each assignment or, on a (system_id, shelf_id,
	// shelf_row) conflict, updates item_position only. Returns rows written.
	UpsertAssignments(ctx context.Context, assignments []model.LocationAssignment) (int64, error)
}
