package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/fekuna/omnipos-shelf-service/internal/errs"
	"github.com/fekuna/omnipos-shelf-service/internal/identifier"
	"github.com/fekuna/omnipos-shelf-service/internal/location"
	"github.com/fekuna/omnipos-shelf-service/internal/location/dto"
	"github.com/fekuna/omnipos-shelf-service/internal/model"
	"github.com/fekuna/omnipos-shelf-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-shelf-service/internal/resolver"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("location-usecase")

// Recorder receives batch outcomes. *observability.Metrics satisfies it.
type Recorder interface {
	RecordBatch(status string)
	RecordScans(outcome string, n int)
}

type nopRecorder struct{}

func (nopRecorder) RecordBatch(string)      {}
func (nopRecorder) RecordScans(string, int) {}

type locationUseCase struct {
	repo     location.Repository
	resolver *resolver.Resolver
	validate *validator.Validate
	metrics  Recorder
	logger   logger.ZapLogger
}

func NewLocationUseCase(repo location.Repository, res *resolver.Resolver, metrics Recorder, log logger.ZapLogger) location.UseCase {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &locationUseCase{
		repo:     repo,
		resolver: res,
		validate: dto.NewValidator(),
		metrics:  metrics,
		logger:   log,
	}
}

func (uc *locationUseCase) Lookup(ctx context.Context, query string) ([]model.LocationView, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.LocationView{}, nil
	}

	ctx, span := tracer.Start(ctx, "location.Lookup")
	defer span.End()

	items, err := uc.repo.Search(ctx, identifier.Normalize(query, identifier.PathLookup))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if items == nil {
		items = []model.LocationView{}
	}
	span.SetAttributes(attribute.Int("lookup.results", len(items)))
	return items, nil
}

// AssignBatch validates, resolves and upserts a list of scans. Invalid,
// unresolved and ambiguous records are dropped and counted; a storage fault
// rolls the whole batch back.
func (uc *locationUseCase) AssignBatch(ctx context.Context, records []dto.ScanRecord) (*dto.BatchResult, error) {
	result := &dto.BatchResult{BatchID: uuid.NewString(), Received: len(records)}
	log := uc.logger.With(zap.String("batch_id", result.BatchID))

	ctx, span := tracer.Start(ctx, "location.AssignBatch")
	defer span.End()
	span.SetAttributes(attribute.String("batch.id", result.BatchID), attribute.Int("batch.received", len(records)))

	valid := make([]dto.ScanRecord, 0, len(records))
	for i, rec := range records {
		if err := uc.validateScan(rec); err != nil {
			result.RejectedInvalid++
			log.Debug("Skipping malformed scan record", zap.Int("index", i), zap.Error(err))
			continue
		}
		valid = append(valid, rec)
	}

	var assignments []model.LocationAssignment
	err := errs.E(errs.KindNothingToCommit, "location.AssignBatch", nil)
	if len(valid) > 0 {
		err = uc.repo.WithTx(ctx, func(ctx context.Context, tx location.TxRepository) error {
			resolved, err := uc.resolveAll(ctx, tx, valid, result)
			if err != nil {
				return err
			}
			assignments = resolved
			if len(assignments) == 0 {
				return errs.E(errs.KindNothingToCommit, "location.AssignBatch", nil)
			}
			_, err = tx.UpsertAssignments(ctx, assignments)
			return err
		})
	}
	err = asFault("location.AssignBatch", err)

	uc.metrics.RecordScans("invalid", result.RejectedInvalid)
	uc.metrics.RecordScans("unresolved", result.RejectedUnresolved)
	uc.metrics.RecordScans("ambiguous", result.RejectedAmbiguous)

	if err != nil {
		result.Status = statusFor(err)
		uc.metrics.RecordBatch(string(result.Status))
		uc.metrics.RecordScans("rolled_back", len(assignments))
		if result.Status == dto.StatusNothingToCommit {
			log.Info("Nothing to commit for batch",
				zap.Int("received", result.Received),
				zap.Int("invalid", result.RejectedInvalid),
				zap.Int("unresolved", result.RejectedUnresolved),
				zap.Int("ambiguous", result.RejectedAmbiguous))
			return result, errs.ErrNothingToCommit
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error("Location batch rolled back", zap.String("status", string(result.Status)), zap.Error(err))
		return result, err
	}

	result.Committed = len(assignments)
	result.Status = dto.StatusSuccess
	uc.metrics.RecordBatch(string(result.Status))
	uc.metrics.RecordScans("committed", result.Committed)
	span.SetAttributes(attribute.Int("batch.committed", result.Committed))
	log.Info("Location batch committed",
		zap.Int("received", result.Received),
		zap.Int("committed", result.Committed),
		zap.Int("invalid", result.RejectedInvalid),
		zap.Int("unresolved", result.RejectedUnresolved),
		zap.Int("ambiguous", result.RejectedAmbiguous))
	return result, nil
}

// Assign writes one assignment for an already canonical system id.
func (uc *locationUseCase) Assign(ctx context.Context, input *dto.AssignInput) (*model.LocationAssignment, error) {
	if err := uc.validate.Struct(input); err != nil {
		return nil, errs.E(errs.KindValidation, "location.Assign", err)
	}

	a := model.LocationAssignment{
		SystemID: strings.TrimSpace(input.SystemID),
		ShelfCoordinate: model.ShelfCoordinate{
			ShelfID:      strings.TrimSpace(input.ShelfID),
			ShelfRow:     strings.TrimSpace(input.ShelfRow),
			ItemPosition: *input.ItemPosition,
		},
	}

	err := uc.repo.WithTx(ctx, func(ctx context.Context, tx location.TxRepository) error {
		_, err := tx.UpsertAssignments(ctx, []model.LocationAssignment{a})
		return err
	})
	if err != nil {
		err = asFault("location.Assign", err)
		uc.logger.Error("Failed to assign location",
			zap.String("system_id", a.SystemID),
			zap.String("shelf_id", a.ShelfID),
			zap.String("shelf_row", a.ShelfRow),
			zap.Error(err))
		return nil, err
	}
	return &a, nil
}

// resolveAll resolves every valid record in caller order. Unresolved and
// ambiguous records are counted on result and skipped.
func (uc *locationUseCase) resolveAll(ctx context.Context, tx location.TxRepository, valid []dto.ScanRecord, result *dto.BatchResult) ([]model.LocationAssignment, error) {
	log := uc.logger.With(zap.String("batch_id", result.BatchID))
	assignments := make([]model.LocationAssignment, 0, len(valid))
	for _, rec := range valid {
		code := strings.TrimSpace(*rec.Code)
		systemID, err := uc.resolver.Resolve(ctx, tx, code)
		switch {
		case errors.Is(err, errs.ErrUnresolved):
			result.RejectedUnresolved++
			log.Info("Skipping assignment, no product found", zap.String("code", code))
			continue
		case errors.Is(err, errs.ErrAmbiguous):
			result.RejectedAmbiguous++
			log.Warn("Skipping assignment, code matches several products", zap.String("code", code), zap.Error(err))
			continue
		case err != nil:
			return nil, err
		}
		assignments = append(assignments, model.LocationAssignment{
			SystemID: systemID,
			ShelfCoordinate: model.ShelfCoordinate{
				ShelfID:      strings.TrimSpace(*rec.ShelfID),
				ShelfRow:     strings.TrimSpace(*rec.ShelfRow),
				ItemPosition: *rec.ItemPosition,
			},
		})
	}
	return assignments, nil
}

func (uc *locationUseCase) validateScan(rec dto.ScanRecord) error {
	if err := uc.validate.Struct(rec); err != nil {
		return err
	}
	if strings.TrimSpace(*rec.Code) == "" {
		return errors.New("code is blank")
	}
	if strings.TrimSpace(*rec.ShelfID) == "" || strings.TrimSpace(*rec.ShelfRow) == "" {
		return errors.New("shelf coordinate is blank")
	}
	return nil
}

// asFault tags errors that escaped classification, such as a failed BEGIN or
// COMMIT, as persistence faults.
func asFault(op string, err error) error {
	if err == nil || errs.KindOf(err) != errs.KindUnknown {
		return err
	}
	return errs.Persistence(op, err)
}

func statusFor(err error) dto.BatchStatus {
	switch errs.KindOf(err) {
	case errs.KindNothingToCommit:
		return dto.StatusNothingToCommit
	case errs.KindReferential:
		return dto.StatusReferenceMissing
	default:
		return dto.StatusPersistenceFault
	}
}
