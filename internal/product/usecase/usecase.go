package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-shelf-service/internal/errs"
	"github.com/fekuna/omnipos-shelf-service/internal/model"
	"github.com/fekuna/omnipos-shelf-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-shelf-service/internal/product"
	"github.com/fekuna/omnipos-shelf-service/internal/product/dto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("product-usecase")

const maxPageSize = 200

type productUseCase struct {
	repo   product.Repository
	logger logger.ZapLogger
	now    func() time.Time
}

func NewProductUseCase(repo product.Repository, log logger.ZapLogger) product.UseCase {
	return &productUseCase{
		repo:   repo,
		logger: log,
		now:    time.Now,
	}
}

// ImportProducts upserts catalog rows. Rows without a system_id are skipped;
// an empty or fully skipped payload is a validation error.
func (uc *productUseCase) ImportProducts(ctx context.Context, records []dto.ProductRecord) (*dto.ImportResult, error) {
	ctx, span := tracer.Start(ctx, "product.ImportProducts")
	defer span.End()

	if len(records) == 0 {
		return nil, errs.E(errs.KindValidation, "product.ImportProducts", fmt.Errorf("payload must be a non-empty list of products"))
	}

	now := uc.now().UTC()
	result := &dto.ImportResult{}
	products := make([]model.Product, 0, len(records))
	for i, rec := range records {
		systemID := strings.TrimSpace(rec.SystemID)
		if systemID == "" {
			result.Skipped++
			uc.logger.Debug("Skipping product row without system_id", zap.Int("index", i))
			continue
		}
		products = append(products, model.Product{
			SystemID:       systemID,
			UPCID:          rec.UPCID,
			CustomSKU:      rec.CustomSKU,
			EAN:            rec.EAN,
			ManufactureSKU: rec.ManufactureSKU,
			Description:    rec.Description,
			Price:          rec.Price,
			Category:       rec.Category,
			Subcat1:        rec.Subcat1,
			Subcat2:        rec.Subcat2,
			Subcat3:        rec.Subcat3,
			Brand:          rec.Brand,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}
	span.SetAttributes(attribute.Int("import.rows", len(records)), attribute.Int("import.skipped", result.Skipped))

	if len(products) == 0 {
		return nil, errs.E(errs.KindValidation, "product.ImportProducts", fmt.Errorf("no valid product rows with a system_id"))
	}

	if _, err := uc.repo.UpsertBatch(ctx, products); err != nil {
		span.RecordError(err)
		uc.logger.Error("Failed to import products", zap.Int("rows", len(products)), zap.Error(err))
		return nil, err
	}

	result.Status = "success"
	result.Processed = len(products)
	result.Message = fmt.Sprintf("Successfully processed %d valid product records.", result.Processed)
	uc.logger.Info("Imported products", zap.Int("processed", result.Processed), zap.Int("skipped", result.Skipped))
	return result, nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, systemID string) (*model.Product, error) {
	systemID = strings.TrimSpace(systemID)
	if systemID == "" {
		return nil, errs.E(errs.KindValidation, "product.GetProduct", fmt.Errorf("system_id is required"))
	}
	p, err := uc.repo.FindByID(ctx, systemID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errs.E(errs.KindUnresolved, "product.GetProduct", fmt.Errorf("product %s not found", systemID))
	}
	return p, nil
}

func (uc *productUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 || filters.PageSize > maxPageSize {
		filters.PageSize = 50
	}
	return uc.repo.FindAll(ctx, filters)
}
