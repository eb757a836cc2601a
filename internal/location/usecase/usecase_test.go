package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-shelf-service/internal/errs"
	"github.com/fekuna/omnipos-shelf-service/internal/identifier"
	"github.com/fekuna/omnipos-shelf-service/internal/location"
	"github.com/fekuna/omnipos-shelf-service/internal/location/dto"
	"github.com/fekuna/omnipos-shelf-service/internal/model"
	"github.com/fekuna/omnipos-shelf-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-shelf-service/internal/resolver"
	"github.com/stretchr/testify/require"
)

// memoryRepo keeps products and locations in maps. Transactions work on a
// copy of the location table that replaces the original only on success.
type memoryRepo struct {
	products  map[string]model.Product
	locations map[string]model.LocationAssignment
	upsertErr error
	// deleteOnResolve drops a product after it is resolved, simulating a
	// concurrent delete that slipped in before the lock.
	deleteOnResolve string
}

type memoryTx struct {
	repo      *memoryRepo
	locations map[string]model.LocationAssignment
}

func newMemoryRepo(products ...model.Product) *memoryRepo {
	r := &memoryRepo{
		products:  make(map[string]model.Product),
		locations: make(map[string]model.LocationAssignment),
	}
	for _, p := range products {
		r.products[p.SystemID] = p
	}
	return r
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, location.TxRepository) error) error {
	staged := make(map[string]model.LocationAssignment, len(r.locations))
	for k, v := range r.locations {
		staged[k] = v
	}
	if err := fn(ctx, &memoryTx{repo: r, locations: staged}); err != nil {
		return err
	}
	r.locations = staged
	return nil
}

func (r *memoryRepo) Search(ctx context.Context, keys identifier.Keys) ([]model.LocationView, error) {
	var out []model.LocationView
	for _, a := range r.locations {
		p := r.products[a.SystemID]
		if !matches(p, keys) {
			continue
		}
		out = append(out, model.LocationView{SystemID: p.SystemID, Description: p.Description, ShelfCoordinate: a.ShelfCoordinate})
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := deref(out[i].Description), deref(out[j].Description)
		if di != dj {
			return di < dj
		}
		return out[i].ItemPosition < out[j].ItemPosition
	})
	return out, nil
}

func (tx *memoryTx) FindCandidates(ctx context.Context, keys identifier.Keys, limit int) ([]model.Candidate, error) {
	var out []model.Candidate
	for _, p := range tx.repo.products {
		if matches(p, keys) {
			out = append(out, model.Candidate{SystemID: p.SystemID, Exact: keys.HasExact && p.SystemID == keys.Exact})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Exact != out[j].Exact {
			return out[i].Exact
		}
		return out[i].SystemID < out[j].SystemID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	if len(out) > 0 && out[0].SystemID == tx.repo.deleteOnResolve {
		delete(tx.repo.products, tx.repo.deleteOnResolve)
	}
	return out, nil
}

func (tx *memoryTx) UpsertAssignments(ctx context.Context, assignments []model.LocationAssignment) (int64, error) {
	if tx.repo.upsertErr != nil {
		return 0, tx.repo.upsertErr
	}
	for _, a := range assignments {
		if _, ok := tx.repo.products[a.SystemID]; !ok {
			return 0, errs.Referential("memory.UpsertAssignments", fmt.Errorf("system_id %s not in products", a.SystemID))
		}
		key := a.CellKey()
		if existing, ok := tx.locations[key]; ok {
			existing.ItemPosition = a.ItemPosition
			tx.locations[key] = existing
			continue
		}
		tx.locations[key] = a
	}
	return int64(len(assignments)), nil
}

func matches(p model.Product, keys identifier.Keys) bool {
	if keys.HasExact && p.SystemID == keys.Exact {
		return true
	}
	if !keys.HasSubstring() {
		return false
	}
	needle := strings.ToLower(keys.Stripped)
	fields := map[string]*string{
		"upc_id": p.UPCID, "custom_sku": p.CustomSKU, "ean": p.EAN,
		"manufacture_sku": p.ManufactureSKU, "description": p.Description, "brand": p.Brand,
	}
	for _, name := range keys.Path.Fields() {
		if v := fields[name]; v != nil && strings.Contains(strings.ToLower(*v), needle) {
			return true
		}
	}
	return false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func str(s string) *string { return &s }
func num(n int) *int       { return &n }

func scan(code, shelf, row string, pos int) dto.ScanRecord {
	return dto.ScanRecord{Code: str(code), ShelfID: str(shelf), ShelfRow: str(row), ItemPosition: num(pos)}
}

type countingRecorder struct {
	batches map[string]int
	scans   map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{batches: map[string]int{}, scans: map[string]int{}}
}

func (c *countingRecorder) RecordBatch(status string)         { c.batches[status]++ }
func (c *countingRecorder) RecordScans(outcome string, n int) { c.scans[outcome] += n }

func catalog() []model.Product {
	return []model.Product{
		{SystemID: "012345678905", UPCID: str("012345678905"), Description: str("Widget")},
		{SystemID: "100000000001", CustomSKU: str("CS-4455"), Description: str("Anvil"), Brand: str("Acme")},
		{SystemID: "100000000002", ManufactureSKU: str("MFR-9988"), EAN: str("4006381333931"), Description: str("Bolt")},
	}
}

func newUseCase(repo location.Repository, tb resolver.TieBreak, rec Recorder) location.UseCase {
	return NewLocationUseCase(repo, resolver.New(tb), rec, logger.NewNop())
}

func TestAssignBatchPartialValidity(t *testing.T) {
	repo := newMemoryRepo(catalog()...)
	rec := newCountingRecorder()
	uc := newUseCase(repo, resolver.TieBreakFirst, rec)

	records := []dto.ScanRecord{
		scan("012345678905XYZ", "S1", "1", 1),
		{Code: str("4455"), ShelfID: str("S1")},
		scan("   ", "S1", "1", 2),
		scan("999999", "S1", "1", 3),
		scan("0004455", "S1", "2", 4),
	}

	result, err := uc.AssignBatch(context.Background(), records)
	require.NoError(t, err)
	require.Equal(t, dto.StatusSuccess, result.Status)
	require.Equal(t, 5, result.Received)
	require.Equal(t, 2, result.Committed)
	require.Equal(t, 2, result.RejectedInvalid)
	require.Equal(t, 1, result.RejectedUnresolved)
	require.NotEmpty(t, result.BatchID)
	require.Len(t, repo.locations, 2)

	require.Equal(t, 1, rec.batches["success"])
	require.Equal(t, 2, rec.scans["committed"])
	require.Equal(t, 2, rec.scans["invalid"])
	require.Equal(t, 1, rec.scans["unresolved"])
}

func TestAssignBatchRejectsUnstorableValues(t *testing.T) {
	repo := newMemoryRepo(catalog()...)
	uc := newUseCase(repo, resolver.TieBreakFirst, nil)

	result, err := uc.AssignBatch(context.Background(), []dto.ScanRecord{
		scan("012345678905", "S1", "1", 1),
		scan("012345678905", "S1", "2", 5000000000),
		scan("012345678905", "S\x00", "3", 1),
		scan("0123456789\xc3", "S1", "4", 1),
	})
	require.NoError(t, err)
	require.Equal(t, dto.StatusSuccess, result.Status)
	require.Equal(t, 1, result.Committed)
	require.Equal(t, 3, result.RejectedInvalid)
	require.Len(t, repo.locations, 1)
}

func TestAssignBatchRejectsBlankFields(t *testing.T) {
	repo := newMemoryRepo(catalog()...)
	uc := newUseCase(repo, resolver.TieBreakFirst, nil)

	result, err := uc.AssignBatch(context.Background(), []dto.ScanRecord{
		scan("012345678905", "S1", "1", 1),
		scan("   ", "S1", "2", 1),
		scan("012345678905", " ", "3", 1),
		scan("012345678905", "S1", "\t", 1),
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.Committed)
	require.Equal(t, 3, result.RejectedInvalid)
	require.Len(t, repo.locations, 1)
}

func TestAssignBatchIsIdempotent(t *testing.T) {
	repo := newMemoryRepo(catalog()...)
	uc := newUseCase(repo, resolver.TieBreakFirst, nil)

	for i := 0; i < 2; i++ {
		_, err := uc.AssignBatch(context.Background(), []dto.ScanRecord{scan("012345678905", "S1", "1", 3)})
		require.NoError(t, err)
	}

	require.Len(t, repo.locations, 1)
	for _, a := range repo.locations {
		require.Equal(t, 3, a.ItemPosition)
	}
}

func TestAssignBatchUpdatesPosition(t *testing.T) {
	repo := newMemoryRepo(catalog()...)
	uc := newUseCase(repo, resolver.TieBreakFirst, nil)

	_, err := uc.AssignBatch(context.Background(), []dto.ScanRecord{scan("012345678905", "S1", "1", 3)})
	require.NoError(t, err)
	_, err = uc.AssignBatch(context.Background(), []dto.ScanRecord{scan("012345678905", "S1", "1", 7)})
	require.NoError(t, err)

	require.Len(t, repo.locations, 1)
	for _, a := range repo.locations {
		require.Equal(t, 7, a.ItemPosition)
	}
}

func TestAssignBatchSameProductDifferentCells(t *testing.T) {
	repo := newMemoryRepo(catalog()...)
	uc := newUseCase(repo, resolver.TieBreakFirst, nil)

	result, err := uc.AssignBatch(context.Background(), []dto.ScanRecord{
		scan("012345678905", "S1", "1", 1),
		scan("012345678905", "S1", "2", 1),
		scan("012345678905", "S2", "1", 5),
	})
	require.NoError(t, err)
	require.Equal(t, 3, result.Committed)
	require.Len(t, repo.locations, 3)
}

func TestAssignBatchNothingToCommit(t *testing.T) {
	repo := newMemoryRepo(catalog()...)
	rec := newCountingRecorder()
	uc := newUseCase(repo, resolver.TieBreakFirst, rec)

	result, err := uc.AssignBatch(context.Background(), []dto.ScanRecord{
		scan("777777", "S1", "1", 1),
		{ShelfID: str("S1")},
	})
	require.ErrorIs(t, err, errs.ErrNothingToCommit)
	require.Equal(t, dto.StatusNothingToCommit, result.Status)
	require.Zero(t, result.Committed)
	require.Equal(t, 1, result.RejectedUnresolved)
	require.Equal(t, 1, result.RejectedInvalid)
	require.Equal(t, 1, rec.batches["nothing_to_commit"])

	result, err = uc.AssignBatch(context.Background(), nil)
	require.ErrorIs(t, err, errs.ErrNothingToCommit)
	require.Zero(t, result.Received)
}

func TestAssignBatchReferentialFaultRollsBack(t *testing.T) {
	repo := newMemoryRepo(catalog()...)
	repo.deleteOnResolve = "100000000002"
	uc := newUseCase(repo, resolver.TieBreakFirst, nil)

	result, err := uc.AssignBatch(context.Background(), []dto.ScanRecord{
		scan("012345678905", "S1", "1", 1),
		scan("MFR-9988", "S1", "1", 2),
	})
	require.ErrorIs(t, err, errs.ErrProductReferenceMissing)
	require.False(t, errs.Retryable(err))
	require.Equal(t, dto.StatusReferenceMissing, result.Status)
	require.Zero(t, result.Committed)
	require.Empty(t, repo.locations, "no row may survive a rolled back batch")
}

func TestAssignBatchPersistenceFaultRollsBack(t *testing.T) {
	repo := newMemoryRepo(catalog()...)
	repo.upsertErr = errors.New("connection reset by peer")
	uc := newUseCase(repo, resolver.TieBreakFirst, nil)

	result, err := uc.AssignBatch(context.Background(), []dto.ScanRecord{scan("012345678905", "S1", "1", 1)})
	require.ErrorIs(t, err, errs.ErrPersistence)
	require.True(t, errs.Retryable(err))
	require.Equal(t, dto.StatusPersistenceFault, result.Status)
	require.Zero(t, result.Committed)
	require.Empty(t, repo.locations)
}

func TestAssignBatchStrictTieBreak(t *testing.T) {
	repo := newMemoryRepo(
		model.Product{SystemID: "200000000001", UPCID: str("5550001")},
		model.Product{SystemID: "200000000002", CustomSKU: str("X5550")},
	)
	uc := newUseCase(repo, resolver.TieBreakStrict, nil)

	result, err := uc.AssignBatch(context.Background(), []dto.ScanRecord{
		scan("555", "S1", "1", 1),
		scan("5550001", "S1", "1", 2),
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.RejectedAmbiguous)
	require.Equal(t, 1, result.Committed)
}

func TestAssign(t *testing.T) {
	repo := newMemoryRepo(catalog()...)
	uc := newUseCase(repo, resolver.TieBreakFirst, nil)

	a, err := uc.Assign(context.Background(), &dto.AssignInput{SystemID: "100000000001", ShelfID: "A", ShelfRow: "3", ItemPosition: num(2)})
	require.NoError(t, err)
	require.Equal(t, "100000000001", a.SystemID)
	require.Len(t, repo.locations, 1)
}

func TestAssignMissingProduct(t *testing.T) {
	repo := newMemoryRepo(catalog()...)
	uc := newUseCase(repo, resolver.TieBreakFirst, nil)

	_, err := uc.Assign(context.Background(), &dto.AssignInput{SystemID: "404040404040", ShelfID: "A", ShelfRow: "3", ItemPosition: num(2)})
	require.ErrorIs(t, err, errs.ErrProductReferenceMissing)
	require.Empty(t, repo.locations)
}

func TestAssignValidation(t *testing.T) {
	uc := newUseCase(newMemoryRepo(), resolver.TieBreakFirst, nil)

	_, err := uc.Assign(context.Background(), &dto.AssignInput{SystemID: "1", ShelfID: "A", ShelfRow: "3"})
	require.ErrorIs(t, err, errs.ErrValidation)

	_, err = uc.Assign(context.Background(), &dto.AssignInput{SystemID: "1", ShelfID: "A", ShelfRow: "3", ItemPosition: num(-1)})
	require.ErrorIs(t, err, errs.ErrValidation)

	_, err = uc.Assign(context.Background(), &dto.AssignInput{SystemID: "1", ShelfID: "A", ShelfRow: "3", ItemPosition: num(5000000000)})
	require.ErrorIs(t, err, errs.ErrValidation)

	_, err = uc.Assign(context.Background(), &dto.AssignInput{SystemID: "1", ShelfID: "A\x00", ShelfRow: "3", ItemPosition: num(1)})
	require.ErrorIs(t, err, errs.ErrValidation)
}

func TestLookupBlankQuery(t *testing.T) {
	uc := newUseCase(newMemoryRepo(catalog()...), resolver.TieBreakFirst, nil)

	for _, q := range []string{"", "   ", "\t\n"} {
		items, err := uc.Lookup(context.Background(), q)
		require.NoError(t, err)
		require.NotNil(t, items)
		require.Empty(t, items)
	}
}

func TestLookupOrdersByDescriptionThenPosition(t *testing.T) {
	repo := newMemoryRepo(catalog()...)
	uc := newUseCase(repo, resolver.TieBreakFirst, nil)

	_, err := uc.AssignBatch(context.Background(), []dto.ScanRecord{
		scan("012345678905", "S1", "1", 9),
		scan("012345678905", "S1", "2", 4),
		scan("MFR-9988", "S3", "1", 1),
	})
	require.NoError(t, err)

	widgets, err := uc.Lookup(context.Background(), "012345678905")
	require.NoError(t, err)
	require.Len(t, widgets, 2)
	require.Equal(t, 4, widgets[0].ItemPosition)
	require.Equal(t, 9, widgets[1].ItemPosition)

	// EAN is only searched on the lookup path.
	bolts, err := uc.Lookup(context.Background(), "4006381333931")
	require.NoError(t, err)
	require.Len(t, bolts, 1)
	require.Equal(t, "S3", bolts[0].ShelfID)
}
