package resolver

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-shelf-service/internal/errs"
	"github.com/fekuna/omnipos-shelf-service/internal/identifier"
	"github.com/fekuna/omnipos-shelf-service/internal/model"
	"github.com/stretchr/testify/require"
)

// catalogFinder mimics the SQL predicate over an in-memory catalog.
type catalogFinder struct {
	products []model.Product
	err      error
	calls    int
}

func (f *catalogFinder) FindCandidates(ctx context.Context, keys identifier.Keys, limit int) ([]model.Candidate, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Candidate
	for _, p := range f.products {
		exact := keys.HasExact && p.SystemID == keys.Exact
		if exact || (keys.HasSubstring() && matchesAny(p, keys)) {
			out = append(out, model.Candidate{SystemID: p.SystemID, Exact: exact})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Exact != out[j].Exact {
			return out[i].Exact
		}
		return out[i].SystemID < out[j].SystemID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func matchesAny(p model.Product, keys identifier.Keys) bool {
	needle := strings.ToLower(keys.Stripped)
	for _, v := range []*string{p.UPCID, p.CustomSKU, p.ManufactureSKU} {
		if v != nil && strings.Contains(strings.ToLower(*v), needle) {
			return true
		}
	}
	return false
}

func str(s string) *string { return &s }

func TestResolveTruncatedSystemID(t *testing.T) {
	f := &catalogFinder{products: []model.Product{
		{SystemID: "012345678905"},
		{SystemID: "999999999999", UPCID: str("012345678905XYZ00")},
	}}

	id, err := New(TieBreakStrict).Resolve(context.Background(), f, "012345678905XYZ")
	require.NoError(t, err)
	require.Equal(t, "012345678905", id)
}

func TestResolveSubstringIgnoresLeadingZeros(t *testing.T) {
	f := &catalogFinder{products: []model.Product{
		{SystemID: "100000000001", CustomSKU: str("ab-12345")},
	}}

	id, err := New(TieBreakFirst).Resolve(context.Background(), f, "00012345")
	require.NoError(t, err)
	require.Equal(t, "100000000001", id)
}

func TestResolveUnresolved(t *testing.T) {
	f := &catalogFinder{products: []model.Product{{SystemID: "100000000001", UPCID: str("777")}}}

	_, err := New(TieBreakFirst).Resolve(context.Background(), f, "4242")
	require.ErrorIs(t, err, errs.ErrUnresolved)
}

func TestResolveAllZerosSkipsQuery(t *testing.T) {
	f := &catalogFinder{products: []model.Product{{SystemID: "100000000001", UPCID: str("100")}}}

	_, err := New(TieBreakFirst).Resolve(context.Background(), f, "0000")
	require.ErrorIs(t, err, errs.ErrUnresolved)
	require.Zero(t, f.calls)
}

func TestResolveTieBreak(t *testing.T) {
	f := &catalogFinder{products: []model.Product{
		{SystemID: "200000000002", UPCID: str("55501")},
		{SystemID: "100000000001", ManufactureSKU: str("X-555")},
	}}

	id, err := New(TieBreakFirst).Resolve(context.Background(), f, "555")
	require.NoError(t, err)
	require.Equal(t, "100000000001", id)

	_, err = New(TieBreakStrict).Resolve(context.Background(), f, "555")
	require.ErrorIs(t, err, errs.ErrAmbiguous)
}

func TestResolveStorageFaultIsNotUnresolved(t *testing.T) {
	f := &catalogFinder{err: errors.New("connection refused")}

	_, err := New(TieBreakFirst).Resolve(context.Background(), f, "12345")
	require.ErrorIs(t, err, errs.ErrPersistence)
	require.NotErrorIs(t, err, errs.ErrUnresolved)
}

func TestNewDefaultsToFirst(t *testing.T) {
	require.Equal(t, TieBreakFirst, New("").TieBreak())
	require.Equal(t, TieBreakStrict, New(TieBreakStrict).TieBreak())
}
