// Package resolver maps a raw scanned code to at most one canonical system id.
package resolver

import (
	"context"
	"fmt"

	"github.com/fekuna/omnipos-shelf-service/internal/errs"
	"github.com/fekuna/omnipos-shelf-service/internal/identifier"
	"github.com/fekuna/omnipos-shelf-service/internal/model"
)

type TieBreak string

const (
	// TieBreakFirst takes the first candidate of the ordered query.
	TieBreakFirst TieBreak = "first"
	// TieBreakStrict rejects codes whose substring match hits several products.
	TieBreakStrict TieBreak = "strict"
)

// Finder runs the disjunctive candidate query. Candidates must come back
// exact system_id matches first, then ordered by system_id.
type Finder interface {
	FindCandidates(ctx context.Context, keys identifier.Keys, limit int) ([]model.Candidate, error)
}

type Resolver struct {
	tieBreak TieBreak
}

func New(tieBreak TieBreak) *Resolver {
	if tieBreak != TieBreakStrict {
		tieBreak = TieBreakFirst
	}
	return &Resolver{tieBreak: tieBreak}
}

func (r *Resolver) TieBreak() TieBreak {
	return r.tieBreak
}

// Resolve returns the canonical system id for code on the import path.
// errs.ErrUnresolved and errs.ErrAmbiguous are business outcomes; any other
// error is a persistence fault.
func (r *Resolver) Resolve(ctx context.Context, f Finder, code string) (string, error) {
	keys := identifier.Normalize(code, identifier.PathImport)
	if !keys.HasExact && !keys.HasSubstring() {
		return "", errs.E(errs.KindUnresolved, "resolver.Resolve", nil)
	}

	candidates, err := f.FindCandidates(ctx, keys, 2)
	if err != nil {
		if errs.KindOf(err) != errs.KindUnknown {
			return "", err
		}
		return "", errs.Persistence("resolver.Resolve", err)
	}

	switch {
	case len(candidates) == 0:
		return "", errs.E(errs.KindUnresolved, "resolver.Resolve", nil)
	case candidates[0].Exact:
		return candidates[0].SystemID, nil
	case len(candidates) > 1 && r.tieBreak == TieBreakStrict:
		return "", errs.E(errs.KindAmbiguous, "resolver.Resolve",
			fmt.Errorf("code %q matches %s and %s", keys.Code, candidates[0].SystemID, candidates[1].SystemID))
	default:
		return candidates[0].SystemID, nil
	}
}
