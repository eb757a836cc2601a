package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-shelf-service/internal/identifier"
	"github.com/fekuna/omnipos-shelf-service/internal/location"
	"github.com/fekuna/omnipos-shelf-service/internal/model"
	"github.com/fekuna/omnipos-shelf-service/internal/pkg/postgres"
	"github.com/jmoiron/sqlx"
)

// upsertChunkSize keeps a multi-row insert under PostgreSQL's 65535 bind
// parameter limit.
const upsertChunkSize = 1000

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Search(ctx context.Context, keys identifier.Keys) ([]model.LocationView, error) {
	_, where, args := matchPredicate("p.", keys)

	query := `
        SELECT
            p.system_id, p.upc_id, p.custom_sku, p.ean, p.manufacture_sku,
            p.description, p.price, p.category, p.subcat_1, p.subcat_2, p.subcat_3, p.brand,
            i.shelf_id, i.shelf_row, i.item_position
        FROM products p
        JOIN inventory i ON p.system_id = i.system_id
        WHERE ` + where + `
        ORDER BY p.description, i.item_position`

	items := []model.LocationView{}
	if err := r.DB.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, postgres.Classify("location.Search", err)
	}
	return items, nil
}

func (r *PGRepository) WithTx(ctx context.Context, fn func(ctx context.Context, tx location.TxRepository) error) error {
	return postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx *sqlx.Tx
}

// FindCandidates locks the returned product rows FOR SHARE so a concurrent
// delete cannot invalidate a resolved system_id before the upsert commits.
func (t *txRepository) FindCandidates(ctx context.Context, keys identifier.Keys, limit int) ([]model.Candidate, error) {
	exact, where, args := matchPredicate("", keys)
	args = append(args, limit)

	query := fmt.Sprintf(`
        SELECT system_id, (%s) AS exact
        FROM products
        WHERE %s
        ORDER BY exact DESC, system_id
        LIMIT $%d
        FOR SHARE`, exact, where, len(args))

	var out []model.Candidate
	if err := t.tx.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, postgres.Classify("location.FindCandidates", err)
	}
	return out, nil
}

func (t *txRepository) UpsertAssignments(ctx context.Context, assignments []model.LocationAssignment) (int64, error) {
	query := `
        INSERT INTO inventory (system_id, shelf_id, shelf_row, item_position)
        VALUES (:system_id, :shelf_id, :shelf_row, :item_position)
        ON CONFLICT (system_id, shelf_id, shelf_row)
        DO UPDATE SET item_position = EXCLUDED.item_position
    `

	rows := collapse(assignments)
	var written int64
	for start := 0; start < len(rows); start += upsertChunkSize {
		end := min(start+upsertChunkSize, len(rows))
		res, err := t.tx.NamedExecContext(ctx, query, rows[start:end])
		if err != nil {
			return written, postgres.Classify("location.UpsertAssignments", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return written, postgres.Classify("location.UpsertAssignments", err)
		}
		written += n
	}
	return written, nil
}

// collapse drops earlier assignments to the same cell so one statement never
// touches a conflict row twice. The last position in caller order wins and
// first-seen order is kept.
func collapse(assignments []model.LocationAssignment) []model.LocationAssignment {
	index := make(map[string]int, len(assignments))
	out := make([]model.LocationAssignment, 0, len(assignments))
	for _, a := range assignments {
		if i, ok := index[a.CellKey()]; ok {
			out[i].ItemPosition = a.ItemPosition
			continue
		}
		index[a.CellKey()] = len(out)
		out = append(out, a)
	}
	return out
}

// matchPredicate builds the disjunctive resolution predicate shared by the
// lookup and import paths. exact is the SQL expression that is true for an
// exact system_id hit.
func matchPredicate(prefix string, keys identifier.Keys) (exact, where string, args []any) {
	var conds []string
	exact = "FALSE"

	if keys.HasExact {
		args = append(args, keys.Exact)
		exact = fmt.Sprintf("%ssystem_id = $%d", prefix, len(args))
		conds = append(conds, exact)
	}
	if keys.HasSubstring() {
		args = append(args, keys.Pattern)
		n := len(args)
		for _, field := range keys.Path.Fields() {
			conds = append(conds, fmt.Sprintf("%s%s ILIKE $%d", prefix, field, n))
		}
	}

	if len(conds) == 0 {
		return exact, "FALSE", args
	}
	return exact, strings.Join(conds, " OR "), args
}
