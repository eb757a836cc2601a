package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-shelf-service/internal/model"
	"github.com/fekuna/omnipos-shelf-service/internal/pkg/postgres"
	"github.com/fekuna/omnipos-shelf-service/internal/product/dto"
	"github.com/jmoiron/sqlx"
)

const upsertChunkSize = 1000

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

// UpsertBatch replaces every non-key column of an existing product. Rows
// sharing a system_id are collapsed so the last one wins.
func (r *PGRepository) UpsertBatch(ctx context.Context, products []model.Product) (int64, error) {
	query := `
        INSERT INTO products (
            system_id, upc_id, custom_sku, ean, manufacture_sku,
            description, price, category, subcat_1, subcat_2, subcat_3, brand,
            created_at, updated_at
        )
        VALUES (
            :system_id, :upc_id, :custom_sku, :ean, :manufacture_sku,
            :description, :price, :category, :subcat_1, :subcat_2, :subcat_3, :brand,
            :created_at, :updated_at
        )
        ON CONFLICT (system_id) DO UPDATE
        SET upc_id = EXCLUDED.upc_id,
            custom_sku = EXCLUDED.custom_sku,
            ean = EXCLUDED.ean,
            manufacture_sku = EXCLUDED.manufacture_sku,
            description = EXCLUDED.description,
            price = EXCLUDED.price,
            category = EXCLUDED.category,
            subcat_1 = EXCLUDED.subcat_1,
            subcat_2 = EXCLUDED.subcat_2,
            subcat_3 = EXCLUDED.subcat_3,
            brand = EXCLUDED.brand,
            updated_at = EXCLUDED.updated_at
    `

	rows := collapse(products)
	var written int64
	err := postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		for start := 0; start < len(rows); start += upsertChunkSize {
			end := min(start+upsertChunkSize, len(rows))
			res, err := tx.NamedExecContext(ctx, query, rows[start:end])
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			written += n
		}
		return nil
	})
	if err != nil {
		return 0, postgres.Classify("product.UpsertBatch", err)
	}
	return written, nil
}

func (r *PGRepository) FindByID(ctx context.Context, systemID string) (*model.Product, error) {
	var product model.Product
	query := `SELECT ` + productColumns + ` FROM products WHERE system_id = $1 LIMIT 1`
	err := r.DB.GetContext(ctx, &product, query, systemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, postgres.Classify("product.FindByID", err)
	}
	return &product, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	products := []model.Product{}
	var count int

	whereClause, args := filterClause(f)

	countQuery := "SELECT count(*) FROM products" + whereClause
	cstmt, err := r.DB.PrepareNamedContext(ctx, countQuery)
	if err != nil {
		return nil, 0, postgres.Classify("product.FindAll", err)
	}
	defer cstmt.Close()
	if err := cstmt.GetContext(ctx, &count, args); err != nil {
		return nil, 0, postgres.Classify("product.FindAll", err)
	}

	query := fmt.Sprintf("SELECT %s FROM products%s ORDER BY %s", productColumns, whereClause, orderBy(f))
	if f.PageSize > 0 {
		page := max(f.Page, 1)
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, postgres.Classify("product.FindAll", err)
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &products, args); err != nil {
		return nil, 0, postgres.Classify("product.FindAll", err)
	}
	return products, count, nil
}

// filterClause builds the WHERE clause and named args for a listing. User
// values used in ILIKE are escaped so % and _ match literally.
func filterClause(f *dto.ProductFilters) (string, map[string]interface{}) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.Category != "" {
		conditions = append(conditions, "category = :category")
		args["category"] = f.Category
	}
	if brand := strings.TrimSpace(f.Brand); brand != "" {
		conditions = append(conditions, "brand ILIKE :brand")
		args["brand"] = escapeLike(brand)
	}
	if q := strings.TrimSpace(f.SearchQuery); q != "" {
		conditions = append(conditions, `(system_id = :exact OR description ILIKE :search OR brand ILIKE :search
            OR upc_id ILIKE :search OR custom_sku ILIKE :search OR ean ILIKE :search OR manufacture_sku ILIKE :search)`)
		args["exact"] = q
		args["search"] = "%" + escapeLike(q) + "%"
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

const productColumns = `system_id, upc_id, custom_sku, ean, manufacture_sku, description, price,
    category, subcat_1, subcat_2, subcat_3, brand, created_at, updated_at`

// orderBy whitelists sortable columns.
func orderBy(f *dto.ProductFilters) string {
	col := "system_id"
	switch f.SortBy {
	case "description":
		col = "description"
	case "price":
		col = "price"
	case "updated_at":
		col = "updated_at"
	}
	if strings.ToLower(f.SortOrder) == "desc" {
		return col + " DESC, system_id"
	}
	return col + " ASC, system_id"
}

func collapse(products []model.Product) []model.Product {
	index := make(map[string]int, len(products))
	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		if i, ok := index[p.SystemID]; ok {
			p.CreatedAt = out[i].CreatedAt
			out[i] = p
			continue
		}
		index[p.SystemID] = len(out)
		out = append(out, p)
	}
	return out
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
