package product

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"storefront/internal/domain"
	"storefront/internal/logging"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = `
id::text, name, category, COALESCE(subcategory, ''), COALESCE(description, ''), price,
colors, sizes, COALESCE(color, ''), COALESCE(size, ''), COALESCE(image_url, ''),
COALESCE(featured, false), COALESCE(in_stock, true), COALESCE(sort_order, 0), created_at, updated_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *slog.Logger) Repository {
	if logger == nil {
		logger = logging.Discard()
	}
	return &postgresRepo{pool: pool, logger: logger.With("component", "product_repo")}
}

func (r *postgresRepo) List(ctx context.Context, category string) ([]domain.Product, error) {
	const q = `SELECT ` + productColumns + `
FROM products
WHERE ($1 = '' OR category = $1)
ORDER BY featured DESC NULLS LAST, created_at DESC
`
	rows, err := r.pool.Query(ctx, q, category)
	if err != nil {
		r.logger.ErrorContext(ctx, "list products", "category", category, "error", err)
		return nil, err
	}
	result, err := collectProducts(rows)
	if err != nil {
		r.logger.ErrorContext(ctx, "list products rows", "category", category, "error", err)
		return nil, err
	}
	r.logger.DebugContext(ctx, "listed products", "category", category, "count", len(result))
	return result, nil
}

func (r *postgresRepo) ListByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return nil, nil
	}

	const q = `SELECT ` + productColumns + `
FROM products
WHERE id = ANY($1::uuid[])
`
	rows, err := r.pool.Query(ctx, q, valid)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	const q = `SELECT ` + productColumns + `
FROM products
WHERE id = $1
`
	p, err := scanProduct(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "get product", "id", id, "error", err)
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (id, name, category, subcategory, description, price, colors, sizes, color, size, image_url, featured, in_stock, sort_order)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8, NULLIF($9, ''), NULLIF($10, ''), NULLIF($11, ''), $12, $13, $14)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    category = EXCLUDED.category,
    subcategory = EXCLUDED.subcategory,
    description = EXCLUDED.description,
    price = EXCLUDED.price,
    colors = EXCLUDED.colors,
    sizes = EXCLUDED.sizes,
    color = EXCLUDED.color,
    size = EXCLUDED.size,
    image_url = EXCLUDED.image_url,
    featured = EXCLUDED.featured,
    in_stock = EXCLUDED.in_stock,
    sort_order = EXCLUDED.sort_order,
    updated_at = now()
RETURNING id::text, created_at, updated_at
`
	if product.ID != "" {
		if _, err := uuid.Parse(product.ID); err != nil {
			return nil, fmt.Errorf("product id %q: %w", product.ID, domain.ErrInvalidInput)
		}
	}
	res := product
	err := r.pool.QueryRow(ctx, q,
		product.ID,
		product.Name,
		product.Category,
		product.Subcategory,
		product.Description,
		product.Price,
		product.Colors,
		product.Sizes,
		product.Color,
		product.Size,
		product.ImageURL,
		product.Featured,
		product.InStock,
		product.SortOrder,
	).Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "upsert product", "name", product.Name, "error", err)
		return nil, err
	}
	r.logger.DebugContext(ctx, "upserted product", "id", res.ID, "name", res.Name)
	return &res, nil
}

func collectProducts(rows pgx.Rows) ([]domain.Product, error) {
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Category,
		&p.Subcategory,
		&p.Description,
		&p.Price,
		&p.Colors,
		&p.Sizes,
		&p.Color,
		&p.Size,
		&p.ImageURL,
		&p.Featured,
		&p.InStock,
		&p.SortOrder,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
