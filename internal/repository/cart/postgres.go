package cart

import (
	"context"
	"errors"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) ListBySession(ctx context.Context, sessionID string) ([]domain.CartItem, error) {
	const q = `
SELECT id::text, session_id, product_id::text, quantity, size, color, created_at, updated_at
FROM cart_items
WHERE session_id = $1
ORDER BY created_at ASC, id ASC
`
	rows, err := r.pool.Query(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CartItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) FindByKey(ctx context.Context, sessionID, productID, size, color string) (*domain.CartItem, error) {
	if _, err := uuid.Parse(productID); err != nil {
		return nil, domain.ErrNotFound
	}
	const q = `
SELECT id::text, session_id, product_id::text, quantity, size, color, created_at, updated_at
FROM cart_items
WHERE session_id = $1 AND product_id = $2 AND size = $3 AND color = $4
ORDER BY created_at ASC
LIMIT 1
`
	item, err := scanItem(r.pool.QueryRow(ctx, q, sessionID, productID, size, color))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r *postgresRepo) Insert(ctx context.Context, item domain.CartItem) (*domain.CartItem, error) {
	const q = `
INSERT INTO cart_items (session_id, product_id, quantity, size, color)
VALUES ($1, $2, $3, $4, $5)
RETURNING id::text, session_id, product_id::text, quantity, size, color, created_at, updated_at
`
	return scanItem(r.pool.QueryRow(ctx, q, item.SessionID, item.ProductID, item.Quantity, item.Size, item.Color))
}

func (r *postgresRepo) AddQuantity(ctx context.Context, sessionID, id string, delta int) error {
	const q = `
UPDATE cart_items
SET quantity = quantity + $1, updated_at = now()
WHERE id = $2 AND session_id = $3
`
	return r.execOne(ctx, q, id, delta, id, sessionID)
}

func (r *postgresRepo) SetQuantity(ctx context.Context, sessionID, id string, quantity int) error {
	const q = `
UPDATE cart_items
SET quantity = $1, updated_at = now()
WHERE id = $2 AND session_id = $3
`
	return r.execOne(ctx, q, id, quantity, id, sessionID)
}

func (r *postgresRepo) Delete(ctx context.Context, sessionID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE id = $1 AND session_id = $2`, id, sessionID)
	return err
}

func (r *postgresRepo) DeleteBySession(ctx context.Context, sessionID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE session_id = $1`, sessionID)
	return err
}

func (r *postgresRepo) DeleteByIDs(ctx context.Context, sessionID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE session_id = $1 AND id = ANY($2::uuid[])`, sessionID, ids)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

// execOne runs an update addressed by row id and maps a miss to domain.ErrNotFound.
func (r *postgresRepo) execOne(ctx context.Context, q, id string, args ...any) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, q, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanItem(row pgx.Row) (*domain.CartItem, error) {
	var item domain.CartItem
	if err := row.Scan(
		&item.ID,
		&item.SessionID,
		&item.ProductID,
		&item.Quantity,
		&item.Size,
		&item.Color,
		&item.CreatedAt,
		&item.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &item, nil
}
