package wishlist

import (
	"context"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) ListBySession(ctx context.Context, sessionID string) ([]domain.WishlistItem, error) {
	const q = `
SELECT id::text, session_id, product_id::text, created_at
FROM wishlist_items
WHERE session_id = $1
ORDER BY created_at ASC, id ASC
`
	rows, err := r.pool.Query(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.WishlistItem
	for rows.Next() {
		var item domain.WishlistItem
		if err := rows.Scan(&item.ID, &item.SessionID, &item.ProductID, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) Exists(ctx context.Context, sessionID, productID string) (bool, error) {
	if _, err := uuid.Parse(productID); err != nil {
		return false, nil
	}
	const q = `SELECT EXISTS (SELECT 1 FROM wishlist_items WHERE session_id = $1 AND product_id = $2)`
	var exists bool
	if err := r.pool.QueryRow(ctx, q, sessionID, productID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *postgresRepo) Insert(ctx context.Context, sessionID, productID string) (bool, error) {
	const q = `
INSERT INTO wishlist_items (session_id, product_id)
VALUES ($1, $2)
ON CONFLICT (session_id, product_id) DO NOTHING
`
	cmd, err := r.pool.Exec(ctx, q, sessionID, productID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *postgresRepo) Delete(ctx context.Context, sessionID, productID string) error {
	if _, err := uuid.Parse(productID); err != nil {
		return nil
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM wishlist_items WHERE session_id = $1 AND product_id = $2`, sessionID, productID)
	return err
}

func (r *postgresRepo) DeleteByIDs(ctx context.Context, sessionID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM wishlist_items WHERE session_id = $1 AND id = ANY($2::uuid[])`, sessionID, ids)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
