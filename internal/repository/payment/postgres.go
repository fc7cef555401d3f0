package payment

import (
	"context"
	"errors"

	"storefront/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Insert(ctx context.Context, p domain.Payment) (bool, error) {
	const q = `
INSERT INTO payments (external_order_id, customer_name, customer_email, total_amount, original_amount,
                      discount_amount, items_count, session_id, status, payment_method)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (external_order_id) DO NOTHING
`
	cmd, err := r.pool.Exec(ctx, q,
		p.ExternalOrderID,
		p.CustomerName,
		p.CustomerEmail,
		p.TotalAmount,
		p.OriginalAmount,
		p.DiscountAmount,
		p.ItemsCount,
		p.SessionID,
		p.Status,
		p.PaymentMethod,
	)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *postgresRepo) GetByExternalOrderID(ctx context.Context, externalOrderID string) (*domain.Payment, error) {
	const q = `
SELECT id::text, external_order_id, customer_name, customer_email, total_amount, original_amount,
       discount_amount, items_count, session_id, status, payment_method, created_at, updated_at
FROM payments
WHERE external_order_id = $1
`
	var p domain.Payment
	err := r.pool.QueryRow(ctx, q, externalOrderID).Scan(
		&p.ID,
		&p.ExternalOrderID,
		&p.CustomerName,
		&p.CustomerEmail,
		&p.TotalAmount,
		&p.OriginalAmount,
		&p.DiscountAmount,
		&p.ItemsCount,
		&p.SessionID,
		&p.Status,
		&p.PaymentMethod,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
