package payment

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	// Insert records a captured payment. It returns false without error when
	// a row for the same external order id already exists.
	Insert(ctx context.Context, p domain.Payment) (bool, error)
	GetByExternalOrderID(ctx context.Context, externalOrderID string) (*domain.Payment, error)
}
