package product

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	// List returns products ordered featured first, newest first. An empty category lists everything.
	List(ctx context.Context, category string) ([]domain.Product, error)
	// ListByIDs resolves a set of ids in one query. Unknown ids are simply absent from the result.
	ListByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}
