package cart

import (
	"context"

	"storefront/internal/domain"
)

// Repository is the cart_items table. Every call is scoped to a session id.
type Repository interface {
	ListBySession(ctx context.Context, sessionID string) ([]domain.CartItem, error)
	// FindByKey returns the row for the exact (session, product, size, color) key or domain.ErrNotFound.
	FindByKey(ctx context.Context, sessionID, productID, size, color string) (*domain.CartItem, error)
	Insert(ctx context.Context, item domain.CartItem) (*domain.CartItem, error)
	// AddQuantity increments a row's quantity in place.
	AddQuantity(ctx context.Context, sessionID, id string, delta int) error
	SetQuantity(ctx context.Context, sessionID, id string, quantity int) error
	// Delete removes one row. Deleting a missing row is not an error.
	Delete(ctx context.Context, sessionID, id string) error
	DeleteBySession(ctx context.Context, sessionID string) error
	DeleteByIDs(ctx context.Context, sessionID string, ids []string) (int64, error)
}
