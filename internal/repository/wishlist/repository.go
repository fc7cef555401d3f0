package wishlist

import (
	"context"

	"storefront/internal/domain"
)

// Repository is the wishlist_items table. (session_id, product_id) is unique.
type Repository interface {
	ListBySession(ctx context.Context, sessionID string) ([]domain.WishlistItem, error)
	Exists(ctx context.Context, sessionID, productID string) (bool, error)
	// Insert adds the pair and reports whether a new row was written.
	Insert(ctx context.Context, sessionID, productID string) (bool, error)
	Delete(ctx context.Context, sessionID, productID string) error
	DeleteByIDs(ctx context.Context, sessionID string, ids []string) (int64, error)
}
