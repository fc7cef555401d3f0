package httpserver

import (
	"storefront/internal/domain"
	"storefront/internal/pricing"
	"storefront/internal/service/wishlist"
)

// productView is a product with the storefront markdown applied.
type productView struct {
	domain.Product
	DiscountedPrice int64 `json:"discountedPrice"`
	Savings         int64 `json:"savings"`
}

func toProductView(p domain.Product) productView {
	return productView{
		Product:         p,
		DiscountedPrice: pricing.DiscountedPrice(p.Price),
		Savings:         pricing.Savings(p.Price),
	}
}

func toProductViews(products []domain.Product) []productView {
	out := make([]productView, 0, len(products))
	for _, p := range products {
		out = append(out, toProductView(p))
	}
	return out
}

type wishlistView struct {
	Items   []productView `json:"items"`
	Count   int           `json:"count"`
	Loading bool          `json:"loading"`
	Stale   bool          `json:"stale"`
}

func toWishlistView(w wishlist.Wishlist) wishlistView {
	return wishlistView{
		Items:   toProductViews(w.Items),
		Count:   len(w.Items),
		Loading: w.Loading,
		Stale:   w.Stale,
	}
}
