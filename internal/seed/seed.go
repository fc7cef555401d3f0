// Package seed loads a small demo clothing catalog.
package seed

import (
	"context"
	"fmt"

	"storefront/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type CategoryWriter interface {
	Upsert(ctx context.Context, category domain.Category) (*domain.Category, error)
}

// Categories are the three storefront departments in display order.
var Categories = []domain.Category{
	{Name: "Men", Slug: "men", DisplayOrder: 1},
	{Name: "Women", Slug: "women", DisplayOrder: 2},
	{Name: "Unisex", Slug: "unisex", DisplayOrder: 3},
}

// Products carry fixed ids so reseeding updates rather than duplicates.
var Products = []domain.Product{
	{
		ID:          "6f1c2a4e-0000-4000-8000-000000000001",
		Name:        "Ankara Print Shirt",
		Category:    "men",
		Subcategory: "Casual Shirts",
		Description: "Short-sleeve cotton shirt in a bold Ankara print.",
		Price:       2500,
		Colors:      []string{"Blue", "Orange"},
		Sizes:       []string{"S", "M", "L", "XL"},
		Featured:    true,
		InStock:     true,
		SortOrder:   1,
	},
	{
		ID:          "6f1c2a4e-0000-4000-8000-000000000002",
		Name:        "Slim Fit Blazer",
		Category:    "men",
		Subcategory: "Suits & Blazers",
		Description: "Single-breasted blazer with notch lapels.",
		Price:       7999,
		Colors:      []string{"Navy", "Charcoal"},
		Sizes:       []string{"M", "L", "XL"},
		InStock:     true,
		SortOrder:   2,
	},
	{
		ID:          "6f1c2a4e-0000-4000-8000-000000000003",
		Name:        "Kitenge Maxi Dress",
		Category:    "women",
		Subcategory: "Dresses",
		Description: "Flowing maxi dress cut from kitenge fabric.",
		Price:       4599,
		Colors:      []string{"Green", "Yellow"},
		Sizes:       []string{"S", "M", "L"},
		Featured:    true,
		InStock:     true,
		SortOrder:   1,
	},
	{
		ID:          "6f1c2a4e-0000-4000-8000-000000000004",
		Name:        "Two-Piece Lounge Set",
		Category:    "women",
		Subcategory: "Two-Piece Sets",
		Description: "Ribbed knit top and wide-leg trousers.",
		Price:       3800,
		Color:       "Beige",
		Sizes:       []string{"S", "M", "L"},
		InStock:     true,
		SortOrder:   2,
	},
	{
		ID:          "6f1c2a4e-0000-4000-8000-000000000005",
		Name:        "Oversized Knit Sweater",
		Category:    "unisex",
		Subcategory: "Sweaters",
		Description: "Chunky knit crew neck with dropped shoulders.",
		Price:       3299,
		Colors:      []string{"Cream", "Black", "Olive"},
		Sizes:       []string{"M", "L", "XL"},
		Featured:    true,
		InStock:     true,
		SortOrder:   1,
	},
	{
		ID:          "6f1c2a4e-0000-4000-8000-000000000006",
		Name:        "Beaded Maasai Bracelet",
		Category:    "unisex",
		Subcategory: "Accessories",
		Description: "Hand-beaded bracelet made in Kajiado.",
		Price:       650,
		Size:        "One Size",
		InStock:     true,
		SortOrder:   2,
	},
}

// Apply upserts the demo categories and products. It is idempotent.
func Apply(ctx context.Context, categories CategoryWriter, products ProductWriter) error {
	for _, c := range Categories {
		if _, err := categories.Upsert(ctx, c); err != nil {
			return fmt.Errorf("upsert category %s: %w", c.Slug, err)
		}
	}
	for _, p := range Products {
		if _, err := products.Upsert(ctx, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Name, err)
		}
	}
	return nil
}
