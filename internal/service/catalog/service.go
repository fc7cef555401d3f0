// Package catalog is the read-only view of products and categories.
package catalog

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/logging"
)

const (
	SortFeatured  = "featured"
	SortNewest    = "newest"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
)

// CategoryAll disables the category filter.
const CategoryAll = "all"

type productRepo interface {
	List(ctx context.Context, category string) ([]domain.Product, error)
	ListByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type categoryRepo interface {
	List(ctx context.Context) ([]domain.Category, error)
}

type Service struct {
	products   productRepo
	categories categoryRepo
	logger     *slog.Logger
}

func New(products productRepo, categories categoryRepo, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{products: products, categories: categories, logger: logger}
}

// Query narrows a product listing. Zero values mean "no filter".
type Query struct {
	Category    string
	Subcategory string
	Search      string
	MinPrice    *int64
	MaxPrice    *int64
	Sort        string
}

func (q Query) validate() error {
	switch q.Sort {
	case "", SortFeatured, SortNewest, SortPriceLow, SortPriceHigh:
	default:
		return domain.ErrInvalidInput
	}
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		return domain.ErrInvalidInput
	}
	return nil
}

// List filters by category in the database, then applies search, price
// range and sort in process.
func (s *Service) List(ctx context.Context, q Query) ([]domain.Product, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	category := strings.TrimSpace(q.Category)
	if strings.EqualFold(category, CategoryAll) {
		category = ""
	}

	products, err := s.products.List(ctx, category)
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if q.Subcategory != "" && !strings.EqualFold(q.Subcategory, CategoryAll) && !strings.EqualFold(p.Subcategory, q.Subcategory) {
			continue
		}
		if search != "" && !matches(p, search) {
			continue
		}
		if q.MinPrice != nil && p.Price < *q.MinPrice {
			continue
		}
		if q.MaxPrice != nil && p.Price > *q.MaxPrice {
			continue
		}
		out = append(out, p)
	}

	sortProducts(out, q.Sort)
	s.logger.DebugContext(ctx, "listed products", "category", category, "search", search, "count", len(out))
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.GetByID(ctx, strings.TrimSpace(id))
}

// ListByIDs resolves a de-duplicated id set with a single repository call.
func (s *Service) ListByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return s.products.ListByIDs(ctx, unique)
}

func (s *Service) Categories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

func matches(p domain.Product, search string) bool {
	return strings.Contains(strings.ToLower(p.Name), search) ||
		strings.Contains(strings.ToLower(p.Description), search) ||
		strings.Contains(strings.ToLower(p.Color), search)
}

func sortProducts(products []domain.Product, by string) {
	switch by {
	case SortPriceLow:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price < products[j].Price })
	case SortPriceHigh:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price > products[j].Price })
	case SortFeatured, SortNewest:
		// "featured" sorts by recency, same as "newest".
		sort.SliceStable(products, func(i, j int) bool { return products[i].CreatedAt.After(products[j].CreatedAt) })
	}
}
