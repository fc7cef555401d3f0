package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"storefront/internal/domain"
)

type stubCategories struct {
	items []domain.Category
}

func (s *stubCategories) Upsert(_ context.Context, c domain.Category) (*domain.Category, error) {
	s.items = append(s.items, c)
	return &c, nil
}

type stubProducts struct {
	items []domain.Product
	err   error
}

func (s *stubProducts) Upsert(_ context.Context, p domain.Product) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.items = append(s.items, p)
	return &p, nil
}

func TestApply(t *testing.T) {
	cats, products := &stubCategories{}, &stubProducts{}
	if err := Apply(context.Background(), cats, products); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(cats.items) != 3 || cats.items[0].Slug != "men" {
		t.Fatalf("unexpected categories %+v", cats.items)
	}
	if len(products.items) != len(Products) {
		t.Fatalf("expected %d products, got %d", len(Products), len(products.items))
	}
}

func TestProductsAreValid(t *testing.T) {
	slugs := map[string]bool{}
	for _, c := range Categories {
		slugs[c.Slug] = true
	}
	seen := map[string]bool{}
	for _, p := range Products {
		if _, err := uuid.Parse(p.ID); err != nil {
			t.Fatalf("product %q has invalid id %q", p.Name, p.ID)
		}
		if seen[p.ID] {
			t.Fatalf("duplicate id %s", p.ID)
		}
		seen[p.ID] = true
		if !slugs[p.Category] {
			t.Fatalf("product %q references unknown category %q", p.Name, p.Category)
		}
		if p.Price <= 0 {
			t.Fatalf("product %q has non-positive price", p.Name)
		}
	}
}

func TestApplyPropagatesErrors(t *testing.T) {
	if err := Apply(context.Background(), &stubCategories{}, &stubProducts{err: errors.New("boom")}); err == nil {
		t.Fatalf("expected error")
	}
}
