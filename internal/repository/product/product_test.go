package product

import (
	"context"
	"os"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/migrate"

	"github.com/jackc/pgx/v5/pgxpool"
)

func TestPostgres_ListAndGet(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)

	shirt, err := repo.Upsert(ctx, domain.Product{Name: "Linen Shirt", Category: "men", Price: 2500, Sizes: []string{"M", "L"}, InStock: true})
	if err != nil {
		t.Fatalf("Upsert shirt: %v", err)
	}
	dress, err := repo.Upsert(ctx, domain.Product{Name: "Maxi Dress", Category: "women", Price: 4000, Featured: true, InStock: true})
	if err != nil {
		t.Fatalf("Upsert dress: %v", err)
	}

	all, err := repo.List(ctx, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 products, got %d", len(all))
	}
	if all[0].ID != dress.ID {
		t.Fatalf("expected featured product first, got %+v", all[0])
	}

	men, err := repo.List(ctx, "men")
	if err != nil {
		t.Fatalf("List men: %v", err)
	}
	if len(men) != 1 || men[0].ID != shirt.ID {
		t.Fatalf("unexpected men list %+v", men)
	}
	if len(men[0].Sizes) != 2 || men[0].Colors != nil {
		t.Fatalf("unexpected array columns %+v", men[0])
	}

	got, err := repo.GetByID(ctx, shirt.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Linen Shirt" || got.Price != 2500 {
		t.Fatalf("unexpected product %+v", got)
	}

	if _, err := repo.GetByID(ctx, "not-a-uuid"); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound for malformed id, got %v", err)
	}
	if _, err := repo.GetByID(ctx, "00000000-0000-0000-0000-000000000000"); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgres_ListByIDs(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	p, err := repo.Upsert(ctx, domain.Product{Name: "Scarf", Category: "unisex", Price: 900})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := repo.ListByIDs(ctx, []string{p.ID, "00000000-0000-0000-0000-000000000001", "garbage"})
	if err != nil {
		t.Fatalf("ListByIDs: %v", err)
	}
	if len(got) != 1 || got[0].ID != p.ID {
		t.Fatalf("expected only the existing product, got %+v", got)
	}

	empty, err := repo.ListByIDs(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty result, got %v %v", empty, err)
	}
}

func TestPostgres_Upsert(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)

	p, err := repo.Upsert(ctx, domain.Product{Name: "Hoodie", Category: "unisex", Price: 3000})
	if err != nil {
		t.Fatalf("Upsert insert: %v", err)
	}
	if p.ID == "" {
		t.Fatalf("expected ID set")
	}

	updated, err := repo.Upsert(ctx, domain.Product{
		ID:          p.ID,
		Name:        "Hoodie v2",
		Category:    "unisex",
		Description: "heavier cotton",
		Price:       3200,
		Colors:      []string{"Black", "Grey"},
	})
	if err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	if updated.ID != p.ID {
		t.Fatalf("expected same ID after update")
	}

	got, err := repo.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Hoodie v2" || got.Description != "heavier cotton" || got.Price != 3200 || len(got.Colors) != 2 {
		t.Fatalf("unexpected updated product %+v", got)
	}

	if _, err := repo.Upsert(ctx, domain.Product{ID: "bad", Name: "x", Category: "men"}); err == nil {
		t.Fatalf("expected error for malformed id")
	}
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE payments, wishlist_items, cart_items, products, categories RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
