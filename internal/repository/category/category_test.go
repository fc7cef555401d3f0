package category

import (
	"context"
	"os"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/migrate"

	"github.com/jackc/pgx/v5/pgxpool"
)

func TestPostgres_UpsertAndList(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool)
	for _, c := range []domain.Category{
		{Name: "Women", Slug: "women", DisplayOrder: 2},
		{Name: "Men", Slug: "men", DisplayOrder: 1},
	} {
		if _, err := repo.Upsert(ctx, c); err != nil {
			t.Fatalf("upsert %s: %v", c.Slug, err)
		}
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Slug != "men" || list[1].Slug != "women" {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestPostgres_UpsertUpdatesExisting(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool)
	first, err := repo.Upsert(ctx, domain.Category{Name: "Unisex", Slug: "unisex"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	second, err := repo.Upsert(ctx, domain.Category{Name: "Unisex Updated", Slug: "unisex", DisplayOrder: 5})
	if err != nil {
		t.Fatalf("upsert update: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same ID after update")
	}
	if second.Name != "Unisex Updated" || second.DisplayOrder != 5 {
		t.Fatalf("expected updated category, got %+v", second)
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
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Fatalf("ping db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE payments, wishlist_items, cart_items, products, categories RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
