package cart

import (
	"context"
	"os"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/migrate"

	"github.com/jackc/pgx/v5/pgxpool"
)

const productA = "11111111-1111-1111-1111-111111111111"

func TestPostgres_InsertFindAndIncrement(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool)
	created, err := repo.Insert(ctx, domain.CartItem{SessionID: "session_1_a", ProductID: productA, Quantity: 2, Size: "M", Color: "Black"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if created.ID == "" || created.Quantity != 2 {
		t.Fatalf("unexpected row %+v", created)
	}

	found, err := repo.FindByKey(ctx, "session_1_a", productA, "M", "Black")
	if err != nil {
		t.Fatalf("FindByKey: %v", err)
	}
	if found.ID != created.ID {
		t.Fatalf("expected %s, got %s", created.ID, found.ID)
	}
	if _, err := repo.FindByKey(ctx, "session_1_a", productA, "", ""); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound for different key, got %v", err)
	}
	if _, err := repo.FindByKey(ctx, "session_2_b", productA, "M", "Black"); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound for other session, got %v", err)
	}

	if err := repo.AddQuantity(ctx, "session_1_a", created.ID, 1); err != nil {
		t.Fatalf("AddQuantity: %v", err)
	}
	items, err := repo.ListBySession(ctx, "session_1_a")
	if err != nil {
		t.Fatalf("ListBySession: %v", err)
	}
	if len(items) != 1 || items[0].Quantity != 3 {
		t.Fatalf("unexpected items %+v", items)
	}
}

func TestPostgres_SessionScopedMutations(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool)
	mine, err := repo.Insert(ctx, domain.CartItem{SessionID: "session_1_a", ProductID: productA, Quantity: 1})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	if err := repo.SetQuantity(ctx, "session_2_b", mine.ID, 5); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound from foreign session, got %v", err)
	}
	if err := repo.Delete(ctx, "session_2_b", mine.ID); err != nil {
		t.Fatalf("Delete foreign: %v", err)
	}
	if err := repo.Delete(ctx, "session_1_a", "not-a-uuid"); err != nil {
		t.Fatalf("Delete malformed id: %v", err)
	}
	items, _ := repo.ListBySession(ctx, "session_1_a")
	if len(items) != 1 {
		t.Fatalf("expected row to survive foreign delete, got %+v", items)
	}

	if err := repo.SetQuantity(ctx, "session_1_a", mine.ID, 4); err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}
	n, err := repo.DeleteByIDs(ctx, "session_1_a", []string{mine.ID})
	if err != nil || n != 1 {
		t.Fatalf("DeleteByIDs: n=%d err=%v", n, err)
	}

	if _, err := repo.Insert(ctx, domain.CartItem{SessionID: "session_1_a", ProductID: productA, Quantity: 1}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := repo.DeleteBySession(ctx, "session_1_a"); err != nil {
		t.Fatalf("DeleteBySession: %v", err)
	}
	items, _ = repo.ListBySession(ctx, "session_1_a")
	if len(items) != 0 {
		t.Fatalf("expected empty cart, got %+v", items)
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
