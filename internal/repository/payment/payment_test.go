package payment

import (
	"context"
	"os"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/migrate"

	"github.com/jackc/pgx/v5/pgxpool"
)

func TestPostgres_InsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool)
	p := domain.Payment{
		ExternalOrderID: "cs_test_123",
		CustomerName:    "Amina W",
		CustomerEmail:   "amina@example.com",
		TotalAmount:     1500,
		OriginalAmount:  3000,
		DiscountAmount:  1500,
		ItemsCount:      2,
		SessionID:       "session_1_a",
		Status:          domain.PaymentStatusCompleted,
		PaymentMethod:   "paypal",
	}

	inserted, err := repo.Insert(ctx, p)
	if err != nil || !inserted {
		t.Fatalf("first insert: inserted=%v err=%v", inserted, err)
	}
	inserted, err = repo.Insert(ctx, p)
	if err != nil {
		t.Fatalf("second insert: %v", err)
	}
	if inserted {
		t.Fatalf("expected duplicate order id to be ignored")
	}

	got, err := repo.GetByExternalOrderID(ctx, "cs_test_123")
	if err != nil {
		t.Fatalf("GetByExternalOrderID: %v", err)
	}
	if got.TotalAmount != 1500 || got.ItemsCount != 2 || got.Status != domain.PaymentStatusCompleted {
		t.Fatalf("unexpected payment %+v", got)
	}

	if _, err := repo.GetByExternalOrderID(ctx, "missing"); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
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
