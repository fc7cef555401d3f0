package wishlist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/service/lock"
)

type stubRepo struct {
	mu     sync.Mutex
	rows   []domain.WishlistItem
	nextID int

	listErr     error
	insertCalls int
	lastDeleted []string
}

func (s *stubRepo) ListBySession(_ context.Context, sessionID string) ([]domain.WishlistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []domain.WishlistItem
	for _, r := range s.rows {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubRepo) Exists(_ context.Context, sessionID, productID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if r.SessionID == sessionID && r.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubRepo) Insert(_ context.Context, sessionID, productID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertCalls++
	s.nextID++
	s.rows = append(s.rows, domain.WishlistItem{ID: fmt.Sprintf("w-%d", s.nextID), SessionID: sessionID, ProductID: productID})
	return true, nil
}

func (s *stubRepo) Delete(_ context.Context, sessionID, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.rows[:0]
	for _, r := range s.rows {
		if !(r.SessionID == sessionID && r.ProductID == productID) {
			kept = append(kept, r)
		}
	}
	s.rows = kept
	return nil
}

func (s *stubRepo) DeleteByIDs(_ context.Context, sessionID string, ids []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastDeleted = ids
	drop := map[string]bool{}
	for _, id := range ids {
		drop[id] = true
	}
	var n int64
	kept := s.rows[:0]
	for _, r := range s.rows {
		if r.SessionID == sessionID && drop[r.ID] {
			n++
			continue
		}
		kept = append(kept, r)
	}
	s.rows = kept
	return n, nil
}

type stubProducts struct {
	products map[string]domain.Product
	err      error
}

func (s *stubProducts) ListByIDs(_ context.Context, ids []string) ([]domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []domain.Product
	seen := map[string]bool{}
	for _, id := range ids {
		if p, ok := s.products[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, p)
		}
	}
	return out, nil
}

var (
	productA = domain.Product{ID: "prod-a", Name: "Ankara Shirt", Price: 1000}
	productB = domain.Product{ID: "prod-b", Name: "Kitenge Dress", Price: 3000}
)

const sessionID = "session_1_abc"

func newService(t *testing.T, repo *stubRepo, products *stubProducts) *Service {
	t.Helper()
	svc, err := New(repo, products, lock.NewMemory(), Config{ReconcileOrphans: true, MutationTimeout: time.Second}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc
}

func catalogOf(ps ...domain.Product) *stubProducts {
	m := map[string]domain.Product{}
	for _, p := range ps {
		m[p.ID] = p
	}
	return &stubProducts{products: m}
}

func TestToggleTwiceRestoresMembership(t *testing.T) {
	svc := newService(t, &stubRepo{}, catalogOf(productA))
	ctx := context.Background()

	in, w, err := svc.ToggleWishlist(ctx, sessionID, productA)
	if err != nil {
		t.Fatalf("ToggleWishlist: %v", err)
	}
	if !in || !w.Contains(productA.ID) {
		t.Fatalf("expected product added, got in=%v %+v", in, w)
	}

	in, w, err = svc.ToggleWishlist(ctx, sessionID, productA)
	if err != nil {
		t.Fatalf("ToggleWishlist: %v", err)
	}
	if in || w.Contains(productA.ID) {
		t.Fatalf("expected product removed, got in=%v %+v", in, w)
	}
}

func TestAddToWishlistIsUnique(t *testing.T) {
	repo := &stubRepo{}
	svc := newService(t, repo, catalogOf(productA))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.AddToWishlist(ctx, sessionID, productA); err != nil {
			t.Fatalf("AddToWishlist: %v", err)
		}
	}
	if repo.insertCalls != 1 {
		t.Fatalf("expected a single insert, got %d", repo.insertCalls)
	}
	if w := svc.Load(ctx, sessionID); len(w.Items) != 1 {
		t.Fatalf("expected one item, got %+v", w.Items)
	}
}

func TestConcurrentTogglesStayConsistent(t *testing.T) {
	repo := &stubRepo{}
	svc := newService(t, repo, catalogOf(productA))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.AddToWishlist(ctx, sessionID, productA); err != nil {
				t.Errorf("AddToWishlist: %v", err)
			}
		}()
	}
	wg.Wait()

	if len(repo.rows) != 1 {
		t.Fatalf("expected exactly one row, got %d", len(repo.rows))
	}
}

func TestLoadDeduplicatesLegacyRows(t *testing.T) {
	repo := &stubRepo{rows: []domain.WishlistItem{
		{ID: "w-1", SessionID: sessionID, ProductID: productA.ID},
		{ID: "w-2", SessionID: sessionID, ProductID: productA.ID},
		{ID: "w-3", SessionID: sessionID, ProductID: productB.ID},
	}}
	svc := newService(t, repo, catalogOf(productA, productB))

	w := svc.Load(context.Background(), sessionID)
	if len(w.Items) != 2 || w.Items[0].ID != productA.ID || w.Items[1].ID != productB.ID {
		t.Fatalf("unexpected items %+v", w.Items)
	}
}

func TestLoadReconcilesOrphans(t *testing.T) {
	repo := &stubRepo{rows: []domain.WishlistItem{
		{ID: "w-1", SessionID: sessionID, ProductID: "gone"},
		{ID: "w-2", SessionID: sessionID, ProductID: productA.ID},
	}}
	svc := newService(t, repo, catalogOf(productA))

	w := svc.Load(context.Background(), sessionID)
	if len(w.Items) != 1 {
		t.Fatalf("expected orphan filtered, got %+v", w.Items)
	}
	if len(repo.lastDeleted) != 1 || repo.lastDeleted[0] != "w-1" {
		t.Fatalf("expected orphan deleted, got %v", repo.lastDeleted)
	}
}

func TestLoadFailureKeepsLastGood(t *testing.T) {
	repo := &stubRepo{}
	svc := newService(t, repo, catalogOf(productA))
	ctx := context.Background()

	if _, err := svc.AddToWishlist(ctx, sessionID, productA); err != nil {
		t.Fatalf("AddToWishlist: %v", err)
	}
	repo.listErr = errors.New("db down")

	w := svc.Load(ctx, sessionID)
	if !w.Stale || len(w.Items) != 1 {
		t.Fatalf("expected stale last-good wishlist, got %+v", w)
	}
	if svc.IsInWishlist(ctx, sessionID, productA.ID) != true {
		t.Fatalf("expected membership from last good view")
	}
}

func TestRemoveFromWishlist(t *testing.T) {
	svc := newService(t, &stubRepo{}, catalogOf(productA, productB))
	ctx := context.Background()

	if _, err := svc.AddToWishlist(ctx, sessionID, productA); err != nil {
		t.Fatalf("AddToWishlist: %v", err)
	}
	if _, err := svc.AddToWishlist(ctx, sessionID, productB); err != nil {
		t.Fatalf("AddToWishlist: %v", err)
	}
	w, err := svc.RemoveFromWishlist(ctx, sessionID, productA.ID)
	if err != nil {
		t.Fatalf("RemoveFromWishlist: %v", err)
	}
	if w.Contains(productA.ID) || !w.Contains(productB.ID) {
		t.Fatalf("unexpected wishlist %+v", w)
	}
	if svc.IsInWishlist(ctx, "session_2_other", productB.ID) {
		t.Fatalf("expected wishlist scoped to session")
	}
}

func TestRejectsEmptyProduct(t *testing.T) {
	svc := newService(t, &stubRepo{}, catalogOf())
	if _, _, err := svc.ToggleWishlist(context.Background(), sessionID, domain.Product{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
