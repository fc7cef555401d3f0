// Package wishlist owns a session's saved-product set with toggle semantics.
// Uniqueness per (session, product) is enforced here and by the table.
package wishlist

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/logging"
	"storefront/internal/service/lock"
	"storefront/internal/service/snapshot"
)

type wishlistRepo interface {
	ListBySession(ctx context.Context, sessionID string) ([]domain.WishlistItem, error)
	Exists(ctx context.Context, sessionID, productID string) (bool, error)
	Insert(ctx context.Context, sessionID, productID string) (bool, error)
	Delete(ctx context.Context, sessionID, productID string) error
	DeleteByIDs(ctx context.Context, sessionID string, ids []string) (int64, error)
}

type productLookup interface {
	ListByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
}

// Wishlist is the resolved product list for a session.
type Wishlist struct {
	Items   []domain.Product `json:"items"`
	Loading bool             `json:"loading"`
	Stale   bool             `json:"stale"`
}

// Contains is a membership scan over the loaded products.
func (w Wishlist) Contains(productID string) bool {
	for _, p := range w.Items {
		if p.ID == productID {
			return true
		}
	}
	return false
}

type Config struct {
	ReconcileOrphans bool
	MutationTimeout  time.Duration
	SnapshotSize     int
}

type Service struct {
	repo      wishlistRepo
	products  productLookup
	locker    lock.Locker
	snapshots *snapshot.Store[Wishlist]
	cfg       Config
	logger    *slog.Logger
}

func New(repo wishlistRepo, products productLookup, locker lock.Locker, cfg Config, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	if cfg.MutationTimeout <= 0 {
		cfg.MutationTimeout = 5 * time.Second
	}
	snaps, err := snapshot.New[Wishlist](cfg.SnapshotSize)
	if err != nil {
		return nil, fmt.Errorf("wishlist snapshots: %w", err)
	}
	return &Service{
		repo:      repo,
		products:  products,
		locker:    locker,
		snapshots: snaps,
		cfg:       cfg,
		logger:    logger,
	}, nil
}

// Load returns the session wishlist, falling back to the last good view on error.
func (s *Service) Load(ctx context.Context, sessionID string) Wishlist {
	w, err := s.Fetch(ctx, sessionID)
	if err != nil {
		logging.FromContext(ctx, s.logger).ErrorContext(ctx, "load wishlist", "session_id", sessionID, "error", err)
		prev, _ := s.snapshots.Get(sessionID)
		prev.Stale = true
		prev.Loading = s.snapshots.Loading(sessionID)
		if prev.Items == nil {
			prev.Items = []domain.Product{}
		}
		return prev
	}
	return w
}

// Fetch loads the wishlist and reports backing-store errors.
func (s *Service) Fetch(ctx context.Context, sessionID string) (Wishlist, error) {
	load := s.snapshots.Begin(sessionID)
	defer load.Done()

	rows, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return Wishlist{}, fmt.Errorf("list wishlist rows: %w", err)
	}

	var byID map[string]domain.Product
	if len(rows) > 0 {
		ids := make([]string, 0, len(rows))
		for _, r := range rows {
			ids = append(ids, r.ProductID)
		}
		found, err := s.products.ListByIDs(ctx, ids)
		if err != nil {
			return Wishlist{}, fmt.Errorf("resolve wishlist products: %w", err)
		}
		byID = make(map[string]domain.Product, len(found))
		for _, p := range found {
			byID[p.ID] = p
		}
	}

	items := make([]domain.Product, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	var orphans []string
	for _, r := range rows {
		p, ok := byID[r.ProductID]
		if !ok {
			orphans = append(orphans, r.ID)
			continue
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		items = append(items, p)
	}
	s.reconcile(ctx, sessionID, orphans)

	w := Wishlist{Items: items}
	load.Put(w)
	return w, nil
}

// IsInWishlist loads the session wishlist and tests membership.
func (s *Service) IsInWishlist(ctx context.Context, sessionID, productID string) bool {
	return s.Load(ctx, sessionID).Contains(strings.TrimSpace(productID))
}

// AddToWishlist is a no-op for products already saved.
func (s *Service) AddToWishlist(ctx context.Context, sessionID string, product domain.Product) (Wishlist, error) {
	if strings.TrimSpace(product.ID) == "" {
		return Wishlist{}, fmt.Errorf("product id required: %w", domain.ErrInvalidInput)
	}
	unlock, err := lock.Acquire(ctx, s.locker, sessionID, s.cfg.MutationTimeout)
	if err != nil {
		return Wishlist{}, err
	}
	defer unlock()

	if err := s.addLocked(ctx, sessionID, product.ID); err != nil {
		return Wishlist{}, err
	}
	return s.Load(ctx, sessionID), nil
}

func (s *Service) RemoveFromWishlist(ctx context.Context, sessionID, productID string) (Wishlist, error) {
	unlock, err := lock.Acquire(ctx, s.locker, sessionID, s.cfg.MutationTimeout)
	if err != nil {
		return Wishlist{}, err
	}
	defer unlock()

	if err := s.repo.Delete(ctx, sessionID, strings.TrimSpace(productID)); err != nil {
		return Wishlist{}, fmt.Errorf("delete wishlist entry: %w", err)
	}
	s.logger.DebugContext(ctx, "removed from wishlist", "session_id", sessionID, "product_id", productID)
	return s.Load(ctx, sessionID), nil
}

// ToggleWishlist removes the product when saved and adds it otherwise. It
// reports the resulting membership.
func (s *Service) ToggleWishlist(ctx context.Context, sessionID string, product domain.Product) (bool, Wishlist, error) {
	if strings.TrimSpace(product.ID) == "" {
		return false, Wishlist{}, fmt.Errorf("product id required: %w", domain.ErrInvalidInput)
	}
	unlock, err := lock.Acquire(ctx, s.locker, sessionID, s.cfg.MutationTimeout)
	if err != nil {
		return false, Wishlist{}, err
	}
	defer unlock()

	present, err := s.repo.Exists(ctx, sessionID, product.ID)
	if err != nil {
		return false, Wishlist{}, fmt.Errorf("check wishlist entry: %w", err)
	}
	if present {
		if err := s.repo.Delete(ctx, sessionID, product.ID); err != nil {
			return false, Wishlist{}, fmt.Errorf("delete wishlist entry: %w", err)
		}
	} else if err := s.addLocked(ctx, sessionID, product.ID); err != nil {
		return false, Wishlist{}, err
	}

	s.logger.DebugContext(ctx, "toggled wishlist", "session_id", sessionID, "product_id", product.ID, "in_wishlist", !present)
	return !present, s.Load(ctx, sessionID), nil
}

func (s *Service) addLocked(ctx context.Context, sessionID, productID string) error {
	present, err := s.repo.Exists(ctx, sessionID, productID)
	if err != nil {
		return fmt.Errorf("check wishlist entry: %w", err)
	}
	if present {
		return nil
	}
	if _, err := s.repo.Insert(ctx, sessionID, productID); err != nil {
		return fmt.Errorf("insert wishlist entry: %w", err)
	}
	s.logger.DebugContext(ctx, "added to wishlist", "session_id", sessionID, "product_id", productID)
	return nil
}

func (s *Service) reconcile(ctx context.Context, sessionID string, orphans []string) {
	if len(orphans) == 0 || !s.cfg.ReconcileOrphans {
		return
	}
	logger := logging.FromContext(ctx, s.logger)
	n, err := s.repo.DeleteByIDs(ctx, sessionID, orphans)
	if err != nil {
		logger.ErrorContext(ctx, "reconcile orphaned wishlist rows", "session_id", sessionID, "rows", len(orphans), "error", err)
		return
	}
	logger.InfoContext(ctx, "reconciled orphaned wishlist rows", "session_id", sessionID, "deleted", n)
}
