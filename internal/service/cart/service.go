// Package cart owns a session's cart: merge-on-add, reload after every
// mutation, and totals derived from the loaded lines.
package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/logging"
	"storefront/internal/pricing"
	"storefront/internal/service/lock"
	"storefront/internal/service/snapshot"
)

type cartRepo interface {
	ListBySession(ctx context.Context, sessionID string) ([]domain.CartItem, error)
	FindByKey(ctx context.Context, sessionID, productID, size, color string) (*domain.CartItem, error)
	Insert(ctx context.Context, item domain.CartItem) (*domain.CartItem, error)
	AddQuantity(ctx context.Context, sessionID, id string, delta int) error
	SetQuantity(ctx context.Context, sessionID, id string, quantity int) error
	Delete(ctx context.Context, sessionID, id string) error
	DeleteBySession(ctx context.Context, sessionID string) error
	DeleteByIDs(ctx context.Context, sessionID string, ids []string) (int64, error)
}

type productLookup interface {
	ListByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
}

// Line is one cart row joined with its product and priced.
type Line struct {
	domain.CartLine
	Amounts pricing.LineAmounts `json:"amounts"`
}

// Cart is the session view returned by every operation.
type Cart struct {
	Items   []Line         `json:"items"`
	Totals  pricing.Totals `json:"totals"`
	Loading bool           `json:"loading"`
	// Stale means the latest load failed and Items is the last good view.
	Stale bool `json:"stale"`
}

type Config struct {
	ReconcileOrphans bool
	MutationTimeout  time.Duration
	SnapshotSize     int
}

type Service struct {
	repo      cartRepo
	products  productLookup
	locker    lock.Locker
	snapshots *snapshot.Store[Cart]
	cfg       Config
	logger    *slog.Logger
}

func New(repo cartRepo, products productLookup, locker lock.Locker, cfg Config, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	if cfg.MutationTimeout <= 0 {
		cfg.MutationTimeout = 5 * time.Second
	}
	snaps, err := snapshot.New[Cart](cfg.SnapshotSize)
	if err != nil {
		return nil, fmt.Errorf("cart snapshots: %w", err)
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

// Load returns the session cart. Backing-store failures are logged and the
// last good view (or an empty cart) is returned flagged stale.
func (s *Service) Load(ctx context.Context, sessionID string) Cart {
	c, err := s.Fetch(ctx, sessionID)
	if err != nil {
		logging.FromContext(ctx, s.logger).ErrorContext(ctx, "load cart", "session_id", sessionID, "error", err)
		prev, _ := s.snapshots.Get(sessionID)
		prev.Stale = true
		prev.Loading = s.snapshots.Loading(sessionID)
		if prev.Items == nil {
			prev.Items = []Line{}
		}
		return prev
	}
	return c
}

// Fetch loads the cart and reports backing-store errors to the caller.
func (s *Service) Fetch(ctx context.Context, sessionID string) (Cart, error) {
	load := s.snapshots.Begin(sessionID)
	defer load.Done()

	rows, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return Cart{}, fmt.Errorf("list cart rows: %w", err)
	}

	var products map[string]domain.Product
	if len(rows) > 0 {
		ids := make([]string, 0, len(rows))
		for _, r := range rows {
			ids = append(ids, r.ProductID)
		}
		found, err := s.products.ListByIDs(ctx, ids)
		if err != nil {
			return Cart{}, fmt.Errorf("resolve cart products: %w", err)
		}
		products = make(map[string]domain.Product, len(found))
		for _, p := range found {
			products[p.ID] = p
		}
	}

	lines := make([]Line, 0, len(rows))
	var orphans []string
	for _, r := range rows {
		p, ok := products[r.ProductID]
		if !ok {
			orphans = append(orphans, r.ID)
			continue
		}
		lines = append(lines, Line{
			CartLine: domain.CartLine{
				ID:       r.ID,
				Product:  p,
				Quantity: r.Quantity,
				Size:     r.Size,
				Color:    r.Color,
			},
			Amounts: pricing.Line(p.Price, r.Quantity),
		})
	}
	s.reconcile(ctx, sessionID, orphans)

	c := build(lines)
	load.Put(c)
	return c, nil
}

// Snapshot returns the last loaded view without touching the backing store.
func (s *Service) Snapshot(sessionID string) (Cart, bool) {
	c, ok := s.snapshots.Get(sessionID)
	c.Loading = s.snapshots.Loading(sessionID)
	return c, ok
}

// AddToCart merges into the line with the same (product, size, color) key or
// inserts a new one, then reloads. Empty size/color mean absent; other values
// are compared verbatim.
func (s *Service) AddToCart(ctx context.Context, sessionID string, product domain.Product, quantity int, size, color string) (Cart, error) {
	if quantity <= 0 {
		return Cart{}, fmt.Errorf("quantity must be positive: %w", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(product.ID) == "" {
		return Cart{}, fmt.Errorf("product id required: %w", domain.ErrInvalidInput)
	}

	unlock, err := lock.Acquire(ctx, s.locker, sessionID, s.cfg.MutationTimeout)
	if err != nil {
		return Cart{}, err
	}
	defer unlock()

	existing, err := s.repo.FindByKey(ctx, sessionID, product.ID, size, color)
	switch {
	case err == nil:
		if err := s.repo.AddQuantity(ctx, sessionID, existing.ID, quantity); err != nil {
			return Cart{}, fmt.Errorf("increment cart line: %w", err)
		}
	case errors.Is(err, domain.ErrNotFound):
		if _, err := s.repo.Insert(ctx, domain.CartItem{
			SessionID: sessionID,
			ProductID: product.ID,
			Quantity:  quantity,
			Size:      size,
			Color:     color,
		}); err != nil {
			return Cart{}, fmt.Errorf("insert cart line: %w", err)
		}
	default:
		return Cart{}, fmt.Errorf("find cart line: %w", err)
	}

	s.logger.DebugContext(ctx, "added to cart", "session_id", sessionID, "product_id", product.ID, "quantity", quantity, "merged", err == nil)
	return s.Load(ctx, sessionID), nil
}

// RemoveFromCart deletes a line. Removing a line that does not exist is not an error.
func (s *Service) RemoveFromCart(ctx context.Context, sessionID, lineID string) (Cart, error) {
	unlock, err := lock.Acquire(ctx, s.locker, sessionID, s.cfg.MutationTimeout)
	if err != nil {
		return Cart{}, err
	}
	defer unlock()
	return s.removeLocked(ctx, sessionID, lineID)
}

// UpdateQuantity sets a line's quantity; zero or negative removes the line.
func (s *Service) UpdateQuantity(ctx context.Context, sessionID, lineID string, quantity int) (Cart, error) {
	unlock, err := lock.Acquire(ctx, s.locker, sessionID, s.cfg.MutationTimeout)
	if err != nil {
		return Cart{}, err
	}
	defer unlock()

	if quantity <= 0 {
		return s.removeLocked(ctx, sessionID, lineID)
	}
	if err := s.repo.SetQuantity(ctx, sessionID, lineID, quantity); err != nil {
		return Cart{}, fmt.Errorf("update cart line %s: %w", lineID, err)
	}
	s.logger.DebugContext(ctx, "updated cart quantity", "session_id", sessionID, "line_id", lineID, "quantity", quantity)
	return s.Load(ctx, sessionID), nil
}

// ClearCart deletes every line for the session and resets the view to empty
// without reloading.
func (s *Service) ClearCart(ctx context.Context, sessionID string) error {
	unlock, err := lock.Acquire(ctx, s.locker, sessionID, s.cfg.MutationTimeout)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.repo.DeleteBySession(ctx, sessionID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	s.snapshots.Put(sessionID, build(nil))
	s.logger.DebugContext(ctx, "cleared cart", "session_id", sessionID)
	return nil
}

// Settle holds the session lock while fn inspects a freshly loaded cart, so
// no other mutation lands between the read and the write-back. fn returns the
// quantity to take off each line, keyed by line id. Lines with less left than
// that are removed. When fn fails the cart is left untouched.
func (s *Service) Settle(ctx context.Context, sessionID string, fn func(Cart) (map[string]int, error)) error {
	unlock, err := lock.Acquire(ctx, s.locker, sessionID, s.cfg.MutationTimeout)
	if err != nil {
		return err
	}
	defer unlock()

	c, err := s.Fetch(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}
	taken, err := fn(c)
	if err != nil {
		return err
	}
	if len(taken) == 0 {
		return nil
	}

	var errs []error
	for _, l := range c.Items {
		q, ok := taken[l.ID]
		if !ok || q <= 0 {
			continue
		}
		if l.Quantity > q {
			err = s.repo.SetQuantity(ctx, sessionID, l.ID, l.Quantity-q)
		} else {
			err = s.repo.Delete(ctx, sessionID, l.ID)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("settle cart line %s: %w", l.ID, err))
		}
	}
	s.logger.DebugContext(ctx, "settled cart", "session_id", sessionID, "lines", len(taken))
	s.Load(ctx, sessionID)
	return errors.Join(errs...)
}

func (s *Service) removeLocked(ctx context.Context, sessionID, lineID string) (Cart, error) {
	if err := s.repo.Delete(ctx, sessionID, lineID); err != nil {
		return Cart{}, fmt.Errorf("delete cart line %s: %w", lineID, err)
	}
	s.logger.DebugContext(ctx, "removed from cart", "session_id", sessionID, "line_id", lineID)
	return s.Load(ctx, sessionID), nil
}

func (s *Service) reconcile(ctx context.Context, sessionID string, orphans []string) {
	if len(orphans) == 0 || !s.cfg.ReconcileOrphans {
		return
	}
	logger := logging.FromContext(ctx, s.logger)
	n, err := s.repo.DeleteByIDs(ctx, sessionID, orphans)
	if err != nil {
		logger.ErrorContext(ctx, "reconcile orphaned cart rows", "session_id", sessionID, "rows", len(orphans), "error", err)
		return
	}
	logger.InfoContext(ctx, "reconciled orphaned cart rows", "session_id", sessionID, "deleted", n)
}

func build(lines []Line) Cart {
	if lines == nil {
		lines = []Line{}
	}
	inputs := make([]pricing.LineInput, 0, len(lines))
	for _, l := range lines {
		inputs = append(inputs, pricing.LineInput{Price: l.Product.Price, Quantity: l.Quantity})
	}
	return Cart{Items: lines, Totals: pricing.Sum(inputs)}
}
