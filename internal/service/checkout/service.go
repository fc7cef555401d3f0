// Package checkout turns a session cart into an order: a WhatsApp hand-off
// for M-Pesa and card, or a hosted payment that is captured into the
// payments table.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/email"
	"storefront/internal/logging"
	"storefront/internal/pricing"
	"storefront/internal/service/cart"
	"storefront/internal/stripe"
)

const (
	MethodPayPal = "paypal"
	MethodCard   = "card"
	MethodMpesa  = "mpesa"
)

type cartStore interface {
	Fetch(ctx context.Context, sessionID string) (cart.Cart, error)
	Settle(ctx context.Context, sessionID string, fn func(cart.Cart) (map[string]int, error)) error
}

type paymentRepo interface {
	Insert(ctx context.Context, p domain.Payment) (bool, error)
	GetByExternalOrderID(ctx context.Context, externalOrderID string) (*domain.Payment, error)
}

// Gateway is the hosted payment widget backend.
type Gateway interface {
	CreateSession(ctx context.Context, req stripe.SessionRequest) (*stripe.Session, error)
	Retrieve(ctx context.Context, id string) (*stripe.Session, error)
}

type Config struct {
	StoreName      string
	WhatsAppNumber string
}

type Service struct {
	carts    cartStore
	payments paymentRepo
	gateway  Gateway
	mailer   email.Provider
	cfg      Config
	logger   *slog.Logger
}

// New builds the checkout service. A nil gateway disables hosted payments and
// a nil mailer disables receipts.
func New(carts cartStore, payments paymentRepo, gateway Gateway, mailer email.Provider, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	if mailer == nil {
		mailer = email.NewNoopProvider(logger)
	}
	return &Service{
		carts:    carts,
		payments: payments,
		gateway:  gateway,
		mailer:   mailer,
		cfg:      cfg,
		logger:   logger,
	}
}

// PaymentsEnabled reports whether a hosted payment gateway is configured.
func (s *Service) PaymentsEnabled() bool {
	return s.gateway != nil
}

type HostedPayment struct {
	OrderID string `json:"orderId"`
	URL     string `json:"url"`
}

// StartHostedPayment opens a gateway session priced at the discounted line amounts.
func (s *Service) StartHostedPayment(ctx context.Context, sessionID string) (HostedPayment, error) {
	if s.gateway == nil {
		return HostedPayment{}, domain.ErrPaymentsDisabled
	}
	c, err := s.nonEmptyCart(ctx, sessionID)
	if err != nil {
		return HostedPayment{}, err
	}
	if len(c.Items) > stripe.MaxLines {
		return HostedPayment{}, fmt.Errorf("hosted payment supports at most %d lines: %w", stripe.MaxLines, domain.ErrInvalidInput)
	}

	req := stripe.SessionRequest{SessionID: sessionID}
	for _, l := range c.Items {
		req.Lines = append(req.Lines, stripe.LineItem{
			Name:         lineTitle(l, " - "),
			UnitAmount:   pricing.ToMinorUnits(l.Amounts.Discounted),
			Quantity:     1,
			LineID:       l.ID,
			CartQuantity: l.Quantity,
		})
	}
	sess, err := s.gateway.CreateSession(ctx, req)
	if err != nil {
		return HostedPayment{}, fmt.Errorf("start hosted payment: %w", err)
	}
	logging.FromContext(ctx, s.logger).InfoContext(ctx, "hosted payment started", "session_id", sessionID, "order_id", sess.ID, "amount", c.Totals.DiscountedTotal)
	return HostedPayment{OrderID: sess.ID, URL: sess.URL}, nil
}

// CapturePayment records a paid order and takes the paid lines off the session
// cart. Capturing an order that is already recorded returns the stored payment.
func (s *Service) CapturePayment(ctx context.Context, sessionID, orderID string) (*domain.Payment, error) {
	if s.gateway == nil {
		return nil, domain.ErrPaymentsDisabled
	}
	if strings.TrimSpace(orderID) == "" {
		return nil, fmt.Errorf("order id is required: %w", domain.ErrInvalidInput)
	}
	sess, err := s.gateway.Retrieve(ctx, orderID)
	if err != nil {
		logging.FromContext(ctx, s.logger).WarnContext(ctx, "verify hosted payment", "order_id", orderID, "error", err)
		return nil, domain.ErrPaymentNotCaptured
	}
	return s.capture(ctx, sessionID, sess)
}

// HandleCompletedSession runs the capture path for a gateway notification.
// Sessions that are unpaid or already recorded are acknowledged without work.
func (s *Service) HandleCompletedSession(ctx context.Context, sess *stripe.Session) error {
	logger := logging.FromContext(ctx, s.logger)
	if sess == nil || sess.SessionID == "" {
		logger.WarnContext(ctx, "checkout session without storefront session id")
		return nil
	}
	if !sess.Paid {
		logger.InfoContext(ctx, "ignoring unpaid checkout session", "order_id", sess.ID)
		return nil
	}
	_, err := s.capture(ctx, sess.SessionID, sess)
	if errors.Is(err, domain.ErrEmptyCart) {
		logger.WarnContext(ctx, "paid checkout session for empty cart", "order_id", sess.ID, "session_id", sess.SessionID)
		return nil
	}
	return err
}

func (s *Service) capture(ctx context.Context, sessionID string, sess *stripe.Session) (*domain.Payment, error) {
	logger := logging.FromContext(ctx, s.logger)
	if !sess.Paid || sess.SessionID != sessionID {
		logger.WarnContext(ctx, "hosted payment not capturable", "order_id", sess.ID, "paid", sess.Paid, "session_id", sessionID)
		return nil, domain.ErrPaymentNotCaptured
	}

	existing, err := s.payments.GetByExternalOrderID(ctx, sess.ID)
	if err == nil {
		logger.InfoContext(ctx, "payment already captured", "order_id", sess.ID)
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("lookup payment: %w", err)
	}

	var (
		recorded *domain.Payment
		paid     []cart.Line
	)
	err = s.carts.Settle(ctx, sessionID, func(c cart.Cart) (map[string]int, error) {
		lines, taken := paidLines(c, sess.Lines)
		if len(lines) == 0 {
			return nil, domain.ErrEmptyCart
		}
		p := s.newPayment(ctx, sessionID, sess, lines)
		inserted, err := s.payments.Insert(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("record payment: %w", err)
		}
		if !inserted {
			return nil, nil
		}
		recorded, paid = &p, lines
		return taken, nil
	})
	if recorded == nil {
		if err != nil {
			return nil, err
		}
		logger.InfoContext(ctx, "payment recorded concurrently", "order_id", sess.ID)
		return s.payments.GetByExternalOrderID(ctx, sess.ID)
	}
	if err != nil {
		logger.ErrorContext(ctx, "remove paid lines after capture", "session_id", sessionID, "order_id", sess.ID, "error", err)
	}
	logger.InfoContext(ctx, "payment captured", "order_id", sess.ID, "session_id", sessionID, "total", recorded.TotalAmount, "items", recorded.ItemsCount)

	s.sendReceipt(ctx, *recorded, paid)
	return recorded, nil
}

// paidLines picks the lines a gateway session charged for, at the charged
// quantity. Lines added after the session was opened are not part of the
// order. A session without line metadata charged the whole cart.
func paidLines(c cart.Cart, charged map[string]int) ([]cart.Line, map[string]int) {
	var (
		lines []cart.Line
		taken = make(map[string]int)
	)
	for _, l := range c.Items {
		q := l.Quantity
		if charged != nil {
			var ok bool
			if q, ok = charged[l.ID]; !ok {
				continue
			}
			q = min(q, l.Quantity)
		}
		l.Quantity = q
		l.Amounts = pricing.Line(l.Product.Price, q)
		lines = append(lines, l)
		taken[l.ID] = q
	}
	return lines, taken
}

// newPayment builds the payments row. The total is what the gateway charged;
// the original and discount come from the paid lines.
func (s *Service) newPayment(ctx context.Context, sessionID string, sess *stripe.Session, lines []cart.Line) domain.Payment {
	inputs := make([]pricing.LineInput, 0, len(lines))
	for _, l := range lines {
		inputs = append(inputs, pricing.LineInput{Price: l.Product.Price, Quantity: l.Quantity})
	}
	totals := pricing.Sum(inputs)

	total := totals.DiscountedTotal
	if sess.AmountTotal != 0 {
		if want := pricing.ToMinorUnits(total); sess.AmountTotal != want {
			logging.FromContext(ctx, s.logger).WarnContext(ctx, "captured amount differs from paid lines", "order_id", sess.ID, "captured", sess.AmountTotal, "lines", want)
		}
		total = pricing.FromMinorUnits(sess.AmountTotal)
	}
	return domain.Payment{
		ExternalOrderID: sess.ID,
		CustomerName:    sess.CustomerName,
		CustomerEmail:   sess.CustomerEmail,
		TotalAmount:     total,
		OriginalAmount:  totals.TotalAmount,
		DiscountAmount:  max(totals.TotalAmount-total, 0),
		ItemsCount:      len(lines),
		SessionID:       sessionID,
		Status:          domain.PaymentStatusCompleted,
		PaymentMethod:   MethodPayPal,
	}
}

func (s *Service) sendReceipt(ctx context.Context, p domain.Payment, lines []cart.Line) {
	logger := logging.FromContext(ctx, s.logger)
	if p.CustomerEmail == "" {
		logger.InfoContext(ctx, "no receipt address", "order_id", p.ExternalOrderID)
		return
	}
	info := &email.ReceiptInfo{
		StoreName:     s.cfg.StoreName,
		OrderID:       p.ExternalOrderID,
		CustomerName:  p.CustomerName,
		CustomerEmail: p.CustomerEmail,
		Original:      pricing.Format(p.OriginalAmount),
		Discount:      pricing.Format(p.DiscountAmount),
		Total:         pricing.Format(p.TotalAmount),
	}
	for _, l := range lines {
		info.Items = append(info.Items, email.ReceiptItem{
			Name:     l.Product.Name,
			Quantity: l.Quantity,
			Options:  lineOptions(l, ", "),
			Amount:   pricing.Format(l.Amounts.Discounted),
		})
	}
	msg, err := email.RenderReceipt(info)
	if err != nil {
		logger.ErrorContext(ctx, "render receipt", "order_id", p.ExternalOrderID, "error", err)
		return
	}
	if err := s.mailer.SendEmail(ctx, msg); err != nil {
		logger.ErrorContext(ctx, "send receipt", "order_id", p.ExternalOrderID, "error", err)
		return
	}
	logger.InfoContext(ctx, "receipt sent", "order_id", p.ExternalOrderID)
}

func (s *Service) nonEmptyCart(ctx context.Context, sessionID string) (cart.Cart, error) {
	c, err := s.carts.Fetch(ctx, sessionID)
	if err != nil {
		return cart.Cart{}, fmt.Errorf("load cart: %w", err)
	}
	if len(c.Items) == 0 {
		return cart.Cart{}, domain.ErrEmptyCart
	}
	return c, nil
}

func lineOptions(l cart.Line, sep string) string {
	var parts []string
	if l.Size != "" {
		parts = append(parts, "Size: "+l.Size)
	}
	if l.Color != "" {
		parts = append(parts, "Color: "+l.Color)
	}
	return strings.Join(parts, sep)
}

func lineTitle(l cart.Line, sep string) string {
	title := fmt.Sprintf("%s (Qty: %d)", l.Product.Name, l.Quantity)
	if opts := lineOptions(l, sep); opts != "" {
		title += sep + opts
	}
	return title
}
