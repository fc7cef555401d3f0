package checkout

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/logging"
	"storefront/internal/pricing"
)

const divider = "━━━━━━━━━━━━━━━━━━━━━━━━━"

// Handoff is a prefilled WhatsApp conversation. Nothing is awaited after it is built.
type Handoff struct {
	Message string `json:"message"`
	URL     string `json:"url"`
}

// WhatsAppOrder formats the session cart as an order message. The cart is left intact.
func (s *Service) WhatsAppOrder(ctx context.Context, sessionID, method string) (Handoff, error) {
	var methodLabel string
	switch method {
	case MethodMpesa:
		methodLabel = "M-Pesa"
	case MethodCard:
		methodLabel = "Credit Card"
	default:
		return Handoff{}, fmt.Errorf("payment method %q cannot be sent over WhatsApp: %w", method, domain.ErrInvalidInput)
	}
	c, err := s.nonEmptyCart(ctx, sessionID)
	if err != nil {
		return Handoff{}, err
	}

	details := make([]string, 0, len(c.Items))
	for _, l := range c.Items {
		details = append(details, fmt.Sprintf("%s\n  Original: %s | 50%% OFF: %s",
			lineTitle(l, " - "), pricing.Format(l.Amounts.Original), pricing.Format(l.Amounts.Discounted)))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s! I'd like to place an order:\n\n", s.cfg.StoreName)
	b.WriteString(strings.Join(details, "\n\n"))
	b.WriteString("\n\n" + divider + "\n")
	fmt.Fprintf(&b, "Original Total: %s\n", pricing.Format(c.Totals.TotalAmount))
	fmt.Fprintf(&b, "50%% Discount: -%s\n", pricing.Format(c.Totals.Savings))
	fmt.Fprintf(&b, "Final Total: %s\n", pricing.Format(c.Totals.DiscountedTotal))
	fmt.Fprintf(&b, "Payment Method: %s\n", methodLabel)
	b.WriteString(divider + "\n\nPlease confirm availability and delivery details.")

	h := s.handoff(b.String())
	logging.FromContext(ctx, s.logger).InfoContext(ctx, "whatsapp order prepared", "session_id", sessionID, "method", method, "lines", len(c.Items))
	return h, nil
}

// ProductEnquiry asks about a single product, optionally with the chosen variant.
func (s *Service) ProductEnquiry(p domain.Product, size, color string) Handoff {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s! I'm interested in the %s", s.cfg.StoreName, p.Name)
	if size != "" {
		fmt.Fprintf(&b, " (Size: %s)", size)
	}
	if color != "" {
		fmt.Fprintf(&b, " - Color: %s", color)
	}
	if p.Price != 0 {
		fmt.Fprintf(&b, "\n\nPricing:\nOriginal: %s\n50%% OFF: %s\nYou Save: %s",
			pricing.Format(p.Price), pricing.Format(pricing.DiscountedPrice(p.Price)), pricing.Format(pricing.Savings(p.Price)))
	}
	b.WriteString("\n\nPlease share availability and delivery info.")
	return s.handoff(b.String())
}

// FloatingLink is the general enquiry shown on every page.
func (s *Service) FloatingLink() Handoff {
	return s.handoff(fmt.Sprintf("Hi %s! I'd like to browse your products and place an order.", s.cfg.StoreName))
}

func (s *Service) handoff(message string) Handoff {
	return Handoff{
		Message: message,
		URL:     "https://wa.me/" + s.cfg.WhatsAppNumber + "?text=" + escapeText(message),
	}
}

// escapeText percent-encodes spaces as %20 rather than '+'.
func escapeText(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
