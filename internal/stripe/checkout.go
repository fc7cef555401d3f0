package stripe

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	stripeapi "github.com/stripe/stripe-go/v84"
)

// MetadataSessionID carries the storefront session through Stripe so a
// completed checkout can be matched back to its cart.
const MetadataSessionID = "session_id"

// metadataLinePrefix keys one paid cart line as "<line id>:<quantity>".
const metadataLinePrefix = "line_"

// MaxLines is the most cart lines one session can carry. Stripe allows 50
// metadata keys and one is taken by the session id.
const MaxLines = 49

type LineItem struct {
	Name string
	// UnitAmount is in minor units.
	UnitAmount int64
	Quantity   int64
	// LineID and CartQuantity identify the cart line being charged.
	LineID       string
	CartQuantity int
}

type SessionRequest struct {
	SessionID string
	Lines     []LineItem
}

// Session is the subset of a Stripe checkout session the storefront reads.
type Session struct {
	ID            string
	URL           string
	Paid          bool
	SessionID     string
	CustomerName  string
	CustomerEmail string
	AmountTotal   int64
	// Lines maps each charged cart line id to the quantity charged.
	Lines map[string]int
}

type GatewayConfig struct {
	SecretKey  string
	Currency   string
	SuccessURL string
	CancelURL  string
}

// Gateway creates and verifies Stripe Checkout sessions.
type Gateway struct {
	client *stripeapi.Client
	cfg    GatewayConfig
}

func NewGateway(cfg GatewayConfig) *Gateway {
	cfg.Currency = strings.ToLower(cfg.Currency)
	return &Gateway{
		client: stripeapi.NewClient(cfg.SecretKey),
		cfg:    cfg,
	}
}

// CreateSession opens a hosted payment page for the given lines.
func (g *Gateway) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("at least one line item is required")
	}
	if len(req.Lines) > MaxLines {
		return nil, fmt.Errorf("at most %d line items are supported, got %d", MaxLines, len(req.Lines))
	}

	params := &stripeapi.CheckoutSessionCreateParams{
		Mode:              stripeapi.String(string(stripeapi.CheckoutSessionModePayment)),
		SuccessURL:        stripeapi.String(g.cfg.SuccessURL),
		CancelURL:         stripeapi.String(g.cfg.CancelURL),
		ClientReferenceID: stripeapi.String(req.SessionID),
		Metadata: map[string]string{
			MetadataSessionID: req.SessionID,
		},
	}
	for i, l := range req.Lines {
		if l.LineID != "" {
			params.Metadata[metadataLinePrefix+strconv.Itoa(i)] = l.LineID + ":" + strconv.Itoa(l.CartQuantity)
		}
		params.LineItems = append(params.LineItems, &stripeapi.CheckoutSessionCreateLineItemParams{
			PriceData: &stripeapi.CheckoutSessionCreateLineItemPriceDataParams{
				Currency: stripeapi.String(g.cfg.Currency),
				ProductData: &stripeapi.CheckoutSessionCreateLineItemPriceDataProductDataParams{
					Name: stripeapi.String(l.Name),
				},
				UnitAmount: stripeapi.Int64(l.UnitAmount),
			},
			Quantity: stripeapi.Int64(l.Quantity),
		})
	}

	cs, err := g.client.V1CheckoutSessions.Create(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return fromCheckoutSession(cs), nil
}

// Retrieve fetches a checkout session by id.
func (g *Gateway) Retrieve(ctx context.Context, id string) (*Session, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("checkout session id is required")
	}
	cs, err := g.client.V1CheckoutSessions.Retrieve(ctx, id, &stripeapi.CheckoutSessionRetrieveParams{})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve checkout session: %w", err)
	}
	return fromCheckoutSession(cs), nil
}

func fromCheckoutSession(cs *stripeapi.CheckoutSession) *Session {
	s := &Session{
		ID:          cs.ID,
		URL:         cs.URL,
		Paid:        cs.PaymentStatus == stripeapi.CheckoutSessionPaymentStatusPaid,
		SessionID:   cs.Metadata[MetadataSessionID],
		AmountTotal: cs.AmountTotal,
		Lines:       linesFromMetadata(cs.Metadata),
	}
	if s.SessionID == "" {
		s.SessionID = cs.ClientReferenceID
	}
	if cs.CustomerDetails != nil {
		s.CustomerName = strings.TrimSpace(cs.CustomerDetails.Name)
		s.CustomerEmail = strings.TrimSpace(cs.CustomerDetails.Email)
	}
	if s.CustomerEmail == "" {
		s.CustomerEmail = strings.TrimSpace(cs.CustomerEmail)
	}
	return s
}

func linesFromMetadata(md map[string]string) map[string]int {
	var lines map[string]int
	for k, v := range md {
		if !strings.HasPrefix(k, metadataLinePrefix) {
			continue
		}
		i := strings.LastIndexByte(v, ':')
		if i <= 0 {
			continue
		}
		qty, err := strconv.Atoi(v[i+1:])
		if err != nil || qty <= 0 {
			continue
		}
		if lines == nil {
			lines = make(map[string]int)
		}
		lines[v[:i]] += qty
	}
	return lines
}
