// Package stripe wraps Stripe Checkout for the hosted payment widget.
package stripe

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	stripeapi "github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"
)

// EventCheckoutSessionCompleted is the only event type the storefront acts on.
const EventCheckoutSessionCompleted = "checkout.session.completed"

func ReadWebhookEvent(r *http.Request, secret string) (*stripeapi.Event, error) {
	signature := r.Header.Get("Stripe-Signature")
	if signature == "" {
		return nil, fmt.Errorf("missing stripe signature header")
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}

	event, err := webhook.ConstructEvent(payload, signature, secret)
	if err != nil {
		return nil, fmt.Errorf("webhook signature validation failed: %w", err)
	}

	return &event, nil
}

// SessionFromEvent decodes the checkout session carried by a completed event.
func SessionFromEvent(event *stripeapi.Event) (*Session, error) {
	if event == nil || event.Data == nil {
		return nil, fmt.Errorf("event has no data")
	}
	var cs stripeapi.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		return nil, fmt.Errorf("invalid event object: %w", err)
	}
	if cs.ID == "" {
		return nil, fmt.Errorf("missing session ID")
	}
	return fromCheckoutSession(&cs), nil
}
