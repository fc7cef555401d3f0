package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/cache"
	"storefront/internal/logging"
	"storefront/internal/stripe"
)

const (
	webhookIdempotencyTTL = 24 * time.Hour
	maxWebhookBodyBytes   = 1 << 20
)

type whatsAppCheckoutRequest struct {
	PaymentMethod string `json:"paymentMethod" binding:"required"`
}

type captureRequest struct {
	OrderID string `json:"orderId" binding:"required"`
}

func (h *handlers) floatingLink(c *gin.Context) {
	c.JSON(http.StatusOK, h.deps.Checkout.FloatingLink())
}

func (h *handlers) whatsAppCheckout(c *gin.Context) {
	var req whatsAppCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "paymentMethod is required")
		return
	}
	handoff, err := h.deps.Checkout.WhatsAppOrder(c.Request.Context(), sessionID(c), req.PaymentMethod)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handoff)
}

func (h *handlers) startHostedPayment(c *gin.Context) {
	hp, err := h.deps.Checkout.StartHostedPayment(c.Request.Context(), sessionID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, hp)
}

func (h *handlers) captureHostedPayment(c *gin.Context) {
	var req captureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "orderId is required")
		return
	}
	payment, err := h.deps.Checkout.CapturePayment(c.Request.Context(), sessionID(c), req.OrderID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

func (h *handlers) stripeWebhook(c *gin.Context) {
	ctx := c.Request.Context()
	logger := logging.FromContext(ctx, h.logger)

	if h.deps.StripeWebhookSecret == "" || !h.deps.Checkout.PaymentsEnabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "payments disabled"})
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes)

	event, err := stripe.ReadWebhookEvent(c.Request, h.deps.StripeWebhookSecret)
	if err != nil {
		logger.Error("failed to read Stripe webhook payload", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook"})
		return
	}
	if event.ID == "" {
		logger.Error("missing Stripe event ID")
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing event id"})
		return
	}

	cacheKey := cache.WebhookKey("stripe", event.ID)
	if h.deps.Webhooks != nil {
		if _, err := h.deps.Webhooks.Get(ctx, cacheKey); err == nil {
			logger.Info("webhook already processed", "event_id", event.ID)
			c.Status(http.StatusOK)
			return
		}
	}

	if string(event.Type) == stripe.EventCheckoutSessionCompleted {
		sess, err := stripe.SessionFromEvent(event)
		if err != nil {
			logger.Error("invalid checkout session payload", "event_id", event.ID, "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event object"})
			return
		}
		if err := h.deps.Checkout.HandleCompletedSession(ctx, sess); err != nil {
			logger.Error("failed to process Stripe webhook", "error", err, "type", event.Type)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "processing failed"})
			return
		}
	} else {
		logger.Debug("ignoring Stripe event", "event_id", event.ID, "type", event.Type)
	}

	if h.deps.Webhooks != nil {
		if err := h.deps.Webhooks.Set(ctx, cacheKey, "processed", webhookIdempotencyTTL); err != nil {
			logger.Error("failed to mark webhook as processed in cache", "error", err)
		}
	}
	c.Status(http.StatusOK)
}
