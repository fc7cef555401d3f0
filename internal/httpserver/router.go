package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/cache"
	"storefront/internal/domain"
	"storefront/internal/logging"
	"storefront/internal/service/cart"
	"storefront/internal/service/catalog"
	"storefront/internal/service/checkout"
	"storefront/internal/service/wishlist"
	"storefront/internal/stripe"
)

type catalogService interface {
	List(ctx context.Context, q catalog.Query) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Categories(ctx context.Context) ([]domain.Category, error)
}

type cartService interface {
	Load(ctx context.Context, sessionID string) cart.Cart
	AddToCart(ctx context.Context, sessionID string, product domain.Product, quantity int, size, color string) (cart.Cart, error)
	RemoveFromCart(ctx context.Context, sessionID, lineID string) (cart.Cart, error)
	UpdateQuantity(ctx context.Context, sessionID, lineID string, quantity int) (cart.Cart, error)
	ClearCart(ctx context.Context, sessionID string) error
}

type wishlistService interface {
	Load(ctx context.Context, sessionID string) wishlist.Wishlist
	IsInWishlist(ctx context.Context, sessionID, productID string) bool
	AddToWishlist(ctx context.Context, sessionID string, product domain.Product) (wishlist.Wishlist, error)
	RemoveFromWishlist(ctx context.Context, sessionID, productID string) (wishlist.Wishlist, error)
	ToggleWishlist(ctx context.Context, sessionID string, product domain.Product) (bool, wishlist.Wishlist, error)
}

type sessionService interface {
	Resolve(candidates ...string) (id string, issued bool)
	Flags(ctx context.Context, sessionID string) (map[string]bool, error)
	SetFlag(ctx context.Context, sessionID, name string) error
}

type checkoutService interface {
	PaymentsEnabled() bool
	WhatsAppOrder(ctx context.Context, sessionID, method string) (checkout.Handoff, error)
	ProductEnquiry(p domain.Product, size, color string) checkout.Handoff
	FloatingLink() checkout.Handoff
	StartHostedPayment(ctx context.Context, sessionID string) (checkout.HostedPayment, error)
	CapturePayment(ctx context.Context, sessionID, orderID string) (*domain.Payment, error)
	HandleCompletedSession(ctx context.Context, sess *stripe.Session) error
}

// Deps carries the services the router dispatches to.
type Deps struct {
	Catalog  catalogService
	Cart     cartService
	Wishlist wishlistService
	Session  sessionService
	Checkout checkoutService
	// Webhooks deduplicates gateway event ids.
	Webhooks cache.Provider

	SessionCookie       CookieConfig
	AllowedOrigins      []string
	StripeWebhookSecret string
}

type CookieConfig struct {
	Name   string
	Secure bool
}

// buildRouter wires routes for the API.
func buildRouter(logger *slog.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if deps.Catalog == nil || deps.Cart == nil || deps.Wishlist == nil || deps.Session == nil || deps.Checkout == nil {
		return nil, fmt.Errorf("httpserver: catalog, cart, wishlist, session and checkout services are required")
	}
	if logger == nil {
		logger = logging.Discard()
	}
	if deps.SessionCookie.Name == "" {
		deps.SessionCookie.Name = defaultSessionCookie
	}

	router := gin.New()
	router.Use(requestLogger(logger), gin.Recovery())

	if len(deps.AllowedOrigins) > 0 {
		corsCfg := cors.Config{
			AllowOrigins:     deps.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", sessionHeader, requestIDHeader},
			ExposeHeaders:    []string{sessionHeader, requestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}
		if err := corsCfg.Validate(); err != nil {
			return nil, fmt.Errorf("cors: %w", err)
		}
		router.Use(cors.New(corsCfg))
	}

	router.GET("/healthz", healthHandler)
	checks := []readinessCheck{dbCheck(db)}
	if deps.Webhooks != nil {
		checks = append(checks, cacheCheck(deps.Webhooks))
	}
	router.GET("/readyz", readyHandler(logger, checks...))

	h := &handlers{deps: deps, logger: logger}

	router.POST("/api/webhooks/stripe", h.stripeWebhook)

	api := router.Group("/api", sessionMiddleware(deps.Session, deps.SessionCookie))
	{
		api.GET("/session", h.getSession)
		api.GET("/session/summary", h.sessionSummary)
		api.PUT("/session/flags/:name", h.setFlag)

		api.GET("/categories", h.listCategories)
		api.GET("/products", h.listProducts)
		api.GET("/products/:id", h.getProduct)
		api.GET("/products/:id/whatsapp", h.productEnquiry)

		api.GET("/cart", h.getCart)
		api.POST("/cart/items", h.addCartItem)
		api.PATCH("/cart/items/:id", h.updateCartItem)
		api.DELETE("/cart/items/:id", h.removeCartItem)
		api.DELETE("/cart", h.clearCart)

		api.GET("/wishlist", h.getWishlist)
		api.POST("/wishlist", h.addWishlistItem)
		api.POST("/wishlist/toggle", h.toggleWishlist)
		api.GET("/wishlist/:productId", h.wishlistContains)
		api.DELETE("/wishlist/:productId", h.removeWishlistItem)

		api.GET("/whatsapp", h.floatingLink)
		api.POST("/checkout/whatsapp", h.whatsAppCheckout)
		api.POST("/checkout/hosted", h.startHostedPayment)
		api.POST("/checkout/hosted/capture", h.captureHostedPayment)
	}

	return router, nil
}

type handlers struct {
	deps   Deps
	logger *slog.Logger
}
