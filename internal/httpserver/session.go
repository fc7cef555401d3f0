package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"storefront/internal/service/cart"
	"storefront/internal/service/wishlist"
)

func (h *handlers) getSession(c *gin.Context) {
	id := sessionID(c)
	flags, err := h.deps.Session.Flags(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessionId": id, "flags": flags})
}

func (h *handlers) setFlag(c *gin.Context) {
	id := sessionID(c)
	if err := h.deps.Session.SetFlag(c.Request.Context(), id, c.Param("name")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// sessionSummary loads the cart, wishlist and flags concurrently for the header badges.
func (h *handlers) sessionSummary(c *gin.Context) {
	id := sessionID(c)
	g, ctx := errgroup.WithContext(c.Request.Context())

	var (
		sc    cart.Cart
		sw    wishlist.Wishlist
		flags map[string]bool
	)
	g.Go(func() error {
		sc = h.deps.Cart.Load(ctx, id)
		return nil
	})
	g.Go(func() error {
		sw = h.deps.Wishlist.Load(ctx, id)
		return nil
	})
	g.Go(func() error {
		var err error
		flags, err = h.deps.Session.Flags(ctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessionId":       id,
		"flags":           flags,
		"cartItems":       sc.Totals.TotalItems,
		"cartLines":       len(sc.Items),
		"discountedTotal": sc.Totals.DiscountedTotal,
		"wishlistItems":   len(sw.Items),
		"paymentsEnabled": h.deps.Checkout.PaymentsEnabled(),
	})
}
