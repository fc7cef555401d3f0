package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type wishlistItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

func (h *handlers) getWishlist(c *gin.Context) {
	c.JSON(http.StatusOK, toWishlistView(h.deps.Wishlist.Load(c.Request.Context(), sessionID(c))))
}

func (h *handlers) addWishlistItem(c *gin.Context) {
	var req wishlistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "productId is required")
		return
	}
	ctx := c.Request.Context()
	p, err := h.deps.Catalog.Get(ctx, req.ProductID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	w, err := h.deps.Wishlist.AddToWishlist(ctx, sessionID(c), *p)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWishlistView(w))
}

func (h *handlers) toggleWishlist(c *gin.Context) {
	var req wishlistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "productId is required")
		return
	}
	ctx := c.Request.Context()
	p, err := h.deps.Catalog.Get(ctx, req.ProductID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	in, w, err := h.deps.Wishlist.ToggleWishlist(ctx, sessionID(c), *p)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"inWishlist": in,
		"items":      toProductViews(w.Items),
	})
}

func (h *handlers) wishlistContains(c *gin.Context) {
	in := h.deps.Wishlist.IsInWishlist(c.Request.Context(), sessionID(c), c.Param("productId"))
	c.JSON(http.StatusOK, gin.H{"inWishlist": in})
}

func (h *handlers) removeWishlistItem(c *gin.Context) {
	w, err := h.deps.Wishlist.RemoveFromWishlist(c.Request.Context(), sessionID(c), c.Param("productId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWishlistView(w))
}
