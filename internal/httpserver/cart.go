package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type addCartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	// Quantity defaults to 1 when omitted.
	Quantity *int   `json:"quantity"`
	Size     string `json:"size"`
	Color    string `json:"color"`
}

type updateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (h *handlers) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.deps.Cart.Load(c.Request.Context(), sessionID(c)))
}

func (h *handlers) addCartItem(c *gin.Context) {
	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "productId is required")
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	ctx := c.Request.Context()
	p, err := h.deps.Catalog.Get(ctx, req.ProductID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	cart, err := h.deps.Cart.AddToCart(ctx, sessionID(c), *p, qty, req.Size, req.Color)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *handlers) updateCartItem(c *gin.Context) {
	var req updateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "quantity is required")
		return
	}
	cart, err := h.deps.Cart.UpdateQuantity(c.Request.Context(), sessionID(c), c.Param("id"), *req.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *handlers) removeCartItem(c *gin.Context) {
	cart, err := h.deps.Cart.RemoveFromCart(c.Request.Context(), sessionID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *handlers) clearCart(c *gin.Context) {
	if err := h.deps.Cart.ClearCart(c.Request.Context(), sessionID(c)); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
