package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/service/catalog"
)

func (h *handlers) listCategories(c *gin.Context) {
	categories, err := h.deps.Catalog.Categories(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": categories})
}

func (h *handlers) listProducts(c *gin.Context) {
	q := catalog.Query{
		Category:    strings.TrimSpace(c.Query("category")),
		Subcategory: strings.TrimSpace(c.Query("subcategory")),
		Search:      strings.TrimSpace(c.Query("search")),
		Sort:        strings.TrimSpace(c.Query("sort")),
	}
	var err error
	if q.MinPrice, err = priceParam(c, "minPrice"); err != nil {
		badRequest(c, "minPrice must be a non-negative integer")
		return
	}
	if q.MaxPrice, err = priceParam(c, "maxPrice"); err != nil {
		badRequest(c, "maxPrice must be a non-negative integer")
		return
	}

	products, err := h.deps.Catalog.List(c.Request.Context(), q)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   len(products),
		"results": toProductViews(products),
	})
}

func (h *handlers) getProduct(c *gin.Context) {
	p, err := h.deps.Catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductView(*p))
}

func (h *handlers) productEnquiry(c *gin.Context) {
	p, err := h.deps.Catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.deps.Checkout.ProductEnquiry(*p, strings.TrimSpace(c.Query("size")), strings.TrimSpace(c.Query("color"))))
}

func priceParam(c *gin.Context, name string) (*int64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return nil, strconv.ErrSyntax
	}
	return &v, nil
}
