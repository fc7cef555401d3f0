package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	"storefront/internal/logging"
)

func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmptyCart):
		return http.StatusConflict
	case errors.Is(err, domain.ErrBusy):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrPaymentNotCaptured):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrPaymentsDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError maps domain errors onto status codes. Unexpected errors are
// logged and reported without detail.
func (h *handlers) respondError(c *gin.Context, err error) {
	status := errorStatus(err)
	logger := logging.FromContext(c.Request.Context(), h.logger)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	logger.Debug("request rejected", "status", status, "error", err)
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
