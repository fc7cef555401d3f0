package httpserver

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront/internal/logging"
)

const (
	sessionHeader        = "X-Session-ID"
	requestIDHeader      = "X-Request-ID"
	defaultSessionCookie = "cart_session_id"
	sessionCtxKey        = "storefront.session_id"

	// Ten years, in seconds.
	sessionMaxAge = 10 * 365 * 24 * 60 * 60
)

// requestLogger injects a request-scoped logger and logs each completed request.
func requestLogger(base *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		logger := base.With(
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"remote_ip", c.ClientIP(),
		)
		if route := c.FullPath(); route != "" {
			logger = logger.With("route", route)
		}
		c.Request = c.Request.WithContext(logging.WithLogger(c.Request.Context(), logger))

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"bytes", c.Writer.Size(),
		}
		if sid := c.GetString(sessionCtxKey); sid != "" {
			attrs = append(attrs, "session_id", sid)
		}
		if c.Request.URL.Path == "/healthz" || c.Request.URL.Path == "/readyz" {
			logger.Debug("health check completed", attrs...)
			return
		}
		logger.Info("request completed", attrs...)
	}
}

// sessionMiddleware resolves the caller's session id from the cookie, then
// the X-Session-ID header, minting a new one when neither is valid. The
// cookie is always re-set so the id stays durable.
func sessionMiddleware(sessions sessionService, cookie CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		fromCookie, _ := c.Cookie(cookie.Name)
		id, issued := sessions.Resolve(fromCookie, c.GetHeader(sessionHeader))

		c.Set(sessionCtxKey, id)
		c.Header(sessionHeader, id)
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cookie.Name, id, sessionMaxAge, "/", "", cookie.Secure, true)

		logger := logging.FromContext(c.Request.Context(), nil).With("session_id", id)
		if issued {
			logger.Debug("issued session id")
		}
		c.Request = c.Request.WithContext(logging.WithLogger(c.Request.Context(), logger))
		c.Next()
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString(sessionCtxKey)
}
