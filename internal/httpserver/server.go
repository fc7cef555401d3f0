package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/cache"
)

// Server owns the storefront HTTP listener.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// New builds a Server with every storefront route.
func New(addr string, logger *slog.Logger, db *pgxpool.Pool, deps Deps) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)
	router, err := buildRouter(logger, db, deps)
	if err != nil {
		return nil, err
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       2 * time.Minute,
		},
		logger: logger,
	}, nil
}

func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type readinessCheck struct {
	name  string
	check func(ctx context.Context) error
}

func dbCheck(db *pgxpool.Pool) readinessCheck {
	return readinessCheck{name: "db", check: func(ctx context.Context) error {
		if db == nil {
			return errors.New("db not configured")
		}
		return db.Ping(ctx)
	}}
}

// cacheCheck treats a miss as healthy; only transport errors fail.
func cacheCheck(kv cache.Provider) readinessCheck {
	return readinessCheck{name: "cache", check: func(ctx context.Context) error {
		_, err := kv.Get(ctx, "readyz")
		if err == nil || errors.Is(err, cache.ErrNotFound) {
			return nil
		}
		return err
	}}
}

func readyHandler(logger *slog.Logger, checks ...readinessCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		var failed []string
		for _, rc := range checks {
			if err := rc.check(ctx); err != nil {
				logger.Warn("readiness check failed", "check", rc.name, "error", err)
				failed = append(failed, rc.name)
			}
		}
		if len(failed) > 0 {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "failed": failed})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
