package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/email"
	"storefront/internal/httpserver"
	"storefront/internal/logging"
	cartrepo "storefront/internal/repository/cart"
	categoryrepo "storefront/internal/repository/category"
	paymentrepo "storefront/internal/repository/payment"
	productrepo "storefront/internal/repository/product"
	wishlistrepo "storefront/internal/repository/wishlist"
	cartsvc "storefront/internal/service/cart"
	"storefront/internal/service/catalog"
	"storefront/internal/service/checkout"
	"storefront/internal/service/lock"
	"storefront/internal/service/session"
	wishlistsvc "storefront/internal/service/wishlist"
	"storefront/internal/stripe"
)

// redisLockTTL bounds how long a crashed holder can keep a session locked.
const redisLockTTL = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat).With("service", "api")
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("api exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DatabaseURL, logger.With("component", "db"))
	if err != nil {
		return err
	}
	defer dbpool.Close()

	var redisClient *redis.Client
	if cfg.CacheProvider == "redis" || cfg.LockProvider == "redis" {
		redisClient, err = cache.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisClient.Close()
	}

	var kv cache.Provider
	if cfg.CacheProvider == "redis" {
		kv = cache.NewRedisProviderWithClient(redisClient)
	} else {
		mem, err := cache.NewMemoryProvider()
		if err != nil {
			return err
		}
		kv = mem
	}

	var locker lock.Locker = lock.NewMemory()
	if cfg.LockProvider == "redis" {
		locker = lock.NewRedis(redisClient, redisLockTTL)
	}
	logger.Info("providers configured", "cache", cfg.CacheProvider, "lock", cfg.LockProvider)

	productRepo := productrepo.NewPostgres(dbpool, logger.With("component", "product_repo"))
	categoryRepo := categoryrepo.NewPostgres(dbpool)
	catalogService := catalog.New(productRepo, categoryRepo, logger.With("component", "catalog"))

	cartService, err := cartsvc.New(cartrepo.NewPostgres(dbpool), catalogService, locker, cartsvc.Config{
		ReconcileOrphans: cfg.ReconcileOrphans,
		MutationTimeout:  cfg.MutationTimeout,
	}, logger.With("component", "cart"))
	if err != nil {
		return err
	}
	wishlistService, err := wishlistsvc.New(wishlistrepo.NewPostgres(dbpool), catalogService, locker, wishlistsvc.Config{
		ReconcileOrphans: cfg.ReconcileOrphans,
		MutationTimeout:  cfg.MutationTimeout,
	}, logger.With("component", "wishlist"))
	if err != nil {
		return err
	}

	var gateway checkout.Gateway
	if cfg.PaymentsEnabled() {
		gateway = stripe.NewGateway(stripe.GatewayConfig{
			SecretKey:  cfg.StripeSecretKey,
			Currency:   cfg.Currency,
			SuccessURL: cfg.CheckoutSuccessURL,
			CancelURL:  cfg.CheckoutCancelURL,
		})
	} else {
		logger.Warn("hosted payments disabled: STRIPE_SECRET_KEY not set")
	}
	mailer := email.NewProvider(email.Config{APIKey: cfg.ResendAPIKey, From: cfg.ReceiptFrom}, logger.With("component", "email"))
	checkoutService := checkout.New(cartService, paymentrepo.NewPostgres(dbpool), gateway, mailer, checkout.Config{
		StoreName:      cfg.StoreName,
		WhatsAppNumber: cfg.WhatsAppNumber,
	}, logger.With("component", "checkout"))

	srv, err := httpserver.New(cfg.HTTPAddr, logger.With("component", "http"), dbpool, httpserver.Deps{
		Catalog:  catalogService,
		Cart:     cartService,
		Wishlist: wishlistService,
		Session:  session.New(kv),
		Checkout: checkoutService,
		Webhooks: kv,
		SessionCookie: httpserver.CookieConfig{
			Name:   cfg.SessionCookieName,
			Secure: cfg.SessionCookieSecure,
		},
		AllowedOrigins:      cfg.AllowedOrigins,
		StripeWebhookSecret: cfg.StripeWebhookSecret,
	})
	if err != nil {
		return err
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-stopCh:
		logger.Info("shutting down", "signal", sig.String())
	case runErr = <-serverErr:
		logger.Error("server error", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	} else {
		logger.Info("server stopped")
	}
	if cfg.CacheProvider != "redis" {
		if err := kv.Close(); err != nil {
			logger.Warn("close cache", "error", err)
		}
	}
	return runErr
}
