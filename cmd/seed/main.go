package main

import (
	"context"
	"log/slog"
	"os"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/logging"
	categoryrepo "storefront/internal/repository/category"
	productrepo "storefront/internal/repository/product"
	"storefront/internal/seed"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat).With("service", "seed")

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DatabaseURL, nil)
	if err != nil {
		logger.Error("connect db", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := seed.Apply(ctx, categoryrepo.NewPostgres(pool), productrepo.NewPostgres(pool, logger)); err != nil {
		logger.Error("seed apply", "error", err)
		pool.Close()
		os.Exit(1)
	}

	logger.Info("seed applied", "categories", len(seed.Categories), "products", len(seed.Products))
}
