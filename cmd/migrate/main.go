package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/logging"
	"storefront/internal/migrate"
)

func main() {
	down := flag.Bool("down", false, "roll back the most recent migration instead of applying")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat).With("service", "migrate")

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DatabaseURL, nil)
	if err != nil {
		logger.Error("connect db", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if *down {
		err = migrate.Rollback(ctx, pool)
	} else {
		err = migrate.Apply(ctx, pool)
	}
	if err != nil {
		logger.Error("run migrations", "down", *down, "error", err)
		pool.Close()
		os.Exit(1)
	}

	version, dirty, err := migrate.Version(ctx, pool)
	if err != nil {
		logger.Warn("read schema version", "error", err)
		return
	}
	logger.Info("migrations complete", "down", *down, "version", version, "dirty", dirty)
}
