// cmd/historian/main.go pops hand-history records from the Redis queue and
// persists them to Postgres.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jason-s-yu/holdem/internal/cache"
	"github.com/jason-s-yu/holdem/internal/config"
	"github.com/jason-s-yu/holdem/internal/database"
	"github.com/jason-s-yu/holdem/internal/historian"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.LoadHistorian()
	if err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}
	logger := config.NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.Connect(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	logger.Infof("connected to database at %s:%s/%s", cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.Database)

	store := database.NewStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatalf("schema: %v", err)
	}

	rdb, err := cache.Connect(ctx, cfg.Redis)
	if err != nil {
		logger.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	svc := historian.New(rdb, store, historian.Options{
		Queue:             cfg.Redis.Queue,
		BatchSize:         cfg.BatchSize,
		FlushInterval:     cfg.FlushInterval,
		PopTimeout:        cfg.PopTimeout,
		InactivityTimeout: cfg.InactivityTimeout,
	}, logger)

	if err := svc.Run(ctx); err != nil {
		logger.Errorf("historian: %v", err)
	}
	logger.Info("historian shutdown complete")
}
