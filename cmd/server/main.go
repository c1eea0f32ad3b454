// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/holdem/internal/cache"
	"github.com/jason-s-yu/holdem/internal/config"
	"github.com/jason-s-yu/holdem/internal/game"
	"github.com/jason-s-yu/holdem/internal/handlers"
	"github.com/jason-s-yu/holdem/internal/telemetry"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}
	logger := config.NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTel)
	if err != nil {
		logger.Warnf("tracing disabled: %v", err)
		shutdownTracing = func(context.Context) error { return nil }
	}

	var rec *cache.Recorder
	if cfg.Redis.Addr != "" {
		rdb, err := cache.Connect(ctx, cfg.Redis)
		if err != nil {
			logger.Warnf("hand history disabled: %v", err)
		} else {
			defer rdb.Close()
			rec = cache.NewRecorder(rdb, cfg.Redis.Queue, logger)
			logger.Infof("recording hand history to %s/%s", cfg.Redis.Addr, cfg.Redis.Queue)
		}
	}

	gs := handlers.NewGameServer(logger, handlers.ServerOptions{
		Game: game.Options{
			MaxSeats:      cfg.MaxSeats,
			StartingChips: cfg.StartingChips,
			DealDelay:     cfg.DealDelay,
		},
		WriteTimeout:   cfg.WriteTimeout,
		PingInterval:   30 * time.Second,
		OutboundBuffer: cfg.OutboundBuffer,
		MsgRate:        rate.Limit(cfg.MsgRate),
		MsgBurst:       cfg.MsgBurst,
	}, rec)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(logger, gs),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Running on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server exited: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
	gs.Close()
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warnf("tracing shutdown: %v", err)
	}
}
