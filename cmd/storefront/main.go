// Package main is the entry point for the storefront API. It loads
// configuration, connects MongoDB and Redis, wires the signal bus, and runs
// the HTTP server until interrupted.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/voltmart/storefront/internal/api"
	"github.com/voltmart/storefront/internal/eventbus"
	"github.com/voltmart/storefront/internal/infrastructure/config"
	mongostore "github.com/voltmart/storefront/internal/infrastructure/db/mongo"
	redisstore "github.com/voltmart/storefront/internal/infrastructure/db/redis"
	"github.com/voltmart/storefront/pkg/logger"
)

func main() {
	log := logger.Init(logger.Options{
		Level:  os.Getenv("LOG_LEVEL"),
		Pretty: os.Getenv("ENV") != "production",
	})

	cfg := config.Load(log)
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("starting storefront API")

	ctx := context.Background()

	// --- MongoDB ---
	mongoClient, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

	// --- Redis ---
	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()
	log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")

	// --- Signal bus ---
	// Redis pub/sub so cart and auth change signals reach every running
	// instance, not just the one that handled the mutation.
	bus := eventbus.NewRedis(rdb, log)
	defer bus.Close()

	e := api.NewRouter(cfg, db, rdb, bus)

	// --- Graceful Shutdown ---
	// Listen for interrupt/term signals to drain connections cleanly.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Info().Msg("shutting down server...")

		// Give in-flight requests 10 seconds to complete.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server forced shutdown")
		}
	}()

	if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server stopped unexpectedly")
	}
	log.Info().Msg("server stopped")
}
