// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/taibuivan/todoapi/internal/api"
	"github.com/taibuivan/todoapi/internal/platform/constants"
	"github.com/taibuivan/todoapi/internal/platform/middleware"
	redisstore "github.com/taibuivan/todoapi/internal/platform/redis"
	"github.com/taibuivan/todoapi/internal/platform/sec"
	"github.com/taibuivan/todoapi/internal/storage"
	"github.com/taibuivan/todoapi/internal/todos"
	"github.com/taibuivan/todoapi/internal/users"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

// runServe performs the startup sequence and blocks until shutdown.
//
// # Startup Sequence
//
//  1. Initialize structured logger and load configuration.
//  2. Open the store selected by STORE_DRIVER (migrations run here for postgres).
//  3. Connect to Redis when REDIS_URL is set (login throttling).
//  4. Build the credential hasher and token codec.
//  5. Wire services, handlers and health checks.
//  6. Start HTTP server with graceful shutdown.
func runServe() error {
	// ── 1. Logger & Configuration ─────────────────────────────────────────
	cfg, log := loadConfig()

	log.Info("service_initializing",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("store_driver", cfg.StoreDriver),
	)

	// Bound every dependency connection so misconfiguration is caught quickly
	// rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), constants.StartupTimeout)
	defer startupCancel()

	// ── 2. Credential Hasher ──────────────────────────────────────────────
	hasher := sec.NewHasher(sec.DefaultHashCost)

	// ── 3. Store ──────────────────────────────────────────────────────────
	store, err := storage.Open(startupCtx, cfg, log, hasher)
	must(log, err, "open store")
	defer store.Close()

	checks := []api.HealthCheck{{Name: store.Driver, Check: store.Ping}}

	// ── 4. Redis (optional) ───────────────────────────────────────────────
	var guard users.LoginGuard = users.NopLoginGuard{}
	if cfg.RedisURL != "" {
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer closeRedis(log, rdb)

		guard = users.NewRedisLoginGuard(rdb, cfg.LoginMaxAttempts, cfg.LoginLockout)
		checks = append(checks, api.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) },
		})
	} else {
		log.Warn("redis_not_configured", slog.String("effect", "login throttling disabled"))
	}

	// ── 5. Token Codec ────────────────────────────────────────────────────
	codec, err := sec.NewTokenCodec(cfg.JWTSecret, cfg.TokenTTL)
	must(log, err, "initialize token codec")

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	userService := users.NewService(store.Users, hasher, codec, guard)
	todoService := todos.NewService(store.Todos)
	liveness, readiness := api.NewHealthHandlers(checks, log)

	// ── 7. HTTP Server ────────────────────────────────────────────────────
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Run(rootCtx)

	server := api.NewServer(cfg, log, limiter, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Sessions:  userService,
		Users:     users.NewHandler(userService),
		Todos:     todos.NewHandler(todoService),
	})

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
		return err
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		return err
	}

	log.Info("server stopped cleanly")
	return nil
}

func closeRedis(log *slog.Logger, client *redis.Client) {
	log.Info("closing redis client")
	if err := client.Close(); err != nil {
		log.Error("redis close error", slog.Any("error", err))
	}
}
