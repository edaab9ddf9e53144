// Copyright (c) 2026 Nexus Portal. All rights reserved.
// Author: dev@nexusportal.app

// Command api is the entry point for the Nexus Portal HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Connect to object storage (MinIO).
//  6. Run database migrations (idempotent).
//  7. Wire HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
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

	"github.com/nexusportal/nexus/internal/api"
	"github.com/nexusportal/nexus/internal/platform/config"
	"github.com/nexusportal/nexus/internal/platform/constants"
	"github.com/nexusportal/nexus/internal/platform/migration"
	"github.com/nexusportal/nexus/internal/platform/objectstore"
	pgstore "github.com/nexusportal/nexus/internal/platform/postgres"
	redisstore "github.com/nexusportal/nexus/internal/platform/redis"
	"github.com/nexusportal/nexus/internal/platform/routeguard"
	"github.com/nexusportal/nexus/internal/platform/sec"
	"github.com/nexusportal/nexus/internal/records"
	"github.com/nexusportal/nexus/internal/users/auth"
	"github.com/nexusportal/nexus/internal/users/profile"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[Nexus] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Object Storage ─────────────────────────────────────────────────
	blobStore, err := objectstore.NewMinioStore(
		cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3UseSSL,
	)
	must(log, err, "connect to object storage")

	// ── 6. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 7. Auth Service ───────────────────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	// ── 8. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
		CheckBlobStore: func() error {
			return blobStore.Healthy(context.Background())
		},
	}, log)

	// ── 9. Domain Wiring ──────────────────────────────────────────────────
	broadcaster := auth.NewBroadcaster()
	sessionEvents, unsubscribe := broadcaster.Subscribe()
	defer unsubscribe()

	// Session audit trail: every auth lifecycle event becomes a log line.
	go func() {
		for event := range sessionEvents {
			log.Info("session_event",
				slog.String("type", string(event.Type)),
				slog.String("user_id", event.UserID),
				slog.String("role", string(event.Role)),
			)
		}
	}()

	accountRepository := auth.NewAccountRepository(pool)
	profileSeedRepository := auth.NewProfileRepository(pool)
	sessionRepository := auth.NewSessionRepository(pool)
	verificationTokens := auth.NewVerificationTokenRepository(rdb)
	mailer := auth.NewLogMailer(log)

	authService := auth.NewService(
		accountRepository,
		profileSeedRepository,
		sessionRepository,
		verificationTokens,
		jwtSvc,
		mailer,
		broadcaster,
		cfg.PublicBaseURL,
	)
	authHandler := auth.NewHandler(authService, routeguard.Default())

	// Startup housekeeping: drop sessions that expired while the service was
	// down. Non-fatal; the sweep runs again on the next restart.
	if err := authService.PurgeExpiredSessions(startupCtx); err != nil {
		log.Warn("expired session sweep failed", slog.Any("error", err))
	}

	profileRepository := profile.NewRepository(pool)
	profileService := profile.NewService(profileRepository, log)
	profileHandler := profile.NewHandler(profileService)

	certificateRepository := records.NewRepository(pool)
	certificateService := records.NewService(certificateRepository, blobStore, profileService, log)
	certificateHandler := records.NewHandler(certificateService)

	// ── 10. HTTP Server ───────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
		Profile:   profileHandler,
		Records:   certificateHandler,
	}

	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, jwtSvc, handlers)

	// ── 11. Graceful Shutdown ─────────────────────────────────────────────
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
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
