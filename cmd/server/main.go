// Command server runs the sweet shop HTTP API.
//
// Startup order:
//  1. Load .env (best effort) and environment configuration
//  2. Configure structured logging (zerolog)
//  3. Open SQLite, migrate schema, optionally seed the catalog
//  4. Configure OpenTelemetry tracing (optional, OTLP/gRPC)
//  5. Build the Gin engine, register routes, and serve with graceful shutdown
//
// @title        Sweet Shop API
// @version      1.0
// @description  Catalog, stock ledger, and purchase history for a sweet shop.
// @BasePath     /api/v1
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/sweetshop/go-sweetshop-backend/internal/config"
	httpapi "github.com/sweetshop/go-sweetshop-backend/internal/http"
	"github.com/sweetshop/go-sweetshop-backend/internal/observability"
	"github.com/sweetshop/go-sweetshop-backend/internal/repo"
	"github.com/sweetshop/go-sweetshop-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	// Local development convenience; production injects real env vars.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	// Logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	lg := log.With().Str("service", cfg.OTEL.ServiceName).Str("version", version).Logger()

	ctx := context.Background()

	// Database
	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		lg.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		lg.Fatal().Err(err).Msg("migrate schema")
	}
	if cfg.OTEL.Enabled {
		if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
			lg.Warn().Err(err).Msg("register gorm tracing plugin")
		}
	}
	if cfg.SeedPath != "" {
		n, err := repo.SeedCatalog(ctx, db, cfg.SeedPath)
		if err != nil {
			lg.Fatal().Err(err).Str("path", cfg.SeedPath).Msg("seed catalog")
		}
		if n > 0 {
			lg.Info().Int("sweets", n).Msg("seeded catalog")
		}
	}

	// Tracing
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		lg.Fatal().Err(err).Msg("setup tracing")
	}

	// HTTP
	gin.SetMode(cfg.GinMode)
	engine := gin.New()
	httpapi.RegisterRoutes(engine, db, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		lg.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal().Err(err).Msg("serve")
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	lg.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error().Err(err).Msg("http shutdown")
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		lg.Error().Err(err).Msg("tracing shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	lg.Info().Msg("bye")
}
