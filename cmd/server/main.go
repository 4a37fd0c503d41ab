// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"support-desk/internal/api"
	"support-desk/internal/common/config"
	"support-desk/internal/common/database"
	"support-desk/internal/common/logger"
	"support-desk/internal/common/observability"
	"support-desk/internal/enrichment"
	"support-desk/internal/forwarder"
	"support-desk/internal/helpscout"
	"support-desk/internal/pipeline"
	"support-desk/internal/storage"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting support-desk...",
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Submission store ---
	var store storage.SubmissionStore
	if cfg.Database.Postgres.Enabled() {
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		store = storage.NewPostgresStore(pg.GetDB(), log)
		zapLog.Info("PostgreSQL connected successfully")
	} else {
		store = storage.NewMemoryStore()
		zapLog.Warn("no postgres host configured, submissions are held in memory")
	}

	// --- Rate limiter (optional) ---
	var rateLimiter *api.RateLimiter
	if cfg.RateLimit.Enabled {
		var rc *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			rc, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return rc.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rc.Close()
		rateLimiter = api.NewRateLimiter(rc.GetClient(), cfg.RateLimit.RequestsPerMinute, log)
		zapLog.Info("Redis connected successfully")
	}

	// --- Geolocation (optional) ---
	var resolver enrichment.Resolver
	if cfg.GeoIP.DatabasePath != "" {
		geo, err := enrichment.NewGeoIPResolver(cfg.GeoIP.DatabasePath)
		if err != nil {
			zapLog.Warn("geoip database unavailable, submissions carry no location metadata", zap.Error(err))
		} else {
			defer geo.Close()
			resolver = geo
		}
	}

	// --- Pipeline ---
	hsClient := helpscout.NewClient(cfg.HelpScout.BaseURL, cfg.HelpScout.AppID, cfg.HelpScout.AppSecret)
	fwd := forwarder.New(hsClient, store, cfg.HelpScout, cfg.Server.BaseURL, log)
	enricher := enrichment.New(resolver, cfg.GeoIP.TestIP, cfg.App.IsDevelopment(), log)
	proc := pipeline.New(enricher, store, fwd.Forward, obs, config.GetDuration(cfg.Forward.Timeout), log)

	// --- HTTP server ---
	handlers := api.NewHandlers(proc, cfg, log)
	router := api.SetupRoutes(handlers, rateLimiter, cfg.App.IsDevelopment())
	server := api.NewServer(cfg, router, log)

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		zapLog.Fatal("http server failed", zap.Error(err))
	case sig := <-stop:
		zapLog.Info("shutdown signal received", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("graceful shutdown failed", zap.Error(err))
	}

	zapLog.Info("support-desk stopped")
}
