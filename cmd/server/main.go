// Package main is the entrypoint for the NutriEye API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kiranshivaraju/nutrieye/internal/ai"
	"github.com/kiranshivaraju/nutrieye/internal/api"
	"github.com/kiranshivaraju/nutrieye/internal/api/handler"
	mw "github.com/kiranshivaraju/nutrieye/internal/api/middleware"
	"github.com/kiranshivaraju/nutrieye/internal/api/response"
	"github.com/kiranshivaraju/nutrieye/internal/archive"
	"github.com/kiranshivaraju/nutrieye/internal/cache"
	"github.com/kiranshivaraju/nutrieye/internal/catalog"
	"github.com/kiranshivaraju/nutrieye/internal/config"
	"github.com/kiranshivaraju/nutrieye/internal/curator"
	"github.com/kiranshivaraju/nutrieye/internal/extraction"
	"github.com/kiranshivaraju/nutrieye/internal/logging"
	"github.com/kiranshivaraju/nutrieye/internal/pipeline"
	"github.com/kiranshivaraju/nutrieye/internal/store"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 30 * time.Second

const (
	statusOK       = "ok"
	statusDegraded = "degraded"
	statusDisabled = "disabled"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config, fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, logCloser := logging.New(cfg.Log)
	defer logCloser.Close()
	slog.SetDefault(logger)
	slog.Info("config loaded", "ai_provider", cfg.AI.Provider, "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Replacement catalog
	cat, err := loadCatalog(cfg.Catalog)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	slog.Info("catalog loaded", "categories", len(cat.Categories()))

	// 3. Inference backend and extraction contract
	oracle, err := ai.NewProvider(cfg.AI)
	if err != nil {
		return fmt.Errorf("create AI provider: %w", err)
	}
	contract, err := extraction.NewContract()
	if err != nil {
		return fmt.Errorf("load extraction contract: %w", err)
	}
	extractor := ai.NewExtractor(oracle, contract, cfg.AI.InferenceTimeout)
	slog.Info("AI provider initialized", "provider", extractor.ProviderName())

	var opts []pipeline.Option
	deps := api.Dependencies{
		MetricsHandler: promhttp.Handler(),
	}

	// 4. Optional analysis history
	var history store.Store
	if cfg.HistoryEnabled() {
		pool, err := store.Connect(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer pool.Close()

		if err := store.RunMigrations(cfg.Database.URL); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		slog.Info("database connected, migrations applied")

		pgStore := store.NewPostgresStore(pool)
		history = pgStore
		opts = append(opts, pipeline.WithRecorder(pgStore))
		deps.ListAnalyses = handler.NewListAnalysesHandler(pgStore)
		deps.GetAnalysis = handler.NewGetAnalysisHandler(pgStore)
	} else {
		slog.Info("analysis history disabled")
	}

	// 5. Optional rate limiting
	var limiter cache.Cache
	if cfg.RateLimitEnabled() {
		redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("create redis cache: %w", err)
		}
		defer redisCache.Close()

		if err := redisCache.Ping(ctx); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		slog.Info("redis connected", "requests_per_minute", cfg.Redis.RateLimitPerMinute)

		limiter = redisCache
		deps.RateLimit = mw.NewRateLimit(redisCache, cfg.Redis.RateLimitPerMinute)
	} else {
		slog.Info("rate limiting disabled")
	}

	// 6. Optional image archive
	if cfg.ArchiveEnabled() {
		archiver, err := archive.NewS3Archiver(ctx, cfg.Archive)
		if err != nil {
			return fmt.Errorf("create archive: %w", err)
		}
		opts = append(opts, pipeline.WithArchiver(archiver))
		slog.Info("label archive enabled", "bucket", cfg.Archive.Bucket)
	}

	// 7. Build router with dependencies
	p := pipeline.New(extractor, curator.New(cat), opts...)

	if len(cfg.Auth.KeyHashes) > 0 {
		deps.Auth = mw.NewAuth(cfg.Auth.KeyHashes)
	} else {
		slog.Warn("API key auth disabled")
	}
	deps.HealthHandler = healthHandler(history, limiter)
	deps.AnalyzeHandler = handler.NewAnalyzeHandler(p, cfg.Server.MaxBodyBytes)
	deps.MCPHandler = handler.NewMCPToolHandler(p)

	router := api.NewRouter(deps)

	// 8. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	// WriteTimeout covers every inference attempt plus backoff.
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 3*cfg.AI.InferenceTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

func loadCatalog(cfg config.CatalogConfig) (*catalog.Catalog, error) {
	if cfg.Path == "" {
		return catalog.Load()
	}
	return catalog.LoadFile(cfg.Path)
}

// pinger is satisfied by both store.Store and cache.Cache.
type pinger interface {
	Ping(ctx context.Context) error
}

// healthHandler checks database and cache connectivity. A nil dependency is
// reported as disabled and never degrades the service.
func healthHandler(s store.Store, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"database": check(r.Context(), s),
			"cache":    check(r.Context(), c),
		}

		degraded := checks["database"] == statusDegraded || checks["cache"] == statusDegraded
		if degraded {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":   statusOK,
			"services": checks,
		})
	}
}

func check(ctx context.Context, p pinger) string {
	if p == nil {
		return statusDisabled
	}
	if err := p.Ping(ctx); err != nil {
		return statusDegraded
	}
	return statusOK
}
