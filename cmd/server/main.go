// Package main is the entrypoint for the callcoach API server.
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

	"github.com/kiranshivaraju/callcoach/internal/ai"
	"github.com/kiranshivaraju/callcoach/internal/analysis"
	"github.com/kiranshivaraju/callcoach/internal/api"
	"github.com/kiranshivaraju/callcoach/internal/api/handler"
	mw "github.com/kiranshivaraju/callcoach/internal/api/middleware"
	"github.com/kiranshivaraju/callcoach/internal/cache"
	"github.com/kiranshivaraju/callcoach/internal/calls"
	"github.com/kiranshivaraju/callcoach/internal/coach"
	"github.com/kiranshivaraju/callcoach/internal/config"
	"github.com/kiranshivaraju/callcoach/internal/daterange"
	"github.com/kiranshivaraju/callcoach/internal/framework"
	"github.com/kiranshivaraju/callcoach/internal/recording"
	"github.com/kiranshivaraju/callcoach/internal/store"
	"github.com/kiranshivaraju/callcoach/internal/transcript"
	"github.com/kiranshivaraju/callcoach/pkg/models"
)

const shutdownTimeout = 30 * time.Second

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
	// 1. Load config, failing fast when invalid
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "ai_provider", cfg.AI.Provider, "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsDir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 5. Create AI provider
	aiProvider, err := ai.NewProvider(cfg.AI)
	if err != nil {
		return fmt.Errorf("create AI provider: %w", err)
	}
	slog.Info("AI provider initialized", "provider", aiProvider.Name())

	// 6. Create store and recording client
	pgStore := store.NewPostgresStore(pool)
	recordings := recording.NewCachedClient(recording.NewHTTPClient(recording.Config{
		BaseURL:      cfg.Recording.BaseURL,
		AccessKey:    cfg.Recording.AccessKey,
		AccessSecret: cfg.Recording.AccessSecret,
		Timeout:      cfg.Recording.Timeout,
		PageSize:     cfg.Recording.PageSize,
		MaxPages:     cfg.Recording.MaxPages,
		MaxRetries:   cfg.Recording.MaxRetries,
	}), redisCache, cfg.Recording.CacheTTL)

	// 7. Framework registry, watched when definitions live on disk
	registry := framework.NewRegistry(frameworkLoader(cfg.Frameworks, pgStore))
	if cfg.Frameworks.Dir != "" {
		if err := framework.Watch(ctx, cfg.Frameworks.Dir, registry); err != nil {
			return fmt.Errorf("watch frameworks dir: %w", err)
		}
		slog.Info("watching framework definitions", "dir", cfg.Frameworks.Dir)
	}

	// 8. Build router with dependencies
	router := api.NewRouter(dependencies(cfg, pgStore, redisCache, recordings, registry, aiProvider))

	// 9. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.Analysis.Timeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
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

// frameworkLoader resolves definitions from database overrides first, then
// the optional directory, then the embedded defaults.
func frameworkLoader(cfg config.FrameworksConfig, defs framework.DefinitionStore) framework.Loader {
	chain := framework.ChainLoader{framework.StoreLoader{Store: defs}}
	if cfg.Dir != "" {
		chain = append(chain, framework.DirLoader{Dir: cfg.Dir})
	}
	return append(chain, framework.EmbeddedLoader{})
}

// dependencies wires the services behind every route.
func dependencies(
	cfg *config.Config,
	st store.Store,
	c cache.Cache,
	recordings recording.Client,
	registry *framework.Registry,
	provider models.AIProvider,
) api.Dependencies {
	resolver := calls.NewResolver(recordings, daterange.NewResolver())
	details := transcript.NewService(recordings)
	engine := analysis.NewEngine(provider,
		analysis.WithMaxTokens(cfg.AI.MaxTokens),
		analysis.WithMaxTranscriptChars(cfg.Analysis.MaxTranscriptChars),
		analysis.WithTimeout(cfg.AI.InferenceTimeout),
	)
	svc := coach.NewService(resolver, details, registry, engine,
		coach.WithWorkers(cfg.Analysis.Workers),
		coach.WithTimeout(cfg.Analysis.Timeout),
	)

	return api.Dependencies{
		Auth:      mw.NewAuth(st),
		RateLimit: mw.NewRateLimit(c, cfg.Server.RateLimitPerMin),

		HealthHandler: handler.NewHealthHandler(st, c),

		SearchCalls:    handler.NewSearchCallsHandler(svc),
		SelectCall:     handler.NewSelectCallHandler(svc),
		GetCallDetails: handler.NewCallDetailsHandler(svc),

		AnalyzeFrameworks: handler.NewAnalyzeFrameworksHandler(svc),

		ListFrameworks:   handler.NewListFrameworksHandler(registry),
		GetFramework:     handler.NewGetFrameworkHandler(registry),
		ReloadFrameworks: handler.NewReloadFrameworksHandler(registry),
		PutFramework:     handler.NewPutFrameworkHandler(registry, st),
		DeleteFramework:  handler.NewDeleteFrameworkHandler(registry, st),

		CreateKeyHandler: handler.NewCreateKeyHandler(st),
		ListKeysHandler:  handler.NewListKeysHandler(st),
		RevokeKeyHandler: handler.NewRevokeKeyHandler(st),
	}
}
