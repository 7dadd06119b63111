package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KeitoID/GoLangStudyApp/internal/content"
	"github.com/KeitoID/GoLangStudyApp/internal/platform/cache"
	"github.com/KeitoID/GoLangStudyApp/internal/platform/config"
	"github.com/KeitoID/GoLangStudyApp/internal/platform/database"
	"github.com/KeitoID/GoLangStudyApp/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	contentStore, err := content.NewStore(cfg.Content.Dir)
	if err != nil {
		slog.Error("failed to load content", "error", err)
		os.Exit(1)
	}

	progressStore, cleanup, err := buildProgressStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to set up progress store", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	var runner *server.Runner
	if cfg.Sandbox.Enabled {
		runner = server.NewRunner(time.Duration(cfg.Sandbox.TimeoutSeconds) * time.Second)
	}

	handler := server.NewHandler(server.HandlerConfig{
		Content: contentStore,
		Store:   progressStore,
		Runner:  runner,
		Hub:     server.NewHub(),
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "sandbox", cfg.Sandbox.Enabled)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

// buildProgressStore selects postgres when a database URL is set,
// otherwise the in-memory store, and layers the redis read cache on
// top when a cache URL is set.
func buildProgressStore(ctx context.Context, cfg *config.Config) (server.ProgressStore, func(), error) {
	cleanup := func() {}

	var store server.ProgressStore
	if cfg.Database.URL != "" {
		db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return nil, nil, err
		}
		if err := db.InitSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		store = server.NewPostgresProgressStore(db.Pool)
		cleanup = db.Close
		slog.Info("using postgres progress store")
	} else {
		store = server.NewMemoryProgressStore()
		slog.Warn("no database configured, progress is not durable")
	}

	if cfg.Cache.URL != "" {
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second
		store = server.NewCachedProgressStore(store, c, ttl)
		prev := cleanup
		cleanup = func() {
			c.Close()
			prev()
		}
		slog.Info("progress read cache enabled", "ttl", ttl)
	}

	return store, cleanup, nil
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
