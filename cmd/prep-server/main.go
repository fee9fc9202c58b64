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

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"interview-prep/internal/config"
	"interview-prep/internal/content"
	"interview-prep/internal/httpapi"
	"interview-prep/internal/logger"
	"interview-prep/internal/progress"
	"interview-prep/internal/progress/postgres"
	"interview-prep/internal/progress/sqlite"
	"interview-prep/internal/quiz"
	"interview-prep/internal/search"
	"interview-prep/internal/visitor"
	"interview-prep/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Storage.Driver, err)
	}
	defer store.Close()

	handler, err := newHandler(cfg, store, log)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("prep-server listening",
			zap.String("addr", cfg.HTTP.Addr),
			zap.String("env", cfg.Env),
			zap.String("storage", cfg.Storage.Driver),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", zap.Duration("timeout", cfg.HTTP.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (progress.Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		return progress.NewMemoryStore(), nil
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Storage.PostgresURL, postgres.PoolConfig{
			MaxConns:        int32(cfg.Storage.MaxConnections),
			MaxConnLifetime: cfg.Storage.MaxConnLifetime,
		})
		if err != nil {
			return nil, err
		}
		store, err := postgres.NewStore(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		return store, nil
	default:
		return sqlite.NewSQLiteStore(cfg.Storage.SQLitePath)
	}
}

func loadCatalog(dir string) (*content.Catalog, error) {
	if dir == "" {
		return content.Default()
	}
	return content.Load(os.DirFS(dir))
}

// newHandler mounts the JSON API and the site on one router. The visitor
// middleware runs before the request logger so log lines carry the visitor id.
func newHandler(cfg *config.Config, store progress.Store, log *zap.Logger) (http.Handler, error) {
	catalog, err := loadCatalog(cfg.Content.Dir)
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}

	progressService := progress.NewService(store)
	quizzes := quiz.NewService(catalog, progressService)
	index := search.NewIndex(catalog.SearchItems())

	issuer, err := visitor.NewIssuer(visitor.Config{
		Secret:     cfg.Visitor.Secret,
		CookieName: cfg.Visitor.CookieName,
		MaxAge:     cfg.Visitor.MaxAge,
		Secure:     cfg.IsProduction(),
	})
	if err != nil {
		return nil, err
	}

	site, err := web.NewSite(catalog, quizzes, progressService, index, log)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	root := mux.NewRouter()
	httpapi.Register(root, httpapi.NewAPI(catalog, quizzes, progressService, index, log))
	site.Register(root)

	stats := catalog.Stats()
	log.Info("content loaded",
		zap.Int("sections", stats.Sections),
		zap.Int("topics", stats.Topics),
		zap.Int("questions", stats.Questions),
		zap.Int("search_items", index.Len()),
	)

	// Wrapped outside the router so 404s are logged and see the visitor.
	logged := httpapi.RequestLogger(log, cfg.HTTP.MaxLogBytes)(root)
	return issuer.Middleware(log)(logged), nil
}
