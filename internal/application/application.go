package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/eugenenazirov/shelf-planner/internal/api"
	"github.com/eugenenazirov/shelf-planner/internal/cache"
	"github.com/eugenenazirov/shelf-planner/internal/config"
	"github.com/eugenenazirov/shelf-planner/internal/metrics"
	"github.com/eugenenazirov/shelf-planner/internal/shelving"
	"github.com/eugenenazirov/shelf-planner/internal/storage"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	catalog  storage.Catalog
	planner  shelving.Planner
	cache    cache.Cache
	registry *prometheus.Registry
	handler  *api.Handler
	router   http.Handler
	logger   *zap.Logger
	server   *http.Server
	closers  []func() error
}

// New initializes the application with all dependencies from the provided configuration.
// Connections opened here are released by Close.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	app := &App{logger: logger}

	catalog, err := app.buildCatalog(ctx, cfg)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("failed to build catalog: %w", err)
	}
	app.catalog = catalog

	resultCache, err := app.buildCache(ctx, cfg)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("failed to build cache: %w", err)
	}
	app.cache = resultCache

	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	searchMetrics := metrics.New(app.registry)

	planner, err := shelving.New(
		shelving.WithCapacity(cfg.Capacity),
		shelving.WithMaxPerShelf(cfg.MaxPerShelf),
		shelving.WithNodeBudget(cfg.NodeBudget),
		shelving.WithObserver(searchMetrics),
	)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("failed to create planner: %w", err)
	}
	app.planner = planner

	handlerOpts := []api.HandlerOption{
		api.WithMetrics(searchMetrics),
		api.WithHandlerLogger(logger),
		api.WithSearchTimeout(cfg.SearchTimeout),
	}
	if resultCache != nil {
		handlerOpts = append(handlerOpts, api.WithCache(resultCache))
	}
	app.handler = api.NewHandler(planner, catalog, handlerOpts...)
	app.router = api.NewRouter(app.handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
		api.WithSearchRateLimit(cfg.SearchRateLimitRPS, cfg.SearchRateLimitBurst),
		api.WithMetricsHandler(promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{})),
	)

	app.server = NewServer(cfg, BuildRootHandler(app.router))
	return app, nil
}

func (a *App) buildCatalog(ctx context.Context, cfg config.Config) (storage.Catalog, error) {
	var seed []shelving.Item
	if cfg.CatalogFile != "" {
		path, err := resolveCatalogPath(cfg.CatalogFile)
		if err != nil {
			return nil, err
		}
		seed, err = storage.LoadFile(path)
		if err != nil {
			return nil, err
		}
		a.logger.Info("catalog loaded from file", zap.String("path", path), zap.Int("items", len(seed)))
	}

	if cfg.DatabaseURL == "" {
		catalog := storage.NewMemoryCatalog()
		if seed != nil {
			if err := catalog.Replace(ctx, seed); err != nil {
				return nil, err
			}
		}
		return catalog, nil
	}

	db, err := storage.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, db.Close)

	catalog := storage.NewPostgresCatalog(db)
	if err := catalog.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	if seed == nil {
		existing, err := catalog.Items(ctx)
		if err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			return catalog, nil
		}
		seed = storage.DefaultItems()
	}
	if err := catalog.Replace(ctx, seed); err != nil {
		return nil, err
	}
	a.logger.Info("postgres catalog seeded", zap.Int("items", len(seed)))
	return catalog, nil
}

func (a *App) buildCache(ctx context.Context, cfg config.Config) (cache.Cache, error) {
	switch {
	case cfg.RedisURL != "":
		client, err := cache.Dial(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		return cache.NewRedis(client, cfg.CacheTTL), nil
	case cfg.CacheTTL > 0:
		return cache.NewMemory(cfg.CacheTTL), nil
	default:
		return nil, nil
	}
}

// BuildRootHandler mounts the API router under /api/ and /metrics.
func BuildRootHandler(apiHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	mux.Handle("/metrics", apiHandler)
	return mux
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

// Close releases database and cache connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// resolveCatalogPath accepts absolute or working-directory relative paths and
// falls back to searching from the project root.
func resolveCatalogPath(path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	return resolveProjectPath(path)
}

// resolveProjectPath locates a file or directory relative to the project root by walking up the directory tree.
func resolveProjectPath(relative string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(dir, relative)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("unable to locate %s", relative)
}
