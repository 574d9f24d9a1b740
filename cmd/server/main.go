package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/shelf-planner/internal/application"
	"github.com/eugenenazirov/shelf-planner/internal/config"
	"github.com/eugenenazirov/shelf-planner/internal/logging"
)

var signalNotify = signal.Notify

func main() {
	overrides, err := parseFlags(os.Args[1:])
	kingpin.FatalIfError(err, "parse flags")

	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger, app.Close)
}

// parseFlags maps command-line flags onto config overrides. Shelf limits are
// forwarded whenever given so that invalid values reach validation.
func parseFlags(args []string) (*config.CLIOverrides, error) {
	kingpinApp := kingpin.New("shelf-planner", "Shelf Planner - packs catalog items onto weight-bounded shelves and flags dangerous groupings")
	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	port := kingpinApp.Flag("port", "HTTP port exposed by the service").String()
	var capacitySet, maxPerShelfSet bool
	capacityFlag := kingpinApp.Flag("capacity", "Maximum total weight per shelf").IsSetByUser(&capacitySet).Float64()
	maxPerShelfFlag := kingpinApp.Flag("max-per-shelf", "Maximum number of items per shelf").IsSetByUser(&maxPerShelfSet).Int()
	catalogFile := kingpinApp.Flag("catalog-file", "CSV or YAML file used to seed the catalog").String()
	databaseURL := kingpinApp.Flag("database-url", "PostgreSQL DSN for the catalog store").String()
	redisURL := kingpinApp.Flag("redis-url", "Redis URL for the result cache").String()
	rateLimitRPSFlag := kingpinApp.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := kingpinApp.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()
	searchRPSFlag := kingpinApp.Flag("search-rate-limit-rps", "Search requests per second allowed (set 0 to disable)").Default("-1").Float64()
	searchBurstFlag := kingpinApp.Flag("search-rate-limit-burst", "Burst capacity for search requests (set 0 to disable)").Default("-1").Int()

	if _, err := kingpinApp.Parse(args); err != nil {
		return nil, err
	}

	overrides := &config.CLIOverrides{
		ConfigFile:  *configFile,
		Port:        port,
		CatalogFile: catalogFile,
		DatabaseURL: databaseURL,
		RedisURL:    redisURL,
	}

	if capacitySet {
		overrides.Capacity = capacityFlag
	}

	if maxPerShelfSet {
		overrides.MaxPerShelf = maxPerShelfFlag
	}

	if *rateLimitRPSFlag >= 0 {
		overrides.RateLimitRPS = rateLimitRPSFlag
	}

	if *rateLimitBurstFlag >= 0 {
		overrides.RateLimitBurst = rateLimitBurstFlag
	}

	if *searchRPSFlag >= 0 {
		overrides.SearchRateLimitRPS = searchRPSFlag
	}

	if *searchBurstFlag >= 0 {
		overrides.SearchRateLimitBurst = searchBurstFlag
	}

	return overrides, nil
}

// shutdown waits for a termination signal, drains the server, and only then
// releases the catalog and cache connections in-flight searches may still use.
func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger, release func() error) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}

	if release != nil {
		if err := release(); err != nil {
			logger.Warn("failed to release resources", zap.Error(err))
		}
	}
}
