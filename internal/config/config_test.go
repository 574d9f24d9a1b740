package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/eugenenazirov/shelf-planner/internal/shelving"
)

var envKeys = []string{
	"PORT", "SHELF_CAPACITY", "MAX_PER_SHELF", "NODE_BUDGET", "SEARCH_TIMEOUT", "CACHE_TTL",
	"CATALOG_FILE", "DATABASE_URL", "REDIS_URL", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "LOG_LEVEL",
	"SEARCH_RATE_LIMIT_RPS", "SEARCH_RATE_LIMIT_BURST",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != defaultPort {
		t.Fatalf("expected default port %s, got %s", defaultPort, cfg.Port)
	}
	if cfg.Capacity != shelving.DefaultCapacity || cfg.MaxPerShelf != shelving.DefaultMaxPerShelf {
		t.Fatalf("unexpected shelf limits: %v/%d", cfg.Capacity, cfg.MaxPerShelf)
	}
	if cfg.ShutdownGracePeriod != 10*time.Second {
		t.Fatalf("unexpected shutdown grace period: %s", cfg.ShutdownGracePeriod)
	}
	if !cfg.EnableRequestLogging {
		t.Fatalf("expected request logging to be enabled by default")
	}
	if cfg.LogLevel != defaultLogLevel {
		t.Fatalf("expected default log level %s, got %s", defaultLogLevel, cfg.LogLevel)
	}
}

func TestLoadSearchRateLimit(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.SearchRateLimitRPS != defaultSearchRateLimitRPS || cfg.SearchRateLimitBurst != defaultSearchRateLimitBurst {
		t.Fatalf("unexpected search rate limit defaults: %v/%d", cfg.SearchRateLimitRPS, cfg.SearchRateLimitBurst)
	}

	path := writeConfig(t, "rate_limit:\n  search_rps: 1\n  search_burst: 2\n")
	t.Setenv("SEARCH_RATE_LIMIT_BURST", "4")
	rps := 0.0

	cfg, err = Load(&CLIOverrides{ConfigFile: path, SearchRateLimitRPS: &rps})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.SearchRateLimitRPS != 0 {
		t.Fatalf("expected CLI to disable the search limiter, got %v", cfg.SearchRateLimitRPS)
	}
	if cfg.SearchRateLimitBurst != 4 {
		t.Fatalf("expected env burst to override YAML, got %d", cfg.SearchRateLimitBurst)
	}
}

func TestLoadLogLevel(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "log_level: warn\n")

	cfg, err := Load(&CLIOverrides{ConfigFile: path})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected YAML log level warn, got %s", cfg.LogLevel)
	}

	t.Setenv("LOG_LEVEL", "debug")
	cfg, err = Load(&CLIOverrides{ConfigFile: path})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected env log level debug, got %s", cfg.LogLevel)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("SHELF_CAPACITY", "12.5")
	t.Setenv("MAX_PER_SHELF", "6")
	t.Setenv("SEARCH_TIMEOUT", "2s")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "9000" {
		t.Fatalf("expected overridden port, got %s", cfg.Port)
	}
	if cfg.Capacity != 12.5 || cfg.MaxPerShelf != 6 {
		t.Fatalf("unexpected shelf limits: %v/%d", cfg.Capacity, cfg.MaxPerShelf)
	}
	if cfg.SearchTimeout != 2*time.Second {
		t.Fatalf("unexpected search timeout: %s", cfg.SearchTimeout)
	}
	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Fatalf("unexpected redis url: %s", cfg.RedisURL)
	}
}

func TestLoadYAMLAndPrecedence(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
port: "7000"
capacity: 10
max_per_shelf: 3
catalog_file: books.csv
cache_ttl: 1m
enable_request_logging: false
rate_limit:
  rps: 5
`)
	t.Setenv("MAX_PER_SHELF", "5")
	port := "7500"

	cfg, err := Load(&CLIOverrides{ConfigFile: path, Port: &port})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "7500" {
		t.Fatalf("expected CLI port to win, got %s", cfg.Port)
	}
	if cfg.Capacity != 10 {
		t.Fatalf("expected YAML capacity, got %v", cfg.Capacity)
	}
	if cfg.MaxPerShelf != 5 {
		t.Fatalf("expected env max per shelf to override YAML, got %d", cfg.MaxPerShelf)
	}
	if cfg.CatalogFile != "books.csv" || cfg.CacheTTL != time.Minute {
		t.Fatalf("unexpected catalog settings: %s %s", cfg.CatalogFile, cfg.CacheTTL)
	}
	if cfg.EnableRequestLogging {
		t.Fatalf("expected request logging disabled by YAML")
	}
	if cfg.RateLimitRPS != 5 || cfg.RateLimitBurst != defaultRateLimitBurst {
		t.Fatalf("unexpected rate limit: %v/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	clearEnv(t)

	capacity := 0.0
	if _, err := Load(&CLIOverrides{Capacity: &capacity}); !errors.Is(err, shelving.ErrInvalidCapacity) {
		t.Fatalf("expected ErrInvalidCapacity, got %v", err)
	}

	maxPerShelf := 0
	if _, err := Load(&CLIOverrides{MaxPerShelf: &maxPerShelf}); !errors.Is(err, shelving.ErrInvalidMaxPerShelf) {
		t.Fatalf("expected ErrInvalidMaxPerShelf, got %v", err)
	}

	if _, err := Load(&CLIOverrides{ConfigFile: writeConfig(t, "search_timeout: soon\n")}); err == nil {
		t.Fatalf("expected error for malformed duration")
	}

	if _, err := Load(&CLIOverrides{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml")}); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestLoadIgnoresMalformedEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("SHELF_CAPACITY", "heavy")
	t.Setenv("RATE_LIMIT_BURST", "-3")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Capacity != shelving.DefaultCapacity {
		t.Fatalf("expected default capacity, got %v", cfg.Capacity)
	}
	if cfg.RateLimitBurst != defaultRateLimitBurst {
		t.Fatalf("expected default burst, got %d", cfg.RateLimitBurst)
	}
}
