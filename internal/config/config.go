package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/shelf-planner/internal/shelving"
)

const (
	defaultPort           = "8080"
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
	defaultSearchTimeout  = 10 * time.Second
	defaultCacheTTL       = 5 * time.Minute
	defaultLogLevel       = "info"

	defaultSearchRateLimitRPS   = 5.0
	defaultSearchRateLimitBurst = 10
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > Environment variables > YAML config > Defaults
type Config struct {
	Port                 string
	LogLevel             string
	Capacity             float64
	MaxPerShelf          int
	NodeBudget           int64
	SearchTimeout        time.Duration
	CatalogFile          string
	DatabaseURL          string
	RedisURL             string
	CacheTTL             time.Duration
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	RateLimitRPS         float64
	RateLimitBurst       int
	SearchRateLimitRPS   float64
	SearchRateLimitBurst int
}

// yamlConfig represents the YAML configuration file structure.
type yamlConfig struct {
	Port                 string        `yaml:"port"`
	LogLevel             string        `yaml:"log_level"`
	Capacity             *float64      `yaml:"capacity"`
	MaxPerShelf          *int          `yaml:"max_per_shelf"`
	NodeBudget           *int64        `yaml:"node_budget"`
	SearchTimeout        string        `yaml:"search_timeout"`
	CatalogFile          string        `yaml:"catalog_file"`
	DatabaseURL          string        `yaml:"database_url"`
	RedisURL             string        `yaml:"redis_url"`
	CacheTTL             string        `yaml:"cache_ttl"`
	ShutdownGracePeriod  string        `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string        `yaml:"read_header_timeout"`
	WriteTimeout         string        `yaml:"write_timeout"`
	IdleTimeout          string        `yaml:"idle_timeout"`
	EnableRequestLogging *bool         `yaml:"enable_request_logging"`
	RateLimit            yamlRateLimit `yaml:"rate_limit"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS         *float64 `yaml:"rps"`
	Burst       *int     `yaml:"burst"`
	SearchRPS   *float64 `yaml:"search_rps"`
	SearchBurst *int     `yaml:"search_burst"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile     string
	Port           *string
	Capacity       *float64
	MaxPerShelf    *int
	CatalogFile    *string
	DatabaseURL    *string
	RedisURL       *string
	RateLimitRPS   *float64
	RateLimitBurst *int

	SearchRateLimitRPS   *float64
	SearchRateLimitBurst *int
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > Environment variables > YAML config > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	// Load from YAML file if specified
	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyYAMLConfig(&cfg, yamlCfg); err != nil {
			return Config{}, fmt.Errorf("apply YAML config: %w", err)
		}
	}

	// Apply environment variables (override YAML)
	applyEnvConfig(&cfg)

	// Apply CLI overrides (highest precedence)
	if overrides != nil {
		applyCLIOverrides(&cfg, overrides)
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		Port:                 defaultPort,
		LogLevel:             defaultLogLevel,
		Capacity:             shelving.DefaultCapacity,
		MaxPerShelf:          shelving.DefaultMaxPerShelf,
		NodeBudget:           shelving.DefaultNodeBudget,
		SearchTimeout:        defaultSearchTimeout,
		CacheTTL:             defaultCacheTTL,
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         30 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
		SearchRateLimitRPS:   defaultSearchRateLimitRPS,
		SearchRateLimitBurst: defaultSearchRateLimitBurst,
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) error {
	if yamlCfg.Port != "" {
		cfg.Port = yamlCfg.Port
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.Capacity != nil {
		cfg.Capacity = *yamlCfg.Capacity
	}
	if yamlCfg.MaxPerShelf != nil {
		cfg.MaxPerShelf = *yamlCfg.MaxPerShelf
	}
	if yamlCfg.NodeBudget != nil {
		cfg.NodeBudget = *yamlCfg.NodeBudget
	}
	if yamlCfg.CatalogFile != "" {
		cfg.CatalogFile = yamlCfg.CatalogFile
	}
	if yamlCfg.DatabaseURL != "" {
		cfg.DatabaseURL = yamlCfg.DatabaseURL
	}
	if yamlCfg.RedisURL != "" {
		cfg.RedisURL = yamlCfg.RedisURL
	}

	durations := []struct {
		name  string
		raw   string
		field *time.Duration
	}{
		{"search_timeout", yamlCfg.SearchTimeout, &cfg.SearchTimeout},
		{"cache_ttl", yamlCfg.CacheTTL, &cfg.CacheTTL},
		{"shutdown_grace_period", yamlCfg.ShutdownGracePeriod, &cfg.ShutdownGracePeriod},
		{"read_header_timeout", yamlCfg.ReadHeaderTimeout, &cfg.ReadHeaderTimeout},
		{"write_timeout", yamlCfg.WriteTimeout, &cfg.WriteTimeout},
		{"idle_timeout", yamlCfg.IdleTimeout, &cfg.IdleTimeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", d.name, d.raw, err)
		}
		*d.field = parsed
	}

	if yamlCfg.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *yamlCfg.EnableRequestLogging
	}

	if yamlCfg.RateLimit.RPS != nil && *yamlCfg.RateLimit.RPS >= 0 {
		cfg.RateLimitRPS = *yamlCfg.RateLimit.RPS
	}

	if yamlCfg.RateLimit.Burst != nil && *yamlCfg.RateLimit.Burst >= 0 {
		cfg.RateLimitBurst = *yamlCfg.RateLimit.Burst
	}

	if yamlCfg.RateLimit.SearchRPS != nil && *yamlCfg.RateLimit.SearchRPS >= 0 {
		cfg.SearchRateLimitRPS = *yamlCfg.RateLimit.SearchRPS
	}

	if yamlCfg.RateLimit.SearchBurst != nil && *yamlCfg.RateLimit.SearchBurst >= 0 {
		cfg.SearchRateLimitBurst = *yamlCfg.RateLimit.SearchBurst
	}

	return nil
}

// applyEnvConfig applies environment variable configuration.
// Malformed values are ignored and the previous value is kept.
func applyEnvConfig(cfg *Config) {
	if port := env("PORT"); port != "" {
		cfg.Port = port
	}

	if level := env("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	if raw := env("SHELF_CAPACITY"); raw != "" {
		if value, err := strconv.ParseFloat(raw, 64); err == nil {
			cfg.Capacity = value
		}
	}

	if raw := env("MAX_PER_SHELF"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			cfg.MaxPerShelf = value
		}
	}

	if raw := env("NODE_BUDGET"); raw != "" {
		if value, err := strconv.ParseInt(raw, 10, 64); err == nil && value >= 0 {
			cfg.NodeBudget = value
		}
	}

	if raw := env("SEARCH_TIMEOUT"); raw != "" {
		if value, err := time.ParseDuration(raw); err == nil {
			cfg.SearchTimeout = value
		}
	}

	if raw := env("CACHE_TTL"); raw != "" {
		if value, err := time.ParseDuration(raw); err == nil {
			cfg.CacheTTL = value
		}
	}

	if path := env("CATALOG_FILE"); path != "" {
		cfg.CatalogFile = path
	}

	if url := env("DATABASE_URL"); url != "" {
		cfg.DatabaseURL = url
	}

	if url := env("REDIS_URL"); url != "" {
		cfg.RedisURL = url
	}

	if rps := env("RATE_LIMIT_RPS"); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	if burst := env("RATE_LIMIT_BURST"); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}

	if rps := env("SEARCH_RATE_LIMIT_RPS"); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.SearchRateLimitRPS = value
		}
	}

	if burst := env("SEARCH_RATE_LIMIT_BURST"); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.SearchRateLimitBurst = value
		}
	}
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) {
	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}

	if overrides.Capacity != nil {
		cfg.Capacity = *overrides.Capacity
	}

	if overrides.MaxPerShelf != nil {
		cfg.MaxPerShelf = *overrides.MaxPerShelf
	}

	if overrides.CatalogFile != nil && *overrides.CatalogFile != "" {
		cfg.CatalogFile = *overrides.CatalogFile
	}

	if overrides.DatabaseURL != nil && *overrides.DatabaseURL != "" {
		cfg.DatabaseURL = *overrides.DatabaseURL
	}

	if overrides.RedisURL != nil && *overrides.RedisURL != "" {
		cfg.RedisURL = *overrides.RedisURL
	}

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}

	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}

	if overrides.SearchRateLimitRPS != nil && *overrides.SearchRateLimitRPS >= 0 {
		cfg.SearchRateLimitRPS = *overrides.SearchRateLimitRPS
	}

	if overrides.SearchRateLimitBurst != nil && *overrides.SearchRateLimitBurst >= 0 {
		cfg.SearchRateLimitBurst = *overrides.SearchRateLimitBurst
	}
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if err := shelving.ValidateLimits(cfg.Capacity, cfg.MaxPerShelf); err != nil {
		return err
	}
	if cfg.NodeBudget < 0 {
		return fmt.Errorf("NODE_BUDGET must be >= 0")
	}
	if cfg.SearchTimeout < 0 {
		return fmt.Errorf("SEARCH_TIMEOUT must be >= 0")
	}
	if cfg.RateLimitRPS < 0 || math.IsNaN(cfg.RateLimitRPS) {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 0")
	}
	if cfg.SearchRateLimitRPS < 0 || math.IsNaN(cfg.SearchRateLimitRPS) {
		return fmt.Errorf("SEARCH_RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.SearchRateLimitBurst < 0 {
		return fmt.Errorf("SEARCH_RATE_LIMIT_BURST must be >= 0")
	}
	return nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
