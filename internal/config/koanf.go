package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order; the first existing file wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/superhelter/config.yaml",
}

const ConfigPathEnvVar = "CONFIG_PATH"

const (
	defaultJWTSecret      = "change-me-jwt-secret"
	defaultCatalogBaseURL = "https://superheroapi.com/api"
)

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         3000,
			Environment:  "development",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			CORSOrigins:  []string{"http://localhost:3000"},
		},
		Database: DatabaseConfig{
			DSN:          "superhelter.db",
			FallbackDSNs: []string{},
			ReadTimeout:  8 * time.Second,
			CountTimeout: 5 * time.Second,
			WriteTimeout: 8 * time.Second,
			AutoMigrate:  true,
		},
		Catalog: CatalogConfig{
			BaseURL:             defaultCatalogBaseURL,
			Token:               "",
			Timeout:             10 * time.Second,
			RequestsPerSecond:   10,
			Burst:               20,
			BreakerMaxRequests:  3,
			BreakerInterval:     time.Minute,
			BreakerTimeout:      30 * time.Second,
			BreakerMinRequests:  10,
			BreakerFailureRatio: 0.6,
		},
		Cache: CacheConfig{
			Freshness:    24 * time.Hour,
			BatchMax:     50,
			BatchWorkers: 50,
			SearchLimit:  20,
			TopLimit:     10,
		},
		Auth: AuthConfig{
			JWTSecret: defaultJWTSecret,
			TokenTTL:  24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			Standard: LimitRule{Requests: 100, Window: 15 * time.Minute},
			Auth:     LimitRule{Requests: 5, Window: time.Hour},
			API:      LimitRule{Requests: 50, Window: 15 * time.Minute},
			Search:   LimitRule{Requests: 20, Window: 5 * time.Minute},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in that order. A .env file in the working directory is read
// into the environment first.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var sliceConfigPaths = []string{
	"server.cors_origins",
	"database.fallback_dsns",
}

// processSliceFields splits comma separated env values into lists.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := []string{}
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var envMappings = map[string]string{
	"port":              "server.port",
	"http_host":         "server.host",
	"app_env":           "server.environment",
	"cors_origins":      "server.cors_origins",
	"database_url":      "database.dsn",
	"mongodb_uri":       "database.dsn",
	"database_fallback": "database.fallback_dsns",
	"db_read_timeout":   "database.read_timeout",
	"db_count_timeout":  "database.count_timeout",
	"db_write_timeout":  "database.write_timeout",
	"db_auto_migrate":   "database.auto_migrate",

	"superhero_api_url":     "catalog.base_url",
	"superhero_api_key":     "catalog.token",
	"superhero_api_timeout": "catalog.timeout",
	"superhero_api_rps":     "catalog.requests_per_second",
	"superhero_api_burst":   "catalog.burst",

	"cache_freshness":     "cache.freshness",
	"batch_max":           "cache.batch_max",
	"batch_workers":       "cache.batch_workers",
	"search_default_size": "cache.search_limit",
	"top_heroes_limit":    "cache.top_limit",

	"jwt_secret":    "auth.jwt_secret",
	"jwt_token_ttl": "auth.token_ttl",

	"disable_rate_limit": "rate_limit.disabled",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps known environment variables onto config keys and
// drops everything else.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
