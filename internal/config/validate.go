package config

import (
	"fmt"
	"strings"
)

// MaxBatchSize caps cache.batch_max. The hero service enforces the same ceiling.
const MaxBatchSize = 50

func validateConfig(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server port must be in 1..65535, got %d", cfg.Server.Port)
	}
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.Database.ReadTimeout <= 0 || cfg.Database.CountTimeout <= 0 || cfg.Database.WriteTimeout <= 0 {
		return fmt.Errorf("database timeouts must be > 0")
	}
	if strings.TrimSpace(cfg.Catalog.BaseURL) == "" {
		return fmt.Errorf("SUPERHERO_API_URL must not be empty")
	}
	if cfg.Catalog.Timeout <= 0 {
		return fmt.Errorf("SUPERHERO_API_TIMEOUT must be > 0")
	}
	if cfg.Catalog.BreakerFailureRatio <= 0 || cfg.Catalog.BreakerFailureRatio > 1 {
		return fmt.Errorf("catalog breaker failure ratio must be in (0, 1]")
	}
	if cfg.Cache.Freshness <= 0 {
		return fmt.Errorf("CACHE_FRESHNESS must be > 0")
	}
	if cfg.Cache.BatchMax <= 0 || cfg.Cache.BatchMax > MaxBatchSize {
		return fmt.Errorf("BATCH_MAX must be in 1..%d, got %d", MaxBatchSize, cfg.Cache.BatchMax)
	}
	if cfg.Cache.BatchWorkers <= 0 {
		return fmt.Errorf("BATCH_WORKERS must be > 0")
	}
	if cfg.Auth.TokenTTL <= 0 {
		return fmt.Errorf("JWT_TOKEN_TTL must be > 0")
	}

	if IsProdLike(cfg.Server.Environment) {
		if isEmptyOrDefault(cfg.Auth.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if strings.TrimSpace(cfg.Catalog.Token) == "" {
			return fmt.Errorf("in prod/release SUPERHERO_API_KEY must be set")
		}
	}

	return nil
}

func IsProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}
