package config

import (
	"net"
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Cache     CacheConfig     `koanf:"cache"`
	Auth      AuthConfig      `koanf:"auth"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Logging   LoggingConfig   `koanf:"logging"`
}

type ServerConfig struct {
	Host         string        `koanf:"host"`
	Port         int           `koanf:"port"`
	Environment  string        `koanf:"environment"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	CORSOrigins  []string      `koanf:"cors_origins"`
}

// DatabaseConfig names the store explicitly. FallbackDSNs are tried in order
// when DSN cannot be reached.
type DatabaseConfig struct {
	DSN          string        `koanf:"dsn"`
	FallbackDSNs []string      `koanf:"fallback_dsns"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	CountTimeout time.Duration `koanf:"count_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	AutoMigrate  bool          `koanf:"auto_migrate"`
}

type CatalogConfig struct {
	BaseURL             string        `koanf:"base_url"`
	Token               string        `koanf:"token"`
	Timeout             time.Duration `koanf:"timeout"`
	RequestsPerSecond   float64       `koanf:"requests_per_second"`
	Burst               int           `koanf:"burst"`
	BreakerMaxRequests  uint32        `koanf:"breaker_max_requests"`
	BreakerInterval     time.Duration `koanf:"breaker_interval"`
	BreakerTimeout      time.Duration `koanf:"breaker_timeout"`
	BreakerMinRequests  uint32        `koanf:"breaker_min_requests"`
	BreakerFailureRatio float64       `koanf:"breaker_failure_ratio"`
}

type CacheConfig struct {
	Freshness    time.Duration `koanf:"freshness"`
	BatchMax     int           `koanf:"batch_max"`
	BatchWorkers int           `koanf:"batch_workers"`
	SearchLimit  int           `koanf:"search_limit"`
	TopLimit     int           `koanf:"top_limit"`
}

type AuthConfig struct {
	JWTSecret string        `koanf:"jwt_secret"`
	TokenTTL  time.Duration `koanf:"token_ttl"`
}

type LimitRule struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
}

type RateLimitConfig struct {
	Disabled bool      `koanf:"disabled"`
	Standard LimitRule `koanf:"standard"`
	Auth     LimitRule `koanf:"auth"`
	API      LimitRule `koanf:"api"`
	Search   LimitRule `koanf:"search"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Addr is the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
