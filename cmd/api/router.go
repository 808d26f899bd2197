package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/Maximillionair/eksamen-superhelter/internal/config"
	"github.com/Maximillionair/eksamen-superhelter/internal/middleware"
	"github.com/Maximillionair/eksamen-superhelter/internal/modules/auth"
	"github.com/Maximillionair/eksamen-superhelter/internal/modules/favorite"
	"github.com/Maximillionair/eksamen-superhelter/internal/modules/feed"
	"github.com/Maximillionair/eksamen-superhelter/internal/modules/hero"
	"github.com/Maximillionair/eksamen-superhelter/internal/pkg/jwt"
	"github.com/Maximillionair/eksamen-superhelter/internal/pkg/response"
)

// handlers groups everything the router mounts.
type handlers struct {
	auth     *auth.Handler
	hero     *hero.Handler
	favorite *favorite.Handler
	feed     *feed.Handler
}

// limiters are nil when rate limiting is disabled.
type limiters struct {
	standard *middleware.RateLimiter
	auth     *middleware.RateLimiter
	api      *middleware.RateLimiter
	search   *middleware.RateLimiter
}

func newLimiters(cfg config.RateLimitConfig) *limiters {
	if cfg.Disabled {
		return &limiters{}
	}
	l := &limiters{
		standard: middleware.NewRateLimiter("standard", cfg.Standard.Requests, cfg.Standard.Window),
		auth:     middleware.NewRateLimiter("auth", cfg.Auth.Requests, cfg.Auth.Window),
		api:      middleware.NewRateLimiter("api", cfg.API.Requests, cfg.API.Window),
		search:   middleware.NewRateLimiter("search", cfg.Search.Requests, cfg.Search.Window),
	}
	for _, rl := range l.all() {
		rl.StartCleanup(10 * time.Minute)
	}
	return l
}

func (l *limiters) all() []*middleware.RateLimiter {
	out := make([]*middleware.RateLimiter, 0, 4)
	for _, rl := range []*middleware.RateLimiter{l.standard, l.auth, l.api, l.search} {
		if rl != nil {
			out = append(out, rl)
		}
	}
	return out
}

func (l *limiters) Stop() {
	for _, rl := range l.all() {
		rl.Stop()
	}
}

func guard(rl *middleware.RateLimiter) gin.HandlerFunc {
	if rl == nil {
		return middleware.Passthrough()
	}
	return rl.Middleware()
}

func newRouter(cfg *config.Config, db *gorm.DB, tokens *jwt.Service, h handlers, rl *limiters) *gin.Engine {
	if !config.IsProdLike(cfg.Server.Environment) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))

	r.GET("/health", healthHandler(db))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1", guard(rl.standard))
	{
		h.auth.RegisterPublicRoutes(v1, guard(rl.auth))
		h.hero.RegisterPublicRoutes(v1, guard(rl.search))
		h.favorite.RegisterPublicRoutes(v1)
		h.feed.RegisterPublicRoutes(v1)

		protected := v1.Group("", middleware.JWTAuth(tokens), guard(rl.api))
		h.auth.RegisterProtectedRoutes(protected)
		h.favorite.RegisterProtectedRoutes(protected)

		admin := protected.Group("/admin", middleware.AdminOnly())
		h.hero.RegisterAdminRoutes(admin)
	}

	return r
}

func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			response.Error(c, http.StatusServiceUnavailable, "DATABASE_UNAVAILABLE", "Database is not reachable")
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
	}
}
