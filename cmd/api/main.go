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

	"github.com/Maximillionair/eksamen-superhelter/internal/config"
	"github.com/Maximillionair/eksamen-superhelter/internal/database"
	"github.com/Maximillionair/eksamen-superhelter/internal/logging"
	"github.com/Maximillionair/eksamen-superhelter/internal/modules/auth"
	"github.com/Maximillionair/eksamen-superhelter/internal/modules/favorite"
	"github.com/Maximillionair/eksamen-superhelter/internal/modules/feed"
	"github.com/Maximillionair/eksamen-superhelter/internal/modules/hero"
	jwtsvc "github.com/Maximillionair/eksamen-superhelter/internal/pkg/jwt"
	"github.com/Maximillionair/eksamen-superhelter/internal/repository"
	"github.com/Maximillionair/eksamen-superhelter/internal/superheroapi"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
		Output: os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, dsn, err := database.ConnectFirst(ctx, cfg.Database.DSN, cfg.Database.FallbackDSNs...)
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()
	if dsn != cfg.Database.DSN {
		logging.Warn().Msg("primary database unreachable, running on a fallback store")
	}
	if cfg.Database.AutoMigrate {
		if err := repository.AutoMigrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	timeouts := repository.Timeouts{
		Read:  cfg.Database.ReadTimeout,
		Count: cfg.Database.CountTimeout,
		Write: cfg.Database.WriteTimeout,
	}
	heroRepo := repository.NewHeroRepository(db, timeouts)
	userRepo := repository.NewUserRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db, timeouts.Write)

	catalog := superheroapi.NewClient(cfg.Catalog)
	tokens := jwtsvc.New(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	hub := feed.NewHub()
	// Shutdown does not track hijacked websocket connections; the hub closes them.
	defer hub.Close()

	heroService := hero.NewService(heroRepo, catalog, hero.Options{
		Freshness:    cfg.Cache.Freshness,
		BatchMax:     cfg.Cache.BatchMax,
		BatchWorkers: cfg.Cache.BatchWorkers,
		SearchLimit:  cfg.Cache.SearchLimit,
	})
	favoriteService := favorite.NewService(favoriteRepo, heroRepo, userRepo, hub, cfg.Cache.TopLimit)
	authService := auth.NewService(userRepo, tokens)

	rl := newLimiters(cfg.RateLimit)
	defer rl.Stop()

	router := newRouter(cfg, db, tokens, handlers{
		auth:     auth.NewHandler(authService, favoriteService),
		hero:     hero.NewHandler(heroService),
		favorite: favorite.NewHandler(favoriteService),
		feed:     feed.NewHandler(hub, cfg.Server.CORSOrigins),
	}, rl)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().
			Str("addr", srv.Addr).
			Str("environment", cfg.Server.Environment).
			Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
