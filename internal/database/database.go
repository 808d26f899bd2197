package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"github.com/Maximillionair/eksamen-superhelter/internal/logging"
)

var ErrNoReachableStore = errors.New("no reachable store")

const pingTimeout = 5 * time.Second

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Connect opens a single DSN. postgres:// URLs use the pgx driver, anything
// else is treated as a SQLite file or URI.
func Connect(dsn string) (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	if isPostgres(dsn) {
		logging.Info().Msg("connecting to PostgreSQL")
		return gorm.Open(postgres.Open(dsn), gcfg)
	}

	logging.Info().Str("dsn", dsn).Msg("using SQLite store")

	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		gcfg,
	)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer; a single connection keeps transactions serialized.
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

// ConnectFirst tries the primary DSN and then each fallback in order and
// returns the first store that answers a ping, along with the DSN used.
func ConnectFirst(ctx context.Context, primary string, fallbacks ...string) (*gorm.DB, string, error) {
	candidates := append([]string{primary}, fallbacks...)

	var errs []error
	for _, dsn := range candidates {
		if strings.TrimSpace(dsn) == "" {
			continue
		}
		db, err := Connect(dsn)
		if err == nil {
			err = ping(ctx, db)
		}
		if err != nil {
			logging.Warn().Err(err).Str("dsn", redact(dsn)).Msg("store unreachable")
			errs = append(errs, fmt.Errorf("%s: %w", redact(dsn), err))
			continue
		}
		return db, dsn, nil
	}

	return nil, "", fmt.Errorf("%w: %w", ErrNoReachableStore, errors.Join(errs...))
}

func ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// redact strips credentials from URL style DSNs before they reach the logs.
func redact(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}
	return dsn[:scheme+3] + "***" + dsn[at:]
}
