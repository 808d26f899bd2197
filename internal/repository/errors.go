package repository

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrHeroNotFound    = errors.New("hero not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrDatabaseTimeout = errors.New("database operation timed out")
)

// wrapDBErr tags deadline failures with ErrDatabaseTimeout so callers can
// tell a slow store from a broken one.
func wrapDBErr(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", op, ErrDatabaseTimeout, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
