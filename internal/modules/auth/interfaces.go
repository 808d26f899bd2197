package auth

import (
	"context"

	"github.com/Maximillionair/eksamen-superhelter/internal/domain"
)

// UserRepositoryInterface lists the user store methods the auth service needs.
type UserRepositoryInterface interface {
	Create(ctx context.Context, u *domain.UserAccount) error
	GetByEmail(ctx context.Context, email string) (*domain.UserAccount, error)
	GetByUsername(ctx context.Context, username string) (*domain.UserAccount, error)
	GetByID(ctx context.Context, id int64) (*domain.UserAccount, error)
}

type jwtService interface {
	GenerateToken(userID int64, role string) (string, error)
}

// FavoritesLister resolves the profile's favorites for /users/me.
type FavoritesLister interface {
	ListFavorites(ctx context.Context, userID int64) ([]domain.FavoriteEntry, error)
}
