package favorite

import (
	"context"

	"github.com/Maximillionair/eksamen-superhelter/internal/domain"
	"github.com/Maximillionair/eksamen-superhelter/internal/repository"
)

// LedgerStore commits an account change and the hero counter together.
type LedgerStore interface {
	Apply(ctx context.Context, userID, heroID int64, requireHero bool, fn repository.FavoriteMutation) (*domain.UserAccount, int64, error)
}

type HeroReader interface {
	TopFavorited(ctx context.Context, limit int) ([]domain.Hero, error)
	FindByIDs(ctx context.Context, ids []int64) ([]domain.Hero, error)
}

type UserReader interface {
	GetByID(ctx context.Context, id int64) (*domain.UserAccount, error)
}

// Publisher receives every committed ledger change.
type Publisher interface {
	Publish(event domain.FavoriteEvent)
}
