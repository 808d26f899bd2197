package hero

import (
	"context"

	"github.com/Maximillionair/eksamen-superhelter/internal/domain"
	"github.com/Maximillionair/eksamen-superhelter/internal/repository"
	"github.com/Maximillionair/eksamen-superhelter/internal/superheroapi"
)

// HeroStore is the subset of the hero repository the engine reads and writes.
type HeroStore interface {
	FindByID(ctx context.Context, id int64) (*domain.Hero, error)
	Upsert(ctx context.Context, h *domain.Hero) (*domain.Hero, error)
	FindPage(ctx context.Context, skip, limit int) ([]domain.Hero, int64, error)
	SearchText(ctx context.Context, query string, limit int) ([]domain.Hero, error)
	SearchSubstring(ctx context.Context, query string, limit int) ([]domain.Hero, error)
	FindAdjacent(ctx context.Context, id int64, dir repository.Direction) (*domain.Hero, error)
}

// Catalog is the remote hero source.
type Catalog interface {
	GetHero(ctx context.Context, id int64) (superheroapi.RawHero, error)
	SearchByName(ctx context.Context, name string) ([]superheroapi.RawHero, error)
}
