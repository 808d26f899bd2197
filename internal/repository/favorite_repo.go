package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Maximillionair/eksamen-superhelter/internal/domain"
)

// FavoriteMutation edits the account in place and returns the change to
// apply to the hero's favorites counter. A zero delta with a nil error
// means nothing changed and nothing is written.
type FavoriteMutation func(acc *domain.UserAccount) (delta int64, err error)

// FavoriteRepository writes the account ledger and the hero counter together.
type FavoriteRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewFavoriteRepository(db *gorm.DB, writeTimeout time.Duration) *FavoriteRepository {
	if writeTimeout <= 0 {
		writeTimeout = DefaultTimeouts().Write
	}
	return &FavoriteRepository{db: db, timeout: writeTimeout}
}

// Apply runs fn against the locked account of userID inside one
// transaction. With requireHero the hero must be stored. It returns the
// updated account and the hero's counter after the change.
func (r *FavoriteRepository) Apply(ctx context.Context, userID, heroID int64, requireHero bool, fn FavoriteMutation) (*domain.UserAccount, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var (
		account *domain.UserAccount
		count   int64
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var um userModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&um, "id = ?", userID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}

		var hm heroModel
		heroErr := tx.Select("id", "favorites_count").First(&hm, "id = ?", heroID).Error
		heroExists := heroErr == nil
		if heroErr != nil && !errors.Is(heroErr, gorm.ErrRecordNotFound) {
			return heroErr
		}
		if requireHero && !heroExists {
			return ErrHeroNotFound
		}
		count = hm.FavoritesCount

		acc := toDomainUser(um)
		delta, err := fn(acc)
		if err != nil {
			return err
		}
		account = acc
		if delta == 0 && !ledgerChanged(um, acc) {
			return nil
		}

		updated := toUserModel(acc)
		updated.ID = um.ID
		if err := tx.Model(&updated).
			Select("favorite_heroes", "favorite_reasons", "updated_at").
			Updates(&updated).Error; err != nil {
			return err
		}

		if delta == 0 || !heroExists {
			return nil
		}
		if err := incrementFavorites(tx, heroID, delta); err != nil {
			return err
		}
		var counts []int64
		if err := tx.Model(&heroModel{}).Where("id = ?", heroID).Pluck("favorites_count", &counts).Error; err != nil {
			return err
		}
		if len(counts) > 0 {
			count = counts[0]
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrHeroNotFound) {
			return nil, 0, err
		}
		return nil, 0, wrapDBErr(ctx, "apply favorite", err)
	}
	return account, count, nil
}

// ledgerChanged detects reason edits, which leave the counter alone.
func ledgerChanged(before userModel, after *domain.UserAccount) bool {
	if len(before.FavoriteHeroes) != len(after.FavoriteHeroes) ||
		len(before.FavoriteReasons) != len(after.FavoriteReasons) {
		return true
	}
	for i := range before.FavoriteHeroes {
		if before.FavoriteHeroes[i] != after.FavoriteHeroes[i] {
			return true
		}
	}
	for i := range before.FavoriteReasons {
		if before.FavoriteReasons[i].HeroID != after.FavoriteReasons[i].HeroID ||
			before.FavoriteReasons[i].Reason != after.FavoriteReasons[i].Reason {
			return true
		}
	}
	return false
}
