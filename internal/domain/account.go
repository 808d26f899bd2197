package domain

import "time"

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// FavoriteReason is the optional free-text note a user attached to a favorite.
type FavoriteReason struct {
	HeroID int64  `json:"heroId"`
	Reason string `json:"reason"`
}

// UserAccount holds credentials and the favorites ledger of one user.
// Every FavoriteReasons entry refers to a hero listed in FavoriteHeroes.
type UserAccount struct {
	ID              int64            `json:"id"`
	Username        string           `json:"username"`
	Email           string           `json:"email"`
	PasswordHash    string           `json:"-"`
	Role            UserRole         `json:"role"`
	FavoriteHeroes  []int64          `json:"favoriteHeroes"`
	FavoriteReasons []FavoriteReason `json:"favoriteReasons"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// HasFavorite reports whether heroID is in the user's favorites.
func (u *UserAccount) HasFavorite(heroID int64) bool {
	for _, id := range u.FavoriteHeroes {
		if id == heroID {
			return true
		}
	}
	return false
}

// ReasonFor returns the stored reason for heroID, if any.
func (u *UserAccount) ReasonFor(heroID int64) (string, bool) {
	for _, r := range u.FavoriteReasons {
		if r.HeroID == heroID {
			return r.Reason, true
		}
	}
	return "", false
}

// FavoriteEntry is one resolved favorite of a user's profile.
type FavoriteEntry struct {
	Hero   Hero   `json:"hero"`
	Reason string `json:"reason,omitempty"`
}

type FavoriteEventType string

const (
	EventFavoriteAdded   FavoriteEventType = "favorite_added"
	EventFavoriteRemoved FavoriteEventType = "favorite_removed"
	EventReasonUpdated   FavoriteEventType = "reason_updated"
)

// FavoriteEvent describes one committed change to a user's favorites.
type FavoriteEvent struct {
	Type           FavoriteEventType `json:"type"`
	HeroID         int64             `json:"hero_id"`
	UserID         int64             `json:"user_id"`
	FavoritesCount int64             `json:"favorites_count"`
}
