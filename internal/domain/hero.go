package domain

import "time"

// DefaultPowerStat is stored for any power stat the catalog does not report.
const DefaultPowerStat = "0"

type PowerStats struct {
	Intelligence string `json:"intelligence"`
	Strength     string `json:"strength"`
	Speed        string `json:"speed"`
	Durability   string `json:"durability"`
	Power        string `json:"power"`
	Combat       string `json:"combat"`
}

type Biography struct {
	FullName        string   `json:"fullName"`
	AlterEgos       string   `json:"alterEgos"`
	Aliases         []string `json:"aliases"`
	PlaceOfBirth    string   `json:"placeOfBirth"`
	FirstAppearance string   `json:"firstAppearance"`
	Publisher       string   `json:"publisher"`
	Alignment       string   `json:"alignment"`
}

type Appearance struct {
	Gender    string   `json:"gender"`
	Race      string   `json:"race"`
	Height    []string `json:"height"`
	Weight    []string `json:"weight"`
	EyeColor  string   `json:"eyeColor"`
	HairColor string   `json:"hairColor"`
}

type Work struct {
	Occupation string `json:"occupation"`
	Base       string `json:"base"`
}

type Connections struct {
	GroupAffiliation string `json:"groupAffiliation"`
	Relatives        string `json:"relatives"`
}

// Hero is the cached representation of one catalog entry.
// FavoritesCount is owned by the favorites ledger and survives refreshes.
type Hero struct {
	ID             int64       `json:"id"`
	Name           string      `json:"name"`
	PowerStats     PowerStats  `json:"powerstats"`
	Biography      Biography   `json:"biography"`
	Appearance     Appearance  `json:"appearance"`
	Work           Work        `json:"work"`
	Connections    Connections `json:"connections"`
	ImageURL       string      `json:"imageUrl"`
	FetchedAt      time.Time   `json:"fetchedAt"`
	FavoritesCount int64       `json:"favoritesCount"`
}

// IsFresh reports whether the record was synchronized less than window ago.
func (h *Hero) IsFresh(now time.Time, window time.Duration) bool {
	if h.FetchedAt.IsZero() {
		return false
	}
	return now.Sub(h.FetchedAt) < window
}

// HeroPage is one page of the catalog listing.
type HeroPage struct {
	Heroes      []Hero `json:"heroes"`
	CurrentPage int    `json:"currentPage"`
	TotalPages  int    `json:"totalPages"`
	TotalHeroes int64  `json:"totalHeroes"`
}
