package favorite

import "github.com/Maximillionair/eksamen-superhelter/internal/domain"

// AddFavoriteRequest is optional; an empty body adds without a reason.
type AddFavoriteRequest struct {
	Reason *string `json:"reason" validate:"omitempty,max=500"`
}

type FavoriteListResponse struct {
	Favorites []domain.FavoriteEntry `json:"favorites"`
	Total     int                    `json:"total"`
}

type TopHeroesResponse struct {
	Heroes []domain.Hero `json:"heroes"`
}
