package auth

import (
	"time"

	"github.com/Maximillionair/eksamen-superhelter/internal/domain"
)

type RegisterRequest struct {
	Username        string `json:"username" validate:"required,alphanum,min=3,max=30"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserPublic struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type AuthResponse struct {
	User  UserPublic `json:"user"`
	Token string     `json:"token"`
}

// UserProfileResponse is the /users/me payload.
type UserProfileResponse struct {
	ID        int64                  `json:"id"`
	Username  string                 `json:"username"`
	Email     string                 `json:"email"`
	Role      string                 `json:"role"`
	CreatedAt string                 `json:"created_at"`
	Favorites []domain.FavoriteEntry `json:"favorites"`
}

func toUserPublic(u *domain.UserAccount) UserPublic {
	return UserPublic{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     string(u.Role),
	}
}

func toProfile(u *domain.UserAccount, favorites []domain.FavoriteEntry) UserProfileResponse {
	if favorites == nil {
		favorites = []domain.FavoriteEntry{}
	}
	return UserProfileResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
		Favorites: favorites,
	}
}
