package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Maximillionair/eksamen-superhelter/internal/domain"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

type favoriteReasonColumn struct {
	HeroID int64  `json:"heroId"`
	Reason string `json:"reason"`
}

type userModel struct {
	ID              int64                  `gorm:"column:id;primaryKey"`
	Username        string                 `gorm:"column:username;uniqueIndex;not null"`
	Email           string                 `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash    string                 `gorm:"column:password_hash;not null"`
	Role            string                 `gorm:"column:role;not null"`
	FavoriteHeroes  []int64                `gorm:"column:favorite_heroes;serializer:json;type:text"`
	FavoriteReasons []favoriteReasonColumn `gorm:"column:favorite_reasons;serializer:json;type:text"`
	CreatedAt       time.Time              `gorm:"column:created_at"`
	UpdatedAt       time.Time              `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

func toDomainUser(m userModel) *domain.UserAccount {
	favorites := make([]int64, len(m.FavoriteHeroes))
	copy(favorites, m.FavoriteHeroes)

	reasons := make([]domain.FavoriteReason, 0, len(m.FavoriteReasons))
	for _, r := range m.FavoriteReasons {
		reasons = append(reasons, domain.FavoriteReason{HeroID: r.HeroID, Reason: r.Reason})
	}

	return &domain.UserAccount{
		ID:              m.ID,
		Username:        m.Username,
		Email:           m.Email,
		PasswordHash:    m.PasswordHash,
		Role:            domain.UserRole(m.Role),
		FavoriteHeroes:  favorites,
		FavoriteReasons: reasons,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func toUserModel(u *domain.UserAccount) userModel {
	favorites := u.FavoriteHeroes
	if favorites == nil {
		favorites = []int64{}
	}
	reasons := make([]favoriteReasonColumn, 0, len(u.FavoriteReasons))
	for _, r := range u.FavoriteReasons {
		reasons = append(reasons, favoriteReasonColumn{HeroID: r.HeroID, Reason: r.Reason})
	}

	role := u.Role
	if role == "" {
		role = domain.RoleUser
	}

	return userModel{
		ID:              u.ID,
		Username:        strings.TrimSpace(u.Username),
		Email:           strings.TrimSpace(strings.ToLower(u.Email)),
		PasswordHash:    u.PasswordHash,
		Role:            string(role),
		FavoriteHeroes:  favorites,
		FavoriteReasons: reasons,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.UserAccount) error {
	m := toUserModel(u)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*u = *toDomainUser(m)
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.UserAccount, error) {
	var m userModel
	tx := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&m)
	if tx.Error != nil {
		return nil, notFoundAs(tx.Error, ErrUserNotFound)
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.UserAccount, error) {
	var m userModel
	tx := r.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&m)
	if tx.Error != nil {
		return nil, notFoundAs(tx.Error, ErrUserNotFound)
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.UserAccount, error) {
	var m userModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, notFoundAs(tx.Error, ErrUserNotFound)
	}
	return toDomainUser(m), nil
}

// SetRole is used by the admin CLI to promote accounts.
func (r *UserRepository) SetRole(ctx context.Context, id int64, role domain.UserRole) error {
	tx := r.db.WithContext(ctx).Model(&userModel{}).Where("id = ?", id).Update("role", string(role))
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func notFoundAs(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
