package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Maximillionair/eksamen-superhelter/internal/domain"
	"github.com/Maximillionair/eksamen-superhelter/internal/repository"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.UserAccount) error {
	args := m.Called(ctx, u)
	if args.Error(0) == nil {
		u.ID = 10
	}
	return args.Error(0)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.UserAccount, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserAccount), args.Error(1)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.UserAccount, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserAccount), args.Error(1)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.UserAccount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserAccount), args.Error(1)
}

type mockJWTService struct {
	mock.Mock
}

func (m *mockJWTService) GenerateToken(userID int64, role string) (string, error) {
	args := m.Called(userID, role)
	return args.String(0), args.Error(1)
}

func validRegister() RegisterRequest {
	return RegisterRequest{
		Username:        "bruce",
		Email:           "Bruce@Wayne.test",
		Password:        "alfred1",
		ConfirmPassword: "alfred1",
	}
}

func TestService_Register_Success(t *testing.T) {
	userRepo := new(mockUserRepo)
	jwtSvc := new(mockJWTService)

	userRepo.On("GetByEmail", mock.Anything, "bruce@wayne.test").Return(nil, repository.ErrUserNotFound)
	userRepo.On("GetByUsername", mock.Anything, "bruce").Return(nil, repository.ErrUserNotFound)
	userRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.UserAccount) bool {
		return u.Email == "bruce@wayne.test" &&
			u.Role == domain.RoleUser &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("alfred1")) == nil
	})).Return(nil)
	jwtSvc.On("GenerateToken", int64(10), "user").Return("fake-jwt-token", nil)

	service := NewService(userRepo, jwtSvc)
	user, token, err := service.Register(context.Background(), validRegister())

	require.NoError(t, err)
	assert.Equal(t, "fake-jwt-token", token)
	assert.Empty(t, user.PasswordHash)
	userRepo.AssertExpectations(t)
	jwtSvc.AssertExpectations(t)
}

func TestService_Register_EmailExists(t *testing.T) {
	userRepo := new(mockUserRepo)
	userRepo.On("GetByEmail", mock.Anything, "bruce@wayne.test").Return(&domain.UserAccount{ID: 1}, nil)

	service := NewService(userRepo, new(mockJWTService))
	_, _, err := service.Register(context.Background(), validRegister())

	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_Register_UsernameTaken(t *testing.T) {
	userRepo := new(mockUserRepo)
	userRepo.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, repository.ErrUserNotFound)
	userRepo.On("GetByUsername", mock.Anything, "bruce").Return(&domain.UserAccount{ID: 2}, nil)

	service := NewService(userRepo, new(mockJWTService))
	_, _, err := service.Register(context.Background(), validRegister())

	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestService_Register_UniqueRaceMapsToConflict(t *testing.T) {
	userRepo := new(mockUserRepo)
	userRepo.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, repository.ErrUserNotFound)
	userRepo.On("GetByUsername", mock.Anything, mock.Anything).Return(nil, repository.ErrUserNotFound)
	userRepo.On("Create", mock.Anything, mock.Anything).
		Return(errors.New("constraint failed: UNIQUE constraint failed: users.username (2067)"))

	service := NewService(userRepo, new(mockJWTService))
	_, _, err := service.Register(context.Background(), validRegister())

	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestService_Login(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	existing := &domain.UserAccount{
		ID:           10,
		Email:        "user@example.com",
		PasswordHash: string(hashed),
		Role:         domain.RoleAdmin,
	}

	t.Run("success", func(t *testing.T) {
		userRepo := new(mockUserRepo)
		jwtSvc := new(mockJWTService)
		copyUser := *existing
		userRepo.On("GetByEmail", mock.Anything, "user@example.com").Return(&copyUser, nil)
		jwtSvc.On("GenerateToken", int64(10), "admin").Return("login-token", nil)

		_, token, err := NewService(userRepo, jwtSvc).Login(context.Background(), LoginRequest{
			Email: " USER@example.com", Password: "password123",
		})
		require.NoError(t, err)
		assert.Equal(t, "login-token", token)
	})

	t.Run("wrong password", func(t *testing.T) {
		userRepo := new(mockUserRepo)
		copyUser := *existing
		userRepo.On("GetByEmail", mock.Anything, "user@example.com").Return(&copyUser, nil)

		_, _, err := NewService(userRepo, new(mockJWTService)).Login(context.Background(), LoginRequest{
			Email: "user@example.com", Password: "nope",
		})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		userRepo := new(mockUserRepo)
		userRepo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, repository.ErrUserNotFound)

		_, _, err := NewService(userRepo, new(mockJWTService)).Login(context.Background(), LoginRequest{
			Email: "ghost@example.com", Password: "x",
		})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestService_GetCurrentUser_NotFound(t *testing.T) {
	userRepo := new(mockUserRepo)
	userRepo.On("GetByID", mock.Anything, int64(5)).Return(nil, repository.ErrUserNotFound)

	_, err := NewService(userRepo, new(mockJWTService)).GetCurrentUser(context.Background(), 5)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
