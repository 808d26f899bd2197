package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Maximillionair/eksamen-superhelter/internal/logging"
	"github.com/Maximillionair/eksamen-superhelter/internal/middleware"
	"github.com/Maximillionair/eksamen-superhelter/internal/pkg/response"
	"github.com/Maximillionair/eksamen-superhelter/internal/pkg/validator"
)

// Handler manages all HTTP interactions for authentication
type Handler struct {
	service   *Service
	favorites FavoritesLister
}

func NewHandler(service *Service, favorites FavoritesLister) *Handler {
	return &Handler{service: service, favorites: favorites}
}

// RegisterPublicRoutes mounts /auth. limiter guards both endpoints.
func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup, limiter gin.HandlerFunc) {
	authGroup := v1.Group("/auth", limiter)
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	protected.GET("/users/me", h.GetMe)
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid registration data", errs)
		return
	}

	user, token, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailAlreadyExists):
			response.Error(c, http.StatusConflict, "EMAIL_EXISTS", "This email is already registered")
		case errors.Is(err, ErrUsernameTaken):
			response.Error(c, http.StatusConflict, "USERNAME_TAKEN", "This username is already taken")
		default:
			logging.Ctx(c.Request.Context()).Error().Err(err).Msg("registration failed")
			response.Error(c, http.StatusInternalServerError, "REGISTRATION_FAILED", "Failed to register user")
		}
		return
	}

	response.Success(c, http.StatusCreated, AuthResponse{User: toUserPublic(user), Token: token})
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid login data", errs)
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Email or password is incorrect")
			return
		}
		logging.Ctx(c.Request.Context()).Error().Err(err).Msg("login failed")
		response.Error(c, http.StatusInternalServerError, "LOGIN_FAILED", "Failed to login")
		return
	}

	response.Success(c, http.StatusOK, AuthResponse{User: toUserPublic(user), Token: token})
}

// GetMe returns the profile together with the resolved favorites.
func (h *Handler) GetMe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	user, err := h.service.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load profile")
		return
	}

	favorites, err := h.favorites.ListFavorites(c.Request.Context(), userID)
	if err != nil {
		logging.Ctx(c.Request.Context()).Warn().Err(err).Int64("user_id", userID).Msg("favorites unavailable for profile")
	}

	response.Success(c, http.StatusOK, toProfile(user, favorites))
}
