package favorite

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Maximillionair/eksamen-superhelter/internal/logging"
	"github.com/Maximillionair/eksamen-superhelter/internal/middleware"
	"github.com/Maximillionair/eksamen-superhelter/internal/pkg/response"
	"github.com/Maximillionair/eksamen-superhelter/internal/pkg/validator"
	"github.com/Maximillionair/eksamen-superhelter/internal/repository"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	v1.GET("/heroes/top", h.TopHeroes)
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	favorites := protected.Group("/favorites")
	{
		favorites.GET("", h.GetFavorites)
		favorites.POST("/:heroId", h.AddFavorite)
		favorites.DELETE("/:heroId", h.RemoveFavorite)
	}
}

func (h *Handler) TopHeroes(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	response.Success(c, http.StatusOK, TopHeroesResponse{Heroes: h.service.TopFavorited(c.Request.Context(), limit)})
}

func (h *Handler) GetFavorites(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	entries, err := h.service.ListFavorites(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, FavoriteListResponse{Favorites: entries, Total: len(entries)})
}

func (h *Handler) AddFavorite(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}
	heroID, ok := parseHeroID(c)
	if !ok {
		return
	}

	var req AddFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid favorite data", errs)
		return
	}

	res, err := h.service.AddFavorite(c.Request.Context(), userID, heroID, req.Reason)
	if err != nil {
		handleError(c, err)
		return
	}

	status := http.StatusOK
	if res.Outcome == OutcomeAdded {
		status = http.StatusCreated
	}
	response.Success(c, status, res)
}

func (h *Handler) RemoveFavorite(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}
	heroID, ok := parseHeroID(c)
	if !ok {
		return
	}

	res, err := h.service.RemoveFavorite(c.Request.Context(), userID, heroID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

func parseHeroID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("heroId"), 10, 64)
	if err != nil || id < 1 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", ErrInvalidHeroID.Error())
		return 0, false
	}
	return id, true
}

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidHeroID):
		response.Error(c, http.StatusBadRequest, "INVALID_ID", err.Error())
	case errors.Is(err, ErrHeroNotFound):
		response.Error(c, http.StatusNotFound, "HERO_NOT_FOUND", "Hero not found")
	case errors.Is(err, ErrUserNotFound):
		response.Error(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	case errors.Is(err, repository.ErrDatabaseTimeout):
		response.Error(c, http.StatusServiceUnavailable, "DATABASE_TIMEOUT", "Favorites were not updated, try again")
	default:
		logging.Ctx(c.Request.Context()).Error().Err(err).Msg("favorites request failed")
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Favorites were not updated")
	}
}
