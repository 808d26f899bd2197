package hero

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Maximillionair/eksamen-superhelter/internal/logging"
	"github.com/Maximillionair/eksamen-superhelter/internal/pkg/response"
	"github.com/Maximillionair/eksamen-superhelter/internal/pkg/validator"
	"github.com/Maximillionair/eksamen-superhelter/internal/repository"
	"github.com/Maximillionair/eksamen-superhelter/internal/superheroapi"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes mounts the hero and catalog endpoints. search guards
// the endpoints that may reach the remote catalog.
func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup, search gin.HandlerFunc) {
	heroes := v1.Group("/heroes")
	{
		heroes.GET("", h.ListHeroes)
		heroes.GET("/search", search, h.SearchHeroes)
		heroes.GET("/:id", h.GetHero)
		heroes.GET("/:id/adjacent", h.AdjacentHero)
	}
	v1.GET("/catalog/search", search, h.SearchRemoteCatalog)
}

// RegisterAdminRoutes expects admin to already carry auth and role checks.
func (h *Handler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	admin.POST("/heroes/batch", h.FetchBatch)
}

func (h *Handler) ListHeroes(c *gin.Context) {
	page := h.service.ListHeroes(c.Request.Context(), queryInt(c, "page", 1), queryInt(c, "limit", defaultPageLimit))
	response.Success(c, http.StatusOK, page)
}

func (h *Handler) SearchHeroes(c *gin.Context) {
	res, err := h.service.SearchHeroes(c.Request.Context(), c.Query("query"), queryInt(c, "limit", 0))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

func (h *Handler) GetHero(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	res, err := h.service.GetHero(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

func (h *Handler) AdjacentHero(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	hero, err := h.service.AdjacentHero(c.Request.Context(), id, c.DefaultQuery("direction", "next"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, hero)
}

func (h *Handler) SearchRemoteCatalog(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "name is required")
		return
	}
	raws, err := h.service.SearchRemoteCatalog(c.Request.Context(), name)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, RemoteSearchResponse{Name: name, Results: raws})
}

func (h *Handler) FetchBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid batch request", errs)
		return
	}
	response.Success(c, http.StatusOK, h.service.FetchHeroBatch(c.Request.Context(), req.StartID, req.Count))
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", ErrInvalidID.Error())
		return 0, false
	}
	return id, true
}

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidID):
		response.Error(c, http.StatusBadRequest, "INVALID_ID", err.Error())
	case errors.Is(err, ErrInvalidDirection):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Hero not found")
	case errors.Is(err, superheroapi.ErrUpstreamTransport):
		response.Error(c, http.StatusBadGateway, "UPSTREAM_ERROR", "Hero catalog is unavailable")
	case errors.Is(err, repository.ErrDatabaseTimeout):
		response.Error(c, http.StatusServiceUnavailable, "DATABASE_TIMEOUT", "Database did not respond in time")
	default:
		logging.Ctx(c.Request.Context()).Error().Err(err).Msg("hero request failed")
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}
