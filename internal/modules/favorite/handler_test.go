package favorite

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Maximillionair/eksamen-superhelter/internal/middleware"
	"github.com/Maximillionair/eksamen-superhelter/internal/repository"
)

func setupFavoriteRouter(t *testing.T) (*gin.Engine, *fixture, int64) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := newFixture(t)
	f.hero(t, 70, "Batman")
	uid := f.user(t, "tim")
	return newFavoriteRouter(f.svc), f, uid
}

func newFavoriteRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if raw := c.GetHeader("X-Test-User-ID"); raw != "" {
			id, _ := strconv.ParseInt(raw, 10, 64)
			c.Set(middleware.ContextUserID, id)
		}
		c.Next()
	})
	h := NewHandler(svc)
	v1 := r.Group("/api/v1")
	h.RegisterPublicRoutes(v1)
	h.RegisterProtectedRoutes(v1)
	return r
}

func send(r http.Handler, method, path, body string, userID int64) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set("X-Test-User-ID", strconv.FormatInt(userID, 10))
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestHandler_FavoriteFlow(t *testing.T) {
	r, _, uid := setupFavoriteRouter(t)

	rr := send(r, http.MethodPost, "/api/v1/favorites/70", "", uid)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"outcome":"added"`)
	assert.Contains(t, rr.Body.String(), `"favoritesCount":1`)

	rr = send(r, http.MethodPost, "/api/v1/favorites/70", `{"reason":"World's greatest detective"}`, uid)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"outcome":"reason_updated"`)

	rr = send(r, http.MethodGet, "/api/v1/favorites", "", uid)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"reason":"World's greatest detective"`)
	assert.Contains(t, rr.Body.String(), `"total":1`)

	rr = send(r, http.MethodGet, "/api/v1/heroes/top", "", 0)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"name":"Batman"`)

	rr = send(r, http.MethodDelete, "/api/v1/favorites/70", "", uid)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"outcome":"removed"`)

	rr = send(r, http.MethodDelete, "/api/v1/favorites/70", "", uid)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"outcome":"not_favorited"`)
}

func TestHandler_FavoriteErrors(t *testing.T) {
	r, _, uid := setupFavoriteRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		user   int64
		code   int
		want   string
	}{
		{"unauthenticated", http.MethodPost, "/api/v1/favorites/70", "", 0, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"bad id", http.MethodPost, "/api/v1/favorites/abc", "", uid, http.StatusBadRequest, "INVALID_ID"},
		{"unknown hero", http.MethodPost, "/api/v1/favorites/71", "", uid, http.StatusNotFound, "HERO_NOT_FOUND"},
		{"unknown user", http.MethodPost, "/api/v1/favorites/70", "", 9999, http.StatusNotFound, "USER_NOT_FOUND"},
		{"malformed body", http.MethodPost, "/api/v1/favorites/70", `{"reason":`, uid, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"reason too long", http.MethodPost, "/api/v1/favorites/70", `{"reason":"` + strings.Repeat("x", 501) + `"}`, uid, http.StatusBadRequest, "VALIDATION_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := send(r, tt.method, tt.path, tt.body, tt.user)
			assert.Equal(t, tt.code, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.want)
		})
	}
}

func TestHandler_StoreTimeoutIsServiceUnavailable(t *testing.T) {
	f := newFixture(t)
	f.hero(t, 70, "Batman")
	uid := f.user(t, "jason")
	slow := NewService(repository.NewFavoriteRepository(f.db, time.Nanosecond), f.heroes, f.users, f.publisher, 10)
	r := newFavoriteRouter(slow)

	rr := send(r, http.MethodPost, "/api/v1/favorites/70", `{"reason":"Second Robin"}`, uid)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "DATABASE_TIMEOUT")

	rr = send(r, http.MethodDelete, "/api/v1/favorites/70", "", uid)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	u, err := f.users.GetByID(context.Background(), uid)
	require.NoError(t, err)
	assert.Empty(t, u.FavoriteHeroes)
}
