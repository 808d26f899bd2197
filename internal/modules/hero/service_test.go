package hero

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Maximillionair/eksamen-superhelter/internal/database"
	"github.com/Maximillionair/eksamen-superhelter/internal/domain"
	"github.com/Maximillionair/eksamen-superhelter/internal/repository"
	"github.com/Maximillionair/eksamen-superhelter/internal/superheroapi"
)

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) GetHero(ctx context.Context, id int64) (superheroapi.RawHero, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(superheroapi.RawHero), args.Error(1)
}

func (m *mockCatalog) SearchByName(ctx context.Context, name string) ([]superheroapi.RawHero, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]superheroapi.RawHero), args.Error(1)
}

func newTestStore(t *testing.T) (*repository.HeroRepository, *gorm.DB) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Connect(fmt.Sprintf("file:hero_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return repository.NewHeroRepository(db, repository.DefaultTimeouts()), db
}

func rawHero(id int64, name, fullName, publisher string) superheroapi.RawHero {
	return superheroapi.RawHero{
		Response: "success",
		ID:       strconv.FormatInt(id, 10),
		Name:     name,
		PowerStats: superheroapi.RawPowerStats{
			Intelligence: "80", Strength: "null", Combat: "90",
		},
		Biography: superheroapi.RawBiography{FullName: fullName, Publisher: publisher},
		Image:     superheroapi.RawImage{URL: "https://example.test/" + name + ".jpg"},
	}
}

func storedHero(t *testing.T, store *repository.HeroRepository, id int64, name, fullName, publisher string, fetchedAt time.Time) {
	t.Helper()
	h, err := superheroapi.ToHero(rawHero(id, name, fullName, publisher), fetchedAt)
	require.NoError(t, err)
	_, err = store.Upsert(context.Background(), &h)
	require.NoError(t, err)
}

func TestGetHero_FreshLocalCopySkipsCatalog(t *testing.T) {
	store, _ := newTestStore(t)
	catalog := new(mockCatalog)
	storedHero(t, store, 70, "Batman", "Bruce Wayne", "DC Comics", time.Now().UTC().Add(-time.Hour))

	svc := NewService(store, catalog, DefaultOptions())
	res, err := svc.GetHero(context.Background(), 70)

	require.NoError(t, err)
	assert.Equal(t, SourceLocalCache, res.Source)
	assert.False(t, res.Stale)
	assert.Equal(t, "Batman", res.Hero.Name)
	catalog.AssertNotCalled(t, "GetHero", mock.Anything, mock.Anything)
}

func TestGetHero_StaleCopyIsRefreshedAndKeepsCount(t *testing.T) {
	store, _ := newTestStore(t)
	storedHero(t, store, 70, "Batman", "Bruce Wayne", "DC Comics", time.Now().UTC().Add(-25*time.Hour))
	require.NoError(t, store.IncrementFavoritesCount(context.Background(), 70, 3))

	catalog := new(mockCatalog)
	catalog.On("GetHero", mock.Anything, int64(70)).
		Return(rawHero(70, "Batman", "Bruce Wayne", "DC Comics Inc"), nil).Once()

	svc := NewService(store, catalog, DefaultOptions())
	res, err := svc.GetHero(context.Background(), 70)

	require.NoError(t, err)
	assert.Equal(t, SourceRemoteCatalog, res.Source)
	assert.Equal(t, int64(3), res.Hero.FavoritesCount)
	assert.Equal(t, "DC Comics Inc", res.Hero.Biography.Publisher)
	assert.Equal(t, "0", res.Hero.PowerStats.Strength)
	assert.WithinDuration(t, time.Now(), res.Hero.FetchedAt, time.Minute)

	// A second call is served locally now that the copy is fresh.
	res, err = svc.GetHero(context.Background(), 70)
	require.NoError(t, err)
	assert.Equal(t, SourceLocalCache, res.Source)
	catalog.AssertExpectations(t)
}

func TestGetHero_ServesStaleCopyWhenCatalogFails(t *testing.T) {
	store, _ := newTestStore(t)
	fetched := time.Now().UTC().Add(-48 * time.Hour)
	storedHero(t, store, 70, "Batman", "Bruce Wayne", "DC Comics", fetched)

	catalog := new(mockCatalog)
	catalog.On("GetHero", mock.Anything, int64(70)).
		Return(superheroapi.RawHero{}, fmt.Errorf("%w: status 503", superheroapi.ErrUpstreamTransport))

	res, err := NewService(store, catalog, DefaultOptions()).GetHero(context.Background(), 70)

	require.NoError(t, err)
	assert.Equal(t, SourceLocalCache, res.Source)
	assert.True(t, res.Stale)
	assert.WithinDuration(t, fetched, res.Hero.FetchedAt, time.Second)
}

func TestGetHero_NotFoundWithoutLocalCopy(t *testing.T) {
	store, _ := newTestStore(t)
	catalog := new(mockCatalog)
	catalog.On("GetHero", mock.Anything, int64(999)).Return(superheroapi.RawHero{}, superheroapi.ErrUpstreamNotFound)
	catalog.On("GetHero", mock.Anything, int64(998)).Return(superheroapi.RawHero{}, superheroapi.ErrUpstreamTransport)

	svc := NewService(store, catalog, DefaultOptions())

	_, err := svc.GetHero(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, superheroapi.ErrUpstreamNotFound)

	_, err = svc.GetHero(context.Background(), 998)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, superheroapi.ErrUpstreamTransport)
}

func TestGetHero_InvalidID(t *testing.T) {
	store, _ := newTestStore(t)
	svc := NewService(store, new(mockCatalog), DefaultOptions())

	for _, id := range []int64{0, -1} {
		_, err := svc.GetHero(context.Background(), id)
		assert.ErrorIs(t, err, ErrInvalidID)
	}
}

func TestGetHero_ConcurrentCallsShareOneFetch(t *testing.T) {
	store, _ := newTestStore(t)
	release := make(chan struct{})

	catalog := new(mockCatalog)
	catalog.On("GetHero", mock.Anything, int64(70)).
		Run(func(mock.Arguments) { <-release }).
		Return(rawHero(70, "Batman", "Bruce Wayne", "DC Comics"), nil)

	svc := NewService(store, catalog, DefaultOptions())

	var wg sync.WaitGroup
	results := make([]*HeroResult, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := svc.GetHero(context.Background(), 70)
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	catalog.AssertNumberOfCalls(t, "GetHero", 1)
	for _, res := range results {
		require.NotNil(t, res)
		assert.Equal(t, "Batman", res.Hero.Name)
	}
}

func TestGetHero_UpsertFailureStillReturnsRemoteHero(t *testing.T) {
	store, db := newTestStore(t)
	require.NoError(t, db.Exec("DROP TABLE heroes").Error)

	catalog := new(mockCatalog)
	catalog.On("GetHero", mock.Anything, int64(70)).Return(rawHero(70, "Batman", "Bruce Wayne", "DC Comics"), nil)

	res, err := NewService(store, catalog, DefaultOptions()).GetHero(context.Background(), 70)

	require.NoError(t, err)
	assert.Equal(t, SourceRemoteCatalog, res.Source)
	assert.Equal(t, "Batman", res.Hero.Name)
}

func TestSearchHeroes_FallbackChain(t *testing.T) {
	store, _ := newTestStore(t)
	now := time.Now().UTC()
	storedHero(t, store, 69, "Batman", "Terry McGinnis", "DC Comics", now)
	storedHero(t, store, 70, "Batman", "Bruce Wayne", "DC Comics", now)
	storedHero(t, store, 332, "Hulk", "Bruce Banner", "Marvel Comics", now)

	catalog := new(mockCatalog)
	svc := NewService(store, catalog, DefaultOptions())
	ctx := context.Background()

	t.Run("empty query lists the store", func(t *testing.T) {
		res, err := svc.SearchHeroes(ctx, "   ", 0)
		require.NoError(t, err)
		assert.Equal(t, SourceLocalCache, res.Source)
		assert.Equal(t, []int64{69, 70, 332}, heroIDs(res.Heroes))
	})

	t.Run("text match ranks by score", func(t *testing.T) {
		res, err := svc.SearchHeroes(ctx, "Bruce Wayne", 10)
		require.NoError(t, err)
		assert.Equal(t, SourceLocalCache, res.Source)
		assert.Equal(t, []int64{70, 332}, heroIDs(res.Heroes))
	})

	t.Run("substring match when no whole word matches", func(t *testing.T) {
		res, err := svc.SearchHeroes(ctx, "atma", 10)
		require.NoError(t, err)
		assert.Equal(t, SourceLocalCache, res.Source)
		assert.Equal(t, []int64{69, 70}, heroIDs(res.Heroes))
	})

	catalog.AssertNotCalled(t, "SearchByName", mock.Anything, mock.Anything)
}

func TestSearchHeroes_RemoteResultsWarmTheCache(t *testing.T) {
	store, _ := newTestStore(t)
	catalog := new(mockCatalog)
	catalog.On("SearchByName", mock.Anything, "spider").Return([]superheroapi.RawHero{
		rawHero(620, "Spider-Man", "Peter Parker", "Marvel Comics"),
		{ID: "bogus", Name: "Broken"},
		rawHero(621, "Spider-Woman", "Jessica Drew", "Marvel Comics"),
		rawHero(622, "Spider-Girl", "Anya Corazon", "Marvel Comics"),
	}, nil).Once()

	svc := NewService(store, catalog, DefaultOptions())
	ctx := context.Background()

	res, err := svc.SearchHeroes(ctx, "spider", 3)
	require.NoError(t, err)
	assert.Equal(t, SourceRemoteCatalog, res.Source)
	assert.Equal(t, []int64{620, 621}, heroIDs(res.Heroes))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	// Now answered from the store.
	res, err = svc.SearchHeroes(ctx, "spider", 3)
	require.NoError(t, err)
	assert.Equal(t, SourceLocalCache, res.Source)
	assert.Equal(t, []int64{620, 621}, heroIDs(res.Heroes))
	catalog.AssertExpectations(t)
}

func TestSearchHeroes_RemoteMatchesSurviveStoreOutage(t *testing.T) {
	store, db := newTestStore(t)
	require.NoError(t, db.Exec("DROP TABLE heroes").Error)

	catalog := new(mockCatalog)
	catalog.On("SearchByName", mock.Anything, "spider").Return([]superheroapi.RawHero{
		rawHero(620, "Spider-Man", "Peter Parker", "Marvel Comics"),
		rawHero(621, "Spider-Woman", "Jessica Drew", "Marvel Comics"),
	}, nil)

	res, err := NewService(store, catalog, DefaultOptions()).SearchHeroes(context.Background(), "spider", 5)

	require.NoError(t, err)
	assert.Equal(t, SourceRemoteCatalog, res.Source)
	assert.Equal(t, []int64{620, 621}, heroIDs(res.Heroes))
	assert.Equal(t, "Peter Parker", res.Heroes[0].Biography.FullName)
	assert.Zero(t, res.Heroes[0].FavoritesCount)
}

func TestSearchHeroes_NothingAnywhere(t *testing.T) {
	store, _ := newTestStore(t)
	catalog := new(mockCatalog)
	catalog.On("SearchByName", mock.Anything, "zzz").Return([]superheroapi.RawHero{}, nil)
	catalog.On("SearchByName", mock.Anything, "down").Return(nil, superheroapi.ErrUpstreamTransport)

	svc := NewService(store, catalog, DefaultOptions())

	res, err := svc.SearchHeroes(context.Background(), "zzz", 5)
	require.NoError(t, err)
	assert.Equal(t, SourceLocalCache, res.Source)
	assert.Empty(t, res.Heroes)
	assert.NotNil(t, res.Heroes)

	_, err = svc.SearchHeroes(context.Background(), "down", 5)
	assert.ErrorIs(t, err, superheroapi.ErrUpstreamTransport)
}

func TestFetchHeroBatch_ClampsAndCollectsErrors(t *testing.T) {
	store, _ := newTestStore(t)
	catalog := new(mockCatalog)
	catalog.On("GetHero", mock.Anything, int64(2)).Return(rawHero(2, "Abomination", "Emil Blonsky", "Marvel Comics"), nil)
	catalog.On("GetHero", mock.Anything, mock.MatchedBy(func(id int64) bool { return id != 2 })).
		Return(superheroapi.RawHero{}, superheroapi.ErrUpstreamNotFound)

	svc := NewService(store, catalog, DefaultOptions())
	res := svc.FetchHeroBatch(context.Background(), 0, 100)

	assert.Equal(t, 1, res.TotalFetched)
	require.Len(t, res.Heroes, 1)
	assert.Equal(t, int64(2), res.Heroes[0].ID)
	assert.Len(t, res.Errors, 49)

	seen := map[int64]bool{}
	for _, e := range res.Errors {
		assert.GreaterOrEqual(t, e.ID, int64(1))
		assert.LessOrEqual(t, e.ID, int64(50))
		assert.Contains(t, e.Error, "not found")
		seen[e.ID] = true
	}
	assert.Len(t, seen, 49)
	catalog.AssertNumberOfCalls(t, "GetHero", 50)
}

func TestFetchHeroBatch_CeilingHoldsOverLargerOption(t *testing.T) {
	store, _ := newTestStore(t)
	catalog := new(mockCatalog)
	catalog.On("GetHero", mock.Anything, mock.Anything).Return(superheroapi.RawHero{}, superheroapi.ErrUpstreamNotFound)

	res := NewService(store, catalog, Options{BatchMax: 100}).FetchHeroBatch(context.Background(), 1, 60)

	require.Len(t, res.Errors, MaxBatchSize)
	for _, e := range res.Errors {
		assert.LessOrEqual(t, e.ID, int64(MaxBatchSize))
	}
	catalog.AssertNumberOfCalls(t, "GetHero", MaxBatchSize)
}

func TestFetchHeroBatch_DefaultCount(t *testing.T) {
	store, _ := newTestStore(t)
	catalog := new(mockCatalog)
	catalog.On("GetHero", mock.Anything, mock.Anything).Return(superheroapi.RawHero{}, superheroapi.ErrUpstreamNotFound)

	res := NewService(store, catalog, DefaultOptions()).FetchHeroBatch(context.Background(), 10, 0)

	assert.Equal(t, 0, res.TotalFetched)
	assert.Len(t, res.Errors, defaultBatchCount)
}

func TestSearchRemoteCatalog(t *testing.T) {
	store, _ := newTestStore(t)
	catalog := new(mockCatalog)
	catalog.On("SearchByName", mock.Anything, "batman").Return([]superheroapi.RawHero{rawHero(70, "Batman", "Bruce Wayne", "DC Comics")}, nil)
	catalog.On("SearchByName", mock.Anything, "nobody").Return(nil, superheroapi.ErrUpstreamNotFound)

	svc := NewService(store, catalog, DefaultOptions())

	raws, err := svc.SearchRemoteCatalog(context.Background(), "batman")
	require.NoError(t, err)
	require.Len(t, raws, 1)
	assert.Equal(t, "Bruce Wayne", raws[0].Biography.FullName)

	raws, err = svc.SearchRemoteCatalog(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, raws)

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestListHeroes(t *testing.T) {
	store, db := newTestStore(t)
	now := time.Now().UTC()
	for i, name := range []string{"A-Bomb", "Abe Sapien", "Abin Sur"} {
		storedHero(t, store, int64(i+1), name, "", "Marvel Comics", now)
	}
	svc := NewService(store, new(mockCatalog), DefaultOptions())

	page := svc.ListHeroes(context.Background(), 2, 2)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, int64(3), page.TotalHeroes)
	assert.Equal(t, []int64{3}, heroIDs(page.Heroes))

	page = svc.ListHeroes(context.Background(), 0, 500)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Len(t, page.Heroes, 3)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	page = svc.ListHeroes(context.Background(), 4, 20)
	assert.Equal(t, domain.HeroPage{Heroes: []domain.Hero{}, CurrentPage: 4, TotalPages: 1, TotalHeroes: 0}, page)
}

func TestListHeroes_ReadTimeoutDegradesToEmptyPage(t *testing.T) {
	store, db := newTestStore(t)
	storedHero(t, store, 1, "A-Bomb", "Richard Milhouse Jones", "Marvel Comics", time.Now().UTC())

	slow := repository.NewHeroRepository(db, repository.Timeouts{Read: time.Nanosecond, Count: time.Nanosecond, Write: time.Second})
	page := NewService(slow, new(mockCatalog), DefaultOptions()).ListHeroes(context.Background(), 1, 20)

	assert.Equal(t, domain.HeroPage{Heroes: []domain.Hero{}, CurrentPage: 1, TotalPages: 1, TotalHeroes: 0}, page)
}

func TestAdjacentHero(t *testing.T) {
	store, _ := newTestStore(t)
	now := time.Now().UTC()
	storedHero(t, store, 10, "Agent Bob", "", "Marvel Comics", now)
	storedHero(t, store, 20, "Agent Zero", "", "Marvel Comics", now)
	svc := NewService(store, new(mockCatalog), DefaultOptions())
	ctx := context.Background()

	h, err := svc.AdjacentHero(ctx, 10, "next")
	require.NoError(t, err)
	assert.Equal(t, int64(20), h.ID)

	h, err = svc.AdjacentHero(ctx, 20, "PREV")
	require.NoError(t, err)
	assert.Equal(t, int64(10), h.ID)

	_, err = svc.AdjacentHero(ctx, 20, "next")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.AdjacentHero(ctx, 10, "sideways")
	assert.ErrorIs(t, err, ErrInvalidDirection)
}

func heroIDs(heroes []domain.Hero) []int64 {
	ids := make([]int64, len(heroes))
	for i, h := range heroes {
		ids[i] = h.ID
	}
	return ids
}
