package hero

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Maximillionair/eksamen-superhelter/internal/domain"
	"github.com/Maximillionair/eksamen-superhelter/internal/logging"
	"github.com/Maximillionair/eksamen-superhelter/internal/metrics"
	"github.com/Maximillionair/eksamen-superhelter/internal/repository"
	"github.com/Maximillionair/eksamen-superhelter/internal/superheroapi"
)

const (
	defaultSearchLimit = 20
	defaultBatchCount  = 20
	defaultPageLimit   = 20
	maxPageLimit       = 100

	// MaxBatchSize is the hard ceiling on a batch, whatever the options say.
	MaxBatchSize = 50
)

// Source tells where a result came from.
type Source string

const (
	SourceLocalCache    Source = "local_cache"
	SourceRemoteCatalog Source = "remote_catalog"
)

type HeroResult struct {
	Source Source      `json:"source"`
	Stale  bool        `json:"stale"`
	Hero   domain.Hero `json:"hero"`
}

type SearchResult struct {
	Source Source        `json:"source"`
	Heroes []domain.Hero `json:"heroes"`
}

type BatchError struct {
	ID    int64  `json:"id"`
	Error string `json:"error"`
}

type BatchResult struct {
	Heroes       []domain.Hero `json:"heroes"`
	Errors       []BatchError  `json:"errors"`
	TotalFetched int           `json:"totalFetched"`
}

type Options struct {
	Freshness    time.Duration
	BatchMax     int
	BatchWorkers int
	SearchLimit  int
}

func DefaultOptions() Options {
	return Options{
		Freshness:    24 * time.Hour,
		BatchMax:     50,
		BatchWorkers: 50,
		SearchLimit:  defaultSearchLimit,
	}
}

// Service decides whether a hero is served from the local store or
// refreshed from the remote catalog.
type Service struct {
	store   HeroStore
	catalog Catalog
	opts    Options
	now     func() time.Time
	flight  singleflight.Group
}

func NewService(store HeroStore, catalog Catalog, opts Options) *Service {
	def := DefaultOptions()
	if opts.Freshness <= 0 {
		opts.Freshness = def.Freshness
	}
	if opts.BatchMax <= 0 {
		opts.BatchMax = def.BatchMax
	}
	opts.BatchMax = min(opts.BatchMax, MaxBatchSize)
	if opts.BatchWorkers <= 0 {
		opts.BatchWorkers = opts.BatchMax
	}
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = def.SearchLimit
	}
	return &Service{
		store:   store,
		catalog: catalog,
		opts:    opts,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// GetHero returns a fresh local copy, or refreshes it from the catalog. When
// the catalog fails and a local copy exists, the stale copy is served.
func (s *Service) GetHero(ctx context.Context, id int64) (*HeroResult, error) {
	if id < 1 {
		return nil, ErrInvalidID
	}
	log := logging.Ctx(ctx)

	local, err := s.store.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, repository.ErrHeroNotFound) {
			log.Warn().Err(err).Int64("hero_id", id).Msg("store read failed, treating as miss")
			metrics.StoreDegradedReads.WithLabelValues("find_by_id").Inc()
		}
		local = nil
	}

	if local != nil && local.IsFresh(s.now(), s.opts.Freshness) {
		metrics.HeroCacheLookups.WithLabelValues("hit").Inc()
		return &HeroResult{Source: SourceLocalCache, Hero: *local}, nil
	}

	var knownCount int64
	if local != nil {
		knownCount = local.FavoritesCount
	}

	v, err, _ := s.flight.Do(strconv.FormatInt(id, 10), func() (any, error) {
		return s.refresh(context.WithoutCancel(ctx), id, knownCount)
	})
	if err != nil {
		if local != nil {
			metrics.HeroCacheLookups.WithLabelValues("stale_served").Inc()
			log.Warn().Err(err).Int64("hero_id", id).Time("fetched_at", local.FetchedAt).
				Msg("catalog unavailable, serving stale hero")
			return &HeroResult{Source: SourceLocalCache, Stale: true, Hero: *local}, nil
		}
		metrics.HeroCacheLookups.WithLabelValues("miss").Inc()
		return nil, fmt.Errorf("%w: hero %d: %w", ErrNotFound, id, err)
	}

	if local != nil {
		metrics.HeroCacheLookups.WithLabelValues("stale_refresh").Inc()
	} else {
		metrics.HeroCacheLookups.WithLabelValues("miss").Inc()
	}
	return &HeroResult{Source: SourceRemoteCatalog, Hero: *v.(*domain.Hero)}, nil
}

func (s *Service) refresh(ctx context.Context, id int64, knownCount int64) (*domain.Hero, error) {
	raw, err := s.catalog.GetHero(ctx, id)
	if err != nil {
		return nil, err
	}
	hero, err := superheroapi.ToHero(raw, s.now())
	if err != nil {
		return nil, err
	}

	stored, err := s.store.Upsert(ctx, &hero)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Int64("hero_id", id).Msg("failed to cache refreshed hero")
		hero.FavoritesCount = knownCount
		return &hero, nil
	}
	return stored, nil
}

// SearchHeroes runs the fallback chain: list all, text match, substring
// match, then the remote catalog. The first non-empty step wins.
func (s *Service) SearchHeroes(ctx context.Context, query string, limit int) (*SearchResult, error) {
	if limit <= 0 {
		limit = s.opts.SearchLimit
	}
	log := logging.Ctx(ctx)
	q := strings.TrimSpace(query)

	if q == "" {
		heroes, _, err := s.store.FindPage(ctx, 0, limit)
		if err != nil {
			log.Warn().Err(err).Msg("listing heroes for empty search failed")
			metrics.StoreDegradedReads.WithLabelValues("search_all").Inc()
			heroes = []domain.Hero{}
		}
		metrics.HeroSearches.WithLabelValues("all").Inc()
		return &SearchResult{Source: SourceLocalCache, Heroes: heroes}, nil
	}

	text, err := s.store.SearchText(ctx, q, limit)
	if err != nil {
		log.Warn().Err(err).Str("query", q).Msg("text search failed, falling back")
		metrics.StoreDegradedReads.WithLabelValues("search_text").Inc()
	} else if len(text) > 0 {
		metrics.HeroSearches.WithLabelValues("text").Inc()
		return &SearchResult{Source: SourceLocalCache, Heroes: text}, nil
	}

	sub, err := s.store.SearchSubstring(ctx, q, limit)
	if err != nil {
		log.Warn().Err(err).Str("query", q).Msg("substring search failed, falling back")
		metrics.StoreDegradedReads.WithLabelValues("search_substring").Inc()
	} else if len(sub) > 0 {
		metrics.HeroSearches.WithLabelValues("substring").Inc()
		return &SearchResult{Source: SourceLocalCache, Heroes: sub}, nil
	}

	warmed, err := s.warmFromCatalog(context.WithoutCancel(ctx), q, limit)
	if err != nil {
		return nil, err
	}
	if len(warmed) > 0 {
		metrics.HeroSearches.WithLabelValues("remote").Inc()
		return &SearchResult{Source: SourceRemoteCatalog, Heroes: warmed}, nil
	}

	metrics.HeroSearches.WithLabelValues("empty").Inc()
	return &SearchResult{Source: SourceLocalCache, Heroes: []domain.Hero{}}, nil
}

// warmFromCatalog stores up to limit remote matches and returns them. A
// match the store rejects is still returned, uncached.
func (s *Service) warmFromCatalog(ctx context.Context, name string, limit int) ([]domain.Hero, error) {
	raws, err := s.catalog.SearchByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(raws) > limit {
		raws = raws[:limit]
	}

	log := logging.Ctx(ctx)
	out := make([]domain.Hero, 0, len(raws))
	for _, raw := range raws {
		hero, err := superheroapi.ToHero(raw, s.now())
		if err != nil {
			log.Warn().Err(err).Str("raw_id", raw.ID).Msg("skipping malformed catalog record")
			continue
		}
		stored, err := s.store.Upsert(ctx, &hero)
		if err != nil {
			log.Error().Err(err).Int64("hero_id", hero.ID).Msg("failed to cache searched hero")
			out = append(out, hero)
			continue
		}
		metrics.HeroCacheWarmed.Inc()
		out = append(out, *stored)
	}
	return out, nil
}

// FetchHeroBatch loads count consecutive ids starting at startID. Failures
// are collected per id and never stop the rest of the batch.
func (s *Service) FetchHeroBatch(ctx context.Context, startID int64, count int) *BatchResult {
	if startID < 1 {
		startID = 1
	}
	if count <= 0 {
		count = defaultBatchCount
	}
	count = min(count, s.opts.BatchMax, MaxBatchSize)

	var (
		mu     sync.Mutex
		heroes = make([]domain.Hero, 0, count)
		errs   = make([]BatchError, 0)
	)

	var g errgroup.Group
	g.SetLimit(s.opts.BatchWorkers)
	for i := 0; i < count; i++ {
		id := startID + int64(i)
		g.Go(func() error {
			res, err := s.GetHero(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, BatchError{ID: id, Error: err.Error()})
				return nil
			}
			heroes = append(heroes, res.Hero)
			return nil
		})
	}
	_ = g.Wait()

	logging.Ctx(ctx).Info().
		Int64("start_id", startID).
		Int("count", count).
		Int("fetched", len(heroes)).
		Int("failed", len(errs)).
		Msg("hero batch fetched")

	return &BatchResult{Heroes: heroes, Errors: errs, TotalFetched: len(heroes)}
}

// SearchRemoteCatalog queries the catalog directly without touching the store.
func (s *Service) SearchRemoteCatalog(ctx context.Context, name string) ([]superheroapi.RawHero, error) {
	raws, err := s.catalog.SearchByName(context.WithoutCancel(ctx), name)
	if err != nil {
		if errors.Is(err, superheroapi.ErrUpstreamNotFound) {
			return []superheroapi.RawHero{}, nil
		}
		return nil, err
	}
	if raws == nil {
		raws = []superheroapi.RawHero{}
	}
	return raws, nil
}

// ListHeroes pages through the store in id order. Store failures yield an
// empty first page.
func (s *Service) ListHeroes(ctx context.Context, page, limit int) domain.HeroPage {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	heroes, total, err := s.store.FindPage(ctx, (page-1)*limit, limit)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Int("page", page).Msg("paginated heroes query failed")
		metrics.StoreDegradedReads.WithLabelValues("list").Inc()
		return domain.HeroPage{Heroes: []domain.Hero{}, CurrentPage: page, TotalPages: 1, TotalHeroes: 0}
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	if totalPages < 1 {
		totalPages = 1
	}
	return domain.HeroPage{Heroes: heroes, CurrentPage: page, TotalPages: totalPages, TotalHeroes: total}
}

// AdjacentHero finds the neighbour of id in id order.
func (s *Service) AdjacentHero(ctx context.Context, id int64, direction string) (*domain.Hero, error) {
	dir := repository.Direction(strings.ToLower(strings.TrimSpace(direction)))
	if dir != repository.DirectionPrev && dir != repository.DirectionNext {
		return nil, ErrInvalidDirection
	}

	h, err := s.store.FindAdjacent(ctx, id, dir)
	if err != nil {
		if !errors.Is(err, repository.ErrHeroNotFound) {
			logging.Ctx(ctx).Warn().Err(err).Int64("hero_id", id).Msg("adjacent hero lookup failed")
			metrics.StoreDegradedReads.WithLabelValues("adjacent").Inc()
		}
		return nil, ErrNotFound
	}
	return h, nil
}
