package repository

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
	"unicode"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Maximillionair/eksamen-superhelter/internal/domain"
)

// Timeouts bound every store call.
type Timeouts struct {
	Read  time.Duration
	Count time.Duration
	Write time.Duration
}

func DefaultTimeouts() Timeouts {
	return Timeouts{Read: 8 * time.Second, Count: 5 * time.Second, Write: 8 * time.Second}
}

const likeEscape = ` ESCAPE '\'`

type HeroRepository struct {
	db       *gorm.DB
	timeouts Timeouts
}

func NewHeroRepository(db *gorm.DB, timeouts Timeouts) *HeroRepository {
	def := DefaultTimeouts()
	if timeouts.Read <= 0 {
		timeouts.Read = def.Read
	}
	if timeouts.Count <= 0 {
		timeouts.Count = def.Count
	}
	if timeouts.Write <= 0 {
		timeouts.Write = def.Write
	}
	return &HeroRepository{db: db, timeouts: timeouts}
}

func (r *HeroRepository) FindByID(ctx context.Context, id int64) (*domain.Hero, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeouts.Read)
	defer cancel()

	var m heroModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrHeroNotFound
	}
	if err != nil {
		return nil, wrapDBErr(ctx, "find hero", err)
	}
	h := toDomainHero(m)
	return &h, nil
}

// Upsert inserts the hero or refreshes every catalog column of the existing
// row. The favorites counter is never touched. The stored row is returned.
func (r *HeroRepository) Upsert(ctx context.Context, h *domain.Hero) (*domain.Hero, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeouts.Write)
	defer cancel()

	m := toHeroModel(h)
	m.FavoritesCount = 0

	db := r.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(heroRefreshColumns),
	}).Create(&m).Error
	if err != nil {
		return nil, wrapDBErr(ctx, "upsert hero", err)
	}

	var stored heroModel
	if err := db.First(&stored, "id = ?", h.ID).Error; err != nil {
		return nil, wrapDBErr(ctx, "reload hero", err)
	}
	out := toDomainHero(stored)
	return &out, nil
}

// FindPage returns heroes in id order together with the total count.
func (r *HeroRepository) FindPage(ctx context.Context, skip, limit int) ([]domain.Hero, int64, error) {
	heroes, err := r.findOrdered(ctx, "find page", func(q *gorm.DB) *gorm.DB {
		return q.Order("id ASC").Offset(skip).Limit(limit)
	})
	if err != nil {
		return nil, 0, err
	}
	total, err := r.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return heroes, total, nil
}

func (r *HeroRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeouts.Count)
	defer cancel()

	var total int64
	if err := r.db.WithContext(ctx).Model(&heroModel{}).Count(&total).Error; err != nil {
		return 0, wrapDBErr(ctx, "count heroes", err)
	}
	return total, nil
}

// CountStale counts records last synchronized before cutoff.
func (r *HeroRepository) CountStale(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeouts.Count)
	defer cancel()

	var n int64
	err := r.db.WithContext(ctx).Model(&heroModel{}).Where("fetched_at < ?", cutoff).Count(&n).Error
	if err != nil {
		return 0, wrapDBErr(ctx, "count stale heroes", err)
	}
	return n, nil
}

// SearchText matches whole query tokens against name, full name and
// publisher. Results are ordered by the number of matching token
// occurrences, ties broken by id. Every candidate is scored; only the
// matching columns are read until the winners are known.
func (r *HeroRepository) SearchText(ctx context.Context, query string, limit int) ([]domain.Hero, error) {
	tokens := tokenize(query)
	if len(tokens) == 0 {
		return []domain.Hero{}, nil
	}

	candidates, err := r.textCandidates(ctx, tokens)
	if err != nil {
		return nil, err
	}

	type scored struct {
		id    int64
		score int
	}
	hits := make([]scored, 0, len(candidates))
	for _, m := range candidates {
		if s := textScore(tokens, m.Name, m.Biography.FullName, m.Biography.Publisher); s > 0 {
			hits = append(hits, scored{id: m.ID, score: s})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].id < hits[j].id
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	if len(hits) == 0 {
		return []domain.Hero{}, nil
	}

	ids := make([]int64, len(hits))
	for i := range hits {
		ids[i] = hits[i].id
	}
	found, err := r.findOrdered(ctx, "text search", func(q *gorm.DB) *gorm.DB {
		return q.Where("id IN ?", ids)
	})
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]domain.Hero, len(found))
	for _, h := range found {
		byID[h.ID] = h
	}
	out := make([]domain.Hero, 0, len(ids))
	for _, id := range ids {
		if h, ok := byID[id]; ok {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r *HeroRepository) textCandidates(ctx context.Context, tokens []string) ([]heroModel, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeouts.Read)
	defer cancel()

	cond := r.db.Session(&gorm.Session{NewDB: true})
	for i, tok := range tokens {
		pattern := "%" + escapeLike(tok) + "%"
		if i == 0 {
			cond = cond.Where("search_key LIKE ?"+likeEscape, pattern)
		} else {
			cond = cond.Or("search_key LIKE ?"+likeEscape, pattern)
		}
	}

	var rows []heroModel
	err := r.db.WithContext(ctx).Model(&heroModel{}).
		Select("id", "name", "biography_full_name", "biography_publisher").
		Where(cond).
		Find(&rows).Error
	if err != nil {
		return nil, wrapDBErr(ctx, "text search", err)
	}
	return rows, nil
}

// SearchSubstring is a case-insensitive contains match on the same fields
// as SearchText, in id order.
func (r *HeroRepository) SearchSubstring(ctx context.Context, query string, limit int) ([]domain.Hero, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []domain.Hero{}, nil
	}
	pattern := "%" + escapeLike(query) + "%"

	return r.findOrdered(ctx, "substring search", func(q *gorm.DB) *gorm.DB {
		return q.Where("search_key LIKE ?"+likeEscape, pattern).Order("id ASC").Limit(limit)
	})
}

// TopFavorited returns heroes with at least one favorite, most popular first.
func (r *HeroRepository) TopFavorited(ctx context.Context, limit int) ([]domain.Hero, error) {
	return r.findOrdered(ctx, "top favorited", func(q *gorm.DB) *gorm.DB {
		return q.Where("favorites_count > 0").Order("favorites_count DESC").Order("id ASC").Limit(limit)
	})
}

// FindByIDs returns the stored subset of ids in id order.
func (r *HeroRepository) FindByIDs(ctx context.Context, ids []int64) ([]domain.Hero, error) {
	if len(ids) == 0 {
		return []domain.Hero{}, nil
	}
	return r.findOrdered(ctx, "find heroes by ids", func(q *gorm.DB) *gorm.DB {
		return q.Where("id IN ?", ids).Order("id ASC")
	})
}

type Direction string

const (
	DirectionPrev Direction = "prev"
	DirectionNext Direction = "next"
)

// FindAdjacent returns the closest stored hero below (prev) or above (next) id.
func (r *HeroRepository) FindAdjacent(ctx context.Context, id int64, dir Direction) (*domain.Hero, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeouts.Read)
	defer cancel()

	q := r.db.WithContext(ctx)
	switch dir {
	case DirectionPrev:
		q = q.Where("id < ?", id).Order("id DESC")
	case DirectionNext:
		q = q.Where("id > ?", id).Order("id ASC")
	default:
		return nil, ErrHeroNotFound
	}

	var m heroModel
	err := q.Limit(1).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrHeroNotFound
	}
	if err != nil {
		return nil, wrapDBErr(ctx, "find adjacent hero", err)
	}
	h := toDomainHero(m)
	return &h, nil
}

// IncrementFavoritesCount adds delta to the counter, never going below zero.
func (r *HeroRepository) IncrementFavoritesCount(ctx context.Context, id int64, delta int64) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeouts.Write)
	defer cancel()

	return wrapDBErr(ctx, "increment favorites", incrementFavorites(r.db.WithContext(ctx), id, delta))
}

// Delete removes the given heroes and reports how many rows went away.
func (r *HeroRepository) Delete(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeouts.Write)
	defer cancel()

	res := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&heroModel{})
	if res.Error != nil {
		return 0, wrapDBErr(ctx, "delete heroes", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *HeroRepository) findOrdered(ctx context.Context, op string, scope func(*gorm.DB) *gorm.DB) ([]domain.Hero, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeouts.Read)
	defer cancel()

	var rows []heroModel
	if err := scope(r.db.WithContext(ctx).Model(&heroModel{})).Find(&rows).Error; err != nil {
		return nil, wrapDBErr(ctx, op, err)
	}
	out := make([]domain.Hero, len(rows))
	for i := range rows {
		out[i] = toDomainHero(rows[i])
	}
	return out, nil
}

func incrementFavorites(db *gorm.DB, id int64, delta int64) error {
	if delta == 0 {
		return nil
	}
	return db.Model(&heroModel{}).
		Where("id = ?", id).
		UpdateColumn("favorites_count",
			gorm.Expr("CASE WHEN favorites_count + ? < 0 THEN 0 ELSE favorites_count + ? END", delta, delta)).
		Error
}

func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

func textScore(tokens []string, fields ...string) int {
	words := make(map[string]int)
	for _, field := range fields {
		for _, w := range strings.FieldsFunc(strings.ToLower(field), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		}) {
			words[w]++
		}
	}
	score := 0
	for _, t := range tokens {
		score += words[t]
	}
	return score
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
