package favorite

import (
	"context"
	"errors"
	"strings"

	"github.com/Maximillionair/eksamen-superhelter/internal/domain"
	"github.com/Maximillionair/eksamen-superhelter/internal/logging"
	"github.com/Maximillionair/eksamen-superhelter/internal/metrics"
	"github.com/Maximillionair/eksamen-superhelter/internal/repository"
)

const defaultTopLimit = 10

type Outcome string

const (
	OutcomeAdded            Outcome = "added"
	OutcomeAlreadyFavorited Outcome = "already_favorited"
	OutcomeReasonUpdated    Outcome = "reason_updated"
	OutcomeRemoved          Outcome = "removed"
	OutcomeNotFavorited     Outcome = "not_favorited"
)

type Result struct {
	Outcome        Outcome `json:"outcome"`
	HeroID         int64   `json:"heroId"`
	FavoritesCount int64   `json:"favoritesCount"`
}

type Service struct {
	ledger    LedgerStore
	heroes    HeroReader
	users     UserReader
	publisher Publisher
	topLimit  int
}

// NewService builds the ledger. publisher may be nil.
func NewService(ledger LedgerStore, heroes HeroReader, users UserReader, publisher Publisher, topLimit int) *Service {
	if topLimit <= 0 {
		topLimit = defaultTopLimit
	}
	return &Service{
		ledger:    ledger,
		heroes:    heroes,
		users:     users,
		publisher: publisher,
		topLimit:  topLimit,
	}
}

// AddFavorite records heroID as a favorite of userID. A reason on an
// existing favorite replaces the stored one without touching the counter.
func (s *Service) AddFavorite(ctx context.Context, userID, heroID int64, reason *string) (*Result, error) {
	if heroID < 1 {
		return nil, ErrInvalidHeroID
	}
	reason = normalizeReason(reason)

	var outcome Outcome
	_, count, err := s.ledger.Apply(ctx, userID, heroID, true, func(acc *domain.UserAccount) (int64, error) {
		if acc.HasFavorite(heroID) {
			if reason == nil {
				outcome = OutcomeAlreadyFavorited
				return 0, nil
			}
			setReason(acc, heroID, *reason)
			outcome = OutcomeReasonUpdated
			return 0, nil
		}

		acc.FavoriteHeroes = append(acc.FavoriteHeroes, heroID)
		if reason != nil {
			setReason(acc, heroID, *reason)
		}
		outcome = OutcomeAdded
		return 1, nil
	})
	if err != nil {
		return nil, s.fail(ctx, "add", userID, heroID, err)
	}

	s.record(ctx, outcome, userID, heroID, count)
	return &Result{Outcome: outcome, HeroID: heroID, FavoritesCount: count}, nil
}

// RemoveFavorite drops heroID and its reason. The hero record itself may
// already be gone.
func (s *Service) RemoveFavorite(ctx context.Context, userID, heroID int64) (*Result, error) {
	if heroID < 1 {
		return nil, ErrInvalidHeroID
	}

	var outcome Outcome
	_, count, err := s.ledger.Apply(ctx, userID, heroID, false, func(acc *domain.UserAccount) (int64, error) {
		if !acc.HasFavorite(heroID) {
			outcome = OutcomeNotFavorited
			return 0, nil
		}

		ids := acc.FavoriteHeroes[:0:0]
		for _, id := range acc.FavoriteHeroes {
			if id != heroID {
				ids = append(ids, id)
			}
		}
		reasons := acc.FavoriteReasons[:0:0]
		for _, r := range acc.FavoriteReasons {
			if r.HeroID != heroID {
				reasons = append(reasons, r)
			}
		}
		acc.FavoriteHeroes = ids
		acc.FavoriteReasons = reasons
		outcome = OutcomeRemoved
		return -1, nil
	})
	if err != nil {
		return nil, s.fail(ctx, "remove", userID, heroID, err)
	}

	s.record(ctx, outcome, userID, heroID, count)
	return &Result{Outcome: outcome, HeroID: heroID, FavoritesCount: count}, nil
}

// TopFavorited lists the most favorited heroes. Store failures yield an
// empty list.
func (s *Service) TopFavorited(ctx context.Context, limit int) []domain.Hero {
	if limit <= 0 {
		limit = s.topLimit
	}
	heroes, err := s.heroes.TopFavorited(ctx, limit)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("top favorited query failed")
		metrics.StoreDegradedReads.WithLabelValues("top_favorited").Inc()
		return []domain.Hero{}
	}
	return heroes
}

// ListFavorites resolves the user's favorites in the order they were added.
// Favorites whose hero record is missing are skipped.
func (s *Service) ListFavorites(ctx context.Context, userID int64) ([]domain.FavoriteEntry, error) {
	acc, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	entries := make([]domain.FavoriteEntry, 0, len(acc.FavoriteHeroes))
	if len(acc.FavoriteHeroes) == 0 {
		return entries, nil
	}

	heroes, err := s.heroes.FindByIDs(ctx, acc.FavoriteHeroes)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Int64("user_id", userID).Msg("resolving favorites failed")
		metrics.StoreDegradedReads.WithLabelValues("list_favorites").Inc()
		return entries, nil
	}

	byID := make(map[int64]domain.Hero, len(heroes))
	for _, h := range heroes {
		byID[h.ID] = h
	}
	for _, id := range acc.FavoriteHeroes {
		h, ok := byID[id]
		if !ok {
			continue
		}
		reason, _ := acc.ReasonFor(id)
		entries = append(entries, domain.FavoriteEntry{Hero: h, Reason: reason})
	}
	return entries, nil
}

func (s *Service) record(ctx context.Context, outcome Outcome, userID, heroID, count int64) {
	metrics.FavoriteMutations.WithLabelValues(string(outcome)).Inc()

	var eventType domain.FavoriteEventType
	switch outcome {
	case OutcomeAdded:
		eventType = domain.EventFavoriteAdded
	case OutcomeRemoved:
		eventType = domain.EventFavoriteRemoved
	case OutcomeReasonUpdated:
		eventType = domain.EventReasonUpdated
	default:
		return
	}

	logging.Ctx(ctx).Info().
		Str("outcome", string(outcome)).
		Int64("user_id", userID).
		Int64("hero_id", heroID).
		Int64("favorites_count", count).
		Msg("favorites ledger updated")

	if s.publisher != nil {
		s.publisher.Publish(domain.FavoriteEvent{
			Type:           eventType,
			HeroID:         heroID,
			UserID:         userID,
			FavoritesCount: count,
		})
	}
}

func (s *Service) fail(ctx context.Context, op string, userID, heroID int64, err error) error {
	metrics.FavoriteMutations.WithLabelValues("error").Inc()
	switch {
	case errors.Is(err, repository.ErrHeroNotFound):
		return ErrHeroNotFound
	case errors.Is(err, repository.ErrUserNotFound):
		return ErrUserNotFound
	}
	logging.Ctx(ctx).Error().Err(err).
		Str("op", op).
		Int64("user_id", userID).
		Int64("hero_id", heroID).
		Msg("favorites ledger write failed")
	return err
}

// normalizeReason treats a blank reason as no reason.
func normalizeReason(reason *string) *string {
	if reason == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*reason)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func setReason(acc *domain.UserAccount, heroID int64, reason string) {
	for i := range acc.FavoriteReasons {
		if acc.FavoriteReasons[i].HeroID == heroID {
			acc.FavoriteReasons[i].Reason = reason
			return
		}
	}
	acc.FavoriteReasons = append(acc.FavoriteReasons, domain.FavoriteReason{HeroID: heroID, Reason: reason})
}
