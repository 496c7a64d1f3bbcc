package service

import (
	"context"
	"fmt"
	"strconv"

	"gitwrap/internal/constants"
	"gitwrap/internal/domain"
	"gitwrap/internal/repository"
	"gitwrap/internal/scoring"

	"github.com/rs/zerolog"
)

type StatsCache interface {
	GetCached(ctx context.Context, handle string) *domain.CachedRecord
	PutCached(ctx context.Context, handle string, stats *domain.UserStats)
	GetLeaderboard(ctx context.Context, page, limit int) ([]domain.CachedRecord, int, error)
	GetHistory(ctx context.Context, handle string, limit int) ([]domain.StatsSnapshot, error)
}

type ProfileService struct {
	stats  *StatsService
	cache  StatsCache
	logger zerolog.Logger
}

func NewProfileService(stats *StatsService, cache *repository.StatsCacheRepository, logger zerolog.Logger) *ProfileService {
	return newProfileService(stats, cache, logger)
}

func newProfileService(stats *StatsService, cache StatsCache, logger zerolog.Logger) *ProfileService {
	return &ProfileService{stats: stats, cache: cache, logger: logger}
}

// GetPublicProfile computes an unauthenticated profile and overlays any fresh
// cached contribution data. The result is never written back.
func (s *ProfileService) GetPublicProfile(ctx context.Context, handle string) (*domain.UserStats, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	fresh, err := s.stats.ComputeStats(ctx, handle, "")
	if err != nil {
		return nil, err
	}

	cached := s.cache.GetCached(ctx, handle)
	if cached == nil {
		s.logger.Debug().Str("username", handle).Msg("no fresh cache entry, returning public stats")
		return fresh, nil
	}

	merged := domain.MergeWithCache(*fresh, *cached)
	merged.PowerLevel = scoring.PowerLevel(merged.TotalCommits, merged.TotalStars, merged.TotalForks, len(merged.Languages))

	s.logger.Info().
		Str("username", handle).
		Time("cached_at", cached.UpdatedAt).
		Int("power_level", merged.PowerLevel).
		Msg("merged public stats with cached contributions")
	return &merged, nil
}

// GetSelfProfile resolves the token's owner, computes their authenticated
// profile and stores it.
func (s *ProfileService) GetSelfProfile(ctx context.Context, token string) (*domain.UserStats, error) {
	if token == "" {
		return nil, domain.ErrAuthRequired
	}

	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	viewerCtx, viewerCancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	viewer, err := s.stats.github.GetViewer(viewerCtx, token)
	viewerCancel()
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to resolve viewer")
		return nil, fmt.Errorf("failed to resolve viewer: %w", err)
	}

	stats, err := s.stats.ComputeStats(ctx, viewer.Login, token)
	if err != nil {
		return nil, err
	}

	s.cache.PutCached(ctx, viewer.Login, stats)
	return stats, nil
}

func (s *ProfileService) GetLeaderboard(ctx context.Context, page, limit int) (*domain.Leaderboard, error) {
	if page < 1 {
		return nil, &domain.InvalidParamError{Param: "page", Value: strconv.Itoa(page)}
	}
	if limit < 1 || limit > constants.LeaderboardMaxLimit {
		return nil, &domain.InvalidParamError{Param: "limit", Value: strconv.Itoa(limit)}
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	users, total, err := s.cache.GetLeaderboard(ctx, page, limit)
	if err != nil {
		s.logger.Error().Err(err).Int("page", page).Int("limit", limit).Msg("failed to fetch leaderboard")
		return nil, fmt.Errorf("failed to fetch leaderboard: %w", err)
	}

	return &domain.Leaderboard{
		Users:      users,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

func (s *ProfileService) GetHistory(ctx context.Context, handle string, limit int) ([]domain.StatsSnapshot, error) {
	if limit < 1 || limit > constants.HistoryMaxLimit {
		return nil, &domain.InvalidParamError{Param: "limit", Value: strconv.Itoa(limit)}
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	history, err := s.cache.GetHistory(ctx, handle, limit)
	if err != nil {
		s.logger.Error().Err(err).Str("username", handle).Msg("failed to fetch history")
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}
	return history, nil
}
