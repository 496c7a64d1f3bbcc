package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gitwrap/internal/config"
	"gitwrap/internal/constants"
	"gitwrap/internal/db"
	"gitwrap/internal/domain"
	"gitwrap/internal/metrics"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// StatsCacheRepository is the read-through store for computed profiles. Keys
// are lowercased handles; staleness is judged on read and nothing is evicted.
type StatsCacheRepository struct {
	queries *db.Queries
	db      *sql.DB
	ttl     time.Duration
	now     func() time.Time
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewStatsCacheRepository(sqlDB *sql.DB, queries *db.Queries, cfg *config.Config, m *metrics.Metrics, logger zerolog.Logger) *StatsCacheRepository {
	return &StatsCacheRepository{
		queries: queries,
		db:      sqlDB,
		ttl:     cfg.CacheTTL,
		now:     time.Now,
		metrics: m,
		logger:  logger,
	}
}

// WithClock swaps the time source used for stamping and staleness.
func (r *StatsCacheRepository) WithClock(now func() time.Time) *StatsCacheRepository {
	r.now = now
	return r
}

func cacheKey(handle string) string {
	return strings.ToLower(strings.TrimSpace(handle))
}

// GetCached returns nil when there is no record, when it is older than the
// TTL, or when the store cannot be read.
func (r *StatsCacheRepository) GetCached(ctx context.Context, handle string) *domain.CachedRecord {
	key := cacheKey(handle)

	row, err := r.queries.GetUserStats(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		r.metrics.CacheLookups.WithLabelValues(metrics.CacheMiss).Inc()
		r.logger.Debug().Str("username", key).Msg("no cached stats")
		return nil
	}
	if err != nil {
		r.metrics.CacheLookups.WithLabelValues(metrics.CacheError).Inc()
		r.logger.Error().Err(err).Str("username", key).Msg("failed to read cached stats")
		return nil
	}

	age := r.now().Sub(row.UpdatedAt)
	if age > r.ttl {
		r.metrics.CacheLookups.WithLabelValues(metrics.CacheStale).Inc()
		r.logger.Debug().
			Str("username", key).
			Time("updated_at", row.UpdatedAt).
			Dur("age", age).
			Dur("ttl", r.ttl).
			Msg("cached stats are stale, will refresh")
		return nil
	}

	record, err := toCachedRecord(row)
	if err != nil {
		r.metrics.CacheLookups.WithLabelValues(metrics.CacheError).Inc()
		r.logger.Error().Err(err).Str("username", key).Msg("failed to decode cached stats")
		return nil
	}

	r.metrics.CacheLookups.WithLabelValues(metrics.CacheHit).Inc()
	return record
}

// PutCached upserts the full record and appends a history snapshot. Errors are
// logged and dropped; callers never fail because of the cache.
func (r *StatsCacheRepository) PutCached(ctx context.Context, handle string, stats *domain.UserStats) {
	if err := r.put(ctx, cacheKey(handle), stats); err != nil {
		r.metrics.CacheWrites.WithLabelValues(metrics.OutcomeError).Inc()
		r.logger.Error().Err(err).Str("username", cacheKey(handle)).Msg("failed to cache stats")
		return
	}
	r.metrics.CacheWrites.WithLabelValues(metrics.OutcomeOK).Inc()
	r.logger.Info().Str("username", cacheKey(handle)).Int("power_level", stats.PowerLevel).Msg("cached stats")
}

func (r *StatsCacheRepository) put(ctx context.Context, key string, stats *domain.UserStats) error {
	languages, err := json.Marshal(nonNilLanguages(stats.Languages))
	if err != nil {
		return fmt.Errorf("failed to encode languages: %w", err)
	}
	achievements, err := json.Marshal(stats.Achievements)
	if err != nil {
		return fmt.Errorf("failed to encode achievements: %w", err)
	}
	contributions, err := json.Marshal(nonNilContributions(stats.Contributions))
	if err != nil {
		return fmt.Errorf("failed to encode contributions: %w", err)
	}

	snapshotID, err := gonanoid.New()
	if err != nil {
		return fmt.Errorf("failed to generate nanoid: %w", err)
	}

	now := r.now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)

	login := stats.Username
	if login == "" {
		login = key
	}

	err = qtx.UpsertUserStats(ctx, db.UpsertUserStatsParams{
		Username:      key,
		Login:         login,
		Name:          stats.Name,
		AvatarUrl:     stats.AvatarURL,
		Bio:           stats.Bio,
		PowerLevel:    int64(stats.PowerLevel),
		TotalCommits:  int64(stats.TotalCommits),
		TotalStars:    int64(stats.TotalStars),
		TotalForks:    int64(stats.TotalForks),
		Languages:     string(languages),
		Achievements:  string(achievements),
		Contributions: string(contributions),
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert stats for %s: %w", key, err)
	}

	err = qtx.InsertStatsSnapshot(ctx, db.InsertStatsSnapshotParams{
		ID:           snapshotID,
		Username:     key,
		PowerLevel:   int64(stats.PowerLevel),
		TotalCommits: int64(stats.TotalCommits),
		RecordedAt:   now,
	})
	if err != nil {
		return fmt.Errorf("failed to insert snapshot for %s: %w", key, err)
	}

	return tx.Commit()
}

// GetLeaderboard ranks every stored record, stale ones included, by power level.
// Total is the unfiltered record count.
func (r *StatsCacheRepository) GetLeaderboard(ctx context.Context, page, limit int) ([]domain.CachedRecord, int, error) {
	total, err := r.queries.CountUserStats(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count cached stats: %w", err)
	}

	rows, err := r.queries.ListUserStatsByPowerLevel(ctx, db.ListUserStatsByPowerLevelParams{
		Limit:  int64(limit),
		Offset: int64((page - 1) * limit),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list cached stats: %w", err)
	}

	users := make([]domain.CachedRecord, 0, len(rows))
	for _, row := range rows {
		record, err := toCachedRecord(row)
		if err != nil {
			r.logger.Warn().Err(err).Str("username", row.Username).Msg("skipping undecodable leaderboard row")
			continue
		}
		users = append(users, *record)
	}

	return users, int(total), nil
}

func (r *StatsCacheRepository) GetHistory(ctx context.Context, handle string, limit int) ([]domain.StatsSnapshot, error) {
	if limit <= 0 {
		limit = constants.HistoryDefaultLimit
	}

	rows, err := r.queries.ListStatsSnapshots(ctx, db.ListStatsSnapshotsParams{
		Username: cacheKey(handle),
		Limit:    int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	result := make([]domain.StatsSnapshot, len(rows))
	for i, s := range rows {
		result[i] = domain.StatsSnapshot{
			ID:           s.ID,
			Username:     s.Username,
			PowerLevel:   int(s.PowerLevel),
			TotalCommits: int(s.TotalCommits),
			RecordedAt:   s.RecordedAt,
		}
	}
	return result, nil
}

func toCachedRecord(row db.UserStat) (*domain.CachedRecord, error) {
	record := &domain.CachedRecord{
		UserStats: domain.UserStats{
			Name:         row.Name,
			Username:     row.Login,
			AvatarURL:    row.AvatarUrl,
			Bio:          row.Bio,
			PowerLevel:   int(row.PowerLevel),
			TotalCommits: int(row.TotalCommits),
			TotalStars:   int(row.TotalStars),
			TotalForks:   int(row.TotalForks),
		},
		UpdatedAt: row.UpdatedAt,
	}

	if err := json.Unmarshal([]byte(row.Languages), &record.Languages); err != nil {
		return nil, fmt.Errorf("failed to decode languages: %w", err)
	}
	if err := json.Unmarshal([]byte(row.Achievements), &record.Achievements); err != nil {
		return nil, fmt.Errorf("failed to decode achievements: %w", err)
	}
	if err := json.Unmarshal([]byte(row.Contributions), &record.Contributions); err != nil {
		return nil, fmt.Errorf("failed to decode contributions: %w", err)
	}

	record.Languages = nonNilLanguages(record.Languages)
	record.Contributions = nonNilContributions(record.Contributions)
	return record, nil
}

func nonNilLanguages(m map[string]int) map[string]int {
	if m == nil {
		return map[string]int{}
	}
	return m
}

func nonNilContributions(c []domain.ContributionDay) []domain.ContributionDay {
	if c == nil {
		return []domain.ContributionDay{}
	}
	return c
}
