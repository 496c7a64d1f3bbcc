package service

import (
	"context"
	"fmt"
	"time"

	"gitwrap/internal/api"
	"gitwrap/internal/config"
	"gitwrap/internal/constants"
	"gitwrap/internal/domain"
	"gitwrap/internal/metrics"
	"gitwrap/internal/scoring"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// GitHub is the subset of the upstream client the aggregation needs.
type GitHub interface {
	GetUser(ctx context.Context, handle, token string) (*api.UserResponse, error)
	GetViewer(ctx context.Context, token string) (*api.UserResponse, error)
	ListRepositories(ctx context.Context, handle, token string) ([]domain.RepoSummary, error)
	GetLanguages(ctx context.Context, languagesURL, token string) (map[string]int64, error)
	GetCommitCount(ctx context.Context, handle, repo, branch, token string) int
	GetContributionCalendar(ctx context.Context, token string, from, to time.Time) (*api.ContributionsCollection, error)
	GetContributionTotal(ctx context.Context, token string, from, to time.Time) int
}

type StatsService struct {
	github      GitHub
	fanoutLimit int
	now         func() time.Time
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

func NewStatsService(github *api.GitHubClient, cfg *config.Config, m *metrics.Metrics, logger zerolog.Logger) *StatsService {
	return newStatsService(github, cfg.FanoutLimit, m, logger)
}

func newStatsService(github GitHub, fanoutLimit int, m *metrics.Metrics, logger zerolog.Logger) *StatsService {
	if fanoutLimit <= 0 {
		fanoutLimit = constants.DefaultFanoutLimit
	}
	return &StatsService{
		github:      github,
		fanoutLimit: fanoutLimit,
		now:         time.Now,
		metrics:     m,
		logger:      logger,
	}
}

// ComputeStats builds the full profile for handle. With a token the commit
// total and calendar come from the viewer's contributions; without one the
// commit total is summed from per-repository listings and achievements stay
// empty. Only the profile and repository listing can fail the call.
func (s *StatsService) ComputeStats(ctx context.Context, handle, token string) (*domain.UserStats, error) {
	log := s.logger.With().Str("username", handle).Bool("authenticated", token != "").Logger()
	log.Info().Msg("computing stats")

	user, err := s.fetchUser(ctx, handle, token)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch user")
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	repos, err := s.fetchRepositories(ctx, handle, token)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch repositories")
		return nil, fmt.Errorf("failed to fetch repositories: %w", err)
	}

	var stars, forks int
	for _, r := range repos {
		stars += r.StargazersCount
		forks += r.ForksCount
	}

	languages := computeLanguageShares(s.fetchLanguageBytes(ctx, repos, token, log))

	var commits domain.CommitSource
	if token != "" {
		now := s.now()
		totalCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
		commits = domain.AggregateCommits(s.github.GetContributionTotal(totalCtx, token, now.Add(-constants.ContributionTotalSpan), now))
		cancel()
	} else {
		commits = domain.PerRepoCommits(s.fetchCommitCounts(ctx, handle, repos, token))
	}

	achievements := defaultAchievements()
	contributions := []domain.ContributionDay{}
	if token != "" {
		achievements, contributions = s.fetchCalendar(ctx, token, log)
	}

	stats := &domain.UserStats{
		Name:          firstNonEmpty(user.Name, handle),
		Username:      firstNonEmpty(user.Login, handle),
		AvatarURL:     user.AvatarURL,
		Bio:           firstNonEmpty(user.Bio, constants.DefaultBio),
		TotalCommits:  commits.Total,
		TotalStars:    stars,
		TotalForks:    forks,
		Languages:     languages,
		Achievements:  achievements,
		Contributions: contributions,
	}
	stats.PowerLevel = scoring.PowerLevel(stats.TotalCommits, stats.TotalStars, stats.TotalForks, len(stats.Languages))

	log.Info().
		Int("repos", len(repos)).
		Str("commit_source", string(commits.Kind)).
		Int("commits", stats.TotalCommits).
		Int("stars", stars).
		Int("forks", forks).
		Int("languages", len(languages)).
		Int("power_level", stats.PowerLevel).
		Msg("stats computed")

	return stats, nil
}

func (s *StatsService) fetchUser(ctx context.Context, handle, token string) (*api.UserResponse, error) {
	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()
	return s.github.GetUser(apiCtx, handle, token)
}

func (s *StatsService) fetchRepositories(ctx context.Context, handle, token string) ([]domain.RepoSummary, error) {
	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()
	return s.github.ListRepositories(apiCtx, handle, token)
}

// fetchLanguageBytes returns one byte map per repository, nil where the repo
// has no languages endpoint or the fetch failed.
func (s *StatsService) fetchLanguageBytes(ctx context.Context, repos []domain.RepoSummary, token string, log zerolog.Logger) []map[string]int64 {
	results := make([]map[string]int64, len(repos))

	g := new(errgroup.Group)
	g.SetLimit(s.fanoutLimit)

	for i, repo := range repos {
		if repo.LanguagesURL == "" {
			continue
		}
		g.Go(func() error {
			apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
			defer cancel()

			langs, err := s.github.GetLanguages(apiCtx, repo.LanguagesURL, token)
			if err != nil {
				s.metrics.Degradations.WithLabelValues("languages").Inc()
				log.Warn().Err(err).Str("repo", repo.Name).Msg("failed to fetch languages, skipping repository")
				return nil
			}
			results[i] = langs
			return nil
		})
	}

	_ = g.Wait()
	return results
}

func (s *StatsService) fetchCommitCounts(ctx context.Context, handle string, repos []domain.RepoSummary, token string) []int {
	counts := make([]int, len(repos))

	g := new(errgroup.Group)
	g.SetLimit(s.fanoutLimit)

	for i, repo := range repos {
		g.Go(func() error {
			apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
			defer cancel()

			counts[i] = s.github.GetCommitCount(apiCtx, handle, repo.Name, repo.DefaultBranch, token)
			return nil
		})
	}

	_ = g.Wait()
	return counts
}

func (s *StatsService) fetchCalendar(ctx context.Context, token string, log zerolog.Logger) (domain.Achievements, []domain.ContributionDay) {
	now := s.now().UTC()
	from := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)

	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	collection, err := s.github.GetContributionCalendar(apiCtx, token, from, now)
	if err != nil {
		s.metrics.Degradations.WithLabelValues("calendar").Inc()
		log.Warn().Err(err).Msg("failed to fetch contribution calendar, using empty achievements")
		return defaultAchievements(), []domain.ContributionDay{}
	}

	days := flattenCalendar(collection.ContributionCalendar)
	achievements := computeAchievements(days, collection.CommitContributionsByRepository)
	return achievements, lastDays(days, constants.ContributionWindowDays)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
