package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gitwrap/internal/api"
	"gitwrap/internal/domain"
	"gitwrap/internal/metrics"
	"gitwrap/internal/scoring"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, time.October, 15, 9, 30, 0, 0, time.UTC)

func newTestStatsService(gh GitHub, limit int) (*StatsService, *metrics.Metrics) {
	m := metrics.New(prometheus.NewRegistry())
	s := newStatsService(gh, limit, m, zerolog.Nop())
	s.now = func() time.Time { return testNow }
	return s, m
}

func twoRepos() []domain.RepoSummary {
	return []domain.RepoSummary{
		{Name: "a", DefaultBranch: "main", StargazersCount: 5, ForksCount: 2, LanguagesURL: "lang/a"},
		{Name: "b", DefaultBranch: "dev", StargazersCount: 3, ForksCount: 0, LanguagesURL: "lang/b"},
	}
}

func TestComputeStatsUnauthenticated(t *testing.T) {
	t.Parallel()

	gh := &fakeGitHub{
		GetUserFunc: func(_ context.Context, handle, _ string) (*api.UserResponse, error) {
			return &api.UserResponse{Login: "octocat", AvatarURL: "https://a/1"}, nil
		},
		ListRepositoriesFunc: func(context.Context, string, string) ([]domain.RepoSummary, error) {
			return twoRepos(), nil
		},
		GetLanguagesFunc: func(_ context.Context, url, _ string) (map[string]int64, error) {
			if url == "lang/a" {
				return map[string]int64{"Python": 300}, nil
			}
			return map[string]int64{"Go": 100}, nil
		},
		GetCommitCountFunc: func(_ context.Context, _, repo, branch, _ string) int {
			if repo == "a" && branch == "main" {
				return 40
			}
			return 2
		},
	}
	s, _ := newTestStatsService(gh, 4)

	stats, err := s.ComputeStats(context.Background(), "Octocat", "")
	require.NoError(t, err)

	assert.Equal(t, "Octocat", stats.Name, "name falls back to the handle")
	assert.Equal(t, "octocat", stats.Username)
	assert.Equal(t, "GitHub Developer", stats.Bio)
	assert.Equal(t, 8, stats.TotalStars)
	assert.Equal(t, 2, stats.TotalForks)
	assert.Equal(t, 42, stats.TotalCommits)
	assert.Equal(t, map[string]int{"Python": 75, "Go": 25}, stats.Languages)
	assert.Equal(t, domain.Achievements{}, stats.Achievements)
	assert.NotNil(t, stats.Contributions)
	assert.Empty(t, stats.Contributions)
	assert.Equal(t, scoring.PowerLevel(42, 8, 2, 2), stats.PowerLevel)
	assert.Zero(t, gh.totalCalls)
}

func TestComputeStatsAuthenticated(t *testing.T) {
	t.Parallel()

	weeks := make([]api.ContributionWeek, 53)
	day := 0
	for w := range weeks {
		for range 7 {
			weeks[w].ContributionDays = append(weeks[w].ContributionDays, api.ContributionDay{
				Date:              fmt.Sprintf("d%03d", day),
				ContributionCount: day % 3,
			})
			day++
		}
	}

	gh := &fakeGitHub{
		GetUserFunc: func(context.Context, string, string) (*api.UserResponse, error) {
			return &api.UserResponse{Login: "me", Name: "Me", Bio: "hi"}, nil
		},
		ListRepositoriesFunc: func(context.Context, string, string) ([]domain.RepoSummary, error) {
			return twoRepos(), nil
		},
		GetTotalFunc: func(context.Context, string, time.Time, time.Time) int { return 135 },
		GetCalendarFunc: func(context.Context, string, time.Time, time.Time) (*api.ContributionsCollection, error) {
			return &api.ContributionsCollection{
				ContributionCalendar: &api.ContributionCalendar{Weeks: weeks},
				CommitContributionsByRepository: []api.RepositoryContribution{
					repoContribution("b", 5),
					repoContribution("a", 90),
				},
			}, nil
		},
	}
	s, _ := newTestStatsService(gh, 8)

	stats, err := s.ComputeStats(context.Background(), "me", "tok")
	require.NoError(t, err)

	assert.Equal(t, 135, stats.TotalCommits)
	assert.Zero(t, gh.commitCalls, "per-repo commit counts are not used with a token")
	assert.Equal(t, "Me", stats.Name)
	assert.Equal(t, "hi", stats.Bio)

	require.Len(t, stats.Contributions, 364)
	assert.Equal(t, "d007", stats.Contributions[0].Date)
	assert.Equal(t, "d370", stats.Contributions[363].Date)

	// counts cycle 0,1,2 so every run of non-zero days is 2 long
	assert.Equal(t, 2, stats.Achievements.LongestStreak)
	assert.Equal(t, domain.MostActiveDay{Date: "d002", Count: 2, Repository: "a"}, stats.Achievements.MostActiveDay)
	assert.Equal(t, domain.TopRepository{Name: "a", Commits: 90}, stats.Achievements.TopRepository)

	assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), gh.calendarArg[0])
	assert.Equal(t, testNow, gh.calendarArg[1])
	assert.Equal(t, testNow.Add(-365*24*time.Hour), gh.totalArg[0])
	assert.Equal(t, testNow, gh.totalArg[1])
}

func TestComputeStatsCalendarFailureDegrades(t *testing.T) {
	t.Parallel()

	gh := &fakeGitHub{
		GetTotalFunc: func(context.Context, string, time.Time, time.Time) int { return 9 },
	}
	s, m := newTestStatsService(gh, 2)

	stats, err := s.ComputeStats(context.Background(), "me", "tok")
	require.NoError(t, err)
	assert.Equal(t, 9, stats.TotalCommits)
	assert.Equal(t, domain.Achievements{}, stats.Achievements)
	assert.Empty(t, stats.Contributions)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Degradations.WithLabelValues("calendar")))
}

func TestComputeStatsLanguageFailureIsSkipped(t *testing.T) {
	t.Parallel()

	gh := &fakeGitHub{
		ListRepositoriesFunc: func(context.Context, string, string) ([]domain.RepoSummary, error) {
			return []domain.RepoSummary{
				{Name: "ok", LanguagesURL: "lang/ok", StargazersCount: 1},
				{Name: "broken", LanguagesURL: "lang/broken", StargazersCount: 1},
				{Name: "bare", StargazersCount: 1},
			}, nil
		},
		GetLanguagesFunc: func(_ context.Context, url, _ string) (map[string]int64, error) {
			if url == "lang/broken" {
				return nil, &domain.UpstreamError{Endpoint: "languages", StatusCode: 500}
			}
			if url == "" {
				return nil, errors.New("repos without a languages url must not be fetched")
			}
			return map[string]int64{"Rust": 10}, nil
		},
	}
	s, m := newTestStatsService(gh, 8)

	stats, err := s.ComputeStats(context.Background(), "octocat", "")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Rust": 100}, stats.Languages)
	assert.Equal(t, 3, stats.TotalStars)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Degradations.WithLabelValues("languages")))
}

func TestComputeStatsZeroRepos(t *testing.T) {
	t.Parallel()

	s, _ := newTestStatsService(&fakeGitHub{}, 8)

	stats, err := s.ComputeStats(context.Background(), "newbie", "")
	require.NoError(t, err)
	assert.Zero(t, stats.TotalStars)
	assert.Zero(t, stats.TotalForks)
	assert.Zero(t, stats.TotalCommits)
	assert.Empty(t, stats.Languages)
	assert.Zero(t, stats.PowerLevel)
}

func TestComputeStatsLoadBearingFailures(t *testing.T) {
	t.Parallel()

	userErr := &domain.UpstreamError{Endpoint: "user", StatusCode: 404}
	s, _ := newTestStatsService(&fakeGitHub{
		GetUserFunc: func(context.Context, string, string) (*api.UserResponse, error) { return nil, userErr },
	}, 8)
	_, err := s.ComputeStats(context.Background(), "ghost", "")
	var upstream *domain.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, 404, upstream.StatusCode)

	repoErr := &domain.InvalidShapeError{What: "repository data"}
	s, _ = newTestStatsService(&fakeGitHub{
		ListRepositoriesFunc: func(context.Context, string, string) ([]domain.RepoSummary, error) { return nil, repoErr },
	}, 8)
	_, err = s.ComputeStats(context.Background(), "octocat", "")
	var shape *domain.InvalidShapeError
	require.ErrorAs(t, err, &shape)
}

func TestComputeStatsBoundedFanout(t *testing.T) {
	t.Parallel()

	repos := make([]domain.RepoSummary, 40)
	for i := range repos {
		repos[i] = domain.RepoSummary{Name: fmt.Sprintf("r%d", i), LanguagesURL: fmt.Sprintf("lang/%d", i)}
	}

	var inFlight, peak atomic.Int32
	track := func() func() {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		return func() { inFlight.Add(-1) }
	}

	gh := &fakeGitHub{
		ListRepositoriesFunc: func(context.Context, string, string) ([]domain.RepoSummary, error) { return repos, nil },
		GetLanguagesFunc: func(context.Context, string, string) (map[string]int64, error) {
			defer track()()
			return map[string]int64{"Go": 1}, nil
		},
		GetCommitCountFunc: func(context.Context, string, string, string, string) int {
			defer track()()
			return 1
		},
	}
	s, _ := newTestStatsService(gh, 3)

	stats, err := s.ComputeStats(context.Background(), "busy", "")
	require.NoError(t, err)
	assert.Equal(t, 40, stats.TotalCommits)
	assert.Equal(t, map[string]int{"Go": 100}, stats.Languages)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestComputeStatsMemberTimeout(t *testing.T) {
	t.Parallel()

	gh := &fakeGitHub{
		ListRepositoriesFunc: func(context.Context, string, string) ([]domain.RepoSummary, error) {
			return twoRepos(), nil
		},
		GetCommitCountFunc: func(ctx context.Context, _, repo, _, _ string) int {
			if repo == "a" {
				<-ctx.Done()
				return 0
			}
			return 3
		},
	}
	s, _ := newTestStatsService(gh, 8)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	stats, err := s.ComputeStats(ctx, "octocat", "")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalCommits)
}
