package service

import (
	"context"
	"sync"
	"time"

	"gitwrap/internal/api"
	"gitwrap/internal/domain"
)

type fakeGitHub struct {
	GetUserFunc          func(ctx context.Context, handle, token string) (*api.UserResponse, error)
	GetViewerFunc        func(ctx context.Context, token string) (*api.UserResponse, error)
	ListRepositoriesFunc func(ctx context.Context, handle, token string) ([]domain.RepoSummary, error)
	GetLanguagesFunc     func(ctx context.Context, languagesURL, token string) (map[string]int64, error)
	GetCommitCountFunc   func(ctx context.Context, handle, repo, branch, token string) int
	GetCalendarFunc      func(ctx context.Context, token string, from, to time.Time) (*api.ContributionsCollection, error)
	GetTotalFunc         func(ctx context.Context, token string, from, to time.Time) int

	mu          sync.Mutex
	commitCalls int
	totalCalls  int
	calendarArg [2]time.Time
	totalArg    [2]time.Time
}

func (f *fakeGitHub) GetUser(ctx context.Context, handle, token string) (*api.UserResponse, error) {
	if f.GetUserFunc != nil {
		return f.GetUserFunc(ctx, handle, token)
	}
	return &api.UserResponse{Login: handle}, nil
}

func (f *fakeGitHub) GetViewer(ctx context.Context, token string) (*api.UserResponse, error) {
	if f.GetViewerFunc != nil {
		return f.GetViewerFunc(ctx, token)
	}
	return &api.UserResponse{Login: "viewer"}, nil
}

func (f *fakeGitHub) ListRepositories(ctx context.Context, handle, token string) ([]domain.RepoSummary, error) {
	if f.ListRepositoriesFunc != nil {
		return f.ListRepositoriesFunc(ctx, handle, token)
	}
	return nil, nil
}

func (f *fakeGitHub) GetLanguages(ctx context.Context, languagesURL, token string) (map[string]int64, error) {
	if f.GetLanguagesFunc != nil {
		return f.GetLanguagesFunc(ctx, languagesURL, token)
	}
	return map[string]int64{}, nil
}

func (f *fakeGitHub) GetCommitCount(ctx context.Context, handle, repo, branch, token string) int {
	f.mu.Lock()
	f.commitCalls++
	f.mu.Unlock()
	if f.GetCommitCountFunc != nil {
		return f.GetCommitCountFunc(ctx, handle, repo, branch, token)
	}
	return 0
}

func (f *fakeGitHub) GetContributionCalendar(ctx context.Context, token string, from, to time.Time) (*api.ContributionsCollection, error) {
	f.mu.Lock()
	f.calendarArg = [2]time.Time{from, to}
	f.mu.Unlock()
	if f.GetCalendarFunc != nil {
		return f.GetCalendarFunc(ctx, token, from, to)
	}
	return nil, &domain.GraphQLError{Message: "no calendar"}
}

func (f *fakeGitHub) GetContributionTotal(ctx context.Context, token string, from, to time.Time) int {
	f.mu.Lock()
	f.totalCalls++
	f.totalArg = [2]time.Time{from, to}
	f.mu.Unlock()
	if f.GetTotalFunc != nil {
		return f.GetTotalFunc(ctx, token, from, to)
	}
	return 0
}

type fakeCache struct {
	mu      sync.Mutex
	records map[string]*domain.CachedRecord
	puts    []string
	board   []domain.CachedRecord
	total   int
	err     error
	history []domain.StatsSnapshot
}

func newFakeCache() *fakeCache {
	return &fakeCache{records: map[string]*domain.CachedRecord{}}
}

func (c *fakeCache) GetCached(_ context.Context, handle string) *domain.CachedRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.records[handle]
}

func (c *fakeCache) PutCached(_ context.Context, handle string, stats *domain.UserStats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.puts = append(c.puts, handle)
	c.records[handle] = &domain.CachedRecord{UserStats: stats.Copy(), UpdatedAt: time.Now()}
}

func (c *fakeCache) GetLeaderboard(_ context.Context, page, limit int) ([]domain.CachedRecord, int, error) {
	if c.err != nil {
		return nil, 0, c.err
	}
	return c.board, c.total, nil
}

func (c *fakeCache) GetHistory(_ context.Context, handle string, limit int) ([]domain.StatsSnapshot, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.history, nil
}
