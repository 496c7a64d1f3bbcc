package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"gitwrap/internal/config"
	"gitwrap/internal/constants"
	"gitwrap/internal/domain"
	"gitwrap/internal/metrics"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

const (
	userAgent     = "gitwrap/1.0"
	acceptHeader  = "application/vnd.github+json"
	maxLoggedBody = 2048
)

const (
	endpointUser      = "user"
	endpointViewer    = "viewer"
	endpointRepos     = "repos"
	endpointLanguages = "languages"
	endpointCommits   = "commits"
	endpointCalendar  = "graphql_calendar"
	endpointTotal     = "graphql_total"
)

type GitHubClient struct {
	baseURL     string
	graphqlURL  string
	client      *fasthttp.Client
	logger      zerolog.Logger
	metrics     *metrics.Metrics
	rateLimitMu sync.RWMutex
	rateLimit   RateLimitInfo
}

type RateLimitInfo struct {
	Resource  string `json:"resource"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`

	// when the window resets
	Reset time.Time `json:"reset"`

	UpdatedAt time.Time `json:"updated_at"`
}

func NewGitHubClient(cfg *config.Config, logger zerolog.Logger, m *metrics.Metrics) *GitHubClient {
	return &GitHubClient{
		baseURL:    cfg.GitHubAPIURL,
		graphqlURL: cfg.GitHubGraphQLURL,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        constants.ExternalAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		logger:  logger,
		metrics: m,
		rateLimit: RateLimitInfo{
			Limit:     60,
			Remaining: 60,
			UpdatedAt: time.Now(),
		},
	}
}

func (c *GitHubClient) GetRateLimitInfo() RateLimitInfo {
	c.rateLimitMu.RLock()
	defer c.rateLimitMu.RUnlock()
	return c.rateLimit
}

func (c *GitHubClient) updateRateLimit(resp *fasthttp.Response) {
	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()

	if resource := string(resp.Header.Peek("X-Ratelimit-Resource")); resource != "" {
		c.rateLimit.Resource = resource
	}
	if limit := string(resp.Header.Peek("X-Ratelimit-Limit")); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil {
			c.rateLimit.Limit = val
		}
	}
	if remaining := string(resp.Header.Peek("X-Ratelimit-Remaining")); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			c.rateLimit.Remaining = val
			if val <= constants.RateLimitLowWater {
				c.logger.Warn().
					Str("resource", c.rateLimit.Resource).
					Int("remaining", val).
					Msg("github rate limit nearly exhausted")
			}
		}
	}
	if reset := string(resp.Header.Peek("X-Ratelimit-Reset")); reset != "" {
		if val, err := strconv.ParseInt(reset, 10, 64); err == nil {
			c.rateLimit.Reset = time.Unix(val, 0)
		}
	}
	c.rateLimit.UpdatedAt = time.Now()
}

func (c *GitHubClient) GetUser(ctx context.Context, handle, token string) (*UserResponse, error) {
	endpoint := fmt.Sprintf("%s/users/%s", c.baseURL, url.PathEscape(handle))
	return doRequest[UserResponse](ctx, c, endpointUser, endpoint, token)
}

func (c *GitHubClient) GetViewer(ctx context.Context, token string) (*UserResponse, error) {
	if token == "" {
		return nil, domain.ErrAuthRequired
	}

	endpoint := fmt.Sprintf("%s/user", c.baseURL)
	user, err := doRequest[UserResponse](ctx, c, endpointViewer, endpoint, token)
	if err != nil {
		return nil, err
	}
	if user.Login == "" {
		c.logger.Error().Msg("viewer response has no login")
		return nil, &domain.InvalidShapeError{What: "user data"}
	}
	return user, nil
}

func (c *GitHubClient) ListRepositories(ctx context.Context, handle, token string) ([]domain.RepoSummary, error) {
	endpoint := fmt.Sprintf("%s/users/%s/repos?per_page=%d", c.baseURL, url.PathEscape(handle), constants.RepoPageSize)

	resp, err := c.do(ctx, endpointRepos, fasthttp.MethodGet, endpoint, token, nil)
	if err != nil {
		return nil, &domain.UpstreamError{Endpoint: endpointRepos, Err: err}
	}
	if !resp.ok() {
		c.logFailure(endpointRepos, resp)
		return nil, &domain.UpstreamError{Endpoint: endpointRepos, StatusCode: resp.status}
	}

	trimmed := bytes.TrimSpace(resp.body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		c.logger.Error().Str("body", truncate(resp.body)).Msg("unexpected repos response")
		return nil, &domain.InvalidShapeError{What: "repository data"}
	}

	var repos []RepoResponse
	if err := json.Unmarshal(trimmed, &repos); err != nil {
		return nil, fmt.Errorf("failed to decode repositories: %w", err)
	}

	result := make([]domain.RepoSummary, len(repos))
	for i, r := range repos {
		result[i] = domain.RepoSummary{
			Name:            r.Name,
			DefaultBranch:   r.DefaultBranch,
			StargazersCount: r.StargazersCount,
			ForksCount:      r.ForksCount,
			LanguagesURL:    r.LanguagesURL,
		}
	}
	return result, nil
}

func (c *GitHubClient) GetLanguages(ctx context.Context, languagesURL, token string) (map[string]int64, error) {
	langs, err := doRequest[map[string]int64](ctx, c, endpointLanguages, languagesURL, token)
	if err != nil {
		return nil, err
	}
	return *langs, nil
}

// GetCommitCount reads the author's commit total from the pagination of a
// one-per-page listing. It never fails: any error counts as zero commits.
func (c *GitHubClient) GetCommitCount(ctx context.Context, handle, repo, branch, token string) int {
	params := url.Values{}
	params.Set("author", handle)
	params.Set("per_page", "1")
	if branch != "" {
		params.Set("sha", branch)
	}
	endpoint := fmt.Sprintf("%s/repos/%s/%s/commits?%s",
		c.baseURL, url.PathEscape(handle), url.PathEscape(repo), params.Encode())

	resp, err := c.do(ctx, endpointCommits, fasthttp.MethodGet, endpoint, token, nil)
	if err != nil {
		c.logger.Warn().Err(err).Str("repo", repo).Msg("failed to fetch commits")
		return 0
	}
	if !resp.ok() {
		c.logger.Debug().Int("status", resp.status).Str("repo", repo).Msg("commit listing not available")
		return 0
	}
	if resp.link == "" {
		return 1
	}
	if last, ok := lastPage(resp.link); ok {
		return last
	}
	return 1
}

func (c *GitHubClient) GetContributionCalendar(ctx context.Context, token string, from, to time.Time) (*ContributionsCollection, error) {
	if token == "" {
		return nil, domain.ErrAuthRequired
	}

	data, err := doGraphQL[viewerData](ctx, c, endpointCalendar, calendarQuery, token, map[string]any{
		"from": from.UTC().Format(time.RFC3339),
		"to":   to.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, err
	}
	if data.Viewer == nil || data.Viewer.ContributionsCollection == nil || data.Viewer.ContributionsCollection.ContributionCalendar == nil {
		c.logger.Error().Msg("invalid graphql response structure")
		return nil, &domain.GraphQLError{Message: "invalid graphql response structure"}
	}
	return data.Viewer.ContributionsCollection, nil
}

// GetContributionTotal returns commits + PRs + issues + reviews + restricted
// contributions in [from, to], or 0 on any failure.
func (c *GitHubClient) GetContributionTotal(ctx context.Context, token string, from, to time.Time) int {
	if token == "" {
		return 0
	}

	data, err := doGraphQL[viewerData](ctx, c, endpointTotal, totalQuery, token, map[string]any{
		"from": from.UTC().Format(time.RFC3339),
		"to":   to.UTC().Format(time.RFC3339),
	})
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to fetch contribution total")
		return 0
	}
	if data.Viewer == nil || data.Viewer.ContributionsCollection == nil {
		c.logger.Warn().Msg("contribution total response has no viewer")
		return 0
	}

	cc := data.Viewer.ContributionsCollection
	total := cc.TotalCommitContributions +
		cc.TotalPullRequestContributions +
		cc.TotalIssueContributions +
		cc.TotalPullRequestReviewContributions +
		cc.RestrictedContributionsCount

	c.logger.Debug().
		Int("commits", cc.TotalCommitContributions).
		Int("prs", cc.TotalPullRequestContributions).
		Int("issues", cc.TotalIssueContributions).
		Int("reviews", cc.TotalPullRequestReviewContributions).
		Int("restricted", cc.RestrictedContributionsCount).
		Int("total", total).
		Msg("contribution breakdown")

	return total
}

type response struct {
	status int
	body   []byte
	link   string
}

func (r *response) ok() bool {
	return r.status >= fasthttp.StatusOK && r.status < fasthttp.StatusMultipleChoices
}

func (c *GitHubClient) do(ctx context.Context, endpoint, method, uri, token string, payload []byte) (*response, error) {
	if err := ctx.Err(); err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(endpoint, metrics.OutcomeError).Inc()
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(uri)
	req.Header.SetMethod(method)
	c.applyHeaders(req, token)
	if payload != nil {
		req.Header.SetContentType("application/json")
		req.SetBodyRaw(payload)
	}

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.Do(req, resp)
	}
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(endpoint, metrics.OutcomeError).Inc()
		return nil, err
	}

	c.updateRateLimit(resp)

	out := &response{
		status: resp.StatusCode(),
		body:   append([]byte(nil), resp.Body()...),
		link:   string(resp.Header.Peek("Link")),
	}

	switch {
	case out.ok():
		c.metrics.UpstreamRequests.WithLabelValues(endpoint, metrics.OutcomeOK).Inc()
	case out.status == fasthttp.StatusNotFound:
		c.metrics.UpstreamRequests.WithLabelValues(endpoint, metrics.OutcomeNotFound).Inc()
	default:
		c.metrics.UpstreamRequests.WithLabelValues(endpoint, metrics.OutcomeError).Inc()
	}
	return out, nil
}

func (c *GitHubClient) applyHeaders(req *fasthttp.Request, token string) {
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("User-Agent", userAgent)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (c *GitHubClient) logFailure(endpoint string, resp *response) {
	c.logger.Error().
		Str("endpoint", endpoint).
		Int("status", resp.status).
		Str("body", truncate(resp.body)).
		Msg("github api error")
}

func doRequest[T any](ctx context.Context, client *GitHubClient, endpoint, uri, token string) (*T, error) {
	resp, err := client.do(ctx, endpoint, fasthttp.MethodGet, uri, token, nil)
	if err != nil {
		return nil, &domain.UpstreamError{Endpoint: endpoint, Err: err}
	}
	if !resp.ok() {
		client.logFailure(endpoint, resp)
		return nil, &domain.UpstreamError{Endpoint: endpoint, StatusCode: resp.status}
	}

	var result T
	if err := json.Unmarshal(resp.body, &result); err != nil {
		return nil, &domain.InvalidShapeError{What: endpoint + " response"}
	}
	return &result, nil
}

func doGraphQL[T any](ctx context.Context, client *GitHubClient, endpoint, query, token string, variables map[string]any) (*T, error) {
	payload, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("failed to encode graphql request: %w", err)
	}

	resp, err := client.do(ctx, endpoint, fasthttp.MethodPost, client.graphqlURL, token, payload)
	if err != nil {
		return nil, &domain.UpstreamError{Endpoint: endpoint, Err: err}
	}
	if !resp.ok() {
		client.logFailure(endpoint, resp)
		return nil, &domain.UpstreamError{Endpoint: endpoint, StatusCode: resp.status}
	}

	var result graphQLResponse[T]
	if err := json.Unmarshal(resp.body, &result); err != nil {
		return nil, &domain.GraphQLError{Message: "undecodable response"}
	}
	if len(result.Errors) > 0 {
		client.logger.Error().Str("endpoint", endpoint).Interface("errors", result.Errors).Msg("graphql errors")
		return nil, &domain.GraphQLError{Message: result.Errors[0].Message}
	}
	if result.Data == nil {
		return nil, &domain.GraphQLError{Message: "response has no data"}
	}
	return result.Data, nil
}

func truncate(body []byte) string {
	if len(body) > maxLoggedBody {
		return string(body[:maxLoggedBody]) + "..."
	}
	return string(body)
}
