package constants

import "time"

const (
	StatsCacheTTL = 24 * time.Hour
)

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 60 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout   = 5 * time.Second
	ReadHeaderTimeout = 10 * time.Second
)

const (
	// GitHub caps per_page at 100
	RepoPageSize       = 100
	DefaultFanoutLimit = 8
	RateLimitLowWater  = 10
)

const (
	// 52 weeks
	ContributionWindowDays = 52 * 7
	ContributionTotalSpan  = 365 * 24 * time.Hour
)

const (
	LeaderboardDefaultPage  = 1
	LeaderboardDefaultLimit = 10
	LeaderboardMaxLimit     = 50
	HistoryDefaultLimit     = 30
	HistoryMaxLimit         = 365
)

const (
	SessionCookieName    = "github_token"
	SessionCookieMaxAge  = 24 * time.Hour
	OAuthStateCookieName = "oauthstate"
	OAuthStateMaxAge     = 10 * time.Minute
)

const (
	DefaultBio         = "GitHub Developer"
	UnknownRepository  = "Unknown"
	GenericFetchError  = "Failed to fetch user data"
	NotAuthenticated   = "Not authenticated"
	InvalidParameters  = "Invalid parameters"
	LeaderboardFailure = "Failed to fetch leaderboard"
)
