package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gitwrap/internal/constants"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	GitHubAPIURL       string
	GitHubGraphQLURL   string
	GitHubClientID     string
	GitHubClientSecret string
	GitHubRedirectURL  string
	AppBaseURL         string
	DBPath             string
	ServerPort         string
	LogLevel           string
	CacheTTL           time.Duration
	FanoutLimit        int
	CookieSecure       bool
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", constants.StatsCacheTTL.String()))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}

	fanout, err := strconv.Atoi(getEnv("FANOUT_LIMIT", strconv.Itoa(constants.DefaultFanoutLimit)))
	if err != nil || fanout < 1 {
		return nil, fmt.Errorf("invalid FANOUT_LIMIT %q", os.Getenv("FANOUT_LIMIT"))
	}

	cookieSecure, err := strconv.ParseBool(getEnv("COOKIE_SECURE", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid COOKIE_SECURE: %w", err)
	}

	cfg := &Config{
		GitHubAPIURL:       getEnv("GITHUB_API_URL", "https://api.github.com"),
		GitHubGraphQLURL:   getEnv("GITHUB_GRAPHQL_URL", "https://api.github.com/graphql"),
		GitHubClientID:     getEnv("GITHUB_CLIENT_ID", ""),
		GitHubClientSecret: getEnv("GITHUB_CLIENT_SECRET", ""),
		GitHubRedirectURL:  getEnv("GITHUB_REDIRECT_URL", ""),
		AppBaseURL:         getEnv("APP_BASE_URL", "http://localhost:3000"),
		DBPath:             getEnv("DB_PATH", "gitwrap.db"),
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CacheTTL:           cacheTTL,
		FanoutLimit:        fanout,
		CookieSecure:       cookieSecure,
	}

	if cfg.GitHubClientID == "" || cfg.GitHubClientSecret == "" {
		logger.Warn().Msg("GitHub OAuth credentials are not set, authentication routes will not work")
	}

	logger.Info().
		Str("github_api_url", cfg.GitHubAPIURL).
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Dur("cache_ttl", cfg.CacheTTL).
		Int("fanout_limit", cfg.FanoutLimit).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)
