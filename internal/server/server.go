package server

import (
	"context"
	"encoding/json"
	"net/http"

	"gitwrap/internal/config"
	"gitwrap/internal/domain"
	"gitwrap/internal/metrics"
	"gitwrap/internal/middleware"
	"gitwrap/internal/service"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

type Profiles interface {
	GetPublicProfile(ctx context.Context, handle string) (*domain.UserStats, error)
	GetSelfProfile(ctx context.Context, token string) (*domain.UserStats, error)
	GetLeaderboard(ctx context.Context, page, limit int) (*domain.Leaderboard, error)
	GetHistory(ctx context.Context, handle string, limit int) ([]domain.StatsSnapshot, error)
}

type Server struct {
	profiles Profiles
	oauth    *oauth2.Config
	cfg      *config.Config
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

func NewServer(profiles *service.ProfileService, oauth *oauth2.Config, cfg *config.Config, m *metrics.Metrics, logger zerolog.Logger) *Server {
	return newServer(profiles, oauth, cfg, m, logger)
}

func newServer(profiles Profiles, oauth *oauth2.Config, cfg *config.Config, m *metrics.Metrics, logger zerolog.Logger) *Server {
	return &Server{profiles: profiles, oauth: oauth, cfg: cfg, metrics: m, logger: logger}
}

// Handler returns the full route table wrapped in CORS and request-id logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	s.handle(mux, "GET /api/user/{username}", s.handlePublicProfile)
	s.handle(mux, "GET /api/user/{username}/history", s.handleHistory)
	s.handle(mux, "GET /api/user", s.handleSelfProfile)
	s.handle(mux, "GET /api/leaderboard", s.handleLeaderboard)
	s.handle(mux, "GET /api/auth/login", s.handleLogin)
	s.handle(mux, "GET /api/auth/callback", s.handleCallback)
	s.handle(mux, "GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{s.cfg.AppBaseURL},
		AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	return middleware.RequestID(s.logger)(c.Handler(mux))
}

func (s *Server) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.Handle(pattern, middleware.Observe(s.metrics, pattern, h))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// requestLogger returns the request-scoped logger set by the request-id
// middleware, falling back to the server logger.
func (s *Server) requestLogger(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &s.logger
}
