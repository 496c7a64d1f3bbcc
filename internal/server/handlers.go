package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"gitwrap/internal/constants"
	"gitwrap/internal/domain"
)

func (s *Server) handlePublicProfile(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.PathValue("username"))
	if username == "" {
		writeError(w, http.StatusBadRequest, "Username is required")
		return
	}

	stats, err := s.profiles.GetPublicProfile(r.Context(), username)
	if err != nil {
		s.requestLogger(r).Error().Err(err).Str("username", username).Msg("failed to fetch public profile")
		writeError(w, http.StatusInternalServerError, constants.GenericFetchError)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleSelfProfile(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(constants.SessionCookieName)
	if err != nil || cookie.Value == "" {
		writeError(w, http.StatusUnauthorized, constants.NotAuthenticated)
		return
	}

	stats, err := s.profiles.GetSelfProfile(r.Context(), cookie.Value)
	if errors.Is(err, domain.ErrAuthRequired) {
		writeError(w, http.StatusUnauthorized, constants.NotAuthenticated)
		return
	}
	if err != nil {
		s.requestLogger(r).Error().Err(err).Msg("failed to fetch own profile")
		writeError(w, http.StatusInternalServerError, constants.GenericFetchError)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	page, err := intParam(r, "page", constants.LeaderboardDefaultPage)
	if err != nil {
		writeError(w, http.StatusBadRequest, constants.InvalidParameters)
		return
	}
	limit, err := intParam(r, "limit", constants.LeaderboardDefaultLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, constants.InvalidParameters)
		return
	}

	board, err := s.profiles.GetLeaderboard(r.Context(), page, limit)
	var paramErr *domain.InvalidParamError
	if errors.As(err, &paramErr) {
		writeError(w, http.StatusBadRequest, constants.InvalidParameters)
		return
	}
	if err != nil {
		s.requestLogger(r).Error().Err(err).Msg("failed to fetch leaderboard")
		writeError(w, http.StatusInternalServerError, constants.LeaderboardFailure)
		return
	}

	writeJSON(w, http.StatusOK, board)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.PathValue("username"))
	if username == "" {
		writeError(w, http.StatusBadRequest, "Username is required")
		return
	}
	limit, err := intParam(r, "limit", constants.HistoryDefaultLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, constants.InvalidParameters)
		return
	}

	history, err := s.profiles.GetHistory(r.Context(), username, limit)
	var paramErr *domain.InvalidParamError
	if errors.As(err, &paramErr) {
		writeError(w, http.StatusBadRequest, constants.InvalidParameters)
		return
	}
	if err != nil {
		s.requestLogger(r).Error().Err(err).Str("username", username).Msg("failed to fetch history")
		writeError(w, http.StatusInternalServerError, "Failed to fetch history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"username": strings.ToLower(username),
		"history":  history,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
