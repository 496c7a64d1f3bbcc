package server

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"gitwrap/internal/config"
	"gitwrap/internal/constants"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

func NewOAuthConfig(cfg *config.Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.GitHubClientID,
		ClientSecret: cfg.GitHubClientSecret,
		RedirectURL:  cfg.GitHubRedirectURL,
		Scopes:       []string{"read:user", "repo", "read:org"},
		Endpoint:     github.Endpoint,
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.oauth.ClientID == "" {
		writeError(w, http.StatusInternalServerError, "GitHub OAuth is not configured")
		return
	}

	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     constants.OAuthStateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   int(constants.OAuthStateMaxAge / time.Second),
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, s.oauth.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// handleCallback trades the authorization code for an access token and keeps
// it in an http-only cookie for the dashboard. Failures redirect to the
// frontend error page.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	log := s.requestLogger(r)

	code := r.URL.Query().Get("code")
	if code == "" {
		log.Error().Msg("no code provided in callback")
		s.redirectError(w, r, "No code provided")
		return
	}

	// a state cookie exists only when the flow started at /api/auth/login
	if stateCookie, err := r.Cookie(constants.OAuthStateCookieName); err == nil {
		if r.URL.Query().Get("state") != stateCookie.Value {
			log.Error().Msg("invalid oauth state")
			s.redirectError(w, r, "Invalid OAuth state")
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:   constants.OAuthStateCookieName,
			Path:   "/",
			MaxAge: -1,
		})
	}

	ctx, cancel := context.WithTimeout(r.Context(), constants.ExternalAPITimeout)
	defer cancel()

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		log.Error().Err(err).Msg("failed to exchange oauth code")
		s.redirectError(w, r, "Authentication failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    token.AccessToken,
		Path:     "/",
		MaxAge:   int(constants.SessionCookieMaxAge / time.Second),
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	log.Info().Msg("oauth login completed")
	http.Redirect(w, r, s.cfg.AppBaseURL+"/dashboard", http.StatusTemporaryRedirect)
}

func (s *Server) redirectError(w http.ResponseWriter, r *http.Request, message string) {
	target := s.cfg.AppBaseURL + "/error?message=" + url.QueryEscape(message)
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}
