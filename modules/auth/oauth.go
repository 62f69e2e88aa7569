package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/google"

	"github.com/readershaven/readershaven/core"
	"github.com/readershaven/readershaven/pkg/environment"
	"github.com/readershaven/readershaven/pkg/logger"
	"github.com/readershaven/readershaven/pkg/token"
)

const (
	googleUserinfoURL  = "https://www.googleapis.com/oauth2/v2/userinfo"
	facebookProfileURL = "https://graph.facebook.com/me?fields=id,name,email"
)

// StateStore persists one-time OAuth state values between the redirect to
// the provider and its callback.
type StateStore interface {
	// Save stores the state for the given TTL.
	Save(ctx context.Context, state string, ttl time.Duration) error
	// Consume removes the state and reports whether it existed.
	Consume(ctx context.Context, state string) (bool, error)
}

// providerProfile is the normalized identity a provider hands back.
type providerProfile struct {
	ID    string
	Name  string
	Email string
}

// OAuthService runs the delegated login flows for the closed provider set.
// A provider without credentials never gets its routes mounted.
type OAuthService struct {
	users    UserRepository
	sessions *SessionManager
	states   StateStore
	cfg      Config
	env      environment.Config
	log      *slog.Logger

	google   *oauth2.Config
	facebook *oauth2.Config
}

func NewOAuthService(
	users UserRepository,
	sessions *SessionManager,
	states StateStore,
	cfg Config,
	env environment.Config,
	log *slog.Logger,
) *OAuthService {
	s := &OAuthService{
		users:    users,
		sessions: sessions,
		states:   states,
		cfg:      cfg,
		env:      env,
		log:      log,
	}

	if cfg.GoogleEnabled() {
		s.google = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  cfg.OAuthCallbackBase + "/auth/google/callback",
			Scopes:       []string{"openid", "profile", "email"},
		}
	}
	if cfg.FacebookEnabled() {
		s.facebook = &oauth2.Config{
			ClientID:     cfg.FacebookClientID,
			ClientSecret: cfg.FacebookClientSecret,
			Endpoint:     facebook.Endpoint,
			RedirectURL:  cfg.OAuthCallbackBase + "/auth/facebook/callback",
			Scopes:       []string{"email", "public_profile"},
		}
	}

	return s
}

func (s *OAuthService) config(provider Provider) *oauth2.Config {
	switch provider {
	case ProviderGoogle:
		return s.google
	case ProviderFacebook:
		return s.facebook
	default:
		return nil
	}
}

// Begin redirects the browser to the provider's consent screen with a fresh
// one-time state.
func (s *OAuthService) Begin(provider Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := s.config(provider)
		if cfg == nil {
			core.Fail(w, core.ErrNotFound.WithMessage("Unknown OAuth provider"))
			return
		}

		state, err := token.Generate(16)
		if err != nil {
			core.FailFromError(w, err)
			return
		}
		if err := s.states.Save(r.Context(), state, s.cfg.OAuthStateTTL); err != nil {
			s.log.ErrorContext(r.Context(), "failed to save oauth state", logger.Error(err), logger.Provider(string(provider)))
			core.FailFromError(w, err)
			return
		}

		http.Redirect(w, r, cfg.AuthCodeURL(state), http.StatusTemporaryRedirect)
	}
}

// Callback completes the flow: state check, code exchange, profile fetch,
// account resolution, session issuance, redirect back to the frontend with
// the token in the query string.
func (s *OAuthService) Callback(provider Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := s.config(provider)
		if cfg == nil {
			core.Fail(w, core.ErrNotFound.WithMessage("Unknown OAuth provider"))
			return
		}

		state := r.URL.Query().Get("state")
		ok, err := s.states.Consume(r.Context(), state)
		if err != nil || !ok {
			core.Fail(w, core.ErrBadRequest.WithMessage("Invalid OAuth state"))
			return
		}

		code := r.URL.Query().Get("code")
		if code == "" {
			core.Fail(w, core.ErrBadRequest.WithMessage("Missing authorization code"))
			return
		}

		tok, err := cfg.Exchange(r.Context(), code)
		if err != nil {
			s.log.ErrorContext(r.Context(), "oauth code exchange failed", logger.Error(err), logger.Provider(string(provider)))
			core.Fail(w, core.ErrBadGateway.WithMessage("OAuth exchange failed"))
			return
		}

		profile, err := s.fetchProfile(r.Context(), cfg, provider, tok)
		if err != nil {
			s.log.ErrorContext(r.Context(), "oauth profile fetch failed", logger.Error(err), logger.Provider(string(provider)))
			core.Fail(w, core.ErrBadGateway.WithMessage("OAuth profile fetch failed"))
			return
		}

		user, err := s.findOrCreate(r.Context(), provider, profile)
		if err != nil {
			s.log.ErrorContext(r.Context(), "oauth account resolution failed", logger.Error(err), logger.Provider(string(provider)))
			core.FailFromError(w, err)
			return
		}

		sessionToken, err := s.sessions.Issue(w, user, true)
		if err != nil {
			core.FailFromError(w, err)
			return
		}

		redirect := fmt.Sprintf("%s/home?token=%s&name=%s",
			s.env.FrontendURL,
			url.QueryEscape(sessionToken),
			url.QueryEscape(user.Name),
		)
		http.Redirect(w, r, redirect, http.StatusFound)
	}
}

func (s *OAuthService) fetchProfile(ctx context.Context, cfg *oauth2.Config, provider Provider, tok *oauth2.Token) (providerProfile, error) {
	var endpoint string
	switch provider {
	case ProviderGoogle:
		endpoint = googleUserinfoURL
	case ProviderFacebook:
		endpoint = facebookProfileURL
	default:
		return providerProfile{}, ErrProviderDisabled
	}

	resp, err := cfg.Client(ctx, tok).Get(endpoint)
	if err != nil {
		return providerProfile{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return providerProfile{}, fmt.Errorf("profile endpoint answered %d", resp.StatusCode)
	}

	var raw struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return providerProfile{}, err
	}
	if raw.ID == "" {
		return providerProfile{}, ErrProfileIncomplete
	}

	return providerProfile{ID: raw.ID, Name: raw.Name, Email: raw.Email}, nil
}

// findOrCreate resolves the provider identity to an account: exact provider
// link first, then email attach, then a fresh account seeded from the
// profile. Providers that withhold the email get a synthetic one.
func (s *OAuthService) findOrCreate(ctx context.Context, provider Provider, profile providerProfile) (*User, error) {
	user, err := s.users.ByProviderID(ctx, provider, profile.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	if profile.Email != "" {
		user, err = s.users.ByEmail(ctx, profile.Email)
		if err == nil {
			if err := s.users.AttachProvider(ctx, user.ID.Hex(), provider, profile.ID); err != nil {
				return nil, err
			}
			return s.users.ByID(ctx, user.ID.Hex())
		}
		if !errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
	}

	name := profile.Name
	if name == "" {
		switch provider {
		case ProviderGoogle:
			name = "Google User"
		case ProviderFacebook:
			name = "Facebook User"
		}
	}
	emailAddr := profile.Email
	if emailAddr == "" {
		emailAddr = fmt.Sprintf("%s@%s.local", profile.ID, provider)
	}

	user = &User{
		Name:       name,
		Email:      emailAddr,
		Provider:   provider,
		ProviderID: profile.ID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
