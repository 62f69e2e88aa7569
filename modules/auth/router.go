package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RouterOptions bundles the auth services mounted under /auth. OAuth and the
// rate limiter are optional.
type RouterOptions struct {
	Service  *Service
	Sessions *SessionManager
	CSRF     *CSRF
	OAuth    *OAuthService

	// CredentialLimiter throttles the endpoints that accept guessable
	// credentials: register, login, forgot.
	CredentialLimiter func(http.Handler) http.Handler
}

// Router mounts the authentication surface. Every mutating endpoint sits
// behind CSRF verification; OAuth routes appear only for enabled providers.
func Router(opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Get("/csrf", opts.CSRF.IssueHandler)

	r.Group(func(g chi.Router) {
		g.Use(opts.CSRF.Verify)
		if opts.CredentialLimiter != nil {
			g.With(opts.CredentialLimiter).Post("/register", opts.Service.Register)
			g.With(opts.CredentialLimiter).Post("/login", opts.Service.Login)
			g.With(opts.CredentialLimiter).Post("/forgot", opts.Service.Forgot)
		} else {
			g.Post("/register", opts.Service.Register)
			g.Post("/login", opts.Service.Login)
			g.Post("/forgot", opts.Service.Forgot)
		}
		g.Post("/reset", opts.Service.Reset)
		g.Post("/logout", opts.Service.Logout)
	})

	r.With(opts.Sessions.RequireSession).Get("/me", opts.Service.Me)

	if opts.OAuth != nil {
		if opts.OAuth.google != nil {
			r.Get("/google", opts.OAuth.Begin(ProviderGoogle))
			r.Get("/google/callback", opts.OAuth.Callback(ProviderGoogle))
		}
		if opts.OAuth.facebook != nil {
			r.Get("/facebook", opts.OAuth.Begin(ProviderFacebook))
			r.Get("/facebook/callback", opts.OAuth.Callback(ProviderFacebook))
		}
	}

	return r
}
