package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/readershaven/readershaven/core"
	"github.com/readershaven/readershaven/pkg/cookie"
	"github.com/readershaven/readershaven/pkg/environment"
	"github.com/readershaven/readershaven/pkg/token"
)

// CSRF issues double-submit tokens: a readable cookie the SPA copies into a
// request header on every mutating call.
type CSRF struct {
	cookies *cookie.Manager
	cfg     Config
	env     environment.Config
}

func NewCSRF(cookies *cookie.Manager, cfg Config, env environment.Config) *CSRF {
	return &CSRF{cookies: cookies, cfg: cfg, env: env}
}

// IssueHandler mints a fresh token, sets the readable cookie and returns the
// token in the body.
func (c *CSRF) IssueHandler(w http.ResponseWriter, r *http.Request) {
	t, err := token.Generate(32)
	if err != nil {
		core.FailFromError(w, err)
		return
	}

	c.cookies.Set(w, c.cfg.CSRFCookieName, t,
		cookie.WithHTTPOnly(false),
		cookie.WithSameSite(http.SameSiteLaxMode),
		cookie.WithSecure(c.env.IsStrictProduction()),
		cookie.WithMaxAge(int(c.cfg.CSRFTTL.Seconds())),
	)

	core.OK(w, map[string]string{"csrfToken": t}, "CSRF token issued")
}

// Verify rejects mutating requests whose header token does not match the
// cookie. Safe methods pass through untouched.
func (c *CSRF) Verify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		cookieToken, err := c.cookies.Get(r, c.cfg.CSRFCookieName)
		if err != nil || cookieToken == "" {
			core.Fail(w, core.ErrForbidden.WithMessage("Invalid CSRF token"))
			return
		}

		headerToken := r.Header.Get("X-CSRF-Token")
		if headerToken == "" {
			headerToken = r.Header.Get("X-XSRF-Token")
		}

		if subtle.ConstantTimeCompare([]byte(cookieToken), []byte(headerToken)) != 1 {
			core.Fail(w, core.ErrForbidden.WithMessage("Invalid CSRF token"))
			return
		}

		next.ServeHTTP(w, r)
	})
}
