package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/readershaven/readershaven/core"
	"github.com/readershaven/readershaven/pkg/cookie"
	"github.com/readershaven/readershaven/pkg/environment"
	"github.com/readershaven/readershaven/pkg/jwt"
)

// SessionClaims is the JWT payload: the user's hex id plus expiry.
type SessionClaims struct {
	ID        string `json:"id"`
	ExpiresAt int64  `json:"exp,omitempty"`
	IssuedAt  int64  `json:"iat,omitempty"`
}

// Valid rejects expired claims and claims without a subject.
func (c SessionClaims) Valid() error {
	if c.ID == "" {
		return jwt.ErrMissingClaims
	}
	if c.ExpiresAt > 0 && time.Now().Unix() > c.ExpiresAt {
		return jwt.ErrExpiredToken
	}
	return nil
}

type ctxKey struct{}

// CurrentUser returns the authenticated user attached by RequireSession.
func CurrentUser(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(ctxKey{}).(*User)
	return user, ok
}

// SessionManager signs session tokens and moves them through cookies and
// headers.
type SessionManager struct {
	jwt     *jwt.Service
	cookies *cookie.Manager
	users   UserRepository
	cfg     Config
	env     environment.Config
}

// NewSessionManager wires the token codec to the cookie layer.
func NewSessionManager(jwtSvc *jwt.Service, cookies *cookie.Manager, users UserRepository, cfg Config, env environment.Config) *SessionManager {
	return &SessionManager{
		jwt:     jwtSvc,
		cookies: cookies,
		users:   users,
		cfg:     cfg,
		env:     env,
	}
}

// Issue signs a session token for the user and sets the session cookie.
// Remembered sessions get the full TTL as cookie max-age; otherwise the
// cookie is browser-session scoped while the token keeps its expiry. The
// token is also returned for header-based clients.
func (m *SessionManager) Issue(w http.ResponseWriter, user *User, remember bool) (string, error) {
	now := time.Now()
	token, err := m.jwt.Generate(SessionClaims{
		ID:        user.ID.Hex(),
		ExpiresAt: now.Add(m.cfg.SessionTTL).Unix(),
		IssuedAt:  now.Unix(),
	})
	if err != nil {
		return "", err
	}

	opts := []cookie.Option{
		cookie.WithHTTPOnly(true),
		cookie.WithSameSite(http.SameSiteLaxMode),
		cookie.WithSecure(m.env.IsStrictProduction()),
	}
	if remember {
		opts = append(opts, cookie.WithMaxAge(int(m.cfg.SessionTTL.Seconds())))
	}
	m.cookies.Set(w, m.cfg.SessionCookieName, token, opts...)

	return token, nil
}

// Clear expires the session cookie with matching attributes. A bearer token
// already handed out stays valid until its natural expiry.
func (m *SessionManager) Clear(w http.ResponseWriter) {
	m.cookies.Delete(w, m.cfg.SessionCookieName,
		cookie.WithHTTPOnly(true),
		cookie.WithSameSite(http.SameSiteLaxMode),
		cookie.WithSecure(m.env.IsStrictProduction()),
	)
}

// token extracts the session credential: Authorization header first, session
// cookie second.
func (m *SessionManager) token(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if v, err := m.cookies.Get(r, m.cfg.SessionCookieName); err == nil {
		return v
	}
	return ""
}

// Resolve verifies the request's session credential and loads its user. Any
// failure collapses to ErrUserNotFound so callers answer a uniform 401.
func (m *SessionManager) Resolve(r *http.Request) (*User, error) {
	token := m.token(r)
	if token == "" {
		return nil, ErrUserNotFound
	}

	var claims SessionClaims
	if err := m.jwt.Parse(token, &claims); err != nil {
		return nil, ErrUserNotFound
	}

	user, err := m.users.ByID(r.Context(), claims.ID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// RequireSession rejects unauthenticated requests with a uniform 401. The
// response never distinguishes missing from invalid credentials.
func (m *SessionManager) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := m.Resolve(r)
		if err != nil {
			core.Fail(w, core.ErrUnauthorized.WithMessage("Not authorized"))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, user)))
	})
}
