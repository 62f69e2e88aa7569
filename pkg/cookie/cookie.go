// Package cookie wraps net/http cookie handling with manager-level defaults
// so session and CSRF cookies get consistent attributes everywhere they are
// set or cleared.
package cookie

import (
	"errors"
	"net/http"
	"time"
)

// ErrCookieNotFound is returned when the named cookie is absent.
var ErrCookieNotFound = errors.New("cookie: not found")

// Manager sets, reads and clears cookies with shared defaults.
type Manager struct {
	defaults Options
}

// New creates a cookie manager. Defaults: path "/", HttpOnly, SameSite=Lax.
// Per-cookie options override the defaults.
func New(opts ...Option) *Manager {
	defaults := Options{
		Path:     "/",
		HTTPOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{defaults: applyOptions(defaults, opts)}
}

// Set writes a cookie with the manager defaults plus the given options.
func (m *Manager) Set(w http.ResponseWriter, name, value string, opts ...Option) {
	o := applyOptions(m.defaults, opts)
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     o.Path,
		Domain:   o.Domain,
		MaxAge:   o.MaxAge,
		Secure:   o.Secure,
		HttpOnly: o.HTTPOnly,
		SameSite: o.SameSite,
	})
}

// Get returns the value of the named cookie.
func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrCookieNotFound
		}
		return "", err
	}
	return c.Value, nil
}

// Delete clears the named cookie. Attributes must match the ones used when
// setting the cookie or browsers keep the old copy, so per-cookie options are
// accepted here too.
func (m *Manager) Delete(w http.ResponseWriter, name string, opts ...Option) {
	o := applyOptions(m.defaults, opts)
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     o.Path,
		Domain:   o.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   o.Secure,
		HttpOnly: o.HTTPOnly,
		SameSite: o.SameSite,
	})
}
