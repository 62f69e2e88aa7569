package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readershaven/readershaven/pkg/cookie"
)

func setCookie(t *testing.T, fn func(w http.ResponseWriter)) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	fn(rec)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestSetDefaults(t *testing.T) {
	t.Parallel()

	m := cookie.New()
	c := setCookie(t, func(w http.ResponseWriter) {
		m.Set(w, "session", "value")
	})

	assert.Equal(t, "session", c.Name)
	assert.Equal(t, "value", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Zero(t, c.MaxAge, "default is a browser-session cookie")
}

func TestSetOverrides(t *testing.T) {
	t.Parallel()

	m := cookie.New()
	c := setCookie(t, func(w http.ResponseWriter) {
		m.Set(w, "csrf", "tok",
			cookie.WithHTTPOnly(false),
			cookie.WithMaxAge(3600),
			cookie.WithSecure(true),
		)
	})

	assert.False(t, c.HttpOnly)
	assert.Equal(t, 3600, c.MaxAge)
	assert.True(t, c.Secure)
}

func TestGet(t *testing.T) {
	t.Parallel()

	m := cookie.New()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "session", Value: "abc"})

	got, err := m.Get(r, "session")
	require.NoError(t, err)
	assert.Equal(t, "abc", got)

	_, err = m.Get(r, "missing")
	assert.ErrorIs(t, err, cookie.ErrCookieNotFound)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	m := cookie.New()
	c := setCookie(t, func(w http.ResponseWriter) {
		m.Delete(w, "session", cookie.WithSecure(true))
	})

	assert.Equal(t, -1, c.MaxAge)
	assert.Empty(t, c.Value)
	assert.True(t, c.Secure, "clearing attributes must match the set attributes")
}
