package auth_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readershaven/readershaven/modules/auth"
	"github.com/readershaven/readershaven/pkg/cookie"
	"github.com/readershaven/readershaven/pkg/environment"
	"github.com/readershaven/readershaven/pkg/jwt"
)

type testHarness struct {
	repo    *memRepo
	handler http.Handler

	csrfCookie *http.Cookie
	csrfToken  string
}

func testConfig() auth.Config {
	return auth.Config{
		JWTSecret:         "test-secret",
		SessionTTL:        168 * time.Hour,
		SessionCookieName: "rh_session",
		CSRFCookieName:    "rh_csrf",
		CSRFTTL:           12 * time.Hour,
		MinPasswordLength: 6,
		OAuthStateTTL:     10 * time.Minute,
	}
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	cfg := testConfig()
	env := environment.Config{Env: "development", FrontendURL: "http://localhost:5173"}

	jwtSvc, err := jwt.NewFromString(cfg.JWTSecret)
	require.NoError(t, err)

	cookies := cookie.New()
	repo := newMemRepo()
	sessions := auth.NewSessionManager(jwtSvc, cookies, repo, cfg, env)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := auth.NewService(repo, sessions, auth.NewCaptchaVerifier(cfg, env), nil, cfg, env, log)
	handler := auth.Router(auth.RouterOptions{
		Service:  svc,
		Sessions: sessions,
		CSRF:     auth.NewCSRF(cookies, cfg, env),
	})

	h := &testHarness{repo: repo, handler: handler}
	h.refreshCSRF(t)
	return h
}

func (h *testHarness) refreshCSRF(t *testing.T) {
	t.Helper()

	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/csrf", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	for _, c := range rec.Result().Cookies() {
		if c.Name == "rh_csrf" {
			h.csrfCookie = c
		}
	}
	require.NotNil(t, h.csrfCookie)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	h.csrfToken = env.Data["csrfToken"].(string)
}

type envelope struct {
	Status  string         `json:"status"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func (h *testHarness) post(t *testing.T, path string, body any, mods ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(h.csrfCookie)
	req.Header.Set("X-CSRF-Token", h.csrfToken)
	for _, mod := range mods {
		mod(req)
	}

	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "rh_session" {
			return c
		}
	}
	return nil
}

func register(t *testing.T, h *testHarness, name, email, password string) envelope {
	t.Helper()

	rec := h.post(t, "/register", map[string]any{
		"name":     name,
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode(t, rec)
}

func TestRegister(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		h := newTestHarness(t)
		rec := h.post(t, "/register", map[string]any{
			"name":     "Book User",
			"email":    "book@example.com",
			"password": "pass123",
		})

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		env := decode(t, rec)
		assert.Equal(t, "success", env.Status)
		assert.Equal(t, "User registered", env.Message)
		assert.Equal(t, "Book User", env.Data["name"])
		assert.Equal(t, "book@example.com", env.Data["email"])
		assert.NotEmpty(t, env.Data["token"])
		assert.NotEmpty(t, env.Data["_id"])

		c := sessionCookie(rec)
		require.NotNil(t, c)
		assert.True(t, c.HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
		assert.Positive(t, c.MaxAge)

		// Password is stored hashed, never echoed.
		stored, err := h.repo.ByEmail(t.Context(), "book@example.com")
		require.NoError(t, err)
		assert.NotEmpty(t, stored.PasswordHash)
		assert.NotEqual(t, "pass123", stored.PasswordHash)
		assert.NotContains(t, rec.Body.String(), stored.PasswordHash)
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()

		h := newTestHarness(t)
		register(t, h, "First", "dup@example.com", "pass123")

		rec := h.post(t, "/register", map[string]any{
			"name":     "Second",
			"email":    "dup@example.com",
			"password": "pass123",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "User already exists", decode(t, rec).Message)
	})

	t.Run("validation failures", func(t *testing.T) {
		t.Parallel()

		h := newTestHarness(t)

		tests := []struct {
			name string
			body map[string]any
		}{
			{"missing name", map[string]any{"email": "a@example.com", "password": "pass123"}},
			{"bad email", map[string]any{"name": "A", "email": "nope", "password": "pass123"}},
			{"short password", map[string]any{"name": "A", "email": "a@example.com", "password": "short"}},
		}
		for _, tt := range tests {
			rec := h.post(t, "/register", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, tt.name)
			assert.Equal(t, "error", decode(t, rec).Status, tt.name)
		}
	})

	t.Run("unknown fields rejected", func(t *testing.T) {
		t.Parallel()

		h := newTestHarness(t)
		rec := h.post(t, "/register", map[string]any{
			"name":     "A",
			"email":    "a@example.com",
			"password": "pass123",
			"isAdmin":  true,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		h := newTestHarness(t)
		register(t, h, "Reader", "reader@example.com", "pass123")

		rec := h.post(t, "/login", map[string]any{
			"email":    "reader@example.com",
			"password": "pass123",
			"remember": true,
		})

		require.Equal(t, http.StatusOK, rec.Code)
		env := decode(t, rec)
		assert.Equal(t, "Login success", env.Message)
		assert.NotEmpty(t, env.Data["token"])

		c := sessionCookie(rec)
		require.NotNil(t, c)
		assert.Equal(t, int((168 * time.Hour).Seconds()), c.MaxAge)
	})

	t.Run("without remember the cookie is session scoped", func(t *testing.T) {
		t.Parallel()

		h := newTestHarness(t)
		register(t, h, "Reader", "reader@example.com", "pass123")

		rec := h.post(t, "/login", map[string]any{
			"email":    "reader@example.com",
			"password": "pass123",
		})

		require.Equal(t, http.StatusOK, rec.Code)
		c := sessionCookie(rec)
		require.NotNil(t, c)
		assert.Zero(t, c.MaxAge)
	})

	t.Run("failures are indistinguishable", func(t *testing.T) {
		t.Parallel()

		h := newTestHarness(t)
		register(t, h, "Reader", "reader@example.com", "pass123")

		// OAuth-only account has no password hash.
		require.NoError(t, h.repo.Create(t.Context(), &auth.User{
			Name:       "OAuth Only",
			Email:      "oauth@example.com",
			Provider:   auth.ProviderGoogle,
			ProviderID: "g-1",
		}))

		tests := []struct {
			name  string
			email string
			pass  string
		}{
			{"unknown email", "nobody@example.com", "pass123"},
			{"wrong password", "reader@example.com", "wrong"},
			{"oauth-only account", "oauth@example.com", "pass123"},
		}
		for _, tt := range tests {
			rec := h.post(t, "/login", map[string]any{"email": tt.email, "password": tt.pass})
			assert.Equal(t, http.StatusUnauthorized, rec.Code, tt.name)
			assert.Equal(t, "Invalid email or password", decode(t, rec).Message, tt.name)
		}
	})
}

func TestLogout(t *testing.T) {
	t.Parallel()

	h := newTestHarness(t)
	rec := h.post(t, "/logout", map[string]any{})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logged out", decode(t, rec).Message)

	c := sessionCookie(rec)
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
	assert.Negative(t, c.MaxAge)
}

func TestMe(t *testing.T) {
	t.Parallel()

	t.Run("bearer token", func(t *testing.T) {
		t.Parallel()

		h := newTestHarness(t)
		env := register(t, h, "Reader", "reader@example.com", "pass123")
		token := env.Data["token"].(string)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		out := decode(t, rec)
		assert.Equal(t, "Auth session", out.Message)
		assert.Equal(t, "reader@example.com", out.Data["email"])
		assert.NotEmpty(t, out.Data["token"])

		// Session cookie is refreshed.
		assert.NotNil(t, sessionCookie(rec))
	})

	t.Run("session cookie", func(t *testing.T) {
		t.Parallel()

		h := newTestHarness(t)
		env := register(t, h, "Reader", "reader@example.com", "pass123")
		token := env.Data["token"].(string)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: "rh_session", Value: token})
		rec := httptest.NewRecorder()
		h.handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("header takes precedence over cookie", func(t *testing.T) {
		t.Parallel()

		h := newTestHarness(t)
		env := register(t, h, "Reader", "reader@example.com", "pass123")
		token := env.Data["token"].(string)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		req.AddCookie(&http.Cookie{Name: "rh_session", Value: token})
		rec := httptest.NewRecorder()
		h.handler.ServeHTTP(rec, req)

		// The bogus header wins and the request is rejected.
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("uniform 401", func(t *testing.T) {
		t.Parallel()

		h := newTestHarness(t)

		for _, mod := range []func(*http.Request){
			func(r *http.Request) {},
			func(r *http.Request) { r.Header.Set("Authorization", "Bearer garbage") },
			func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "rh_session", Value: "garbage"}) },
		} {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			mod(req)
			rec := httptest.NewRecorder()
			h.handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Not authorized", decode(t, rec).Message)
		}
	})
}

func TestForgotReset(t *testing.T) {
	t.Parallel()

	t.Run("unknown email gets the same answer", func(t *testing.T) {
		t.Parallel()

		h := newTestHarness(t)
		rec := h.post(t, "/forgot", map[string]any{"email": "nobody@example.com"})

		require.Equal(t, http.StatusOK, rec.Code)
		env := decode(t, rec)
		assert.Equal(t, "If that email exists, a reset link has been sent.", env.Message)
		assert.Nil(t, env.Data)
	})

	t.Run("reset round trip", func(t *testing.T) {
		t.Parallel()

		h := newTestHarness(t)
		register(t, h, "Reader", "reader@example.com", "oldpass")

		rec := h.post(t, "/forgot", map[string]any{"email": "reader@example.com"})
		require.Equal(t, http.StatusOK, rec.Code)

		env := decode(t, rec)
		assert.Equal(t, "If that email exists, a reset link has been sent.", env.Message)

		// Development leaks the reset link for convenience.
		resetToken := env.Data["resetToken"].(string)
		require.NotEmpty(t, resetToken)
		assert.Contains(t, env.Data["resetUrl"], resetToken)

		rec = h.post(t, "/reset", map[string]any{"token": resetToken, "password": "newpass"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		out := decode(t, rec)
		assert.Equal(t, "Password has been reset", out.Message)
		assert.Equal(t, "Reader", out.Data["name"])
		assert.NotEmpty(t, out.Data["token"])
		assert.NotNil(t, sessionCookie(rec))

		// Old password no longer works, new one does.
		rec = h.post(t, "/login", map[string]any{"email": "reader@example.com", "password": "oldpass"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		rec = h.post(t, "/login", map[string]any{"email": "reader@example.com", "password": "newpass"})
		assert.Equal(t, http.StatusOK, rec.Code)

		// The token is single use.
		rec = h.post(t, "/reset", map[string]any{"token": resetToken, "password": "another1"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid or expired reset token", decode(t, rec).Message)
	})

	t.Run("expired token rejected", func(t *testing.T) {
		t.Parallel()

		h := newTestHarness(t)
		env := register(t, h, "Reader", "reader@example.com", "pass123")
		id := env.Data["_id"].(string)

		require.NoError(t, h.repo.SetResetToken(t.Context(), id, "expired-token", time.Now().Add(-time.Minute)))

		rec := h.post(t, "/reset", map[string]any{"token": "expired-token", "password": "newpass"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid or expired reset token", decode(t, rec).Message)
	})
}
