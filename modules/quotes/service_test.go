package quotes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/readershaven/readershaven/modules/auth"
	"github.com/readershaven/readershaven/modules/quotes"
	"github.com/readershaven/readershaven/pkg/cookie"
	"github.com/readershaven/readershaven/pkg/environment"
	"github.com/readershaven/readershaven/pkg/jwt"
)

type memQuotes struct {
	mu    sync.Mutex
	items map[string]*quotes.Quote
}

func newMemQuotes() *memQuotes {
	return &memQuotes{items: make(map[string]*quotes.Quote)}
}

func (m *memQuotes) Create(_ context.Context, q *quotes.Quote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if q.ID.IsZero() {
		q.ID = bson.NewObjectID()
	}
	clone := *q
	m.items[q.ID.Hex()] = &clone
	return nil
}

func (m *memQuotes) ByOwner(_ context.Context, userID string) ([]quotes.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []quotes.Quote
	for _, q := range m.items {
		if q.UserID.Hex() == userID {
			out = append(out, *q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memQuotes) ByID(_ context.Context, id string) (*quotes.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.items[id]
	if !ok {
		return nil, quotes.ErrQuoteNotFound
	}
	clone := *q
	return &clone, nil
}

func (m *memQuotes) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return quotes.ErrQuoteNotFound
	}
	delete(m.items, id)
	return nil
}

type memUsers struct {
	mu   sync.Mutex
	byID map[string]*auth.User
}

func newMemUsers() *memUsers {
	return &memUsers{byID: make(map[string]*auth.User)}
}

func (m *memUsers) Create(_ context.Context, u *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}
	clone := *u
	m.byID[u.ID.Hex()] = &clone
	return nil
}

func (m *memUsers) ByID(_ context.Context, id string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *memUsers) ByEmail(context.Context, string) (*auth.User, error) {
	return nil, auth.ErrUserNotFound
}

func (m *memUsers) ByProviderID(context.Context, auth.Provider, string) (*auth.User, error) {
	return nil, auth.ErrUserNotFound
}

func (m *memUsers) ByResetToken(context.Context, string, time.Time) (*auth.User, error) {
	return nil, auth.ErrUserNotFound
}

func (m *memUsers) SetResetToken(context.Context, string, string, time.Time) error { return nil }
func (m *memUsers) SetPassword(context.Context, string, string) error              { return nil }
func (m *memUsers) AttachProvider(context.Context, string, auth.Provider, string) error {
	return nil
}

type quoteHarness struct {
	users   *memUsers
	jwt     *jwt.Service
	handler http.Handler
}

func newQuoteHarness(t *testing.T) *quoteHarness {
	t.Helper()

	cfg := auth.Config{
		JWTSecret:         "test-secret",
		SessionTTL:        168 * time.Hour,
		SessionCookieName: "rh_session",
		CSRFCookieName:    "rh_csrf",
	}
	env := environment.Config{Env: "development", FrontendURL: "http://localhost:5173"}

	jwtSvc, err := jwt.NewFromString(cfg.JWTSecret)
	require.NoError(t, err)

	users := newMemUsers()
	sessions := auth.NewSessionManager(jwtSvc, cookie.New(), users, cfg, env)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := quotes.NewService(newMemQuotes(), log)
	return &quoteHarness{
		users:   users,
		jwt:     jwtSvc,
		handler: svc.Router(sessions),
	}
}

func (h *quoteHarness) newUser(t *testing.T, name string) string {
	t.Helper()

	u := &auth.User{Name: name, Email: name + "@example.com", Provider: auth.ProviderLocal}
	require.NoError(t, h.users.Create(context.Background(), u))

	tok, err := h.jwt.Generate(auth.SessionClaims{
		ID:        u.ID.Hex(),
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
		IssuedAt:  time.Now().Unix(),
	})
	require.NoError(t, err)
	return tok
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (h *quoteHarness) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
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

func TestCreateQuote(t *testing.T) {
	t.Parallel()

	t.Run("trims and stores", func(t *testing.T) {
		t.Parallel()

		h := newQuoteHarness(t)
		tok := h.newUser(t, "alice")

		rec := h.do(t, http.MethodPost, "/", tok, map[string]any{
			"text":   "  All grown-ups were once children.  ",
			"author": " Saint-Exupery ",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		env := decode(t, rec)
		assert.Equal(t, "Quote added", env.Message)

		var q quotes.Quote
		require.NoError(t, json.Unmarshal(env.Data, &q))
		assert.Equal(t, "All grown-ups were once children.", q.Text)
		assert.Equal(t, "Saint-Exupery", q.Author)
		assert.False(t, q.ID.IsZero())
	})

	t.Run("empty text rejected", func(t *testing.T) {
		t.Parallel()

		h := newQuoteHarness(t)
		tok := h.newUser(t, "bob")

		for _, text := range []string{"", "   "} {
			rec := h.do(t, http.MethodPost, "/", tok, map[string]any{"text": text})
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Quote text is required", decode(t, rec).Message)
		}
	})

	t.Run("requires session", func(t *testing.T) {
		t.Parallel()

		h := newQuoteHarness(t)
		rec := h.do(t, http.MethodPost, "/", "", map[string]any{"text": "x"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestListQuotes(t *testing.T) {
	t.Parallel()

	h := newQuoteHarness(t)
	aliceTok := h.newUser(t, "alice")
	bobTok := h.newUser(t, "bob")

	for _, text := range []string{"first", "second", "third"} {
		rec := h.do(t, http.MethodPost, "/", aliceTok, map[string]any{"text": text})
		require.Equal(t, http.StatusCreated, rec.Code)
		time.Sleep(2 * time.Millisecond)
	}

	rec := h.do(t, http.MethodGet, "/", aliceTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	env := decode(t, rec)
	assert.Equal(t, "Quotes fetched", env.Message)

	var list []quotes.Quote
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 3)
	assert.Equal(t, "third", list[0].Text)
	assert.Equal(t, "first", list[2].Text)

	// Scoped to the owner.
	rec = h.do(t, http.MethodGet, "/", bobTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &list))
	assert.Empty(t, list)
}

func TestDeleteQuote(t *testing.T) {
	t.Parallel()

	h := newQuoteHarness(t)
	aliceTok := h.newUser(t, "alice")
	bobTok := h.newUser(t, "bob")

	rec := h.do(t, http.MethodPost, "/", aliceTok, map[string]any{"text": "keep me"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var q quotes.Quote
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &q))

	t.Run("unknown id", func(t *testing.T) {
		rec := h.do(t, http.MethodDelete, "/"+bson.NewObjectID().Hex(), aliceTok, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Quote not found", decode(t, rec).Message)
	})

	t.Run("not the owner", func(t *testing.T) {
		rec := h.do(t, http.MethodDelete, "/"+q.ID.Hex(), bobTok, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Not authorized", decode(t, rec).Message)
	})

	t.Run("owner removes", func(t *testing.T) {
		rec := h.do(t, http.MethodDelete, "/"+q.ID.Hex(), aliceTok, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Quote removed", decode(t, rec).Message)

		rec = h.do(t, http.MethodGet, "/", aliceTok, nil)
		var list []quotes.Quote
		require.NoError(t, json.Unmarshal(decode(t, rec).Data, &list))
		assert.Empty(t, list)
	})
}
