package quotes

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/readershaven/readershaven/core"
	"github.com/readershaven/readershaven/modules/auth"
	"github.com/readershaven/readershaven/pkg/binder"
	"github.com/readershaven/readershaven/pkg/logger"
	"github.com/readershaven/readershaven/pkg/sanitizer"
)

// Service exposes the quote handlers behind the session middleware.
type Service struct {
	quotes QuoteRepository
	log    *slog.Logger
}

func NewService(quotes QuoteRepository, log *slog.Logger) *Service {
	return &Service{quotes: quotes, log: log}
}

type createQuoteRequest struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

// List returns the caller's quotes, newest first.
func (s *Service) List(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		core.Fail(w, core.ErrUnauthorized.WithMessage("Not authorized"))
		return
	}

	items, err := s.quotes.ByOwner(r.Context(), user.ID.Hex())
	if err != nil {
		s.log.ErrorContext(r.Context(), "failed to list quotes", logger.Error(err), logger.UserID(user.ID.Hex()))
		core.FailFromError(w, err)
		return
	}
	if items == nil {
		items = []Quote{}
	}

	core.OK(w, items, "Quotes fetched")
}

// Create saves a quote for the caller.
func (s *Service) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		core.Fail(w, core.ErrUnauthorized.WithMessage("Not authorized"))
		return
	}

	var req createQuoteRequest
	if err := binder.JSON(r, &req); err != nil {
		core.Fail(w, core.ErrBadRequest.WithMessage(err.Error()))
		return
	}

	req.Text = sanitizer.Trim(req.Text)
	if req.Text == "" {
		core.Fail(w, core.ErrBadRequest.WithMessage("Quote text is required"))
		return
	}

	quote := &Quote{
		Text:      req.Text,
		Author:    sanitizer.Apply(req.Author, sanitizer.Trim, sanitizer.SingleLine),
		UserID:    user.ID,
		CreatedAt: time.Now(),
	}
	if err := s.quotes.Create(r.Context(), quote); err != nil {
		s.log.ErrorContext(r.Context(), "failed to create quote", logger.Error(err), logger.UserID(user.ID.Hex()))
		core.FailFromError(w, err)
		return
	}

	core.Created(w, quote, "Quote added")
}

// Delete removes an owned quote.
func (s *Service) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		core.Fail(w, core.ErrUnauthorized.WithMessage("Not authorized"))
		return
	}

	quote, err := s.quotes.ByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrQuoteNotFound) {
			core.Fail(w, core.ErrNotFound.WithMessage("Quote not found"))
			return
		}
		core.FailFromError(w, err)
		return
	}
	if quote.UserID != user.ID {
		core.Fail(w, core.ErrUnauthorized.WithMessage("Not authorized"))
		return
	}

	if err := s.quotes.Delete(r.Context(), quote.ID.Hex()); err != nil {
		s.log.ErrorContext(r.Context(), "failed to delete quote", logger.Error(err))
		core.FailFromError(w, err)
		return
	}

	core.OK(w, map[string]string{"_id": quote.ID.Hex()}, "Quote removed")
}

// Router mounts the quote endpoints behind the session middleware.
func (s *Service) Router(sessions *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(sessions.RequireSession)

	r.Get("/", s.List)
	r.Post("/", s.Create)
	r.Delete("/{id}", s.Delete)

	return r
}
