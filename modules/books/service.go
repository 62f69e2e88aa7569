package books

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
	"github.com/readershaven/readershaven/pkg/validator"
)

// Service exposes the shelf handlers. Every handler assumes the session
// middleware already ran and a user is present on the context.
type Service struct {
	books BookRepository
	log   *slog.Logger
}

func NewService(books BookRepository, log *slog.Logger) *Service {
	return &Service{books: books, log: log}
}

type createBookRequest struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	Description   string `json:"description"`
	PublishedYear int    `json:"publishedYear"`
	Status        string `json:"status"`
}

type updateBookRequest struct {
	Title         *string `json:"title"`
	Author        *string `json:"author"`
	Description   *string `json:"description"`
	PublishedYear *int    `json:"publishedYear"`
	Status        *string `json:"status"`
}

// List returns the caller's shelf.
func (s *Service) List(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		core.Fail(w, core.ErrUnauthorized.WithMessage("Not authorized"))
		return
	}

	items, err := s.books.ByOwner(r.Context(), user.ID.Hex())
	if err != nil {
		s.log.ErrorContext(r.Context(), "failed to list books", logger.Error(err), logger.UserID(user.ID.Hex()))
		core.FailFromError(w, err)
		return
	}
	if items == nil {
		items = []Book{}
	}

	core.OK(w, items, "Books fetched")
}

// Create adds a book to the caller's shelf. Status defaults to "to-read".
func (s *Service) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		core.Fail(w, core.ErrUnauthorized.WithMessage("Not authorized"))
		return
	}

	var req createBookRequest
	if err := binder.JSON(r, &req); err != nil {
		core.Fail(w, core.ErrBadRequest.WithMessage(err.Error()))
		return
	}

	req.Title = sanitizer.Apply(req.Title, sanitizer.Trim, sanitizer.SingleLine)
	req.Author = sanitizer.Apply(req.Author, sanitizer.Trim, sanitizer.SingleLine)
	req.Description = sanitizer.Trim(req.Description)

	if err := validator.Apply(
		validator.RequiredString("title", req.Title),
		validator.RequiredString("author", req.Author),
	); err != nil {
		core.FailWithDetails(w, core.ErrBadRequest.WithMessage(err.Error()), validator.Extract(err).Fields())
		return
	}

	status := StatusToRead
	if req.Status != "" {
		status = Status(sanitizer.Apply(req.Status, sanitizer.Trim, sanitizer.ToLower))
		if !ValidStatus(status) {
			core.Fail(w, core.ErrBadRequest.WithMessage("Invalid status"))
			return
		}
	}

	now := time.Now()
	book := &Book{
		Title:         req.Title,
		Author:        req.Author,
		Description:   req.Description,
		PublishedYear: req.PublishedYear,
		Status:        status,
		UserID:        user.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.books.Create(r.Context(), book); err != nil {
		s.log.ErrorContext(r.Context(), "failed to create book", logger.Error(err), logger.UserID(user.ID.Hex()))
		core.FailFromError(w, err)
		return
	}

	core.Created(w, book, "Book created")
}

// Update applies a partial update to an owned book. Absent fields keep their
// stored values.
func (s *Service) Update(w http.ResponseWriter, r *http.Request) {
	book, ok := s.owned(w, r)
	if !ok {
		return
	}

	var req updateBookRequest
	if err := binder.JSON(r, &req); err != nil {
		core.Fail(w, core.ErrBadRequest.WithMessage(err.Error()))
		return
	}

	if req.Title != nil {
		book.Title = sanitizer.Apply(*req.Title, sanitizer.Trim, sanitizer.SingleLine)
	}
	if req.Author != nil {
		book.Author = sanitizer.Apply(*req.Author, sanitizer.Trim, sanitizer.SingleLine)
	}
	if req.Description != nil {
		book.Description = sanitizer.Trim(*req.Description)
	}
	if req.PublishedYear != nil {
		book.PublishedYear = *req.PublishedYear
	}
	if req.Status != nil {
		status := Status(sanitizer.Apply(*req.Status, sanitizer.Trim, sanitizer.ToLower))
		if !ValidStatus(status) {
			core.Fail(w, core.ErrBadRequest.WithMessage("Invalid status"))
			return
		}
		book.Status = status
	}

	if err := validator.Apply(
		validator.RequiredString("title", book.Title),
		validator.RequiredString("author", book.Author),
	); err != nil {
		core.FailWithDetails(w, core.ErrBadRequest.WithMessage(err.Error()), validator.Extract(err).Fields())
		return
	}

	book.UpdatedAt = time.Now()
	if err := s.books.Update(r.Context(), book); err != nil {
		s.log.ErrorContext(r.Context(), "failed to update book", logger.Error(err))
		core.FailFromError(w, err)
		return
	}

	core.OK(w, book, "Book updated")
}

// Delete removes an owned book and acknowledges with its id.
func (s *Service) Delete(w http.ResponseWriter, r *http.Request) {
	book, ok := s.owned(w, r)
	if !ok {
		return
	}

	if err := s.books.Delete(r.Context(), book.ID.Hex()); err != nil {
		s.log.ErrorContext(r.Context(), "failed to delete book", logger.Error(err))
		core.FailFromError(w, err)
		return
	}

	core.OK(w, map[string]string{"_id": book.ID.Hex()}, "Book removed")
}

// owned loads the book from the URL and enforces ownership. Missing books
// are 404; someone else's books are 401, matching the legacy API.
func (s *Service) owned(w http.ResponseWriter, r *http.Request) (*Book, bool) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		core.Fail(w, core.ErrUnauthorized.WithMessage("Not authorized"))
		return nil, false
	}

	book, err := s.books.ByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrBookNotFound) {
			core.Fail(w, core.ErrNotFound.WithMessage("Book not found"))
			return nil, false
		}
		core.FailFromError(w, err)
		return nil, false
	}
	if book.UserID != user.ID {
		core.Fail(w, core.ErrUnauthorized.WithMessage("Not authorized"))
		return nil, false
	}
	return book, true
}

// Router mounts the shelf endpoints behind the session middleware.
func (s *Service) Router(sessions *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(sessions.RequireSession)

	r.Get("/", s.List)
	r.Post("/", s.Create)
	r.Put("/{id}", s.Update)
	r.Delete("/{id}", s.Delete)

	return r
}
