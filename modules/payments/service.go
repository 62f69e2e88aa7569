package payments

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/readershaven/readershaven/core"
	"github.com/readershaven/readershaven/modules/auth"
	"github.com/readershaven/readershaven/pkg/binder"
	"github.com/readershaven/readershaven/pkg/logger"
	"github.com/readershaven/readershaven/pkg/sanitizer"
	"github.com/readershaven/readershaven/pkg/validator"
)

// Service exposes the simulated checkout handlers.
type Service struct {
	txlog           TransactionLog
	processingDelay time.Duration
	log             *slog.Logger
}

type Option func(*Service)

// WithProcessingDelay adds an artificial delay before a checkout resolves,
// useful for exercising frontend loading states.
func WithProcessingDelay(d time.Duration) Option {
	return func(s *Service) { s.processingDelay = d }
}

func NewService(txlog TransactionLog, log *slog.Logger, opts ...Option) *Service {
	s := &Service{txlog: txlog, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type checkoutRequest struct {
	BookID      string  `json:"bookId"`
	Title       string  `json:"title"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Notes       string  `json:"notes"`
	Description string  `json:"description"`
}

// Checkout validates the request, simulates processing, and records the
// succeeded transaction.
func (s *Service) Checkout(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		core.Fail(w, core.ErrUnauthorized.WithMessage("Not authorized"))
		return
	}

	var req checkoutRequest
	if err := binder.JSON(r, &req); err != nil {
		core.Fail(w, core.ErrBadRequest.WithMessage(err.Error()))
		return
	}

	req.BookID = sanitizer.Trim(req.BookID)
	req.Title = sanitizer.Apply(req.Title, sanitizer.Trim, sanitizer.SingleLine)

	if err := validator.Apply(
		validator.RequiredString("bookId", req.BookID),
		validator.RequiredString("title", req.Title),
		validator.PositiveNumber("amount", req.Amount),
	); err != nil {
		core.FailWithDetails(w, core.ErrBadRequest.WithMessage(err.Error()), validator.Extract(err).Fields())
		return
	}

	currency := sanitizer.NormalizeCurrency(req.Currency)
	if currency == "" {
		currency = "USD"
	}

	if s.processingDelay > 0 {
		select {
		case <-time.After(s.processingDelay):
		case <-r.Context().Done():
			return
		}
	}

	paymentID := uuid.NewString()
	payment := Payment{
		PaymentID:   paymentID,
		BookID:      req.BookID,
		Title:       req.Title,
		Amount:      req.Amount,
		Currency:    currency,
		Status:      "succeeded",
		Notes:       req.Notes,
		Description: req.Description,
		UserID:      user.ID.Hex(),
		Reference:   "PAY-" + strings.ToUpper(paymentID[:8]),
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.txlog.Record(r.Context(), payment); err != nil {
		s.log.ErrorContext(r.Context(), "failed to record payment", logger.Error(err), logger.UserID(payment.UserID))
		core.FailFromError(w, err)
		return
	}

	s.log.InfoContext(r.Context(), "payment processed",
		slog.String("payment_id", payment.PaymentID),
		slog.String("book_id", payment.BookID),
		slog.Float64("amount", payment.Amount),
		slog.String("currency", payment.Currency),
		logger.UserID(payment.UserID),
	)

	core.Created(w, payment, "Payment processed successfully")
}

// Transactions returns the caller's recent payments, newest first.
func (s *Service) Transactions(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		core.Fail(w, core.ErrUnauthorized.WithMessage("Not authorized"))
		return
	}

	items, err := s.txlog.Recent(r.Context(), user.ID.Hex(), recentLimit)
	if err != nil {
		s.log.ErrorContext(r.Context(), "failed to list transactions", logger.Error(err), logger.UserID(user.ID.Hex()))
		core.FailFromError(w, err)
		return
	}
	if items == nil {
		items = []Payment{}
	}

	core.OK(w, items, "Transactions fetched")
}

// Router mounts the payment endpoints. Checkout is a state change and so
// requires the CSRF token on top of the session.
func (s *Service) Router(sessions *auth.SessionManager, csrf *auth.CSRF) http.Handler {
	r := chi.NewRouter()
	r.Use(sessions.RequireSession)

	r.Get("/transactions", s.Transactions)

	r.Group(func(r chi.Router) {
		r.Use(csrf.Verify)
		r.Post("/checkout", s.Checkout)
	})

	return r
}
