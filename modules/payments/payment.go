// Package payments simulates a checkout flow for buying books. No money
// moves; every valid checkout succeeds and is recorded so the UI can show a
// purchase history.
package payments

import (
	"context"
	"errors"
	"time"
)

// recentLimit caps the per-user transaction history.
const recentLimit = 25

// Payment is a recorded simulated transaction.
type Payment struct {
	PaymentID   string    `json:"paymentId"`
	BookID      string    `json:"bookId"`
	Title       string    `json:"title"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes,omitempty"`
	Description string    `json:"description,omitempty"`
	UserID      string    `json:"userId"`
	Reference   string    `json:"reference"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TransactionLog stores a bounded, newest-first history per user.
type TransactionLog interface {
	Record(ctx context.Context, payment Payment) error
	Recent(ctx context.Context, userID string, limit int) ([]Payment, error)
}

var ErrLogUnavailable = errors.New("transaction log unavailable")
