// Package quotes stores a reader's saved passages. Like the shelf, every
// quote is private to its owner.
package quotes

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Quote is a saved passage. Author is free text and may be empty.
type Quote struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Text      string        `bson:"text" json:"text"`
	Author    string        `bson:"author,omitempty" json:"author,omitempty"`
	UserID    bson.ObjectID `bson:"user" json:"user"`
	CreatedAt time.Time     `bson:"createdAt,omitempty" json:"createdAt"`
}

// QuoteRepository is the storage contract. ByOwner returns newest first.
type QuoteRepository interface {
	Create(ctx context.Context, quote *Quote) error
	ByOwner(ctx context.Context, userID string) ([]Quote, error)
	ByID(ctx context.Context, id string) (*Quote, error)
	Delete(ctx context.Context, id string) error
}

var ErrQuoteNotFound = errors.New("quote not found")
