// Package books manages a reader's personal shelf: every book belongs to
// exactly one owner and is only visible to that owner.
package books

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Status tracks where a book sits on the shelf. The set is closed; anything
// else is rejected at the boundary.
type Status string

const (
	StatusToRead  Status = "to-read"
	StatusReading Status = "currently-reading"
	StatusRead    Status = "read"
)

// ValidStatus reports whether s is one of the known shelf states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusToRead, StatusReading, StatusRead:
		return true
	}
	return false
}

// Book is the persisted shelf entry.
type Book struct {
	ID            bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title         string        `bson:"title" json:"title"`
	Author        string        `bson:"author" json:"author"`
	Description   string        `bson:"description,omitempty" json:"description,omitempty"`
	PublishedYear int           `bson:"publishedYear,omitempty" json:"publishedYear,omitempty"`
	Status        Status        `bson:"status" json:"status"`
	UserID        bson.ObjectID `bson:"user" json:"user"`
	CreatedAt     time.Time     `bson:"createdAt,omitempty" json:"createdAt"`
	UpdatedAt     time.Time     `bson:"updatedAt,omitempty" json:"updatedAt"`
}

// BookRepository is the storage contract the module consumes. ByID returns
// ErrBookNotFound when no document matches; ownership is the caller's
// concern.
type BookRepository interface {
	Create(ctx context.Context, book *Book) error
	ByOwner(ctx context.Context, userID string) ([]Book, error)
	ByID(ctx context.Context, id string) (*Book, error)
	Update(ctx context.Context, book *Book) error
	Delete(ctx context.Context, id string) error
}
