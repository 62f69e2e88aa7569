package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/readershaven/readershaven/modules/books"
)

const booksCollection = "books"

// BookRepository persists shelf entries.
type BookRepository struct {
	col *mongo.Collection
}

func NewBookRepository(db *mongo.Database) *BookRepository {
	return &BookRepository{col: db.Collection(booksCollection)}
}

func (r *BookRepository) Create(ctx context.Context, book *books.Book) error {
	if book.ID.IsZero() {
		book.ID = bson.NewObjectID()
	}
	if _, err := r.col.InsertOne(ctx, book); err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

func (r *BookRepository) ByOwner(ctx context.Context, userID string) ([]books.Book, error) {
	oid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, books.ErrBookNotFound
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"user": oid}, opts)
	if err != nil {
		return nil, fmt.Errorf("find books: %w", err)
	}
	defer cur.Close(ctx)

	var out []books.Book
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode books: %w", err)
	}
	return out, nil
}

func (r *BookRepository) ByID(ctx context.Context, id string) (*books.Book, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, books.ErrBookNotFound
	}

	var book books.Book
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&book); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, books.ErrBookNotFound
		}
		return nil, fmt.Errorf("find book: %w", err)
	}
	return &book, nil
}

func (r *BookRepository) Update(ctx context.Context, book *books.Book) error {
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": book.ID}, book)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	if res.MatchedCount == 0 {
		return books.ErrBookNotFound
	}
	return nil
}

func (r *BookRepository) Delete(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return books.ErrBookNotFound
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if res.DeletedCount == 0 {
		return books.ErrBookNotFound
	}
	return nil
}
