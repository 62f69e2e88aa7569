package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/readershaven/readershaven/modules/quotes"
)

const quotesCollection = "quotes"

// QuoteRepository persists saved passages.
type QuoteRepository struct {
	col *mongo.Collection
}

func NewQuoteRepository(db *mongo.Database) *QuoteRepository {
	return &QuoteRepository{col: db.Collection(quotesCollection)}
}

func (r *QuoteRepository) Create(ctx context.Context, quote *quotes.Quote) error {
	if quote.ID.IsZero() {
		quote.ID = bson.NewObjectID()
	}
	if _, err := r.col.InsertOne(ctx, quote); err != nil {
		return fmt.Errorf("insert quote: %w", err)
	}
	return nil
}

func (r *QuoteRepository) ByOwner(ctx context.Context, userID string) ([]quotes.Quote, error) {
	oid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, quotes.ErrQuoteNotFound
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"user": oid}, opts)
	if err != nil {
		return nil, fmt.Errorf("find quotes: %w", err)
	}
	defer cur.Close(ctx)

	var out []quotes.Quote
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode quotes: %w", err)
	}
	return out, nil
}

func (r *QuoteRepository) ByID(ctx context.Context, id string) (*quotes.Quote, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, quotes.ErrQuoteNotFound
	}

	var quote quotes.Quote
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&quote); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, quotes.ErrQuoteNotFound
		}
		return nil, fmt.Errorf("find quote: %w", err)
	}
	return &quote, nil
}

func (r *QuoteRepository) Delete(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return quotes.ErrQuoteNotFound
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete quote: %w", err)
	}
	if res.DeletedCount == 0 {
		return quotes.ErrQuoteNotFound
	}
	return nil
}
