package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// EnsureIndexes creates the indexes the repositories rely on. Safe to run on
// every startup; existing indexes are left untouched.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	users := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// Sparse so accounts without a username don't collide on null.
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "provider", Value: 1}, {Key: "providerId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "resetPasswordToken", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
	if _, err := db.Collection(usersCollection).Indexes().CreateMany(ctx, users); err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}

	owned := bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}
	if _, err := db.Collection(booksCollection).Indexes().CreateOne(ctx, mongo.IndexModel{Keys: owned}); err != nil {
		return fmt.Errorf("create book indexes: %w", err)
	}
	if _, err := db.Collection(quotesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{Keys: owned}); err != nil {
		return fmt.Errorf("create quote indexes: %w", err)
	}
	return nil
}
