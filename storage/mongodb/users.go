// Package mongodb implements the module repository interfaces on top of the
// MongoDB driver. Each repository wraps one collection; all operations are
// single-document and rely on unique indexes for the global constraints.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/readershaven/readershaven/modules/auth"
)

const usersCollection = "users"

// UserRepository persists accounts. It serves both the auth module and the
// profile module.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(usersCollection)}
}

func (r *UserRepository) Create(ctx context.Context, user *auth.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}

	if _, err := r.col.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return auth.ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) ByID(ctx context.Context, id string) (*auth.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, auth.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) ByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) ByProviderID(ctx context.Context, provider auth.Provider, providerID string) (*auth.User, error) {
	return r.findOne(ctx, bson.M{"provider": provider, "providerId": providerID})
}

func (r *UserRepository) ByResetToken(ctx context.Context, resetToken string, now time.Time) (*auth.User, error) {
	return r.findOne(ctx, bson.M{
		"resetPasswordToken":   resetToken,
		"resetPasswordExpires": bson.M{"$gt": now},
	})
}

func (r *UserRepository) SetResetToken(ctx context.Context, id, resetToken string, expires time.Time) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{
		"resetPasswordToken":   resetToken,
		"resetPasswordExpires": expires,
		"updatedAt":            time.Now(),
	}})
}

func (r *UserRepository) SetPassword(ctx context.Context, id, passwordHash string) error {
	return r.updateByID(ctx, id, bson.M{
		"$set":   bson.M{"password": passwordHash, "updatedAt": time.Now()},
		"$unset": bson.M{"resetPasswordToken": "", "resetPasswordExpires": ""},
	})
}

// AttachProvider fills in provider linkage only when the account has none;
// an already linked account is left untouched.
func (r *UserRepository) AttachProvider(ctx context.Context, id string, provider auth.Provider, providerID string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return auth.ErrUserNotFound
	}

	filter := bson.M{
		"_id": oid,
		"$or": []bson.M{
			{"providerId": bson.M{"$exists": false}},
			{"providerId": ""},
		},
	}
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"provider":   provider,
		"providerId": providerID,
		"updatedAt":  time.Now(),
	}})
	if err != nil {
		return fmt.Errorf("attach provider: %w", err)
	}
	if res.MatchedCount == 0 {
		// Either the user is gone or it already carries a linkage; only the
		// former is an error.
		count, err := r.col.CountDocuments(ctx, bson.M{"_id": oid})
		if err != nil {
			return fmt.Errorf("attach provider: %w", err)
		}
		if count == 0 {
			return auth.ErrUserNotFound
		}
	}
	return nil
}

// UsernameTaken reports whether another account already owns username.
func (r *UserRepository) UsernameTaken(ctx context.Context, username, excludeID string) (bool, error) {
	oid, err := bson.ObjectIDFromHex(excludeID)
	if err != nil {
		return false, auth.ErrUserNotFound
	}

	count, err := r.col.CountDocuments(ctx, bson.M{
		"username": username,
		"_id":      bson.M{"$ne": oid},
	})
	if err != nil {
		return false, fmt.Errorf("count username: %w", err)
	}
	return count > 0, nil
}

// Update replaces the mutable profile fields of an existing user.
func (r *UserRepository) Update(ctx context.Context, user *auth.User) error {
	user.UpdatedAt = time.Now()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return auth.ErrEmailTaken
		}
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*auth.User, error) {
	var user auth.User
	if err := r.col.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) updateByID(ctx context.Context, id string, update bson.M) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return auth.ErrUserNotFound
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}
