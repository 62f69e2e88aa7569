package auth

import (
	"context"
	"time"
)

// UserRepository is the storage surface the auth flows need. Implemented by
// storage/mongodb; tests use an in-memory fake.
type UserRepository interface {
	// Create inserts a new user and fills in its ID. Returns ErrEmailTaken
	// when the email is already registered.
	Create(ctx context.Context, user *User) error

	// ByID loads a user by its hex id. Returns ErrUserNotFound when absent
	// or the id is malformed.
	ByID(ctx context.Context, id string) (*User, error)

	// ByEmail loads a user by exact email. Returns ErrUserNotFound when absent.
	ByEmail(ctx context.Context, email string) (*User, error)

	// ByProviderID loads a user by its OAuth provider linkage.
	ByProviderID(ctx context.Context, provider Provider, providerID string) (*User, error)

	// ByResetToken loads the user holding the given unexpired reset token.
	ByResetToken(ctx context.Context, resetToken string, now time.Time) (*User, error)

	// SetResetToken stores a reset token with its expiry on the user,
	// replacing any previous one.
	SetResetToken(ctx context.Context, id, resetToken string, expires time.Time) error

	// SetPassword replaces the password hash and clears any reset token.
	SetPassword(ctx context.Context, id, passwordHash string) error

	// AttachProvider fills in provider linkage on an existing account if it
	// has none yet.
	AttachProvider(ctx context.Context, id string, provider Provider, providerID string) error
}
