package auth_test

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/readershaven/readershaven/modules/auth"
)

// memRepo is an in-memory UserRepository used across the package tests.
type memRepo struct {
	mu    sync.Mutex
	users map[string]*auth.User
}

func newMemRepo() *memRepo {
	return &memRepo{users: make(map[string]*auth.User)}
}

func (r *memRepo) Create(_ context.Context, user *auth.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return auth.ErrEmailTaken
		}
	}

	user.ID = bson.NewObjectID()
	user.CreatedAt = time.Now()
	clone := *user
	r.users[user.ID.Hex()] = &clone
	return nil
}

func (r *memRepo) ByID(_ context.Context, id string) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, auth.ErrUserNotFound
}

func (r *memRepo) ByEmail(_ context.Context, email string) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (r *memRepo) ByProviderID(_ context.Context, provider auth.Provider, providerID string) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Provider == provider && u.ProviderID == providerID {
			clone := *u
			return &clone, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (r *memRepo) ByResetToken(_ context.Context, resetToken string, now time.Time) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.ResetPasswordToken != "" && u.ResetPasswordToken == resetToken && u.ResetPasswordExpires.After(now) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (r *memRepo) SetResetToken(_ context.Context, id, resetToken string, expires time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return auth.ErrUserNotFound
	}
	u.ResetPasswordToken = resetToken
	u.ResetPasswordExpires = expires
	return nil
}

func (r *memRepo) SetPassword(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return auth.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.ResetPasswordToken = ""
	u.ResetPasswordExpires = time.Time{}
	return nil
}

func (r *memRepo) AttachProvider(_ context.Context, id string, provider auth.Provider, providerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return auth.ErrUserNotFound
	}
	if u.ProviderID == "" {
		u.Provider = provider
		u.ProviderID = providerID
	}
	return nil
}
