// Package auth implements session issuance and verification, CSRF
// protection, and the authentication flows: register, local login, OAuth
// login, logout, forgot/reset password.
package auth

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Provider identifies how an account proves its identity. The set is closed;
// availability of the OAuth providers is decided once at startup from
// configuration presence.
type Provider string

const (
	ProviderLocal    Provider = "local"
	ProviderGoogle   Provider = "google"
	ProviderFacebook Provider = "facebook"
)

// User is the persisted account record. PasswordHash is empty for OAuth-only
// accounts and never serialized to clients.
type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	Name         string        `bson:"name"`
	Email        string        `bson:"email"`
	PasswordHash string        `bson:"password,omitempty"`
	Provider     Provider      `bson:"provider"`
	ProviderID   string        `bson:"providerId,omitempty"`

	Username    string      `bson:"username,omitempty"`
	Bio         string      `bson:"bio,omitempty"`
	Location    string      `bson:"location,omitempty"`
	AvatarURL   string      `bson:"avatarUrl,omitempty"`
	Preferences Preferences `bson:"preferences,omitempty"`

	ResetPasswordToken   string    `bson:"resetPasswordToken,omitempty"`
	ResetPasswordExpires time.Time `bson:"resetPasswordExpires,omitempty"`

	CreatedAt time.Time `bson:"createdAt,omitempty"`
	UpdatedAt time.Time `bson:"updatedAt,omitempty"`
}

// Preferences stores only the fields the user has explicitly set. Booleans
// are pointers so "never set" is distinguishable from "set to false";
// defaults are applied at render time.
type Preferences struct {
	Theme             string `bson:"theme,omitempty"`
	EmailUpdates      *bool  `bson:"emailUpdates,omitempty"`
	ShowShelvesPublic *bool  `bson:"showShelvesPublic,omitempty"`
	Language          string `bson:"language,omitempty"`
}

// PreferencesView is the fully-defaulted shape clients receive.
type PreferencesView struct {
	Theme             string `json:"theme"`
	EmailUpdates      bool   `json:"emailUpdates"`
	ShowShelvesPublic bool   `json:"showShelvesPublic"`
	Language          string `json:"language"`
}

// View applies defaults: theme "system", both opt-ins true, language "en".
func (p Preferences) View() PreferencesView {
	v := PreferencesView{
		Theme:             p.Theme,
		EmailUpdates:      true,
		ShowShelvesPublic: true,
		Language:          p.Language,
	}
	if v.Theme == "" {
		v.Theme = "system"
	}
	if v.Language == "" {
		v.Language = "en"
	}
	if p.EmailUpdates != nil {
		v.EmailUpdates = *p.EmailUpdates
	}
	if p.ShowShelvesPublic != nil {
		v.ShowShelvesPublic = *p.ShowShelvesPublic
	}
	return v
}
