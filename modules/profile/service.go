// Package profile exposes the authenticated reader's own account view:
// display fields, a globally unique username, interface preferences, and the
// avatar image.
package profile

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/readershaven/readershaven/core"
	"github.com/readershaven/readershaven/modules/auth"
	"github.com/readershaven/readershaven/pkg/binder"
	"github.com/readershaven/readershaven/pkg/file"
	"github.com/readershaven/readershaven/pkg/logger"
	"github.com/readershaven/readershaven/pkg/sanitizer"
	"github.com/readershaven/readershaven/pkg/token"
	"github.com/readershaven/readershaven/pkg/validator"
)

const maxAvatarBytes = 4 << 20 // 4 MB

var allowedAvatarTypes = []string{"image/jpeg", "image/png", "image/webp"}

var allowedThemes = []string{"system", "light", "dark"}

// ProfileRepository is the slice of user storage this module consumes.
type ProfileRepository interface {
	ByID(ctx context.Context, id string) (*auth.User, error)
	// UsernameTaken reports whether another account already owns username.
	UsernameTaken(ctx context.Context, username, excludeID string) (bool, error)
	Update(ctx context.Context, user *auth.User) error
}

// Service exposes the profile handlers.
type Service struct {
	users   ProfileRepository
	avatars file.Storage
	locales []string
	log     *slog.Logger
}

func NewService(users ProfileRepository, avatars file.Storage, locales []string, log *slog.Logger) *Service {
	return &Service{users: users, avatars: avatars, locales: locales, log: log}
}

// profileView is the full self view; absent optional fields render as empty
// strings and preferences always carry their defaults.
type profileView struct {
	ID          string               `json:"_id"`
	Name        string               `json:"name"`
	Email       string               `json:"email"`
	Username    string               `json:"username"`
	Bio         string               `json:"bio"`
	Location    string               `json:"location"`
	AvatarURL   string               `json:"avatarUrl"`
	Preferences auth.PreferencesView `json:"preferences"`
}

func viewOf(u *auth.User) profileView {
	return profileView{
		ID:          u.ID.Hex(),
		Name:        u.Name,
		Email:       u.Email,
		Username:    u.Username,
		Bio:         u.Bio,
		Location:    u.Location,
		AvatarURL:   u.AvatarURL,
		Preferences: u.Preferences.View(),
	}
}

type updateProfileRequest struct {
	Name        *string             `json:"name"`
	Username    *string             `json:"username"`
	Bio         *string             `json:"bio"`
	Location    *string             `json:"location"`
	AvatarURL   *string             `json:"avatarUrl"`
	Preferences *preferencesRequest `json:"preferences"`
}

type preferencesRequest struct {
	Theme             *string `json:"theme"`
	EmailUpdates      *bool   `json:"emailUpdates"`
	ShowShelvesPublic *bool   `json:"showShelvesPublic"`
	Language          *string `json:"language"`
}

// GetMe returns the caller's profile.
func (s *Service) GetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		core.Fail(w, core.ErrUnauthorized.WithMessage("Not authorized"))
		return
	}

	core.OK(w, viewOf(user), "Profile fetched")
}

// UpdateMe applies a partial profile update. Preference fields merge into
// the stored set rather than replacing it.
func (s *Service) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		core.Fail(w, core.ErrUnauthorized.WithMessage("Not authorized"))
		return
	}

	var req updateProfileRequest
	if err := binder.JSON(r, &req); err != nil {
		core.Fail(w, core.ErrBadRequest.WithMessage(err.Error()))
		return
	}

	if req.Name != nil {
		name := sanitizer.Apply(*req.Name, sanitizer.Trim, sanitizer.SingleLine)
		if err := validator.Apply(validator.RequiredString("name", name)); err != nil {
			core.FailWithDetails(w, core.ErrBadRequest.WithMessage(err.Error()), validator.Extract(err).Fields())
			return
		}
		user.Name = name
	}
	if req.Bio != nil {
		user.Bio = sanitizer.Trim(*req.Bio)
	}
	if req.Location != nil {
		user.Location = sanitizer.Apply(*req.Location, sanitizer.Trim, sanitizer.SingleLine)
	}
	if req.AvatarURL != nil {
		user.AvatarURL = sanitizer.Trim(*req.AvatarURL)
	}

	if req.Username != nil {
		username := sanitizer.NormalizeUsername(*req.Username)
		if username != "" {
			if err := validator.Apply(validator.ValidUsername("username", username)); err != nil {
				core.FailWithDetails(w, core.ErrBadRequest.WithMessage(err.Error()), validator.Extract(err).Fields())
				return
			}
			taken, err := s.users.UsernameTaken(r.Context(), username, user.ID.Hex())
			if err != nil {
				core.FailFromError(w, err)
				return
			}
			if taken {
				core.Fail(w, core.ErrBadRequest.WithMessage("Username already taken"))
				return
			}
		}
		user.Username = username
	}

	if req.Preferences != nil {
		if err := s.mergePreferences(&user.Preferences, req.Preferences); err != nil {
			core.FailWithDetails(w, core.ErrBadRequest.WithMessage(err.Error()), validator.Extract(err).Fields())
			return
		}
	}

	if err := s.users.Update(r.Context(), user); err != nil {
		s.log.ErrorContext(r.Context(), "failed to update profile", logger.Error(err), logger.UserID(user.ID.Hex()))
		core.FailFromError(w, err)
		return
	}

	core.OK(w, viewOf(user), "Profile updated")
}

func (s *Service) mergePreferences(prefs *auth.Preferences, req *preferencesRequest) error {
	if req.Theme != nil {
		if err := validator.Apply(validator.InList("preferences.theme", *req.Theme, allowedThemes)); err != nil {
			return err
		}
		prefs.Theme = *req.Theme
	}
	if req.Language != nil {
		if err := validator.Apply(validator.ValidLanguageTag("preferences.language", *req.Language, s.locales)); err != nil {
			return err
		}
		prefs.Language = *req.Language
	}
	if req.EmailUpdates != nil {
		v := *req.EmailUpdates
		prefs.EmailUpdates = &v
	}
	if req.ShowShelvesPublic != nil {
		v := *req.ShowShelvesPublic
		prefs.ShowShelvesPublic = &v
	}
	return nil
}

// UploadAvatar replaces the caller's avatar. The stored filename is random;
// the original name never reaches the filesystem.
func (s *Service) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		core.Fail(w, core.ErrUnauthorized.WithMessage("Not authorized"))
		return
	}

	fh, err := binder.FormFile(r, "avatar")
	if err != nil {
		core.Fail(w, core.ErrBadRequest.WithMessage("No file uploaded"))
		return
	}

	if err := file.ValidateSize(fh, maxAvatarBytes); err != nil {
		core.Fail(w, core.ErrBadRequest.WithMessage("Avatar must be at most 4MB"))
		return
	}
	if err := file.ValidateMIMEType(fh, allowedAvatarTypes...); err != nil {
		core.Fail(w, core.ErrBadRequest.WithMessage("Only jpg, png, webp allowed"))
		return
	}

	name, err := token.Generate(16)
	if err != nil {
		core.FailFromError(w, err)
		return
	}
	filename := name + file.GetExtension(fh)

	stored, err := s.avatars.Save(r.Context(), fh, filename)
	if err != nil {
		s.log.ErrorContext(r.Context(), "failed to store avatar", logger.Error(err), logger.UserID(user.ID.Hex()))
		core.FailFromError(w, err)
		return
	}

	user.AvatarURL = s.avatars.URL(stored.RelativePath)
	if err := s.users.Update(r.Context(), user); err != nil {
		core.FailFromError(w, err)
		return
	}

	core.OK(w, map[string]string{"avatarUrl": user.AvatarURL}, "Avatar updated")
}

// Router mounts the profile endpoints behind the session middleware.
func (s *Service) Router(sessions *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(sessions.RequireSession)

	r.Get("/", s.GetMe)
	r.Put("/", s.UpdateMe)
	r.Post("/avatar", s.UploadAvatar)

	return r
}
