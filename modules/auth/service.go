package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/readershaven/readershaven/core"
	"github.com/readershaven/readershaven/pkg/binder"
	"github.com/readershaven/readershaven/pkg/email"
	"github.com/readershaven/readershaven/pkg/environment"
	"github.com/readershaven/readershaven/pkg/logger"
	"github.com/readershaven/readershaven/pkg/sanitizer"
	"github.com/readershaven/readershaven/pkg/token"
	"github.com/readershaven/readershaven/pkg/validator"
)

// bcryptCost matches the work factor the stored hashes were created with.
const bcryptCost = 10

const resetTokenTTL = time.Hour

// Service carries the authentication flows. The mailer is optional; without
// it reset links are only surfaced through the dev response fields.
type Service struct {
	users    UserRepository
	sessions *SessionManager
	captcha  *CaptchaVerifier
	mailer   email.EmailSender
	cfg      Config
	env      environment.Config
	log      *slog.Logger
}

func NewService(
	users UserRepository,
	sessions *SessionManager,
	captcha *CaptchaVerifier,
	mailer email.EmailSender,
	cfg Config,
	env environment.Config,
	log *slog.Logger,
) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		captcha:  captcha,
		mailer:   mailer,
		cfg:      cfg,
		env:      env,
		log:      log,
	}
}

// authPayload mirrors the legacy response shape; the token is duplicated in
// the body for header-based clients.
type authPayload struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Token string `json:"token"`
}

func (s *Service) issue(w http.ResponseWriter, user *User, remember bool) (string, error) {
	return s.sessions.Issue(w, user, remember)
}

type registerRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	RecaptchaToken string `json:"recaptchaToken"`
}

// Register creates a local account, gated by the bot check when enforced.
func (s *Service) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := binder.JSON(r, &req); err != nil {
		core.Fail(w, core.ErrBadRequest.WithMessage(err.Error()))
		return
	}

	req.Name = sanitizer.Apply(req.Name, sanitizer.Trim, sanitizer.SingleLine)
	req.Email = sanitizer.NormalizeEmail(req.Email)

	if err := validator.Apply(
		validator.RequiredString("name", req.Name),
		validator.ValidEmail("email", req.Email),
		validator.MinLenString("password", req.Password, s.cfg.MinPasswordLength),
	); err != nil {
		core.FailWithDetails(w, core.ErrBadRequest.WithMessage(err.Error()), validator.Extract(err).Fields())
		return
	}

	if err := s.captcha.Verify(r.Context(), req.RecaptchaToken); err != nil {
		switch {
		case errors.Is(err, ErrCaptchaRequired):
			core.Fail(w, core.ErrBadRequest.WithMessage("reCAPTCHA required"))
		case errors.Is(err, ErrCaptchaFailed):
			core.Fail(w, core.ErrBadRequest.WithMessage("reCAPTCHA verification failed"))
		default:
			s.log.ErrorContext(r.Context(), "captcha verification error", logger.Error(err))
			core.Fail(w, core.ErrBadGateway.WithMessage("reCAPTCHA verification error"))
		}
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		core.FailFromError(w, err)
		return
	}

	user := &User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Provider:     ProviderLocal,
	}
	if err := s.users.Create(r.Context(), user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			core.Fail(w, core.ErrBadRequest.WithMessage("User already exists"))
			return
		}
		s.log.ErrorContext(r.Context(), "failed to create user", logger.Error(err))
		core.FailFromError(w, err)
		return
	}

	tok, err := s.issue(w, user, true)
	if err != nil {
		core.FailFromError(w, err)
		return
	}

	core.Created(w, authPayload{
		ID:    user.ID.Hex(),
		Name:  user.Name,
		Email: user.Email,
		Token: tok,
	}, "User registered")
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

// Login verifies local credentials. The failure answer is identical for
// unknown email, OAuth-only accounts and wrong passwords.
func (s *Service) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := binder.JSON(r, &req); err != nil {
		core.Fail(w, core.ErrBadRequest.WithMessage(err.Error()))
		return
	}
	req.Email = sanitizer.NormalizeEmail(req.Email)

	user, err := s.users.ByEmail(r.Context(), req.Email)
	if err != nil || !verifyPassword(req.Password, user.PasswordHash) {
		core.Fail(w, core.ErrUnauthorized.WithMessage("Invalid email or password"))
		return
	}

	tok, err := s.issue(w, user, req.Remember)
	if err != nil {
		core.FailFromError(w, err)
		return
	}

	core.OK(w, authPayload{
		ID:    user.ID.Hex(),
		Name:  user.Name,
		Email: user.Email,
		Token: tok,
	}, "Login success")
}

// verifyPassword never errors: a missing hash (pure-OAuth account) simply
// fails the comparison.
func verifyPassword(plaintext, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// Logout clears the session cookie.
func (s *Service) Logout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Clear(w)
	core.OK(w, nil, "Logged out")
}

type forgotRequest struct {
	Email string `json:"email"`
}

const forgotMessage = "If that email exists, a reset link has been sent."

// Forgot starts a password reset. The response is identical whether or not
// the account exists; outside strict production the reset link is echoed
// back for convenience.
func (s *Service) Forgot(w http.ResponseWriter, r *http.Request) {
	var req forgotRequest
	if err := binder.JSON(r, &req); err != nil {
		core.Fail(w, core.ErrBadRequest.WithMessage(err.Error()))
		return
	}
	req.Email = sanitizer.NormalizeEmail(req.Email)

	user, err := s.users.ByEmail(r.Context(), req.Email)
	if err != nil {
		core.OK(w, nil, forgotMessage)
		return
	}

	resetToken, err := token.Generate(32)
	if err != nil {
		core.FailFromError(w, err)
		return
	}
	if err := s.users.SetResetToken(r.Context(), user.ID.Hex(), resetToken, time.Now().Add(resetTokenTTL)); err != nil {
		s.log.ErrorContext(r.Context(), "failed to store reset token", logger.Error(err), logger.UserID(user.ID.Hex()))
		core.FailFromError(w, err)
		return
	}

	resetURL := fmt.Sprintf("%s/reset?token=%s", s.env.FrontendURL, resetToken)

	if s.mailer != nil {
		if err := s.mailer.SendEmail(r.Context(), email.SendEmailParams{
			SendTo:   user.Email,
			Subject:  "Reset your Readers Haven password",
			BodyHTML: fmt.Sprintf(`<p>Hello %s,</p><p>Reset your password within the next hour: <a href="%s">%s</a></p>`, user.Name, resetURL, resetURL),
			Tag:      "password-reset",
		}); err != nil {
			s.log.ErrorContext(r.Context(), "failed to send reset email", logger.Error(err), logger.UserID(user.ID.Hex()))
		}
	}

	var data any
	if !s.env.IsStrictProduction() {
		data = map[string]string{"resetUrl": resetURL, "resetToken": resetToken}
	}
	core.OK(w, data, forgotMessage)
}

type resetRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// Reset completes a password reset with a single-use token and signs the
// user straight in.
func (s *Service) Reset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := binder.JSON(r, &req); err != nil {
		core.Fail(w, core.ErrBadRequest.WithMessage(err.Error()))
		return
	}

	if err := validator.Apply(
		validator.RequiredString("token", req.Token),
		validator.MinLenString("password", req.Password, s.cfg.MinPasswordLength),
	); err != nil {
		core.FailWithDetails(w, core.ErrBadRequest.WithMessage(err.Error()), validator.Extract(err).Fields())
		return
	}

	user, err := s.users.ByResetToken(r.Context(), req.Token, time.Now())
	if err != nil {
		core.Fail(w, core.ErrBadRequest.WithMessage("Invalid or expired reset token"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		core.FailFromError(w, err)
		return
	}
	if err := s.users.SetPassword(r.Context(), user.ID.Hex(), string(hash)); err != nil {
		core.FailFromError(w, err)
		return
	}

	tok, err := s.issue(w, user, true)
	if err != nil {
		core.FailFromError(w, err)
		return
	}

	core.OK(w, map[string]string{"token": tok, "name": user.Name}, "Password has been reset")
}

// Me returns the session's user and refreshes the cookie to extend it.
func (s *Service) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r.Context())
	if !ok {
		core.Fail(w, core.ErrUnauthorized.WithMessage("Not authenticated"))
		return
	}

	tok, err := s.issue(w, user, true)
	if err != nil {
		core.FailFromError(w, err)
		return
	}

	core.OK(w, authPayload{
		ID:    user.ID.Hex(),
		Name:  user.Name,
		Email: user.Email,
		Token: tok,
	}, "Auth session")
}
