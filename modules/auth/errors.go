package auth

import "errors"

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")

	ErrCaptchaRequired    = errors.New("captcha token required")
	ErrCaptchaFailed      = errors.New("captcha verification failed")
	ErrCaptchaUnreachable = errors.New("captcha verification unreachable")

	ErrInvalidState      = errors.New("invalid oauth state")
	ErrProviderDisabled  = errors.New("oauth provider not configured")
	ErrProfileIncomplete = errors.New("oauth profile missing subject id")
)
