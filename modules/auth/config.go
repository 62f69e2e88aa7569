package auth

import "time"

// Config holds everything the auth flows read from the environment. The JWT
// secret has no default on purpose; the server refuses to start without one.
type Config struct {
	JWTSecret  string        `env:"JWT_SECRET"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"168h"`

	SessionCookieName string        `env:"SESSION_COOKIE_NAME" envDefault:"rh_session"`
	CSRFCookieName    string        `env:"CSRF_COOKIE_NAME" envDefault:"rh_csrf"`
	CSRFTTL           time.Duration `env:"CSRF_TTL" envDefault:"12h"`

	MinPasswordLength int `env:"MIN_PASSWORD_LENGTH" envDefault:"6"`

	CaptchaSecret    string `env:"RECAPTCHA_SECRET"`
	CaptchaVerifyURL string `env:"RECAPTCHA_VERIFY_URL" envDefault:"https://www.google.com/recaptcha/api/siteverify"`
	CaptchaBypass    bool   `env:"RECAPTCHA_BYPASS" envDefault:"false"`

	GoogleClientID       string        `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret   string        `env:"GOOGLE_CLIENT_SECRET"`
	FacebookClientID     string        `env:"FACEBOOK_APP_ID"`
	FacebookClientSecret string        `env:"FACEBOOK_APP_SECRET"`
	OAuthCallbackBase    string        `env:"OAUTH_CALLBACK_BASE" envDefault:"http://localhost:8080"`
	OAuthStateTTL        time.Duration `env:"OAUTH_STATE_TTL" envDefault:"10m"`
}

// GoogleEnabled reports whether the Google provider has credentials.
func (c Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// FacebookEnabled reports whether the Facebook provider has credentials.
func (c Config) FacebookEnabled() bool {
	return c.FacebookClientID != "" && c.FacebookClientSecret != ""
}
