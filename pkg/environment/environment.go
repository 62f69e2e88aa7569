package environment

import "strings"

// Environment represents the application environment.
type Environment string

const (
	// Development for development environment.
	Development Environment = "development"
	// Staging for staging environment.
	Staging Environment = "staging"
	// Production for production environment.
	Production Environment = "production"
)

// Config carries the environment flags read once at startup.
type Config struct {
	Env         string `env:"APP_ENV" envDefault:"development"`
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`
}

// IsProduction reports whether the configured environment is production.
func (c Config) IsProduction() bool {
	return c.Env == string(Production) || c.Env == "prod"
}

// IsDevelopment reports whether the configured environment is development.
func (c Config) IsDevelopment() bool {
	return c.Env == string(Development) || c.Env == "dev"
}

// IsStrictProduction reports whether the service runs in a genuine production
// context. A localhost frontend origin keeps local and staging clusters usable
// over plain HTTP: secure cookies, captcha enforcement and reset-token
// redaction all key off this check rather than IsProduction alone.
func (c Config) IsStrictProduction() bool {
	return c.IsProduction() && !strings.Contains(c.FrontendURL, "localhost")
}
