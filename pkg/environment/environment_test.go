package environment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/readershaven/readershaven/pkg/environment"
)

func TestIsStrictProduction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  environment.Config
		want bool
	}{
		{
			name: "production with public frontend",
			cfg:  environment.Config{Env: "production", FrontendURL: "https://readershaven.app"},
			want: true,
		},
		{
			name: "production with localhost frontend",
			cfg:  environment.Config{Env: "production", FrontendURL: "http://localhost:5173"},
			want: false,
		},
		{
			name: "development",
			cfg:  environment.Config{Env: "development", FrontendURL: "https://readershaven.app"},
			want: false,
		},
		{
			name: "prod shorthand",
			cfg:  environment.Config{Env: "prod", FrontendURL: "https://readershaven.app"},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.cfg.IsStrictProduction())
		})
	}
}

func TestEnvironmentChecks(t *testing.T) {
	t.Parallel()

	cfg := environment.Config{Env: "development"}
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}
