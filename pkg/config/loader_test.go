package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readershaven/readershaven/pkg/config"
)

type testConfig struct {
	Name    string `env:"CONFIG_TEST_NAME" envDefault:"readers-haven"`
	Port    int    `env:"CONFIG_TEST_PORT" envDefault:"8080"`
	Enabled bool   `env:"CONFIG_TEST_ENABLED" envDefault:"true"`
}

type requiredConfig struct {
	Secret string `env:"CONFIG_TEST_REQUIRED_SECRET,required"`
}

func TestLoadDefaults(t *testing.T) {
	var cfg testConfig
	require.NoError(t, config.Load(&cfg))

	assert.Equal(t, "readers-haven", cfg.Name)
	assert.Equal(t, 8080, cfg.Port)
	assert.True(t, cfg.Enabled)
}

func TestLoadCached(t *testing.T) {
	var first testConfig
	require.NoError(t, config.Load(&first))

	// Changing the environment after the first load must not change the
	// cached value: configuration is immutable after startup.
	t.Setenv("CONFIG_TEST_PORT", "9999")

	var second testConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, first.Port, second.Port)
}

func TestLoadRequiredMissing(t *testing.T) {
	var cfg requiredConfig
	err := config.Load(&cfg)
	assert.ErrorIs(t, err, config.ErrParsingConfig)
}

func TestLoadNilPointer(t *testing.T) {
	err := config.Load[testConfig](nil)
	assert.ErrorIs(t, err, config.ErrNilPointer)
}
