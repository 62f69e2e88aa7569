package locales_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readershaven/readershaven/pkg/locales"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "locales.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("empty path returns defaults", func(t *testing.T) {
		t.Parallel()

		got, err := locales.Load("")
		require.NoError(t, err)
		assert.Equal(t, locales.Default, got)
	})

	t.Run("file overrides", func(t *testing.T) {
		t.Parallel()

		got, err := locales.Load(writeFile(t, "locales: [en, fr, de]\n"))
		require.NoError(t, err)
		assert.Equal(t, []string{"en", "fr", "de"}, got)
	})

	t.Run("empty file falls back to defaults", func(t *testing.T) {
		t.Parallel()

		got, err := locales.Load(writeFile(t, "locales: []\n"))
		require.NoError(t, err)
		assert.Equal(t, locales.Default, got)
	})

	t.Run("invalid tag rejected", func(t *testing.T) {
		t.Parallel()

		_, err := locales.Load(writeFile(t, "locales: [en, 'not a tag!!']\n"))
		require.Error(t, err)
		assert.ErrorIs(t, err, locales.ErrInvalidLocale)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := locales.Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}
