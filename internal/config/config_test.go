package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromOverridesDefaults(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
summaries_dir = "~/digest/resumos"
log_level = "debug"

[summarize]
provider = "google"
model = "gemini-2.5-flash"
retries = 2

[site]
base_url = "/resumos/"
`), 0o644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "digest", "resumos"), cfg.SummariesDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "google", cfg.Summarize.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.Summarize.Model)
	assert.Equal(t, 2, cfg.Summarize.Retries)
	assert.Equal(t, 4096, cfg.Summarize.MaxTokens, "unset keys keep defaults")
	assert.Equal(t, "/resumos/", cfg.Site.BaseURL)
	assert.Equal(t, "full", cfg.Site.LinksSource)
}

func TestLoadFromMissingExplicitFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestAPIKey(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "g-key")
	key, ok := APIKey("google")
	assert.True(t, ok)
	assert.Equal(t, "g-key", key)

	t.Setenv("ANTHROPIC_API_KEY", "")
	_, ok = APIKey("anthropic")
	assert.False(t, ok)

	key, ok = APIKey("ollama")
	assert.True(t, ok)
	assert.Empty(t, key)
}

func TestExpandHome(t *testing.T) {
	assert.Equal(t, filepath.Join("/home/u", "x"), expandHome("~/x", "/home/u"))
	assert.Equal(t, "relative/x", expandHome("relative/x", "/home/u"))
	assert.Equal(t, "~", expandHome("~", "/home/u"))
}
