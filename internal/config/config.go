package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/subosito/gotenv"
)

type Config struct {
	DBPath       string `toml:"db_path"`
	CachePath    string `toml:"cache_path"`
	SummariesDir string `toml:"summaries_dir"`
	WeeksDir     string `toml:"weeks_dir"`
	SiteDir      string `toml:"site_dir"`
	LinksPath    string `toml:"links_path"`
	PromptPath   string `toml:"prompt_path"`
	LogLevel     string `toml:"log_level"`
	GroupName    string `toml:"group_name"`

	Summarize Summarize `toml:"summarize"`
	Site      Site      `toml:"site"`
	Links     Links     `toml:"links"`
}

type Summarize struct {
	Provider         string  `toml:"provider"`
	Model            string  `toml:"model"`
	FallbackModel    string  `toml:"fallback_model"`
	MaxTokens        int     `toml:"max_tokens"`
	Retries          int     `toml:"retries"`
	RetryBaseSeconds int     `toml:"retry_base_seconds"`
	RetryMaxSeconds  int     `toml:"retry_max_seconds"`
	RetryJitter      float64 `toml:"retry_jitter"`
	OllamaURL        string  `toml:"ollama_url"`
}

type Site struct {
	BaseURL     string `toml:"base_url"`
	LinksSource string `toml:"links_source"`
}

type Links struct {
	Concurrency    int    `toml:"concurrency"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	UserAgent      string `toml:"user_agent"`
}

// Load reads the config file named by WAD_CONFIG, or ~/.config/wad/config.toml.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv("WAD_CONFIG"))
}

// LoadFrom reads the given TOML file over the defaults. An empty path means
// the default location; a missing default file is not an error.
func LoadFrom(cfgPath string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	if err := gotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default(home)

	explicit := cfgPath != ""
	if !explicit {
		cfgPath = filepath.Join(home, ".config", "wad", "config.toml")
	}
	cfgPath = expandHome(cfgPath, home)
	if _, err := os.Stat(cfgPath); err == nil {
		if _, err := toml.DecodeFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config %s: %w", cfgPath, err)
	}

	for _, p := range []*string{
		&cfg.DBPath, &cfg.CachePath, &cfg.SummariesDir, &cfg.WeeksDir,
		&cfg.SiteDir, &cfg.LinksPath, &cfg.PromptPath,
	} {
		*p = expandHome(*p, home)
	}

	return cfg, nil
}

func Default(home string) *Config {
	return &Config{
		DBPath:       filepath.Join(home, ".config", "wad", "wad.db"),
		CachePath:    filepath.Join(home, ".cache", "wad", "summaries.bolt"),
		SummariesDir: "resumos",
		WeeksDir:     "semanas",
		SiteDir:      "docs",
		LinksPath:    filepath.Join("links", "links.json"),
		LogLevel:     "info",
		GroupName:    "Aprendizados IA + Educação",
		Summarize: Summarize{
			Provider:         "anthropic",
			MaxTokens:        4096,
			Retries:          5,
			RetryBaseSeconds: 2,
			RetryMaxSeconds:  120,
			RetryJitter:      0.25,
			OllamaURL:        "http://localhost:11434/v1",
		},
		Site: Site{
			LinksSource: "full",
		},
		Links: Links{
			Concurrency:    10,
			TimeoutSeconds: 15,
			UserAgent:      "Mozilla/5.0 (compatible; wad-links/1.0)",
		},
	}
}

// APIKeyEnv lists the environment variables consulted for a provider's key.
func APIKeyEnv(provider string) []string {
	switch provider {
	case "anthropic":
		return []string{"ANTHROPIC_API_KEY"}
	case "openai":
		return []string{"OPENAI_API_KEY"}
	case "google":
		return []string{"GOOGLE_API_KEY", "GEMINI_API_KEY"}
	}
	return nil
}

// APIKey returns the credential for provider from the environment. Providers
// that need no key (ollama) return "" and true.
func APIKey(provider string) (string, bool) {
	names := APIKeyEnv(provider)
	if names == nil {
		return "", true
	}
	for _, n := range names {
		if v := strings.TrimSpace(os.Getenv(n)); v != "" {
			return v, true
		}
	}
	return "", false
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
