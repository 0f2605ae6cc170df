// Package config loads runtime configuration from an optional YAML file with
// environment overrides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultEndpoint is the Gemini generateContent endpoint used when no
// override is configured.
const DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent"

// Config carries everything the engine and its storage need at startup.
type Config struct {
	// Oracle settings.
	APIKey   string `yaml:"apiKey"`
	Endpoint string `yaml:"endpoint"`

	// MaxContextSnippets caps how many snippets relevance selection injects.
	MaxContextSnippets int `yaml:"maxContextSnippets"`

	// DBPath is the SQLite database location for CLI usage.
	DBPath string `yaml:"dbPath"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Endpoint:           DefaultEndpoint,
		MaxContextSnippets: 5,
		DBPath:             "weaver.db",
	}
}

// Load reads path (when non-empty and present) over the defaults, then
// applies environment overrides. GEMINI_API_KEY always wins over the file so
// keys can stay out of config files.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}

	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("WEAVER_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("WEAVER_DB"); v != "" {
		cfg.DBPath = v
	}

	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.MaxContextSnippets <= 0 {
		cfg.MaxContextSnippets = 5
	}
	return cfg, nil
}
