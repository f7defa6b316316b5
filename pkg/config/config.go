package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all saaschat configuration.
type Config struct {
	Listen       string           `yaml:"listen"`
	DBPath       string           `yaml:"db_path"`
	ModelsFile   string           `yaml:"models_file"`
	OpenRouter   OpenRouterConfig `yaml:"openrouter"`
	Chat         ChatConfig       `yaml:"chat"`
	SummaryCache CacheConfig      `yaml:"summary_cache"`
}

// OpenRouterConfig defines the upstream completion provider endpoint.
type OpenRouterConfig struct {
	URL      string        `yaml:"url"`
	APIKey   string        `yaml:"api_key"`
	Referer  string        `yaml:"referer"`
	AppTitle string        `yaml:"app_title"`
	Timeout  time.Duration `yaml:"timeout"`
}

// ChatConfig controls the chat pipeline defaults.
type ChatConfig struct {
	SystemPrompt    string  `yaml:"system_prompt"`
	Temperature     float64 `yaml:"temperature"`
	FreeTokensLimit int64   `yaml:"free_tokens_limit"`
}

// CacheConfig controls the summarization result cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Listen: ":8080",
		DBPath: "saaschat.db",
		OpenRouter: OpenRouterConfig{
			URL:      "https://openrouter.ai/api/v1",
			APIKey:   "${OPENROUTER_API_KEY}",
			AppTitle: "saaschat",
			Timeout:  2 * time.Minute,
		},
		Chat: ChatConfig{
			SystemPrompt:    "You are a helpful assistant.",
			Temperature:     0.7,
			FreeTokensLimit: 1000000,
		},
		SummaryCache: CacheConfig{
			Enabled: false,
			TTL:     24 * time.Hour,
		},
	}
}

// Load reads a YAML config file and expands environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}
