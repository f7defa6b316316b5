package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Listen != ":8080" {
		t.Errorf("expected :8080, got %s", cfg.Listen)
	}
	if cfg.Chat.Temperature != 0.7 {
		t.Errorf("expected temperature 0.7, got %v", cfg.Chat.Temperature)
	}
	if cfg.Chat.FreeTokensLimit != 1000000 {
		t.Errorf("expected 1000000 free tokens, got %d", cfg.Chat.FreeTokensLimit)
	}
	if cfg.SummaryCache.Enabled {
		t.Error("summary cache should default to disabled")
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("TEST_OPENROUTER_KEY", "sk-or-test-123")

	content := `
listen: ":9090"
db_path: "chat.db"
openrouter:
  api_key: ${TEST_OPENROUTER_KEY}
  referer: https://example.com
  timeout: 30s
chat:
  system_prompt: "You are terse."
  temperature: 0.2
summary_cache:
  enabled: true
  ttl: 12h
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Listen != ":9090" {
		t.Errorf("expected :9090, got %s", cfg.Listen)
	}
	if cfg.OpenRouter.APIKey != "sk-or-test-123" {
		t.Errorf("env var not expanded: got %s", cfg.OpenRouter.APIKey)
	}
	if cfg.OpenRouter.Timeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", cfg.OpenRouter.Timeout)
	}
	// Fields absent from the file keep their defaults.
	if cfg.OpenRouter.URL != "https://openrouter.ai/api/v1" {
		t.Errorf("expected default provider URL, got %s", cfg.OpenRouter.URL)
	}
	if cfg.Chat.Temperature != 0.2 {
		t.Errorf("expected temperature 0.2, got %v", cfg.Chat.Temperature)
	}
	if !cfg.SummaryCache.Enabled || cfg.SummaryCache.TTL != 12*time.Hour {
		t.Errorf("unexpected cache config %+v", cfg.SummaryCache)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
