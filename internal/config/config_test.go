package config_test

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"subsum/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AI_API_KEY", "sk-test")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.AIService != "deepseek" {
		t.Fatalf("unexpected service: %q", cfg.AIService)
	}
	if cfg.AIBurst != 1 || cfg.AIMinInterval != 0 {
		t.Fatalf("unexpected limiter defaults: burst=%d interval=%v", cfg.AIBurst, cfg.AIMinInterval)
	}
	if cfg.WatchMaxConcurrent != 2 {
		t.Fatalf("unexpected watch concurrency: %d", cfg.WatchMaxConcurrent)
	}
	if cfg.TelegramEnabled() {
		t.Fatalf("expected Telegram to be disabled")
	}
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Fatalf("unexpected log level: %v", cfg.SlogLevel())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AI_API_KEY", "sk-test")
	t.Setenv("AI_SERVICE", " Qwen ")
	t.Setenv("AI_MIN_INTERVAL", "2s")
	t.Setenv("AI_BURST", "3")
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "-100123")
	t.Setenv("WATCH_DIR", t.TempDir())
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.AIService != "qwen" {
		t.Fatalf("unexpected service: %q", cfg.AIService)
	}
	if cfg.AIMinInterval != 2*time.Second || cfg.AIBurst != 3 {
		t.Fatalf("unexpected limiter settings: %v %d", cfg.AIMinInterval, cfg.AIBurst)
	}
	if !cfg.TelegramEnabled() || cfg.TelegramChatID != -100123 {
		t.Fatalf("unexpected Telegram settings: %+v", cfg)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Fatalf("unexpected log level: %v", cfg.SlogLevel())
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing API key", env: map[string]string{}},
		{name: "unknown service", env: map[string]string{"AI_API_KEY": "k", "AI_SERVICE": "bard"}},
		{name: "bad base URL", env: map[string]string{"AI_API_KEY": "k", "AI_BASE_URL": "not a url"}},
		{name: "token without chat", env: map[string]string{"AI_API_KEY": "k", "TELEGRAM_TOKEN": "123:abc"}},
		{name: "missing prompts file", env: map[string]string{
			"AI_API_KEY":   "k",
			"PROMPTS_FILE": filepath.Join(t.TempDir(), "missing.yaml"),
		}},
		{name: "bad log level", env: map[string]string{"AI_API_KEY": "k", "LOG_LEVEL": "loud"}},
		{name: "zero burst", env: map[string]string{"AI_API_KEY": "k", "AI_BURST": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("AI_API_KEY", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			if _, err := config.Load(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
