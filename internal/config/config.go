package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	AIService     string        `env:"AI_SERVICE"      envDefault:"deepseek" validate:"oneof=deepseek zhipu qwen openai gemini"`
	AIAPIKey      string        `env:"AI_API_KEY,required,notEmpty"`
	AIBaseURL     string        `env:"AI_BASE_URL"                           validate:"omitempty,url"`
	AIModel       string        `env:"AI_MODEL"`
	AIMinInterval time.Duration `env:"AI_MIN_INTERVAL" envDefault:"0s"       validate:"gte=0"`
	AIBurst       int           `env:"AI_BURST"        envDefault:"1"        validate:"gte=1"`

	PromptsFile string `env:"PROMPTS_FILE" validate:"omitempty,file"`

	TelegramToken  string `env:"TELEGRAM_TOKEN"`
	TelegramChatID int64  `env:"TELEGRAM_CHAT_ID" validate:"required_with=TelegramToken"`

	WatchDir           string `env:"WATCH_DIR"            validate:"omitempty,dir"`
	WatchMaxConcurrent int    `env:"WATCH_MAX_CONCURRENT" envDefault:"2" validate:"gte=1"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.AIService = strings.ToLower(strings.TrimSpace(cfg.AIService))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	return nil
}

// TelegramEnabled reports whether summaries should be delivered to Telegram.
func (c Config) TelegramEnabled() bool {
	return strings.TrimSpace(c.TelegramToken) != ""
}

func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
