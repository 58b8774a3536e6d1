package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	// Quantum X endpoints
	ChatURL        string        `env:"QUANTUM_CHAT_URL" envDefault:"http://142.117.62.233:3001/chat"`
	ExecuteURL     string        `env:"QUANTUM_EXECUTE_URL" envDefault:"http://142.117.62.233:3001/execute"`
	ChatTimeout    time.Duration `env:"QUANTUM_CHAT_TIMEOUT" envDefault:"90s"`
	ExecuteTimeout time.Duration `env:"QUANTUM_EXECUTE_TIMEOUT" envDefault:"30s"`

	// Optional key to prefill the session with. It still has to pass the
	// prefix check.
	APIKey string `env:"QUANTUM_API_KEY"`

	// Storage
	ConversationsDir string `env:"CONVERSATIONS_DIR" envDefault:"quantum_conversations"`
	LogFilePath      string `env:"LOG_FILE_PATH" envDefault:"logs/quantumchat.log"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`

	// Telegram front-end
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	OwnerChatID      int64  `env:"TELEGRAM_OWNER_CHAT_ID"`
	MessageParseMode string `env:"MESSAGE_PARSE_MODE"`

	// Terminal front-end
	Theme string `env:"THEME" envDefault:"dark"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.ChatTimeout <= 0 || cfg.ExecuteTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be positive (chat=%s, execute=%s)", cfg.ChatTimeout, cfg.ExecuteTimeout)
	}
	return cfg, nil
}

func New() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("%v", err)
	}
	return cfg
}

// ValidateBot reports the settings the Telegram front-end cannot run without.
func (c *Config) ValidateBot() error {
	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if c.OwnerChatID == 0 {
		return fmt.Errorf("TELEGRAM_OWNER_CHAT_ID is required")
	}
	return nil
}
