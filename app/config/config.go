package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Log      Log      `yaml:"log"`
	Telegram Telegram `yaml:"telegram"`
	Backend  Backend  `yaml:"backend"`
	Catalog  Catalog  `yaml:"catalog"`
	DB       DB       `yaml:"db"`
}

type Backend struct {
	// OpenAI-compatible base url of the generative service
	BaseURL string `yaml:"base_url" example:"https://generativelanguage.googleapis.com/v1beta/openai" validate:"required"`
	// API token
	Token string `yaml:"token" example:"sk-proj-abc123456789DEF789ghi012JKL345mno678PQR901stu234VWX" validate:"required"`
	// Model name
	Model string `yaml:"model" example:"gemini-1.5-flash" validate:"required"`
}

type Telegram struct {
	// Bot token, obtain it via BotFather
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789" validate:"required"`
	// Externally reachable hostname the webhook is registered under
	WebhookHost string `yaml:"webhook_host" example:"calmbot.example.com" validate:"required"`
	// Port the webhook server listens on
	Port string `yaml:"port" example:"10000"`
}

type Catalog struct {
	// Path to the canned-response dataset
	Path string `yaml:"path" example:"model_log.json"`
	// Path to the unknown-inputs log
	UnknownPath string `yaml:"unknown_path" example:"unknown_inputs.jsonl"`
}

type DB struct {
	// Path to the sqlite mood database
	Path string `yaml:"path" example:"mood_tracker.db"`
	// Optional path for persisted per-user sessions; in-memory when empty
	SessionsPath string `yaml:"sessions_path" example:"data/sessions.jsonl"`
}

type Log struct {
	// Telegram logging config
	Telegram TelegramLog `yaml:"telegram"`
}

type TelegramLog struct {
	// Chat bot token for log delivery
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789"`
	// Chat ID to send messages to
	ChatID string `yaml:"chat_id" example:"1001234567890"`
}

func Load() (*Config, error) {
	var result Config

	data, err := os.ReadFile("config.yaml")
	if err != nil {
		return nil, oops.Errorf("failed to read config file: %w", err)
	}

	if err = yaml.Unmarshal(data, &result); err != nil {
		return nil, oops.Errorf("failed to parse YAML config: %w", err)
	}

	if result.Telegram.Port == "" {
		result.Telegram.Port = "10000"
	}
	if result.Catalog.Path == "" {
		result.Catalog.Path = "model_log.json"
	}
	if result.Catalog.UnknownPath == "" {
		result.Catalog.UnknownPath = "unknown_inputs.jsonl"
	}
	if result.DB.Path == "" {
		result.DB.Path = "mood_tracker.db"
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(result); err != nil {
		return nil, oops.Errorf("failed to validate config: %w", err)
	}

	return &result, nil
}
