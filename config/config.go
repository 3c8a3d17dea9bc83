package config

import (
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Groq struct {
	BaseURL             string        `yaml:"base_url" env:"GROQ_BASE_URL" env-default:"https://api.groq.com/openai"`
	Model               string        `yaml:"model" env:"GROQ_MODEL" env-default:"llama-3.3-70b-versatile"`
	GroundedModel       string        `yaml:"grounded_model" env:"GROQ_GROUNDED_MODEL" env-default:"llama3-8b-8192"`
	ChatTemperature     float32       `yaml:"chat_temperature" env:"CHAT_TEMPERATURE" env-default:"0.7"`
	GroundedTemperature float32       `yaml:"grounded_temperature" env:"GROUNDED_TEMPERATURE" env-default:"0.1"`
	GroundedMaxTokens   int           `yaml:"grounded_max_tokens" env:"GROUNDED_MAX_TOKENS" env-default:"1000"`
	RequestTimeout      time.Duration `yaml:"request_timeout" env:"GROQ_REQUEST_TIMEOUT" env-default:"45s"`
	HistoryTokenLimit   int           `yaml:"history_token_limit" env:"HISTORY_TOKEN_LIMIT" env-default:"3500"`
}

type Credential struct {
	EnvName     string `yaml:"env_name" env-default:"GROQ_API_KEY"`
	SecretsPath string `yaml:"secrets_path" env:"SECRETS_PATH" env-default:".secrets.toml"`
}

type Telegram struct {
	APIToken          string  `env:"TELEGRAM_APITOKEN" env-required:"true"`
	AllowedTelegramID []int64 `yaml:"allowed_telegram_id" env:"ALLOWED_TELEGRAM_ID" env-separator:","`
	IsNotPublic       bool    `yaml:"is_not_public" env:"IS_NOT_PUBLIC"`
	Language          string  `yaml:"language" env:"BOT_LANGUAGE" env-default:"en"`
}

type Redis struct {
	Endpoint      string        `yaml:"endpoint" env:"REDIS_ENDPOINT"`
	TranscriptTTL time.Duration `yaml:"transcript_ttl" env:"TRANSCRIPT_TTL" env-default:"12h"`
}

type Config struct {
	Groq       Groq       `yaml:"groq"`
	Credential Credential `yaml:"credential"`
	Telegram   Telegram   `yaml:"telegram"`
	Redis      Redis      `yaml:"redis"`
}

// LoadConfig reads the yaml config when the file exists and environment
// variables on top of it; a missing config file is not an error, env is
// enough to run the bot.
func LoadConfig(cfgPath string) (*Config, error) {
	var cfg Config
	if _, err := os.Stat(cfgPath); err == nil {
		if err := cleanenv.ReadConfig(cfgPath, &cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
