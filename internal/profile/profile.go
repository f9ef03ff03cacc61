// Package profile holds the runtime configuration of the assistant.
package profile

import (
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Profile is the configuration to start the assistant.
type Profile struct {
	// Mode can be "prod" or "dev"
	Mode string
	// TelegramToken is the bot API token.
	TelegramToken string // ASSISTANT_TELEGRAM_TOKEN

	// LLM configuration
	LLMAPIKey  string // ASSISTANT_LLM_API_KEY
	LLMBaseURL string // ASSISTANT_LLM_BASE_URL (default: https://openrouter.ai/api/v1)
	LLMModel   string // ASSISTANT_LLM_MODEL (default: qwen/qwen-2-7b-instruct:free)

	// Google Calendar configuration
	GoogleCredentials string // ASSISTANT_GOOGLE_CREDENTIALS (default: credentials.json)
	GoogleToken       string // ASSISTANT_GOOGLE_TOKEN (default: token.json)
	CalendarID        string // ASSISTANT_CALENDAR_ID (default: primary)

	// LogFile is the append-only diagnostic log path.
	LogFile string // ASSISTANT_LOG_FILE (default: bot.log)
}

// IsDev returns true unless the profile runs in prod mode.
func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// Load reads configuration from the environment, with an optional .env file
// for local development. Environment variables use the ASSISTANT_ prefix.
func Load() (*Profile, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("assistant")
	v.AutomaticEnv()

	v.SetDefault("mode", "prod")
	v.SetDefault("llm_base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("llm_model", "qwen/qwen-2-7b-instruct:free")
	v.SetDefault("google_credentials", "credentials.json")
	v.SetDefault("google_token", "token.json")
	v.SetDefault("calendar_id", "primary")
	v.SetDefault("log_file", "bot.log")

	p := &Profile{
		Mode:              v.GetString("mode"),
		TelegramToken:     v.GetString("telegram_token"),
		LLMAPIKey:         v.GetString("llm_api_key"),
		LLMBaseURL:        v.GetString("llm_base_url"),
		LLMModel:          v.GetString("llm_model"),
		GoogleCredentials: v.GetString("google_credentials"),
		GoogleToken:       v.GetString("google_token"),
		CalendarID:        v.GetString("calendar_id"),
		LogFile:           v.GetString("log_file"),
	}

	return p, nil
}

// Validate checks the fields that have no usable default. The auth command
// loads without validating since it only needs the Google settings.
func (p *Profile) Validate() error {
	if p.TelegramToken == "" {
		return errors.New("ASSISTANT_TELEGRAM_TOKEN is required")
	}
	if p.LLMAPIKey == "" {
		return errors.New("ASSISTANT_LLM_API_KEY is required")
	}
	return nil
}
