package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Oracle providers supported for dish recommendations.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

const (
	defaultAPIURL      = "https://api.powermeal.pl"
	defaultPanelOrigin = "https://panel.powermeal.pl"
	defaultOpenAIModel = "gpt-4o-2024-08-06"
	defaultGeminiModel = "gemini-1.5-pro"
)

// Config holds the configuration for the application.
type Config struct {
	APIBaseURL  string
	PanelOrigin string

	OracleProvider string
	OpenAIAPIKey   string
	OpenAIModel    string
	GeminiAPIKey   string
	GeminiModel    string

	// Telegram Config (optional run-summary notifications)
	TelegramBotToken string
	TelegramChatID   int64

	// Optional path overrides
	PreferencesPath string
	MetricsDBPath   string
}

// NewFromEnv creates a new Config object from environment variables. A .env
// file in the working directory is loaded first if present.
func NewFromEnv() (*Config, error) {
	_ = godotenv.Load()

	apiBaseURL := os.Getenv("MEALPLAN_API_URL")
	if apiBaseURL == "" {
		apiBaseURL = defaultAPIURL
	}

	panelOrigin := os.Getenv("MEALPLAN_PANEL_ORIGIN")
	if panelOrigin == "" {
		panelOrigin = defaultPanelOrigin
	}

	provider := os.Getenv("ORACLE_PROVIDER")
	if provider == "" {
		provider = ProviderOpenAI
	}

	openAIKey := os.Getenv("OPENAI_API_KEY")
	openAIModel := os.Getenv("OPENAI_MODEL")
	if openAIModel == "" {
		openAIModel = defaultOpenAIModel
	}

	geminiKey := os.Getenv("GEMINI_API_KEY")
	geminiModel := os.Getenv("GEMINI_MODEL")
	if geminiModel == "" {
		geminiModel = defaultGeminiModel
	}

	switch provider {
	case ProviderOpenAI:
		if openAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case ProviderGemini:
		if geminiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
		}
	default:
		return nil, fmt.Errorf("unknown ORACLE_PROVIDER %q: must be %q or %q", provider, ProviderOpenAI, ProviderGemini)
	}

	var telegramChatID int64
	if chatIDStr := os.Getenv("TELEGRAM_CHAT_ID"); chatIDStr != "" {
		id, err := strconv.ParseInt(chatIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", chatIDStr, err)
		}
		telegramChatID = id
	}

	return &Config{
		APIBaseURL:       apiBaseURL,
		PanelOrigin:      panelOrigin,
		OracleProvider:   provider,
		OpenAIAPIKey:     openAIKey,
		OpenAIModel:      openAIModel,
		GeminiAPIKey:     geminiKey,
		GeminiModel:      geminiModel,
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   telegramChatID,
		PreferencesPath:  os.Getenv("PREFERENCES_PATH"),
		MetricsDBPath:    os.Getenv("METRICS_DB_PATH"),
	}, nil
}
