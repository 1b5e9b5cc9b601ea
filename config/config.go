package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"signalwatcher/internal/adapters/logger" // Import the logger package for LogLevel
)

// Fixed engine constants. These are deliberately not configurable: they bound
// resource usage and match the sheet/exchange rate limits the bot is tuned for.
const (
	// ConcurrencyLimit caps the number of simultaneously active monitors.
	ConcurrencyLimit = 60
	// PollInterval is the base interval between price checks and retries.
	PollInterval = 5 * time.Second
	// TailScanInterval is the interval of the new-row scan, 2x the base.
	TailScanInterval = 2 * PollInterval
	// LedgerRetention is the number of announced-trade IDs kept on disk.
	LedgerRetention = 1000
)

// Config holds all application configuration.
type Config struct {
	// Google Sheets
	SpreadsheetID   string
	CredentialsPath string // OAuth client secret JSON
	TokenPath       string // Cached OAuth token

	// Telegram
	TelegramToken   string
	TelegramChatID  int64
	TelegramTopicID int // Forum sub-thread the messages are posted to

	// Local state
	LedgerPath string
	DBPath     string

	// Logging
	LogLevel logger.LogLevel
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var errs []string

	// Required identifiers. Missing any of these is fatal at startup.
	cfg.SpreadsheetID = getEnv("SPREADSHEET_ID", "")
	if cfg.SpreadsheetID == "" {
		errs = append(errs, "SPREADSHEET_ID must be set")
	}

	cfg.TelegramToken = getEnv("TELEGRAM_TOKEN", "")
	if cfg.TelegramToken == "" {
		errs = append(errs, "TELEGRAM_TOKEN must be set")
	}

	var err error
	cfg.TelegramChatID, err = getEnvAsInt64Required("TELEGRAM_CHAT_ID")
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid TELEGRAM_CHAT_ID: %v", err))
	}

	cfg.TelegramTopicID, err = getEnvAsIntRequired("TELEGRAM_TOPIC_ID")
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid TELEGRAM_TOPIC_ID: %v", err))
	}

	// Credential bootstrap. The client secret path may be overridden; the
	// token cache is created on first authorization.
	cfg.CredentialsPath = getEnv("GOOGLE_CREDENTIALS_PATH", "./client_secret.json")
	cfg.TokenPath = getEnv("TOKEN_PATH", "token.json")

	// Local state files
	cfg.LedgerPath = getEnv("LEDGER_PATH", "sent_trades.json")
	cfg.DBPath = getEnv("DB_PATH", "./data/signalwatcher.db")

	// Logging
	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr)

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return 0, fmt.Errorf("%s must be set", key)
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsInt64Required(key string) (int64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return 0, fmt.Errorf("%s must be set", key)
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}
