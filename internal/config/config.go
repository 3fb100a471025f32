package config

import (
	"fmt"
	"os"
	"strconv"
)

// Storage modes.
const (
	StorageClickHouse = "clickhouse"
	StorageLocal      = "local"
)

// Config holds the application configuration.
type Config struct {
	// AppEnv selects logger setup: "development" or "production".
	AppEnv string
	Port   string

	// StorageMode selects the record store: "clickhouse" for the
	// account-backed deployment, "local" for the offline/guest mode on
	// device storage only.
	StorageMode string

	// LocalDBPath is the SQLite file backing the local key-value store.
	LocalDBPath string

	// ClickHouse configuration (required unless StorageMode is local)
	ClickHouseHost     string
	ClickHousePort     int
	ClickHouseDatabase string
	ClickHouseUser     string
	ClickHousePassword string
	ClickHouseUseTLS   bool

	// GutendexBaseURL overrides the public Gutendex endpoint (mainly for
	// tests); empty means the default.
	GutendexBaseURL string

	// Daily reminder delivery via Telegram. The reminder loop only runs
	// when token, chat and user are all set.
	TelegramToken  string
	ReminderChatID int64
	ReminderUserID string
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	config := &Config{}

	config.AppEnv = os.Getenv("APP_ENV")
	if config.AppEnv == "" {
		config.AppEnv = "development"
	}

	config.Port = os.Getenv("PORT")
	if config.Port == "" {
		config.Port = "8080"
	}

	config.StorageMode = os.Getenv("STORAGE_MODE")
	if config.StorageMode == "" {
		config.StorageMode = StorageClickHouse
	}
	if config.StorageMode != StorageClickHouse && config.StorageMode != StorageLocal {
		return nil, fmt.Errorf("invalid STORAGE_MODE: %s (expected %s or %s)",
			config.StorageMode, StorageClickHouse, StorageLocal)
	}

	config.LocalDBPath = os.Getenv("LOCAL_DB_PATH")
	if config.LocalDBPath == "" {
		config.LocalDBPath = "readtrack.db"
	}

	// ClickHouse configuration (required for the account-backed mode)
	if config.StorageMode == StorageClickHouse {
		config.ClickHouseHost = os.Getenv("CLICKHOUSE_HOST")
		if config.ClickHouseHost == "" {
			return nil, fmt.Errorf("CLICKHOUSE_HOST is required when STORAGE_MODE is %s", StorageClickHouse)
		}

		portStr := os.Getenv("CLICKHOUSE_PORT")
		if portStr == "" {
			config.ClickHousePort = 9000 // Default ClickHouse native port
		} else {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return nil, fmt.Errorf("invalid CLICKHOUSE_PORT: %w", err)
			}
			config.ClickHousePort = port
		}

		config.ClickHouseDatabase = os.Getenv("CLICKHOUSE_DATABASE")
		if config.ClickHouseDatabase == "" {
			config.ClickHouseDatabase = "default"
		}

		config.ClickHouseUser = os.Getenv("CLICKHOUSE_USER")
		if config.ClickHouseUser == "" {
			config.ClickHouseUser = "default"
		}

		config.ClickHousePassword = os.Getenv("CLICKHOUSE_PASSWORD")
		// Password is optional, can be empty

		config.ClickHouseUseTLS = os.Getenv("CLICKHOUSE_USE_TLS") == "true"
	}

	config.GutendexBaseURL = os.Getenv("GUTENDEX_BASE_URL")

	config.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	config.ReminderUserID = os.Getenv("REMINDER_USER_ID")
	if chatStr := os.Getenv("REMINDER_CHAT_ID"); chatStr != "" {
		chatID, err := strconv.ParseInt(chatStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid REMINDER_CHAT_ID: %w", err)
		}
		config.ReminderChatID = chatID
	}

	return config, nil
}

// ReminderEnabled reports whether the daily reminder loop should run.
func (c *Config) ReminderEnabled() bool {
	return c.TelegramToken != "" && c.ReminderChatID != 0 && c.ReminderUserID != ""
}
