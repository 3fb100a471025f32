package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv resets every variable LoadFromEnv reads so tests start clean.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "PORT", "STORAGE_MODE", "LOCAL_DB_PATH",
		"CLICKHOUSE_HOST", "CLICKHOUSE_PORT", "CLICKHOUSE_DATABASE",
		"CLICKHOUSE_USER", "CLICKHOUSE_PASSWORD", "CLICKHOUSE_USE_TLS",
		"GUTENDEX_BASE_URL", "TELEGRAM_BOT_TOKEN", "REMINDER_CHAT_ID", "REMINDER_USER_ID",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("CLICKHOUSE_HOST", "localhost")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorageClickHouse, cfg.StorageMode)
	assert.Equal(t, "readtrack.db", cfg.LocalDBPath)
	assert.Equal(t, "localhost", cfg.ClickHouseHost)
	assert.Equal(t, 9000, cfg.ClickHousePort)
	assert.Equal(t, "default", cfg.ClickHouseDatabase)
	assert.Equal(t, "default", cfg.ClickHouseUser)
	assert.False(t, cfg.ClickHouseUseTLS)
	assert.False(t, cfg.ReminderEnabled())
}

func TestLoadFromEnv_MissingClickHouseHost(t *testing.T) {
	clearEnv(t)

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CLICKHOUSE_HOST")
}

func TestLoadFromEnv_LocalModeSkipsClickHouse(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_MODE", StorageLocal)
	t.Setenv("LOCAL_DB_PATH", "/tmp/test.db")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, StorageLocal, cfg.StorageMode)
	assert.Equal(t, "/tmp/test.db", cfg.LocalDBPath)
	assert.Empty(t, cfg.ClickHouseHost)
}

func TestLoadFromEnv_InvalidStorageMode(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_MODE", "postgres")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORAGE_MODE")
}

func TestLoadFromEnv_InvalidClickHousePort(t *testing.T) {
	clearEnv(t)
	t.Setenv("CLICKHOUSE_HOST", "localhost")
	t.Setenv("CLICKHOUSE_PORT", "not-a-port")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CLICKHOUSE_PORT")
}

func TestLoadFromEnv_FullClickHouseConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("CLICKHOUSE_HOST", "ch.example.com")
	t.Setenv("CLICKHOUSE_PORT", "9440")
	t.Setenv("CLICKHOUSE_DATABASE", "readtrack")
	t.Setenv("CLICKHOUSE_USER", "svc")
	t.Setenv("CLICKHOUSE_PASSWORD", "secret")
	t.Setenv("CLICKHOUSE_USE_TLS", "true")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.AppEnv)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "ch.example.com", cfg.ClickHouseHost)
	assert.Equal(t, 9440, cfg.ClickHousePort)
	assert.Equal(t, "readtrack", cfg.ClickHouseDatabase)
	assert.Equal(t, "svc", cfg.ClickHouseUser)
	assert.Equal(t, "secret", cfg.ClickHousePassword)
	assert.True(t, cfg.ClickHouseUseTLS)
}

func TestLoadFromEnv_Reminder(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_MODE", StorageLocal)
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("REMINDER_CHAT_ID", "42")
	t.Setenv("REMINDER_USER_ID", "user-1")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.ReminderEnabled())
	assert.Equal(t, int64(42), cfg.ReminderChatID)

	t.Setenv("REMINDER_CHAT_ID", "not-a-number")
	_, err = LoadFromEnv()
	assert.Error(t, err)
}
