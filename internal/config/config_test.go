package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable LoadConfig reads so host settings do not leak in
func clearEnv(t *testing.T) {
	for _, key := range []string{
		"SERVER_HOST", "SERVER_PORT", "SERVER_ALLOWED_ORIGINS",
		"DATABASE_HOST", "DATABASE_PORT", "DATABASE_USER", "DATABASE_PASSWORD", "DATABASE_DBNAME", "DATABASE_SSLMODE",
		"REDIS_URL", "REDIS_TTL", "FACTCHECK_API_KEY", "FACTCHECK_LANGUAGE",
		"GENERATIVE_PROVIDER", "GENERATIVE_MODEL", "GEMINI_API_KEY", "OPENAI_API_KEY",
		"RETENTION_ENABLED", "RETENTION_SCHEDULE", "RETENTION_MAX_AGE_DAYS",
		"JWT_SECRET", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "gemini-key")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "gemini", cfg.Generative.Provider)
	assert.Equal(t, "gemini-key", cfg.Generative.APIKey)
	assert.Equal(t, 500, cfg.Verification.StoredReasoningLimit)
	assert.Equal(t, 30, cfg.Retention.MaxAgeDays)
	assert.Equal(t, "@daily", cfg.Retention.Schedule)
	assert.Equal(t, 24*time.Hour, cfg.Redis.TTL)
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server": {"port": 9000},
		"generative": {"provider": "openai", "api_key": "file-key"},
		"verification": {"claim_search_keywords": ["hoax"], "short_text_words": 3},
		"retention": {"max_age_days": 7}
	}`), 0o600))

	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("REDIS_URL", "redis://localhost:6379/1")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "openai", cfg.Generative.Provider)
	assert.Equal(t, "file-key", cfg.Generative.APIKey)
	assert.Equal(t, []string{"hoax"}, cfg.Verification.ClaimSearchKeywords)
	assert.Equal(t, 3, cfg.Verification.ShortTextWords)
	assert.Equal(t, 7, cfg.Retention.MaxAgeDays)
	assert.Equal(t, "redis://localhost:6379/1", cfg.Redis.URL)
}

func TestLoadConfig_ProviderSpecificKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("GENERATIVE_PROVIDER", "openai")
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("OPENAI_API_KEY", "openai-key")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "openai-key", cfg.Generative.APIKey)
}

func TestLoadConfig_MissingFileIsIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "k")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	assert.NoError(t, err)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Run("missing generative key", func(t *testing.T) {
		clearEnv(t)
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		assert.ErrorContains(t, cfg.Validate(), "generative api key is required")
	})

	t.Run("bad integer", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GEMINI_API_KEY", "k")
		t.Setenv("SERVER_PORT", "eighty")
		_, err := LoadConfig("")
		assert.ErrorContains(t, err, "SERVER_PORT")
	})

	t.Run("malformed file", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))
		_, err := LoadConfig(path)
		assert.ErrorContains(t, err, "failed to parse config file")
	})

	t.Run("unknown provider", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GENERATIVE_PROVIDER", "llama")
		t.Setenv("GEMINI_API_KEY", "k")
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		assert.ErrorContains(t, cfg.Validate(), "unknown generative provider")
	})
}

func TestGetDatabaseURL(t *testing.T) {
	db := DatabaseConfig{User: "u", Password: "p", Host: "db", Port: 5432, DBName: "factcheck", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/factcheck?sslmode=disable", db.GetDatabaseURL())
}

func TestNewLogger(t *testing.T) {
	logger, err := LoggingConfig{Level: "debug"}.NewLogger()
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = LoggingConfig{Level: "loud"}.NewLogger()
	assert.Error(t, err)
}
