package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `json:"server"`
	Database     DatabaseConfig     `json:"database"`
	Redis        RedisConfig        `json:"redis"`
	ClaimSearch  ClaimSearchConfig  `json:"claim_search"`
	Generative   GenerativeConfig   `json:"generative"`
	Extractor    ExtractorConfig    `json:"extractor"`
	Verification VerificationConfig `json:"verification"`
	Retention    RetentionConfig    `json:"retention"`
	Security     SecurityConfig     `json:"security"`
	Logging      LoggingConfig      `json:"logging"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	AllowedOrigins  []string      `json:"allowed_origins"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Host           string        `json:"host"`
	Port           int           `json:"port"`
	User           string        `json:"user"`
	Password       string        `json:"password"`
	DBName         string        `json:"db_name"`
	SSLMode        string        `json:"ssl_mode"`
	MaxConnections int           `json:"max_connections"`
	MaxIdleConns   int           `json:"max_idle_conns"`
	MaxLifetime    time.Duration `json:"max_lifetime"`
}

// RedisConfig enables the backend response cache when URL is set
type RedisConfig struct {
	URL string        `json:"url"`
	TTL time.Duration `json:"ttl"`
}

// ClaimSearchConfig configures the fact-check claim search backend
type ClaimSearchConfig struct {
	APIKey       string        `json:"api_key"`
	Endpoint     string        `json:"endpoint"`
	LanguageCode string        `json:"language_code"`
	PageSize     int           `json:"page_size"`
	Timeout      time.Duration `json:"timeout"`
}

// GenerativeConfig configures the generative analysis backend
type GenerativeConfig struct {
	Provider string        `json:"provider"`
	APIKey   string        `json:"api_key"`
	Model    string        `json:"model"`
	BaseURL  string        `json:"base_url"`
	Timeout  time.Duration `json:"timeout"`
}

type ExtractorConfig struct {
	Timeout   time.Duration `json:"timeout"`
	UserAgent string        `json:"user_agent"`
	MaxBytes  int64         `json:"max_bytes"`
}

// VerificationConfig holds the selector vocabulary and storage limits.
// Empty keyword lists fall back to the built-in defaults.
type VerificationConfig struct {
	StoredReasoningLimit int      `json:"stored_reasoning_limit"`
	ResponseTextLimit    int      `json:"response_text_limit"`
	QuestionPrefixes     []string `json:"question_prefixes"`
	CopularOpeners       []string `json:"copular_openers"`
	ClaimSearchKeywords  []string `json:"claim_search_keywords"`
	GenerativeKeywords   []string `json:"generative_keywords"`
	LongTextWords        int      `json:"long_text_words"`
	ShortTextWords       int      `json:"short_text_words"`
}

type RetentionConfig struct {
	Enabled    bool          `json:"enabled"`
	Schedule   string        `json:"schedule"`
	MaxAgeDays int           `json:"max_age_days"`
	RunTimeout time.Duration `json:"run_timeout"`
}

// SecurityConfig
type SecurityConfig struct {
	JWTSecret string `json:"jwt_secret"`
}

// LoggingConfig
type LoggingConfig struct {
	Level       string `json:"level"`
	Development bool   `json:"development"`
}

// LoadConfig loads configuration from .env, an optional JSON file and
// environment variables, in that order of increasing precedence
func LoadConfig(configPath string) (*Config, error) {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	config := defaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := overrideWithEnv(config); err != nil {
		return nil, err
	}
	return config, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    90 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"*"},
		},
		Database: DatabaseConfig{
			Host:           "localhost",
			Port:           5432,
			User:           os.Getenv("USER"),
			DBName:         "factcheck",
			SSLMode:        "disable",
			MaxConnections: 25,
			MaxIdleConns:   5,
			MaxLifetime:    time.Hour,
		},
		Redis: RedisConfig{
			TTL: 24 * time.Hour,
		},
		ClaimSearch: ClaimSearchConfig{
			LanguageCode: "es",
			PageSize:     5,
			Timeout:      30 * time.Second,
		},
		Generative: GenerativeConfig{
			Provider: "gemini",
			Timeout:  60 * time.Second,
		},
		Extractor: ExtractorConfig{
			Timeout: 10 * time.Second,
		},
		Verification: VerificationConfig{
			StoredReasoningLimit: 500,
			ResponseTextLimit:    500,
		},
		Retention: RetentionConfig{
			Enabled:    true,
			Schedule:   "@daily",
			MaxAgeDays: 30,
			RunTimeout: 5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func overrideWithEnv(config *Config) error {
	var errs []error
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}
	setBool := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}

	setString("SERVER_HOST", &config.Server.Host)
	setInt("SERVER_PORT", &config.Server.Port)
	if origins := os.Getenv("SERVER_ALLOWED_ORIGINS"); origins != "" {
		config.Server.AllowedOrigins = splitList(origins)
	}

	setString("DATABASE_HOST", &config.Database.Host)
	setInt("DATABASE_PORT", &config.Database.Port)
	setString("DATABASE_USER", &config.Database.User)
	setString("DATABASE_PASSWORD", &config.Database.Password)
	setString("DATABASE_DBNAME", &config.Database.DBName)
	setString("DATABASE_SSLMODE", &config.Database.SSLMode)

	setString("REDIS_URL", &config.Redis.URL)
	setDuration("REDIS_TTL", &config.Redis.TTL)

	setString("FACTCHECK_API_KEY", &config.ClaimSearch.APIKey)
	setString("FACTCHECK_LANGUAGE", &config.ClaimSearch.LanguageCode)

	setString("GENERATIVE_PROVIDER", &config.Generative.Provider)
	setString("GENERATIVE_MODEL", &config.Generative.Model)
	if config.Generative.APIKey == "" {
		switch strings.ToLower(config.Generative.Provider) {
		case "openai":
			setString("OPENAI_API_KEY", &config.Generative.APIKey)
		default:
			setString("GEMINI_API_KEY", &config.Generative.APIKey)
		}
	}

	setBool("RETENTION_ENABLED", &config.Retention.Enabled)
	setString("RETENTION_SCHEDULE", &config.Retention.Schedule)
	setInt("RETENTION_MAX_AGE_DAYS", &config.Retention.MaxAgeDays)

	setString("JWT_SECRET", &config.Security.JWTSecret)
	setString("LOG_LEVEL", &config.Logging.Level)

	return errors.Join(errs...)
}

// Validate checks the settings the API server cannot start without
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server port %d is out of range", c.Server.Port))
	}
	switch strings.ToLower(c.Generative.Provider) {
	case "gemini", "openai":
	default:
		errs = append(errs, fmt.Errorf("unknown generative provider %q", c.Generative.Provider))
	}
	if c.Generative.APIKey == "" {
		errs = append(errs, fmt.Errorf("generative api key is required for provider %q", c.Generative.Provider))
	}
	if c.Retention.MaxAgeDays < 1 {
		errs = append(errs, fmt.Errorf("retention max age must be at least one day"))
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging level: %w", err))
	}
	return errors.Join(errs...)
}

// GetDatabaseURL returns the database connection string
func (c *DatabaseConfig) GetDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// NewLogger builds a zap logger at the configured level
func (c LoggingConfig) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if c.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
