package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Database   DatabaseConfig   `mapstructure:"database"`
	Anthropic  AnthropicConfig  `mapstructure:"anthropic"`
	Generation GenerationConfig `mapstructure:"generation"`
	Scout      ScoutConfig      `mapstructure:"scout"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // sqlite
	DSN    string `mapstructure:"dsn"`    // Connection string
}

// AnthropicConfig holds Claude API settings
type AnthropicConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

// GenerationConfig holds content generation policy settings
type GenerationConfig struct {
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`   // deadline per LLM call
	ShortWordCap    int           `mapstructure:"short_word_cap"`    // hard cap for short-form posts
	ShortMaxTokens  int           `mapstructure:"short_max_tokens"`  // token budget for short hint
	RetryAttempts   int           `mapstructure:"retry_attempts"`    // word-cap retry ceiling
	RetryDelay      time.Duration `mapstructure:"retry_delay"`       // delay between retry attempts
}

// ScoutConfig holds news ingestion and scoring settings
type ScoutConfig struct {
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"` // deadline per feed fetch
	MaxItemAge   time.Duration `mapstructure:"max_item_age"`  // skip entries older than this
	ScoreTimeout time.Duration `mapstructure:"score_timeout"` // deadline per scoring call
	ScoreLimit   int           `mapstructure:"score_limit"`   // max candidates per scoring run
	Seed         []SeedSource  `mapstructure:"seed"`          // sources inserted on first run
}

// SeedSource is a news source seeded from config
type SeedSource struct {
	Name     string `mapstructure:"name"`
	URL      string `mapstructure:"url"`
	Category string `mapstructure:"category"`
}

// SchedulerConfig holds scheduler settings
type SchedulerConfig struct {
	IngestCron string `mapstructure:"ingest_cron"`
	ScoreCron  string `mapstructure:"score_cron"`
}

// RateLimitConfig holds rate limiting settings
type RateLimitConfig struct {
	AnthropicRequestsPerMinute int `mapstructure:"anthropic_requests_per_minute"`
	FeedRequestsPerSecond      int `mapstructure:"feed_requests_per_second"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json or console
	Output string `mapstructure:"output"` // stdout or file path
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	// Load .env file if present (ignore errors if not found)
	_ = godotenv.Load()
	_ = godotenv.Load(".env.local")

	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in current directory and configs folder
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")

		// Also check user's home directory
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".agora-agent"))
		}
	}

	// Environment variables
	v.SetEnvPrefix("AGORA")
	v.AutomaticEnv()

	// Explicit bindings for nested keys (Viper doesn't auto-bind underscored nested keys)
	v.BindEnv("anthropic.api_key", "AGORA_ANTHROPIC_API_KEY")
	v.BindEnv("anthropic.model", "AGORA_ANTHROPIC_MODEL")
	v.BindEnv("database.driver", "AGORA_DATABASE_DRIVER")
	v.BindEnv("database.dsn", "AGORA_DATABASE_DSN")
	v.BindEnv("logging.level", "AGORA_LOGGING_LEVEL")

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./data/agora.db")

	// Anthropic defaults
	v.SetDefault("anthropic.model", "claude-sonnet-4-20250514")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("anthropic.temperature", 0.7)

	// Generation defaults
	v.SetDefault("generation.request_timeout", "90s")
	v.SetDefault("generation.short_word_cap", 60)
	v.SetDefault("generation.short_max_tokens", 300)
	v.SetDefault("generation.retry_attempts", 3)
	v.SetDefault("generation.retry_delay", "2s")

	// Scout defaults
	v.SetDefault("scout.fetch_timeout", "30s")
	v.SetDefault("scout.max_item_age", "168h") // 7 days
	v.SetDefault("scout.score_timeout", "60s")
	v.SetDefault("scout.score_limit", 50)

	// Scheduler defaults
	v.SetDefault("scheduler.ingest_cron", "0 */2 * * *") // Every 2 hours
	v.SetDefault("scheduler.score_cron", "30 */2 * * *") // Offset from ingestion

	// Rate limit defaults
	v.SetDefault("rate_limit.anthropic_requests_per_minute", 10)
	v.SetDefault("rate_limit.feed_requests_per_second", 1)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stdout")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Generation.RetryAttempts < 1 {
		return fmt.Errorf("generation.retry_attempts must be at least 1")
	}
	if c.Generation.ShortWordCap < 1 {
		return fmt.Errorf("generation.short_word_cap must be positive")
	}
	return nil
}
