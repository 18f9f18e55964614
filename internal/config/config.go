package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Conf holds the application configuration, making it accessible globally.
var Conf *Config

// Config struct is the top-level configuration structure.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Session   SessionConfig   `mapstructure:"session"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Tasks     TasksConfig     `mapstructure:"tasks"`
}

// ServerConfig holds server-related settings.
type ServerConfig struct {
	Port          string `mapstructure:"port"`
	CookieSecret  string `mapstructure:"cookie_secret"`
	ResearcherKey string `mapstructure:"researcher_key"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

// LoggingConfig holds settings for the logger.
type LoggingConfig struct {
	Directory  string `mapstructure:"directory"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// LLMConfig holds settings for the chat completion backend.
type LLMConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
}

// SessionConfig controls session lifetime and cleanup cadence.
type SessionConfig struct {
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	ReaperInterval time.Duration `mapstructure:"reaper_interval"`
}

// TelemetryConfig exposes the derivation thresholds so studies can tune
// them without a rebuild. Zero values fall back to the engine defaults.
type TelemetryConfig struct {
	PauseThresholdMS    int64 `mapstructure:"pause_threshold_ms"`
	ThinkingThresholdMS int64 `mapstructure:"thinking_threshold_ms"`
	TypingWindowMS      int64 `mapstructure:"typing_window_ms"`
	TemporalWindowMS    int64 `mapstructure:"temporal_window_ms"`
	PointerMoveCap      int   `mapstructure:"pointer_move_cap"`
	PreviewLength       int   `mapstructure:"preview_length"`
	MinPhraseLength     int   `mapstructure:"min_phrase_length"`
	LastResortAttempts  int   `mapstructure:"last_resort_attempts"`
}

// TasksConfig points at the task catalog file.
type TasksConfig struct {
	File string `mapstructure:"file"`
}

// setDefaults sets the default values for the configuration.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "5050")

	// Database defaults
	v.SetDefault("database.host", "db")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "user")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.dbname", "creatask-db")

	// Logging defaults
	v.SetDefault("logging.directory", "logs")
	v.SetDefault("logging.max_size", 10)   // 10 MB
	v.SetDefault("logging.max_backups", 3) // Keep 3 backups
	v.SetDefault("logging.max_age", 7)     // 7 days
	v.SetDefault("logging.compress", true) // Compress old logs

	// LLM defaults
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.timeout", "30s")
	v.SetDefault("llm.max_tokens", 512)
	v.SetDefault("llm.temperature", 0.7)

	// Session defaults
	v.SetDefault("session.idle_timeout", "30m")
	v.SetDefault("session.reaper_interval", "5m")

	// Tasks defaults
	v.SetDefault("tasks.file", "config/tasks.yaml")
}

// Init initializes the configuration with Viper.
func Init(projectRoot string, log *zap.Logger) error {
	v := viper.New()

	// Set default values
	setDefaults(v)

	// --- File Configuration ---
	v.AddConfigPath(filepath.Join(projectRoot, "config")) // Search for config file in the current directory
	v.SetConfigName("config")                             // Name of config file (without extension)
	v.SetConfigType("yaml")                               // Type of config file

	// --- Environment Variable Binding ---
	v.SetEnvPrefix("CREATASK") // e.g., CREATASK_SERVER_PORT
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read the initial configuration from the file.
	// It's okay if the file doesn't exist; defaults and env vars will be used.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Unmarshal the config into our global Conf variable
	if err := v.Unmarshal(&Conf); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}

	// Set up a watch for configuration changes for hot-reloading
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Info("Configuration file changed, reloading.", zap.String("file", e.Name))
		if err := v.Unmarshal(&Conf); err != nil {
			log.Error("Error reloading configuration", zap.Error(err))
		}
	})

	log.Info("Configuration loaded successfully")
	return nil
}
