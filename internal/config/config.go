package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

const (
	BackendSQL       = "sql"
	BackendFile      = "file"
	BackendFirestore = "firestore"

	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

type RuntimeConfig struct {
	Backend             string  `mapstructure:"backend"`
	DatabaseDriver      string  `mapstructure:"database_driver"`
	DatabaseDSN         string  `mapstructure:"database_dsn"`
	StateFile           string  `mapstructure:"state_file"`
	OpenAIAPIKey        string  `mapstructure:"openai_api_key"`
	OpenAIBaseURL       string  `mapstructure:"openai_base_url"`
	OpenAIModel         string  `mapstructure:"openai_model"`
	ChatModel           string  `mapstructure:"chat_model"`
	Temperature         float64 `mapstructure:"temperature"`
	MaxTokens           int     `mapstructure:"max_tokens"`
	RequestTimeoutSecs  int     `mapstructure:"request_timeout_seconds"`
	ReflectionNudge     string  `mapstructure:"reflection_nudge"`
	ListenAddr          string  `mapstructure:"listen_addr"`
	JWTSecret           string  `mapstructure:"jwt_secret"`
	FirebaseCredentials string  `mapstructure:"firebase_credentials"`
	FirebaseProject     string  `mapstructure:"firebase_project"`
	FCMDeviceToken      string  `mapstructure:"fcm_device_token"`
	UserID              string  `mapstructure:"user_id"`
	Verbose             bool    `mapstructure:"verbose"`
}

func DefaultRuntimeConfig() RuntimeConfig {
	dir := DefaultDir()
	return RuntimeConfig{
		Backend:            BackendSQL,
		DatabaseDriver:     DriverSQLite,
		DatabaseDSN:        filepath.Join(dir, "iaa.db"),
		StateFile:          filepath.Join(dir, "state.json"),
		OpenAIModel:        "gpt-4o-mini",
		ChatModel:          "gpt-3.5-turbo",
		Temperature:        0.7,
		MaxTokens:          1200,
		RequestTimeoutSecs: 0,
		ReflectionNudge:    "0 21 * * *",
		ListenAddr:         ":8080",
		UserID:             "local",
	}
}

// DefaultDir is ~/.config/iaa, or ./.iaa when no home directory is available.
func DefaultDir() string {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, "iaa")
	}
	return ".iaa"
}

func (c RuntimeConfig) RequestTimeout() time.Duration {
	if c.RequestTimeoutSecs <= 0 {
		return 0
	}
	return time.Duration(c.RequestTimeoutSecs) * time.Second
}

func (c RuntimeConfig) Validate() error {
	switch c.Backend {
	case BackendSQL:
		switch c.DatabaseDriver {
		case DriverSQLite, DriverPostgres:
		default:
			return fmt.Errorf("%w: unknown database_driver %q", ErrInvalidConfig, c.DatabaseDriver)
		}
		if strings.TrimSpace(c.DatabaseDSN) == "" {
			return fmt.Errorf("%w: database_dsn is required", ErrInvalidConfig)
		}
	case BackendFile:
		if strings.TrimSpace(c.StateFile) == "" {
			return fmt.Errorf("%w: state_file is required", ErrInvalidConfig)
		}
	case BackendFirestore:
		if strings.TrimSpace(c.FirebaseProject) == "" && strings.TrimSpace(c.FirebaseCredentials) == "" {
			return fmt.Errorf("%w: firebase_project or firebase_credentials is required", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, c.Backend)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%w: temperature %v out of range", ErrInvalidConfig, c.Temperature)
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("%w: max_tokens must not be negative", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.UserID) == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidConfig)
	}
	return nil
}

// Load reads .env, then the config file (path, or config.{yaml,json} under DefaultDir),
// then IAA_* environment variables. A missing config file is not an error.
func Load(path string) (RuntimeConfig, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v, DefaultRuntimeConfig())
	v.SetEnvPrefix("IAA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(DefaultDir())
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return RuntimeConfig{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg RuntimeConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return RuntimeConfig{}, fmt.Errorf("config: decode: %w", err)
	}
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	cfg.DatabaseDriver = strings.ToLower(strings.TrimSpace(cfg.DatabaseDriver))
	if cfg.OpenAIAPIKey == "" {
		cfg.OpenAIAPIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	}
	if err := cfg.Validate(); err != nil {
		return RuntimeConfig{}, err
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv picks it up during Unmarshal.
func setDefaults(v *viper.Viper, d RuntimeConfig) {
	v.SetDefault("backend", d.Backend)
	v.SetDefault("database_driver", d.DatabaseDriver)
	v.SetDefault("database_dsn", d.DatabaseDSN)
	v.SetDefault("state_file", d.StateFile)
	v.SetDefault("openai_api_key", d.OpenAIAPIKey)
	v.SetDefault("openai_base_url", d.OpenAIBaseURL)
	v.SetDefault("openai_model", d.OpenAIModel)
	v.SetDefault("chat_model", d.ChatModel)
	v.SetDefault("temperature", d.Temperature)
	v.SetDefault("max_tokens", d.MaxTokens)
	v.SetDefault("request_timeout_seconds", d.RequestTimeoutSecs)
	v.SetDefault("reflection_nudge", d.ReflectionNudge)
	v.SetDefault("listen_addr", d.ListenAddr)
	v.SetDefault("jwt_secret", d.JWTSecret)
	v.SetDefault("firebase_credentials", d.FirebaseCredentials)
	v.SetDefault("firebase_project", d.FirebaseProject)
	v.SetDefault("fcm_device_token", d.FCMDeviceToken)
	v.SetDefault("user_id", d.UserID)
	v.SetDefault("verbose", d.Verbose)
}
