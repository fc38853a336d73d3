// Package config loads and validates application configuration from an
// optional YAML file and TRANSFLOW_-prefixed environment variables.
// Environment variables override file values.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every runtime parameter of the service and the CLI.
type Config struct {
	// Server.
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// Logging.
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// Storage.
	DBPath string `mapstructure:"db_path"`

	// Pipeline.
	BatchSize          int           `mapstructure:"batch_size"`
	TranslateInterval  time.Duration `mapstructure:"translate_interval"`
	MatchThreshold     float64       `mapstructure:"match_threshold"`
	ValidateOutputLang bool          `mapstructure:"validate_output_lang"`

	// Translation backend: "google" or "mymemory".
	Backend           string `mapstructure:"backend"`
	GoogleCredentials string `mapstructure:"google_credentials"`
	GoogleProjectID   string `mapstructure:"google_project_id"`
	MyMemoryEmail     string `mapstructure:"mymemory_email"`

	// PDF extraction commands; empty means the pdftotext defaults.
	PDFCommand         string `mapstructure:"pdf_command"`
	PDFFallbackCommand string `mapstructure:"pdf_fallback_command"`
}

// Load reads configuration, applying defaults, then the file at path (when
// non-empty), then the environment.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("port", 8080)
	v.SetDefault("shutdown_timeout", 5*time.Second)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("db_path", "transflow.db")
	v.SetDefault("batch_size", 50)
	v.SetDefault("translate_interval", 500*time.Millisecond)
	v.SetDefault("match_threshold", 0.7)
	v.SetDefault("validate_output_lang", true)
	v.SetDefault("backend", "mymemory")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix("TRANSFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("invalid log_format %q, expected json or text", c.LogFormat)
	}
	if _, err := parseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Backend != "google" && c.Backend != "mymemory" {
		return fmt.Errorf("invalid backend %q, expected google or mymemory", c.Backend)
	}
	if c.MatchThreshold < 0 || c.MatchThreshold > 1 {
		return fmt.Errorf("match_threshold must be within [0,1], got %v", c.MatchThreshold)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch_size must be positive, got %d", c.BatchSize)
	}
	return nil
}

// SetupLogger builds the process logger from the configured level and format
// and installs it as the slog default.
func SetupLogger(c *Config) *slog.Logger {
	level, _ := parseLogLevel(c.LogLevel)
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if c.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q, expected debug, info, warn or error", level)
	}
}
