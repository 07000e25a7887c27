// Package config loads tool configuration from the environment and an
// optional YAML file.
package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/raphaelgruber/tabsql/internal/tableau"
)

// Config holds all configuration values. Precedence, lowest to highest:
// built-in defaults, YAML file named by TABSQL_CONFIG, environment
// variables. Command-line flags override everything at the CLI layer.
type Config struct {
	// Tableau REST API
	APIVersion string
	Timeout    time.Duration
	Token      string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// fileConfig is the YAML shape of the optional config file.
type fileConfig struct {
	APIVersion string `yaml:"api_version"`
	Timeout    string `yaml:"timeout"`
	Token      string `yaml:"token"`
	LogFile    string `yaml:"log_file"`
	LogLevel   string `yaml:"log_level"`
}

// Load reads configuration, applying file and environment overrides on
// top of defaults. A broken config file is reported on the default
// logger and otherwise ignored.
func Load() Config {
	cfg := Config{
		APIVersion: tableau.DefaultAPIVersion,
		Timeout:    tableau.DefaultTimeout,
		LogLevel:   slog.LevelInfo,
	}

	if path := os.Getenv("TABSQL_CONFIG"); path != "" {
		applyFile(&cfg, path)
	}

	cfg.APIVersion = getEnv("TABSQL_API_VERSION", cfg.APIVersion)
	cfg.Token = getEnv("TABSQL_TOKEN", cfg.Token)
	cfg.LogFile = getEnv("TABSQL_LOG_FILE", cfg.LogFile)
	if v := os.Getenv("TABSQL_LOG_LEVEL"); v != "" {
		cfg.LogLevel = parseLogLevel(v)
	}
	if v := os.Getenv("TABSQL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Timeout = d
		} else {
			slog.Warn("ignoring invalid TABSQL_TIMEOUT", "value", v)
		}
	}

	return cfg
}

func applyFile(cfg *Config, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("config file unreadable", "path", path, "error", err)
		return
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		slog.Warn("config file invalid", "path", path, "error", err)
		return
	}

	if fc.APIVersion != "" {
		cfg.APIVersion = fc.APIVersion
	}
	if fc.Token != "" {
		cfg.Token = fc.Token
	}
	if fc.LogFile != "" {
		cfg.LogFile = fc.LogFile
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = parseLogLevel(fc.LogLevel)
	}
	if fc.Timeout != "" {
		if d, err := time.ParseDuration(fc.Timeout); err == nil && d > 0 {
			cfg.Timeout = d
		} else {
			slog.Warn("ignoring invalid timeout in config file", "value", fc.Timeout)
		}
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
