// Package config resolves runtime settings. Sources are applied in order,
// later ones winning: built-in defaults, an optional YAML file, a .env file
// in the working directory, then the process environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds every runtime setting of the CLI.
type Config struct {
	DBPath        string `yaml:"db"`
	LogLevel      string `yaml:"log_level"`
	LogFormat     string `yaml:"log_format"`
	LogUseCases   bool   `yaml:"log_use_cases"`
	MetricsFile   string `yaml:"metrics_file"`
	ConfirmPrompt bool   `yaml:"confirm_prompt"`
}

// DefaultConfig returns a Config with sensible defaults. The database lives
// under ~/.sisara and use-case logging is off.
func DefaultConfig() Config {
	return Config{
		DBPath:        filepath.Join(homeDir(), ".sisara", "sisara.db"),
		LogLevel:      "info",
		LogFormat:     "text",
		LogUseCases:   false,
		ConfirmPrompt: true,
	}
}

// DefaultConfigPath is the YAML file read when SISARA_CONFIG is unset.
func DefaultConfigPath() string {
	return filepath.Join(homeDir(), ".sisara", "config.yaml")
}

// Load resolves the configuration. A missing YAML or .env file is not an
// error; a malformed one is.
func Load() (Config, error) {
	cfg := DefaultConfig()

	path := os.Getenv("SISARA_CONFIG")
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}
	if err := applyFile(&cfg, path, explicit); err != nil {
		return cfg, err
	}

	// godotenv never overrides variables already set in the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("loading .env: %w", err)
	}

	applyEnv(&cfg)
	return cfg, cfg.Validate()
}

func applyFile(cfg *Config, path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SISARA_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("SISARA_LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("SISARA_LOG_FORMAT"); v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}
	if v := os.Getenv("SISARA_LOG_USE_CASES"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.LogUseCases = b
		}
	}
	if v := os.Getenv("SISARA_METRICS_FILE"); v != "" {
		cfg.MetricsFile = v
	}
	if v := os.Getenv("SISARA_CONFIRM"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.ConfirmPrompt = b
		}
	}
}

// Validate rejects settings the CLI cannot act on.
func (c Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("config: db path is empty")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.LogFormat)
	}
	return nil
}

// NewLogger builds the process logger from LogLevel and LogFormat.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.slogLevel()}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func (c Config) slogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
