package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/tgienger/taskpilot/internal/storage"
)

// Config holds all configuration for taskpilot. Values come from an
// optional YAML file in the data directory with environment variable
// overrides; env always wins.
type Config struct {
	// DataDir is where documents, the log, and the config file live.
	// Defaults to the XDG data directory.
	DataDir string `yaml:"data_dir" env:"TASKPILOT_DATA_DIR" env-default:""`

	// Backend selects the persistence backend: "file" or "sqlite".
	Backend string `yaml:"backend" env:"TASKPILOT_BACKEND" env-default:"file"`

	// DebounceMS is the quiet window between the last mutation and the
	// persisted write, in milliseconds.
	DebounceMS int `yaml:"debounce_ms" env:"TASKPILOT_DEBOUNCE_MS" env-default:"250"`

	// LogLevel is a zap level name (debug, info, warn, error).
	LogLevel string `yaml:"log_level" env:"TASKPILOT_LOG_LEVEL" env-default:"info"`

	// ReminderCron is the cron spec for the reminder sweep.
	ReminderCron string `yaml:"reminder_cron" env:"TASKPILOT_REMINDER_CRON" env-default:"0 9 * * *"`

	// NotificationsGranted is whether the notification collaborator reports
	// permission as granted.
	NotificationsGranted bool `yaml:"notifications_granted" env:"TASKPILOT_NOTIFICATIONS_GRANTED" env-default:"true"`
}

// Debounce returns the configured quiet window as a duration.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// Load reads config.yaml from the data directory if present, then applies
// environment overrides. A missing file is not an error.
func Load() (*Config, error) {
	cfg := &Config{}

	dataDir, err := storage.DefaultDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	path := filepath.Join(dataDir, "config.yaml")
	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("read environment: %w", err)
		}
	}

	if cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	if cfg.Backend != "file" && cfg.Backend != "sqlite" {
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	return cfg, nil
}
