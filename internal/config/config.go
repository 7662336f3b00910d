// Package config reads the command-line tool's settings from the
// environment. Flags override these values.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every variable name.
const Prefix = "PAGETEX"

// Config holds all settings.
type Config struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Fonts beyond those bundled with a document.
	EmbeddedFonts bool     `envconfig:"EMBEDDED_FONTS" default:"true"`
	SystemFonts   bool     `envconfig:"SYSTEM_FONTS" default:"false"`
	FontDirs      []string `envconfig:"FONT_DIRS"`

	// Scheduler bounds. Zero means unbounded.
	MaxInFlight int           `envconfig:"MAX_IN_FLIGHT" default:"0"`
	JobsPerTick int           `envconfig:"JOBS_PER_TICK" default:"0"`
	Tick        time.Duration `envconfig:"TICK" default:"16ms"`

	AssetRoot string `envconfig:"ASSET_ROOT" default:"."`

	// Object storage; disabled when S3Endpoint is empty.
	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY"`
	S3Region    string `envconfig:"S3_REGION"`
	S3Secure    bool   `envconfig:"S3_SECURE" default:"true"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := new(Config)
	if err := envconfig.Process(Prefix, cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.MaxInFlight < 0 || cfg.JobsPerTick < 0 {
		return nil, fmt.Errorf("config: job limits must not be negative")
	}
	if cfg.Tick <= 0 {
		return nil, fmt.Errorf("config: tick must be positive, got %v", cfg.Tick)
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("config: log level %q: %w", s, err)
	}
	return l, nil
}
