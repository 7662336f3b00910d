package config

import (
	"log/slog"
	"slices"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if !cfg.EmbeddedFonts || cfg.SystemFonts {
		t.Errorf("fonts = %v/%v, want embedded only", cfg.EmbeddedFonts, cfg.SystemFonts)
	}
	if cfg.Tick != 16*time.Millisecond {
		t.Errorf("Tick = %v, want 16ms", cfg.Tick)
	}
	if cfg.AssetRoot != "." {
		t.Errorf("AssetRoot = %q, want .", cfg.AssetRoot)
	}
	if cfg.S3Endpoint != "" || !cfg.S3Secure {
		t.Errorf("S3 = %q secure=%v, want disabled with TLS default", cfg.S3Endpoint, cfg.S3Secure)
	}
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("PAGETEX_LOG_LEVEL", "debug")
	t.Setenv("PAGETEX_SYSTEM_FONTS", "true")
	t.Setenv("PAGETEX_FONT_DIRS", "/a,/b")
	t.Setenv("PAGETEX_MAX_IN_FLIGHT", "4")
	t.Setenv("PAGETEX_JOBS_PER_TICK", "2")
	t.Setenv("PAGETEX_TICK", "50ms")
	t.Setenv("PAGETEX_S3_ENDPOINT", "localhost:9000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "debug" || !cfg.SystemFonts {
		t.Errorf("cfg = %+v", cfg)
	}
	if !slices.Equal(cfg.FontDirs, []string{"/a", "/b"}) {
		t.Errorf("Dirs = %v", cfg.FontDirs)
	}
	if cfg.MaxInFlight != 4 || cfg.JobsPerTick != 2 || cfg.Tick != 50*time.Millisecond {
		t.Errorf("jobs = %d/%d/%v", cfg.MaxInFlight, cfg.JobsPerTick, cfg.Tick)
	}
	if cfg.S3Endpoint != "localhost:9000" {
		t.Errorf("S3.Endpoint = %q", cfg.S3Endpoint)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"bad int", "PAGETEX_MAX_IN_FLIGHT", "many"},
		{"negative", "PAGETEX_JOBS_PER_TICK", "-1"},
		{"zero tick", "PAGETEX_TICK", "0s"},
		{"bad level", "PAGETEX_LOG_LEVEL", "loud"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%s succeeded", tt.key, tt.value)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{" error ", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}
