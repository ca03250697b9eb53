package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	cfg.Sources.Demo = true
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults with demo sources should validate: %v", err)
	}
}

func TestLoadAppliesProfile(t *testing.T) {
	t.Run("basic", func(t *testing.T) {
		path := writeConfig(t, `
mode = "scan"
[scan]
profile = "basic"
[sources]
demo = true
`)
		cfg, err := Load(path)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Dedupe.Window.Duration != 10*time.Minute {
			t.Errorf("window = %s, want 10m", cfg.Dedupe.Window.Duration)
		}
		if cfg.Scan.Interval.Duration != 60*time.Second {
			t.Errorf("interval = %s, want 60s", cfg.Scan.Interval.Duration)
		}
	})

	t.Run("fast", func(t *testing.T) {
		path := writeConfig(t, `
[scan]
profile = "fast"
`)
		cfg, err := Load(path)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Dedupe.Window.Duration != 60*time.Second {
			t.Errorf("window = %s, want 60s", cfg.Dedupe.Window.Duration)
		}
		if cfg.Scan.Interval.Duration != 1*time.Second {
			t.Errorf("interval = %s, want 1s", cfg.Scan.Interval.Duration)
		}
	})

	t.Run("explicit values win over profile", func(t *testing.T) {
		path := writeConfig(t, `
[scan]
profile = "fast"
interval = "30s"
[dedupe]
window = "5m"
`)
		cfg, err := Load(path)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Dedupe.Window.Duration != 5*time.Minute {
			t.Errorf("window = %s, want explicit 5m", cfg.Dedupe.Window.Duration)
		}
		if cfg.Scan.Interval.Duration != 30*time.Second {
			t.Errorf("interval = %s, want explicit 30s", cfg.Scan.Interval.Duration)
		}
	})
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
mode = "scan"
[sources]
demo = true
`)
	t.Setenv("ORBITARB_MODE", "once")
	t.Setenv("ORBITARB_MATCHING_THRESHOLD", "80")
	t.Setenv("ORBITARB_DEDUPE_BACKEND", "redis")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mode != "once" {
		t.Errorf("mode = %q, want env override", cfg.Mode)
	}
	if cfg.Matching.Threshold != 80 {
		t.Errorf("threshold = %v, want 80", cfg.Matching.Threshold)
	}
	if cfg.Dedupe.Backend != "redis" {
		t.Errorf("dedupe backend = %q, want redis", cfg.Dedupe.Backend)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad mode", func(c *Config) { c.Mode = "turbo" }},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }},
		{"threshold above 100", func(c *Config) { c.Matching.Threshold = 101 }},
		{"unknown policy", func(c *Config) { c.Comparison.Policy = "maximal" }},
		{"inverted band", func(c *Config) { c.Comparison.MinPct = 40; c.Comparison.MaxPct = 30 }},
		{"unknown dedupe backend", func(c *Config) { c.Dedupe.Backend = "etcd" }},
		{"zero window", func(c *Config) { c.Dedupe.Window.Duration = 0 }},
		{"interval too small", func(c *Config) { c.Scan.Interval.Duration = 100 * time.Millisecond }},
		{"interval too large", func(c *Config) { c.Scan.Interval.Duration = 2 * time.Minute }},
		{"unknown profile", func(c *Config) { c.Scan.Profile = "ludicrous" }},
		{"missing feed urls", func(c *Config) { c.Sources.Demo = false }},
		{"postgres subscribers without postgres", func(c *Config) { c.Subscribers.Backend = "postgres" }},
		{"bad server port", func(c *Config) { c.Server.Port = 70000 }},
		{"telegram chat id without token", func(c *Config) { c.Notify.TelegramChatID = "1" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.Sources.Demo = true
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
