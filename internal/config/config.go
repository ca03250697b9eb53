// Package config defines the top-level configuration for the orbitarb scanner
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by ORBITARB_* environment variables.
type Config struct {
	Matching    MatchingConfig    `toml:"matching"`
	Comparison  ComparisonConfig  `toml:"comparison"`
	Dedupe      DedupeConfig      `toml:"dedupe"`
	Scan        ScanConfig        `toml:"scan"`
	Sources     SourcesConfig     `toml:"sources"`
	Redis       RedisConfig       `toml:"redis"`
	Postgres    PostgresConfig    `toml:"postgres"`
	Subscribers SubscribersConfig `toml:"subscribers"`
	Server      ServerConfig      `toml:"server"`
	Notify      NotifyConfig      `toml:"notify"`
	Mode        string            `toml:"mode"`
	LogLevel    string            `toml:"log_level"`
}

// MatchingConfig holds team-name matching parameters.
type MatchingConfig struct {
	// Threshold is the minimum similarity score (0-100) for two team names
	// to be considered the same team.
	Threshold float64 `toml:"threshold"`
	// AliasesPath points to a JSON file of name aliases. Empty or missing
	// file means no aliases.
	AliasesPath string `toml:"aliases_path"`
}

// ComparisonConfig holds odds comparison parameters.
type ComparisonConfig struct {
	// Policy selects the acceptance rule: "band" or "lay_back".
	Policy     string  `toml:"policy"`
	MinPct     float64 `toml:"min_pct"`
	MaxPct     float64 `toml:"max_pct"`
	MinDiffAbs float64 `toml:"min_diff_abs"`
	MinDiffPct float64 `toml:"min_diff_pct"`
}

// DedupeConfig holds alert suppression parameters.
type DedupeConfig struct {
	// Backend selects the cache backend: "memory" or "redis".
	Backend string   `toml:"backend"`
	Window  duration `toml:"window"`
}

// ScanConfig holds scan loop parameters.
type ScanConfig struct {
	Interval duration `toml:"interval"`
	// Profile applies preset window/interval values: "basic" (10m window,
	// 60s interval) or "fast" (60s window, 1s interval). Explicit dedupe
	// and scan values in the file still win over the profile.
	Profile string `toml:"profile"`
}

// SourceConfig describes one odds feed.
type SourceConfig struct {
	Site    string   `toml:"site"`
	URL     string   `toml:"url"`
	Timeout duration `toml:"timeout"`
}

// SourcesConfig holds the lay-side and back-side feeds.
type SourcesConfig struct {
	Orbit SourceConfig `toml:"orbit"`
	Back  SourceConfig `toml:"back"`
	// Demo replaces both feeds with built-in fixture data when true.
	Demo bool `toml:"demo"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Enabled       bool   `toml:"enabled"`
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// SubscribersConfig holds subscriber registry parameters.
type SubscribersConfig struct {
	// Backend selects the registry backend: "file" or "postgres".
	Backend string `toml:"backend"`
	// FilePath is the JSON file used by the file backend.
	FilePath string `toml:"file_path"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string `toml:"telegram_token"`
	TelegramChatID    string `toml:"telegram_chat_id"`
	DiscordWebhookURL string `toml:"discord_webhook_url"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "10m", "60s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "10m" or "60s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Matching: MatchingConfig{
			Threshold: 75.0,
		},
		Comparison: ComparisonConfig{
			Policy: "band",
			MinPct: -1.0,
			MaxPct: 30.0,
		},
		Dedupe: DedupeConfig{
			Backend: "memory",
			Window:  duration{10 * time.Minute},
		},
		Scan: ScanConfig{
			Interval: duration{60 * time.Second},
			Profile:  "basic",
		},
		Sources: SourcesConfig{
			Orbit: SourceConfig{Site: "orbit", Timeout: duration{30 * time.Second}},
			Back:  SourceConfig{Site: "oddsportal", Timeout: duration{30 * time.Second}},
			Demo:  false,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			DB:       0,
			PoolSize: 20,
		},
		Postgres: PostgresConfig{
			Enabled:       false,
			Host:          "localhost",
			Port:          5432,
			Database:      "orbitarb",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Subscribers: SubscribersConfig{
			Backend:  "file",
			FilePath: "subscribers.json",
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Mode:     "full",
		LogLevel: "info",
	}
}

// applyProfile overwrites the dedupe window and scan interval with the
// selected profile's presets, skipping whichever the operator set explicitly.
func (c *Config) applyProfile(keepWindow, keepInterval bool) {
	var window, interval time.Duration
	switch strings.ToLower(c.Scan.Profile) {
	case "", "basic":
		window, interval = 10*time.Minute, 60*time.Second
	case "fast":
		window, interval = 60*time.Second, 1*time.Second
	default:
		return
	}
	if !keepWindow {
		c.Dedupe.Window = duration{window}
	}
	if !keepInterval {
		c.Scan.Interval = duration{interval}
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"scan":  true,
	"serve": true,
	"full":  true,
	"once":  true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: scan, serve, full, once)", c.Mode))
	}

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.Matching.Threshold < 0 || c.Matching.Threshold > 100 {
		errs = append(errs, fmt.Sprintf("matching: threshold must be 0-100, got %g", c.Matching.Threshold))
	}

	switch c.Comparison.Policy {
	case "band":
		if c.Comparison.MinPct > c.Comparison.MaxPct {
			errs = append(errs, fmt.Sprintf("comparison: min_pct (%g) must not exceed max_pct (%g)", c.Comparison.MinPct, c.Comparison.MaxPct))
		}
	case "lay_back":
		if c.Comparison.MinDiffAbs < 0 {
			errs = append(errs, "comparison: min_diff_abs must be >= 0")
		}
		if c.Comparison.MinDiffPct < 0 {
			errs = append(errs, "comparison: min_diff_pct must be >= 0")
		}
	default:
		errs = append(errs, fmt.Sprintf("comparison: unknown policy %q (valid: band, lay_back)", c.Comparison.Policy))
	}

	switch c.Dedupe.Backend {
	case "memory":
	case "redis":
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty when dedupe.backend is redis")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	default:
		errs = append(errs, fmt.Sprintf("dedupe: unknown backend %q (valid: memory, redis)", c.Dedupe.Backend))
	}
	if c.Dedupe.Window.Duration <= 0 {
		errs = append(errs, "dedupe: window must be positive")
	}

	if c.Scan.Interval.Duration < time.Second || c.Scan.Interval.Duration > 60*time.Second {
		errs = append(errs, fmt.Sprintf("scan: interval must be between 1s and 60s, got %s", c.Scan.Interval.Duration))
	}
	switch strings.ToLower(c.Scan.Profile) {
	case "", "basic", "fast":
	default:
		errs = append(errs, fmt.Sprintf("scan: unknown profile %q (valid: basic, fast)", c.Scan.Profile))
	}

	if !c.Sources.Demo {
		if c.Sources.Orbit.URL == "" {
			errs = append(errs, "sources: orbit.url must be set (or enable sources.demo)")
		}
		if c.Sources.Back.URL == "" {
			errs = append(errs, "sources: back.url must be set (or enable sources.demo)")
		}
	}
	if c.Sources.Orbit.Site == "" {
		errs = append(errs, "sources: orbit.site must not be empty")
	}
	if c.Sources.Back.Site == "" {
		errs = append(errs, "sources: back.site must not be empty")
	}

	switch c.Subscribers.Backend {
	case "file":
		if c.Subscribers.FilePath == "" {
			errs = append(errs, "subscribers: file_path must not be empty for file backend")
		}
	case "postgres":
		if !c.Postgres.Enabled {
			errs = append(errs, "subscribers: postgres backend requires postgres.enabled")
		}
	default:
		errs = append(errs, fmt.Sprintf("subscribers: unknown backend %q (valid: file, postgres)", c.Subscribers.Backend))
	}

	if c.Postgres.Enabled && strings.TrimSpace(c.Postgres.DSN) == "" {
		if c.Postgres.Host == "" {
			errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
		}
		if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
			errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
		}
		if c.Postgres.Database == "" {
			errs = append(errs, "postgres: database must not be empty")
		}
	}
	if c.Postgres.Enabled {
		if c.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "postgres: pool_max_conns must be >= 1")
		}
		if c.Postgres.PoolMinConns < 0 {
			errs = append(errs, "postgres: pool_min_conns must be >= 0")
		}
		if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
		}
	}

	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
	}

	if c.Notify.TelegramChatID != "" && c.Notify.TelegramToken == "" {
		errs = append(errs, "notify: telegram_token is required when telegram_chat_id is set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
