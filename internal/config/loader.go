package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies the scan profile presets, then applies
// ORBITARB_* environment variable overrides, and returns the final Config.
// The returned Config has NOT been validated; the caller should invoke
// Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, err
	}

	// Profile presets yield to values the file sets explicitly.
	cfg.applyProfile(
		md.IsDefined("dedupe", "window"),
		md.IsDefined("scan", "interval"),
	)

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// LoadDefaults returns the built-in defaults with only environment overrides
// applied, for running without a config file. When no feed URLs are provided
// through the environment, the demo fixtures are enabled so the binary can
// run end to end without any setup.
func LoadDefaults() *Config {
	cfg := Defaults()
	cfg.applyProfile(false, false)
	_ = godotenv.Load()
	applyEnvOverrides(&cfg)
	if cfg.Sources.Orbit.URL == "" && cfg.Sources.Back.URL == "" {
		cfg.Sources.Demo = true
	}
	return &cfg
}

// applyEnvOverrides reads well-known ORBITARB_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// --- Matching ---
	setFloat64(&cfg.Matching.Threshold, "ORBITARB_MATCHING_THRESHOLD")
	setStr(&cfg.Matching.AliasesPath, "ORBITARB_MATCHING_ALIASES_PATH")

	// --- Comparison ---
	setStr(&cfg.Comparison.Policy, "ORBITARB_COMPARISON_POLICY")
	setFloat64(&cfg.Comparison.MinPct, "ORBITARB_COMPARISON_MIN_PCT")
	setFloat64(&cfg.Comparison.MaxPct, "ORBITARB_COMPARISON_MAX_PCT")
	setFloat64(&cfg.Comparison.MinDiffAbs, "ORBITARB_COMPARISON_MIN_DIFF_ABS")
	setFloat64(&cfg.Comparison.MinDiffPct, "ORBITARB_COMPARISON_MIN_DIFF_PCT")

	// --- Dedupe ---
	setStr(&cfg.Dedupe.Backend, "ORBITARB_DEDUPE_BACKEND")
	setDuration(&cfg.Dedupe.Window, "ORBITARB_DEDUPE_WINDOW")

	// --- Scan ---
	setDuration(&cfg.Scan.Interval, "ORBITARB_SCAN_INTERVAL")
	setStr(&cfg.Scan.Profile, "ORBITARB_SCAN_PROFILE")

	// --- Sources ---
	setStr(&cfg.Sources.Orbit.Site, "ORBITARB_SOURCES_ORBIT_SITE")
	setStr(&cfg.Sources.Orbit.URL, "ORBITARB_SOURCES_ORBIT_URL")
	setDuration(&cfg.Sources.Orbit.Timeout, "ORBITARB_SOURCES_ORBIT_TIMEOUT")
	setStr(&cfg.Sources.Back.Site, "ORBITARB_SOURCES_BACK_SITE")
	setStr(&cfg.Sources.Back.URL, "ORBITARB_SOURCES_BACK_URL")
	setDuration(&cfg.Sources.Back.Timeout, "ORBITARB_SOURCES_BACK_TIMEOUT")
	setBool(&cfg.Sources.Demo, "ORBITARB_SOURCES_DEMO")

	// --- Redis ---
	setStr(&cfg.Redis.Addr, "ORBITARB_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "ORBITARB_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "ORBITARB_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "ORBITARB_REDIS_POOL_SIZE")
	setBool(&cfg.Redis.TLSEnabled, "ORBITARB_REDIS_TLS_ENABLED")

	// --- Postgres ---
	setBool(&cfg.Postgres.Enabled, "ORBITARB_POSTGRES_ENABLED")
	setStr(&cfg.Postgres.DSN, "ORBITARB_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "ORBITARB_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "ORBITARB_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "ORBITARB_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "ORBITARB_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "ORBITARB_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "ORBITARB_POSTGRES_SSLMODE")
	setInt(&cfg.Postgres.PoolMaxConns, "ORBITARB_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "ORBITARB_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "ORBITARB_POSTGRES_RUN_MIGRATIONS")

	// --- Subscribers ---
	setStr(&cfg.Subscribers.Backend, "ORBITARB_SUBSCRIBERS_BACKEND")
	setStr(&cfg.Subscribers.FilePath, "ORBITARB_SUBSCRIBERS_FILE_PATH")

	// --- Server ---
	setBool(&cfg.Server.Enabled, "ORBITARB_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "ORBITARB_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "ORBITARB_SERVER_CORS_ORIGINS")

	// --- Notify ---
	setStr(&cfg.Notify.TelegramToken, "ORBITARB_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "ORBITARB_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "ORBITARB_NOTIFY_DISCORD_WEBHOOK_URL")

	// --- Top-level ---
	setStr(&cfg.Mode, "ORBITARB_MODE")
	setStr(&cfg.LogLevel, "ORBITARB_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
