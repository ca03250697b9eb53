package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/orbitarb/orbitarb/internal/arb"
	memorycache "github.com/orbitarb/orbitarb/internal/cache/memory"
	rediscache "github.com/orbitarb/orbitarb/internal/cache/redis"
	"github.com/orbitarb/orbitarb/internal/config"
	"github.com/orbitarb/orbitarb/internal/domain"
	"github.com/orbitarb/orbitarb/internal/match"
	"github.com/orbitarb/orbitarb/internal/normalize"
	"github.com/orbitarb/orbitarb/internal/notify"
	"github.com/orbitarb/orbitarb/internal/odds"
	"github.com/orbitarb/orbitarb/internal/source"
	"github.com/orbitarb/orbitarb/internal/store/file"
	"github.com/orbitarb/orbitarb/internal/store/postgres"
)

// Dependencies bundles every domain-level dependency that the application
// modes need to operate. It is constructed by Wire and torn down by the
// returned cleanup function.
type Dependencies struct {
	Normalizer *normalize.Normalizer
	Matcher    *match.Matcher
	Comparator *odds.Comparator
	Finder     *arb.Finder

	LaySource  domain.SnapshotSource
	BackSource domain.SnapshotSource

	Dedupe      domain.DedupeCache
	Subscribers domain.SubscriberStore
	AlertLog    domain.AlertLogStore // nil unless postgres is enabled

	Notifier *notify.Notifier
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Detection core ---
	norm, err := normalize.NewFromFile(cfg.Matching.AliasesPath)
	if err != nil {
		return nil, nil, fmt.Errorf("wire: load aliases: %w", err)
	}
	deps.Normalizer = norm
	deps.Matcher = match.New(norm, cfg.Matching.Threshold, logger)
	deps.Comparator = odds.New(odds.Config{
		Policy:     odds.Policy(cfg.Comparison.Policy),
		MinPct:     cfg.Comparison.MinPct,
		MaxPct:     cfg.Comparison.MaxPct,
		MinDiffAbs: cfg.Comparison.MinDiffAbs,
		MinDiffPct: cfg.Comparison.MinDiffPct,
	})
	deps.Finder = arb.NewFinder(
		norm,
		deps.Matcher,
		deps.Comparator,
		cfg.Sources.Orbit.Site,
		cfg.Sources.Back.Site,
		logger,
	)

	// --- Feeds ---
	if cfg.Sources.Demo {
		deps.LaySource = source.NewStaticSource(cfg.Sources.Orbit.Site, source.DemoLayRecords())
		deps.BackSource = source.NewStaticSource(cfg.Sources.Back.Site, source.DemoBackRecords())
	} else {
		deps.LaySource = source.NewHTTPJSONSource(
			cfg.Sources.Orbit.Site, cfg.Sources.Orbit.URL, cfg.Sources.Orbit.Timeout.Duration,
		)
		deps.BackSource = source.NewHTTPJSONSource(
			cfg.Sources.Back.Site, cfg.Sources.Back.URL, cfg.Sources.Back.Timeout.Duration,
		)
	}

	// --- Dedupe cache ---
	switch cfg.Dedupe.Backend {
	case "redis":
		redisCache, err := rediscache.NewDedupeCache(ctx, rediscache.Config{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			TLSEnabled: cfg.Redis.TLSEnabled,
		}, cfg.Dedupe.Window.Duration)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisCache.Close() })
		deps.Dedupe = redisCache
	default:
		deps.Dedupe = memorycache.NewDedupeCache(cfg.Dedupe.Window.Duration)
	}

	// --- PostgreSQL (subscriber registry and alert log) ---
	var pgClient *postgres.Client
	if cfg.Postgres.Enabled {
		pgClient, err = postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		deps.AlertLog = postgres.NewAlertLogStore(pgClient.Pool())
	}

	// --- Subscriber registry ---
	switch cfg.Subscribers.Backend {
	case "postgres":
		if pgClient == nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: subscribers backend postgres requires postgres.enabled")
		}
		deps.Subscribers = postgres.NewSubscriberStore(pgClient.Pool())
	default:
		fileStore, err := file.NewSubscriberStore(cfg.Subscribers.FilePath)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: subscriber file store: %w", err)
		}
		deps.Subscribers = fileStore
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, logger)

	return deps, cleanup, nil
}
