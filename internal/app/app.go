// Package app wires the scanner's dependencies and runs the configured
// operating mode: the scan loop, the API server, both, or a single cycle.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/orbitarb/orbitarb/internal/config"
)

// App owns the configuration, the logger, and the cleanup functions
// registered while wiring.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates an App. Dependencies are wired lazily in Run.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run wires all dependencies and blocks in the configured mode until the
// context is cancelled.
func (a *App) Run(ctx context.Context) error {
	mode := strings.ToLower(a.cfg.Mode)
	a.logger.InfoContext(ctx, "starting application",
		slog.String("mode", mode),
		slog.String("log_level", a.cfg.LogLevel),
	)

	deps, cleanup, err := Wire(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	switch mode {
	case "scan":
		return a.ScanMode(ctx, deps)
	case "serve":
		return a.ServeMode(ctx, deps)
	case "full":
		return a.FullMode(ctx, deps)
	case "once":
		return a.OnceMode(ctx, deps)
	}
	return fmt.Errorf("app: unsupported mode %q", a.cfg.Mode)
}

// Close runs the registered cleanup functions in reverse order. Safe to call
// more than once.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
