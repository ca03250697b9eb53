package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/orbitarb/orbitarb/internal/pipeline"
	"github.com/orbitarb/orbitarb/internal/server"
	"github.com/orbitarb/orbitarb/internal/server/handler"
	"github.com/orbitarb/orbitarb/internal/server/ws"
)

// shutdownTimeout bounds graceful HTTP server shutdown.
const shutdownTimeout = 10 * time.Second

// ScanMode runs the scan loop without the API server.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting scan mode")

	scanner := a.newScanner(deps, nil)
	return scanner.RunLoop(ctx, a.cfg.Scan.Interval.Duration)
}

// ServeMode runs the API server and WebSocket hub without the scan loop.
// Useful for inspecting subscriber and alert history data.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting serve mode")

	hub := ws.NewHub(a.cfg.Mode, a.logger)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := hub.Run(ctx)
		if ctx.Err() != nil {
			return nil
		}
		return err
	})

	a.startServer(ctx, g, deps, nil, hub)

	return g.Wait()
}

// FullMode runs the scan loop, the WebSocket hub, and the API server
// together. Accepted opportunities are streamed to connected clients.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	hub := ws.NewHub(a.cfg.Mode, a.logger)
	scanner := a.newScanner(deps, hub)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := hub.Run(ctx)
		if ctx.Err() != nil {
			return nil
		}
		return err
	})

	g.Go(func() error {
		err := scanner.RunLoop(ctx, a.cfg.Scan.Interval.Duration)
		if ctx.Err() != nil {
			return nil
		}
		return err
	})

	if a.cfg.Server.Enabled {
		a.startServer(ctx, g, deps, scanner, hub)
	}

	return g.Wait()
}

// OnceMode runs a single scan cycle and exits. Intended for cron-style
// deployments and smoke checks.
func (a *App) OnceMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting once mode")

	scanner := a.newScanner(deps, nil)
	res, err := scanner.RunCycle(ctx)
	if err != nil {
		return fmt.Errorf("scan cycle: %w", err)
	}

	a.logger.InfoContext(ctx, "single scan cycle finished",
		slog.String("status", string(res.Status)),
		slog.Int("found", res.Found),
		slog.Int("emitted", len(res.Emitted)),
		slog.Duration("duration", res.Duration),
	)
	return nil
}

// newScanner assembles the scan pipeline from the wired dependencies.
func (a *App) newScanner(deps *Dependencies, broadcaster pipeline.Broadcaster) *pipeline.Scanner {
	return pipeline.NewScanner(
		deps.LaySource,
		deps.BackSource,
		deps.Finder,
		deps.Dedupe,
		deps.Notifier,
		deps.Subscribers,
		deps.AlertLog,
		broadcaster,
		a.logger,
	)
}

// startServer registers the API server goroutine on the errgroup. The server
// runs until ctx is cancelled and then drains in-flight requests.
func (a *App) startServer(ctx context.Context, g *errgroup.Group, deps *Dependencies, scanner *pipeline.Scanner, hub *ws.Hub) {
	var status handler.ScannerStatus
	if scanner != nil {
		status = scanner
	}

	srv := server.NewServer(
		server.Config{
			Port:        a.cfg.Server.Port,
			CORSOrigins: a.cfg.Server.CORSOrigins,
		},
		server.Handlers{
			Health:        handler.NewHealthHandler(a.logger),
			Status:        handler.NewStatusHandler(status, a.cfg.Mode, a.logger),
			Opportunities: handler.NewOpportunityHandler(deps.AlertLog, a.logger),
			Subscribers:   handler.NewSubscriberHandler(deps.Subscribers, a.logger),
		},
		hub,
		a.logger,
	)

	g.Go(func() error {
		return srv.Run(ctx, shutdownTimeout)
	})
}
